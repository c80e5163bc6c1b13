package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/pkg/assistant"
	"multimodal-assistant-be/pkg/store"
)

// IAssistantService routes uploads to collaborators and runs document Q&A turns
type IAssistantService interface {
	Upload(ctx context.Context, ws *assistant.Workspace, req *dto.UploadRequest) (*dto.UploadResponse, error)
	SendChat(ctx context.Context, ws *assistant.Workspace, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetModes() *dto.ModesResponse
}

type assistantService struct {
	scratch   *assistant.ScratchStore
	publisher IPublisherService
	logger    logger.ILogger
	now       func() time.Time
}

func NewAssistantService(
	scratch *assistant.ScratchStore,
	publisher IPublisherService,
	logger logger.ILogger,
) IAssistantService {
	return &assistantService{
		scratch:   scratch,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// dispatchResult summarises one routed call for the event bus
type dispatchResult struct {
	status      string
	errMessage  string
	outputChars int
}

func (s *assistantService) Upload(ctx context.Context, ws *assistant.Workspace, req *dto.UploadRequest) (*dto.UploadResponse, error) {
	ext := assistant.ExtensionOf(req.FileName)
	if !assistant.Uploadable(ext) {
		return nil, fmt.Errorf("%w: %q", assistant.ErrUnsupportedFileType, ext)
	}
	mode, err := assistant.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	start := s.now()

	ws.Lock()
	defer ws.Unlock()

	artifact, err := s.scratch.Save(req.FileName, req.Content)
	if err != nil {
		return nil, err
	}
	ws.Session.LastUpload = artifact

	resolution := assistant.Resolve(mode, artifact.Extension)
	resp := &dto.UploadResponse{
		SessionId:     ws.Session.ID,
		Artifact:      toArtifactResponse(artifact),
		RequestedMode: string(resolution.Requested),
		ResolvedMode:  string(resolution.Mode),
		Outcome:       string(resolution.Outcome),
		Notices:       []dto.Notice{},
	}

	result := dispatchResult{status: constant.DispatchStatusSkipped}
	switch {
	case resolution.Outcome == assistant.OutcomeIncompatible:
		resp.Notices = append(resp.Notices, dto.Notice{Level: dto.NoticeInfo, Message: constant.MessageIncompatible})
	case resolution.Outcome == assistant.OutcomeUnroutable:
		resp.Notices = append(resp.Notices, dto.Notice{Level: dto.NoticeInfo, Message: constant.MessageUnroutable})
	case resolution.Mode == assistant.ModeQuestionAnswering:
		result = s.openDocument(ctx, ws, artifact, req.Question, resp)
	case resolution.Mode == assistant.ModeTranscription:
		fresh := !ws.HasTranscriber()
		result = s.runOneShot(resp, assistant.NameTranscriber, constant.TitleTranscription, func() (string, error) {
			return ws.Transcribe(ctx, artifact.ScratchPath)
		})
		if fresh && ws.HasTranscriber() {
			resp.Notices = append([]dto.Notice{{Level: dto.NoticeSuccess, Message: constant.MessageTranscriberReady}}, resp.Notices...)
		}
	case resolution.Mode == assistant.ModeImageDescription:
		fresh := !ws.HasCaptioner()
		result = s.runOneShot(resp, assistant.NameCaptioner, constant.TitleImageDescription, func() (string, error) {
			return ws.Describe(ctx, artifact.ScratchPath)
		})
		if fresh && ws.HasCaptioner() {
			resp.Notices = append([]dto.Notice{{Level: dto.NoticeSuccess, Message: constant.MessageCaptionerReady}}, resp.Notices...)
		}
	}

	resp.Transcript = ws.Session.TranscriptCopy()

	s.logger.Info("ASSISTANT", "Upload dispatched", map[string]interface{}{
		"session_id": ws.Session.ID,
		"file":       artifact.OriginalName,
		"requested":  resolution.Requested,
		"resolved":   resolution.Mode,
		"outcome":    resolution.Outcome,
		"status":     result.status,
	})
	s.publish(ctx, ws.Session.ID, artifact, resolution, result, s.now().Sub(start))

	return resp, nil
}

// openDocument rebuilds the Q&A flow over the uploaded PDF and optionally runs a first turn
func (s *assistantService) openDocument(ctx context.Context, ws *assistant.Workspace, artifact *store.Artifact, question string, resp *dto.UploadResponse) dispatchResult {
	if _, err := ws.ReloadDocument(ctx, artifact.ScratchPath); err != nil {
		resp.Notices = append(resp.Notices, noticeFor(assistant.NameDocumentQA, err))
		return failedResult(err)
	}
	resp.Notices = append(resp.Notices, dto.Notice{Level: dto.NoticeSuccess, Message: constant.MessageChatbotReady})

	if strings.TrimSpace(question) == "" {
		return dispatchResult{status: constant.DispatchStatusOK}
	}

	res, err := ws.Ask(ctx, question)
	if err != nil {
		resp.Notices = append(resp.Notices, noticeFor(assistant.NameDocumentQA, err))
		return failedResult(err)
	}
	resp.Answer = &dto.ChatTurnResponse{Question: question, Answer: res.Answer, Sources: res.Sources}
	return dispatchResult{status: constant.DispatchStatusOK, outputChars: len(res.Answer)}
}

func (s *assistantService) runOneShot(resp *dto.UploadResponse, name, title string, run func() (string, error)) dispatchResult {
	text, err := run()
	if err != nil {
		resp.Notices = append(resp.Notices, noticeFor(name, err))
		return failedResult(err)
	}
	resp.Output = &dto.OutputResponse{Title: title, Text: text}
	return dispatchResult{status: constant.DispatchStatusOK, outputChars: len(text)}
}

func (s *assistantService) SendChat(ctx context.Context, ws *assistant.Workspace, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	ws.Lock()
	defer ws.Unlock()

	resp := &dto.SendChatResponse{
		SessionId: ws.Session.ID,
		Notices:   []dto.Notice{},
	}

	res, err := ws.Ask(ctx, req.Question)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion), errors.Is(err, assistant.ErrNoActiveDocument):
		return nil, err
	case err != nil:
		s.logger.Warn("ASSISTANT", "Chat turn failed", map[string]interface{}{
			"session_id": ws.Session.ID,
			"error":      err.Error(),
		})
		resp.Notices = append(resp.Notices, noticeFor(assistant.NameDocumentQA, err))
	default:
		resp.Turn = &dto.ChatTurnResponse{Question: req.Question, Answer: res.Answer, Sources: res.Sources}
	}

	resp.Document = ws.Session.CurrentDocumentPath
	resp.Transcript = ws.Session.TranscriptCopy()
	return resp, nil
}

func (s *assistantService) GetModes() *dto.ModesResponse {
	modes := make([]dto.ModeResponse, 0, len(assistant.Modes))
	for _, m := range assistant.Modes {
		modes = append(modes, dto.ModeResponse{
			Value:      string(m),
			Label:      m.Label(),
			Extensions: m.Extensions(),
		})
	}

	autoDetect := make(map[string]string)
	for ext, m := range assistant.ExtensionTable() {
		autoDetect[ext] = string(m)
	}

	uploads := make([]string, len(assistant.UploadExtensions))
	copy(uploads, assistant.UploadExtensions)

	return &dto.ModesResponse{
		Modes:            modes,
		UploadExtensions: uploads,
		AutoDetect:       autoDetect,
	}
}

func (s *assistantService) publish(ctx context.Context, sessionID string, artifact *store.Artifact, resolution assistant.Resolution, result dispatchResult, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}
	msg := dto.DispatchEventMessage{
		SessionId:     sessionID,
		OriginalName:  artifact.OriginalName,
		Extension:     artifact.Extension,
		RequestedMode: string(resolution.Requested),
		ResolvedMode:  string(resolution.Mode),
		Outcome:       string(resolution.Outcome),
		Status:        result.status,
		ErrorMessage:  result.errMessage,
		DurationMs:    elapsed.Milliseconds(),
		OutputChars:   result.outputChars,
		OccurredAt:    s.now(),
	}
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, msgJson); err != nil {
		s.logger.Warn("ASSISTANT", "Failed to publish dispatch event", map[string]interface{}{"error": err.Error()})
	}
}

func failedResult(err error) dispatchResult {
	status := constant.DispatchStatusError
	if errors.Is(err, assistant.ErrMissingCredential) {
		status = constant.DispatchStatusWarning
	}
	return dispatchResult{status: status, errMessage: err.Error()}
}

// noticeFor turns a flow error into the message shown to the user
func noticeFor(collaboratorName string, err error) dto.Notice {
	var constructionErr *assistant.ConstructionError
	switch {
	case errors.Is(err, assistant.ErrMissingCredential):
		return dto.Notice{Level: dto.NoticeWarning, Message: constant.MessageEnterAPIKey}
	case errors.As(err, &constructionErr):
		return dto.Notice{Level: dto.NoticeError, Message: fmt.Sprintf("Failed to load %s: %v", constructionErr.Collaborator, constructionErr.Err)}
	default:
		return dto.Notice{Level: dto.NoticeError, Message: fmt.Sprintf("%s failed: %v", collaboratorName, err)}
	}
}

func toArtifactResponse(a *store.Artifact) dto.ArtifactResponse {
	return dto.ArtifactResponse{
		OriginalName: a.OriginalName,
		Extension:    a.Extension,
		ScratchPath:  a.ScratchPath,
	}
}
