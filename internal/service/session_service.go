package service

import (
	"context"
	"errors"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/entity"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/internal/repository/contract"
	"multimodal-assistant-be/internal/repository/specification"
	"multimodal-assistant-be/pkg/assistant"

	"github.com/google/uuid"
)

const defaultDispatchPageSize = 20

type ISessionService interface {
	Show(ctx context.Context, ws *assistant.Workspace) *dto.SessionResponse
	SetCredential(ctx context.Context, ws *assistant.Workspace, req *dto.SetCredentialRequest) (*dto.SessionResponse, error)
	ClearHistory(ctx context.Context, ws *assistant.Workspace) *dto.ClearHistoryResponse
	ListDispatches(ctx context.Context, ws *assistant.Workspace, req *dto.ListDispatchesRequest) ([]*dto.DispatchResponse, int64, error)
	GetDispatch(ctx context.Context, ws *assistant.Workspace, id uuid.UUID) (*dto.DispatchResponse, error)
}

var ErrDispatchNotFound = errors.New("dispatch not found")

type sessionService struct {
	dispatchRepo contract.DispatchRepository
	logger       logger.ILogger
}

// NewSessionService builds the sidebar operations. dispatchRepo may be nil
// when no database is configured.
func NewSessionService(dispatchRepo contract.DispatchRepository, logger logger.ILogger) ISessionService {
	return &sessionService{
		dispatchRepo: dispatchRepo,
		logger:       logger,
	}
}

func (s *sessionService) Show(ctx context.Context, ws *assistant.Workspace) *dto.SessionResponse {
	ws.Lock()
	defer ws.Unlock()
	return toSessionResponse(ws)
}

func (s *sessionService) SetCredential(ctx context.Context, ws *assistant.Workspace, req *dto.SetCredentialRequest) (*dto.SessionResponse, error) {
	ws.Lock()
	defer ws.Unlock()

	if !ws.SetCredential(req.Credential) {
		return nil, assistant.ErrMissingCredential
	}
	s.logger.Info("SESSION", "Credential updated", map[string]interface{}{
		"session_id": ws.Session.ID,
	})
	return toSessionResponse(ws), nil
}

// ClearHistory never fails from the caller's point of view: a collaborator
// error becomes a notice and the local transcript is emptied anyway.
func (s *sessionService) ClearHistory(ctx context.Context, ws *assistant.Workspace) *dto.ClearHistoryResponse {
	ws.Lock()
	defer ws.Unlock()

	resp := &dto.ClearHistoryResponse{
		SessionId: ws.Session.ID,
		Notices:   []dto.Notice{},
	}

	if err := ws.ClearHistory(ctx); err != nil {
		s.logger.Warn("SESSION", "Collaborator failed to clear history", map[string]interface{}{
			"session_id": ws.Session.ID,
			"error":      err.Error(),
		})
		resp.Notices = append(resp.Notices, noticeFor(assistant.NameDocumentQA, err))
	}
	resp.Notices = append(resp.Notices, dto.Notice{Level: dto.NoticeSuccess, Message: constant.MessageHistoryCleared})
	resp.Transcript = ws.Session.TranscriptCopy()
	return resp
}

// ListDispatches returns one page of this session's dispatches and the total
// number of rows matching the filter.
func (s *sessionService) ListDispatches(ctx context.Context, ws *assistant.Workspace, req *dto.ListDispatchesRequest) ([]*dto.DispatchResponse, int64, error) {
	res := make([]*dto.DispatchResponse, 0)
	if s.dispatchRepo == nil {
		return res, 0, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultDispatchPageSize
	}

	filters := []specification.Specification{specification.BySessionID{SessionID: ws.Session.ID}}
	if req.Outcome != "" {
		filters = append(filters, specification.ByOutcome{Outcome: req.Outcome})
	}

	total, err := s.dispatchRepo.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	dispatches, err := s.dispatchRepo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)...)
	if err != nil {
		return nil, 0, err
	}

	for _, d := range dispatches {
		res = append(res, toDispatchResponse(d))
	}
	return res, total, nil
}

// GetDispatch loads one dispatch. Rows of other sessions are reported as not found.
func (s *sessionService) GetDispatch(ctx context.Context, ws *assistant.Workspace, id uuid.UUID) (*dto.DispatchResponse, error) {
	if s.dispatchRepo == nil {
		return nil, ErrDispatchNotFound
	}

	d, err := s.dispatchRepo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.BySessionID{SessionID: ws.Session.ID},
	)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDispatchNotFound
	}
	return toDispatchResponse(d), nil
}

func toDispatchResponse(d *entity.Dispatch) *dto.DispatchResponse {
	return &dto.DispatchResponse{
		Id:            d.Id,
		OriginalName:  d.OriginalName,
		Extension:     d.Extension,
		RequestedMode: d.RequestedMode,
		ResolvedMode:  d.ResolvedMode,
		Outcome:       d.Outcome,
		Status:        d.Status,
		ErrorMessage:  d.ErrorMessage,
		DurationMs:    d.DurationMs,
		CreatedAt:     d.CreatedAt,
	}
}

func toSessionResponse(ws *assistant.Workspace) *dto.SessionResponse {
	sess := ws.Session
	resp := &dto.SessionResponse{
		SessionId:       sess.ID,
		HasCredential:   sess.HasCredential(),
		CurrentDocument: sess.CurrentDocumentPath,
		Transcript:      sess.TranscriptCopy(),
		CreatedAt:       sess.CreatedAt,
	}
	if sess.LastUpload != nil {
		a := toArtifactResponse(sess.LastUpload)
		resp.LastUpload = &a
	}
	return resp
}
