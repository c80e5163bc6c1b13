package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/internal/service"
	"multimodal-assistant-be/pkg/assistant"
	"multimodal-assistant-be/pkg/collaborator/collaboratortest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []dto.DispatchEventMessage
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	var msg dto.DispatchEventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) last() dto.DispatchEventMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[len(p.messages)-1]
}

type fixture struct {
	svc       service.IAssistantService
	ws        *assistant.Workspace
	factories *collaboratortest.Factories
	published *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &collaboratortest.Factories{}
	pub := &recordingPublisher{}
	return &fixture{
		svc:       service.NewAssistantService(assistant.NewScratchStore(t.TempDir()), pub, logger.NewNopLogger()),
		ws:        assistant.NewWorkspace("sess-1", f.Set(), fixedNow),
		factories: f,
		published: pub,
	}
}

func (fx *fixture) upload(t *testing.T, name, mode, question string) *dto.UploadResponse {
	t.Helper()
	resp, err := fx.svc.Upload(context.Background(), fx.ws, &dto.UploadRequest{
		FileName: name,
		Content:  []byte("data"),
		Mode:     mode,
		Question: question,
	})
	require.NoError(t, err)
	return resp
}

func levels(notices []dto.Notice) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Level)
	}
	return out
}

func TestUpload_RejectsUnlistedExtension(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Upload(context.Background(), fx.ws, &dto.UploadRequest{FileName: "virus.exe"})

	assert.ErrorIs(t, err, assistant.ErrUnsupportedFileType)
	assert.Nil(t, fx.ws.Session.LastUpload)
}

func TestUpload_RejectsUnknownMode(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Upload(context.Background(), fx.ws, &dto.UploadRequest{FileName: "a.pdf", Mode: "summarize"})

	assert.ErrorIs(t, err, assistant.ErrUnknownMode)
}

func TestUpload_AutoDetectImage(t *testing.T) {
	fx := newFixture(t)

	resp := fx.upload(t, "cat.PNG", "", "")

	assert.Equal(t, string(assistant.OutcomeRouted), resp.Outcome)
	assert.Equal(t, string(assistant.ModeImageDescription), resp.ResolvedMode)
	require.NotNil(t, resp.Output)
	assert.Equal(t, constant.TitleImageDescription, resp.Output.Title)
	assert.Equal(t, "description of cat.PNG", resp.Output.Text)
	assert.Equal(t, []dto.Notice{{Level: dto.NoticeSuccess, Message: constant.MessageCaptionerReady}}, resp.Notices)

	// second image reuses the captioner and says nothing
	resp = fx.upload(t, "dog.jpg", "", "")
	assert.Empty(t, resp.Notices)
	assert.Equal(t, 1, fx.factories.CaptionerBuilds)

	evt := fx.published.last()
	assert.Equal(t, "dog.jpg", evt.OriginalName)
	assert.Equal(t, constant.DispatchStatusOK, evt.Status)
	assert.Equal(t, len("description of dog.jpg"), evt.OutputChars)
}

func TestUpload_TranscriptionLeavesTranscriptAlone(t *testing.T) {
	fx := newFixture(t)
	fx.ws.SetCredential("key")
	fx.upload(t, "paper.pdf", "", "What is it?")
	require.Len(t, fx.ws.Session.Transcript, 2)

	resp := fx.upload(t, "talk.mp3", "transcription", "")

	assert.Equal(t, "transcript of talk.mp3", resp.Output.Text)
	assert.Len(t, resp.Transcript, 2)
	assert.Contains(t, fx.ws.Session.CurrentDocumentPath, "paper.pdf")
}

func TestUpload_Incompatible(t *testing.T) {
	fx := newFixture(t)

	resp := fx.upload(t, "cat.png", "transcription", "")

	assert.Equal(t, string(assistant.OutcomeIncompatible), resp.Outcome)
	assert.Empty(t, resp.ResolvedMode)
	assert.Nil(t, resp.Output)
	assert.Equal(t, []dto.Notice{{Level: dto.NoticeInfo, Message: constant.MessageIncompatible}}, resp.Notices)
	assert.Equal(t, 0, fx.factories.TranscriberBuilds)
	assert.Equal(t, "cat.png", fx.ws.Session.LastUpload.OriginalName)
	assert.Equal(t, constant.DispatchStatusSkipped, fx.published.last().Status)
}

func TestUpload_Unroutable(t *testing.T) {
	fx := newFixture(t)

	resp := fx.upload(t, "notes.txt", "auto_detect", "")

	assert.Equal(t, string(assistant.OutcomeUnroutable), resp.Outcome)
	assert.Equal(t, []dto.Notice{{Level: dto.NoticeInfo, Message: constant.MessageUnroutable}}, resp.Notices)
}

func TestUpload_PDFWithoutCredential(t *testing.T) {
	fx := newFixture(t)

	resp := fx.upload(t, "paper.pdf", "", "")

	assert.Equal(t, []dto.Notice{{Level: dto.NoticeWarning, Message: constant.MessageEnterAPIKey}}, resp.Notices)
	assert.Equal(t, 0, fx.factories.DocumentQABuilds)
	assert.Equal(t, constant.DispatchStatusWarning, fx.published.last().Status)
}

func TestUpload_PDFFlow(t *testing.T) {
	fx := newFixture(t)
	fx.ws.SetCredential("key")

	resp := fx.upload(t, "paper.pdf", "question_answering", "Summarize it")

	assert.Equal(t, []string{dto.NoticeSuccess}, levels(resp.Notices))
	require.NotNil(t, resp.Answer)
	assert.Equal(t, "answer to Summarize it", resp.Answer.Answer)
	assert.Equal(t, []string{"page 1"}, resp.Answer.Sources)
	assert.Len(t, resp.Transcript, 2)

	t.Run("re-uploading the same pdf rebuilds the chatbot and keeps the conversation", func(t *testing.T) {
		previous := fx.factories.LastDocumentQA
		resp := fx.upload(t, "paper.pdf", "", "")
		assert.Equal(t, []string{dto.NoticeSuccess}, levels(resp.Notices))
		assert.Len(t, resp.Transcript, 2)
		assert.Equal(t, 2, fx.factories.DocumentQABuilds)
		assert.True(t, previous.Closed)
	})

	t.Run("a new pdf starts over", func(t *testing.T) {
		resp := fx.upload(t, "other.pdf", "", "")
		assert.Equal(t, []string{dto.NoticeSuccess}, levels(resp.Notices))
		assert.Empty(t, resp.Transcript)
	})
}

func TestUpload_SameNameNewContentIsReindexed(t *testing.T) {
	fx := newFixture(t)
	fx.ws.SetCredential("key")
	ctx := context.Background()

	for _, content := range []string{"v1", "v2 totally different doc"} {
		_, err := fx.svc.Upload(ctx, fx.ws, &dto.UploadRequest{FileName: "report.pdf", Content: []byte(content)})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, fx.factories.DocumentQABuilds)
	data, err := os.ReadFile(fx.factories.LastDocumentQA.Path)
	require.NoError(t, err)
	assert.Equal(t, "v2 totally different doc", string(data))

	_, err = fx.svc.SendChat(ctx, fx.ws, &dto.SendChatRequest{Question: "Which version?"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Which version?"}, fx.factories.LastDocumentQA.Questions)
}

func TestUpload_ConstructionFailure(t *testing.T) {
	fx := newFixture(t)
	fx.factories.TranscriberErr = collaboratortest.ErrBuild

	resp := fx.upload(t, "talk.wav", "", "")

	require.Len(t, resp.Notices, 1)
	assert.Equal(t, dto.NoticeError, resp.Notices[0].Level)
	assert.Equal(t, "Failed to load Audio Transcriber: backend unavailable", resp.Notices[0].Message)
	assert.Nil(t, resp.Output)
	assert.Equal(t, constant.DispatchStatusError, fx.published.last().Status)
}

func TestUpload_CollaboratorFailure(t *testing.T) {
	fx := newFixture(t)
	fx.factories.TranscribeErr = errors.New("audio too long")

	resp := fx.upload(t, "talk.mp3", "", "")

	require.Len(t, resp.Notices, 2)
	assert.Equal(t, dto.NoticeSuccess, resp.Notices[0].Level)
	assert.Equal(t, "Audio Transcriber failed: audio too long", resp.Notices[1].Message)
}

func TestSendChat(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a document", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.SendChat(ctx, fx.ws, &dto.SendChatRequest{Question: "hi"})
		assert.ErrorIs(t, err, assistant.ErrNoActiveDocument)
	})

	t.Run("appends a turn", func(t *testing.T) {
		fx := newFixture(t)
		fx.ws.SetCredential("key")
		fx.upload(t, "paper.pdf", "", "")

		resp, err := fx.svc.SendChat(ctx, fx.ws, &dto.SendChatRequest{Question: "Who wrote it?"})

		require.NoError(t, err)
		require.NotNil(t, resp.Turn)
		assert.Equal(t, "answer to Who wrote it?", resp.Turn.Answer)
		assert.Len(t, resp.Transcript, 2)
		assert.Contains(t, resp.Document, "paper.pdf")
	})

	t.Run("collaborator failure becomes a notice", func(t *testing.T) {
		fx := newFixture(t)
		fx.factories.ChatErr = errors.New("rate limited")
		fx.ws.SetCredential("key")
		fx.upload(t, "paper.pdf", "", "")

		resp, err := fx.svc.SendChat(ctx, fx.ws, &dto.SendChatRequest{Question: "Who?"})

		require.NoError(t, err)
		assert.Nil(t, resp.Turn)
		assert.Equal(t, []string{dto.NoticeError}, levels(resp.Notices))
		assert.Empty(t, resp.Transcript)
	})
}

func TestGetModes(t *testing.T) {
	fx := newFixture(t)

	modes := fx.svc.GetModes()

	require.Len(t, modes.Modes, 4)
	assert.Equal(t, "Auto Detect", modes.Modes[0].Label)
	assert.Equal(t, "question_answering", modes.AutoDetect[".pdf"])
	assert.Contains(t, modes.UploadExtensions, ".txt")
	assert.NotContains(t, modes.AutoDetect, ".txt")
}
