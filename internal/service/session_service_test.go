package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/entity"
	"multimodal-assistant-be/internal/model"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/internal/repository/implementation"
	"multimodal-assistant-be/internal/service"
	"multimodal-assistant-be/pkg/assistant"
	"multimodal-assistant-be/pkg/collaborator/collaboratortest"
	"multimodal-assistant-be/pkg/database"
	"multimodal-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSessionService_SetCredential(t *testing.T) {
	svc := service.NewSessionService(nil, logger.NewNopLogger())
	ws := assistant.NewWorkspace("sess-1", (&collaboratortest.Factories{}).Set(), fixedNow)

	_, err := svc.SetCredential(context.Background(), ws, &dto.SetCredentialRequest{Credential: "   "})
	assert.ErrorIs(t, err, assistant.ErrMissingCredential)

	resp, err := svc.SetCredential(context.Background(), ws, &dto.SetCredentialRequest{Credential: "abc"})
	require.NoError(t, err)
	assert.True(t, resp.HasCredential)
	assert.Equal(t, fixedNow, resp.CreatedAt)
}

func TestSessionService_ClearHistory(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(nil, logger.NewNopLogger())

	t.Run("empty session", func(t *testing.T) {
		ws := assistant.NewWorkspace("s", (&collaboratortest.Factories{}).Set(), fixedNow)

		resp := svc.ClearHistory(ctx, ws)

		assert.Equal(t, []dto.Notice{{Level: dto.NoticeSuccess, Message: constant.MessageHistoryCleared}}, resp.Notices)
		assert.Empty(t, resp.Transcript)
	})

	t.Run("collaborator error is reported but history is cleared", func(t *testing.T) {
		f := &collaboratortest.Factories{}
		ws := assistant.NewWorkspace("s", f.Set(), fixedNow)
		ws.SetCredential("key")
		_, err := ws.OpenDocument(ctx, "temp/a.pdf")
		require.NoError(t, err)
		ws.Session.AppendTurn(store.RoleUser, "q")
		ws.Session.AppendTurn(store.RoleAssistant, "a")
		f.LastDocumentQA.ClearErr = errors.New("redis down")

		resp := svc.ClearHistory(ctx, ws)

		assert.Equal(t, []string{dto.NoticeError, dto.NoticeSuccess}, levels(resp.Notices))
		assert.Empty(t, resp.Transcript)
		assert.Empty(t, ws.Session.Transcript)
	})
}

func TestSessionService_ListDispatchesWithoutDatabase(t *testing.T) {
	svc := service.NewSessionService(nil, logger.NewNopLogger())
	ws := assistant.NewWorkspace("s", (&collaboratortest.Factories{}).Set(), fixedNow)

	rows, total, err := svc.ListDispatches(context.Background(), ws, &dto.ListDispatchesRequest{})

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Zero(t, total)

	_, err = svc.GetDispatch(context.Background(), ws, uuid.New())
	assert.ErrorIs(t, err, service.ErrDispatchNotFound)
}

func TestSessionService_Dispatches(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Dispatch{}))
	repo := implementation.NewDispatchRepository(db)
	svc := service.NewSessionService(repo, logger.NewNopLogger())

	seed := []struct{ session, name, outcome string }{
		{"sess-1", "a.pdf", "routed"},
		{"sess-1", "b.txt", "unroutable"},
		{"sess-1", "c.png", "routed"},
		{"sess-2", "d.pdf", "routed"},
	}
	for i, s := range seed {
		require.NoError(t, repo.Create(ctx, &entity.Dispatch{
			SessionId:    s.session,
			OriginalName: s.name,
			Outcome:      s.outcome,
			CreatedAt:    fixedNow.Add(time.Duration(i) * time.Minute),
		}))
	}
	ws := assistant.NewWorkspace("sess-1", (&collaboratortest.Factories{}).Set(), fixedNow)

	t.Run("outcome filter and total", func(t *testing.T) {
		rows, total, err := svc.ListDispatches(ctx, ws, &dto.ListDispatchesRequest{Outcome: "routed", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, rows, 1)
		assert.Equal(t, "c.png", rows[0].OriginalName)
	})

	t.Run("get own dispatch", func(t *testing.T) {
		rows, _, err := svc.ListDispatches(ctx, ws, &dto.ListDispatchesRequest{})
		require.NoError(t, err)
		require.Len(t, rows, 3)

		got, err := svc.GetDispatch(ctx, ws, rows[0].Id)
		require.NoError(t, err)
		assert.Equal(t, rows[0].OriginalName, got.OriginalName)
	})

	t.Run("another session's dispatch is not found", func(t *testing.T) {
		other := assistant.NewWorkspace("sess-2", (&collaboratortest.Factories{}).Set(), fixedNow)
		rows, _, err := svc.ListDispatches(ctx, other, &dto.ListDispatchesRequest{})
		require.NoError(t, err)
		require.Len(t, rows, 1)

		_, err = svc.GetDispatch(ctx, ws, rows[0].Id)
		assert.ErrorIs(t, err, service.ErrDispatchNotFound)
	})
}

func TestSessionService_Show(t *testing.T) {
	svc := service.NewSessionService(nil, logger.NewNopLogger())
	ws := assistant.NewWorkspace("s", (&collaboratortest.Factories{}).Set(), fixedNow)
	ws.Session.LastUpload = &store.Artifact{OriginalName: "a.png", Extension: ".png", ScratchPath: "temp/a.png"}

	resp := svc.Show(context.Background(), ws)

	assert.Equal(t, "s", resp.SessionId)
	assert.False(t, resp.HasCredential)
	require.NotNil(t, resp.LastUpload)
	assert.Equal(t, "a.png", resp.LastUpload.OriginalName)
}
