package serverutils_test

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"multimodal-assistant-be/internal/pkg/serverutils"
	"multimodal-assistant-be/pkg/assistant"
	"multimodal-assistant-be/pkg/collaborator/collaboratortest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := serverutils.IssueSessionToken("secret", "sess-1", time.Hour, time.Now())
	require.NoError(t, err)

	id, err := serverutils.ParseSessionToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)

	_, err = serverutils.ParseSessionToken("other-secret", token)
	assert.ErrorIs(t, err, serverutils.ErrInvalidSessionToken)
}

func TestSessionToken_Expired(t *testing.T) {
	token, err := serverutils.IssueSessionToken("secret", "sess-1", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = serverutils.ParseSessionToken("secret", token)

	assert.ErrorIs(t, err, serverutils.ErrInvalidSessionToken)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %q", assistant.ErrUnsupportedFileType, ".exe"), fiber.StatusBadRequest},
		{assistant.ErrUnknownMode, fiber.StatusBadRequest},
		{assistant.ErrEmptyQuestion, fiber.StatusBadRequest},
		{assistant.ErrMissingCredential, fiber.StatusBadRequest},
		{assistant.ErrNoActiveDocument, fiber.StatusConflict},
		{fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big"), fiber.StatusRequestEntityTooLarge},
		{fmt.Errorf("disk full"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, msg := serverutils.StatusFor(tt.err)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}

	_, msg := serverutils.StatusFor(fmt.Errorf("db password leaked"))
	assert.Equal(t, "internal server error", msg)
}

type fakeResolver struct {
	created int
	byID    map[string]*assistant.Workspace
}

func (r *fakeResolver) Create() *assistant.Workspace {
	r.created++
	id := fmt.Sprintf("new-%d", r.created)
	return r.LoadOrCreate(id)
}

func (r *fakeResolver) LoadOrCreate(id string) *assistant.Workspace {
	if ws, ok := r.byID[id]; ok {
		return ws
	}
	ws := assistant.NewWorkspace(id, (&collaboratortest.Factories{}).Set(), time.Now())
	r.byID[id] = ws
	return ws
}

func TestSessionMiddleware(t *testing.T) {
	resolver := &fakeResolver{byID: map[string]*assistant.Workspace{}}
	app := fiber.New()
	app.Use(serverutils.SessionMiddleware("secret", time.Hour, resolver))
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString(serverutils.Workspace(ctx).Session.ID)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	token := resp.Header.Get(serverutils.SessionHeaderName)
	require.NotEmpty(t, token)
	assert.Equal(t, 1, resolver.created)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(serverutils.SessionHeaderName, token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(serverutils.SessionHeaderName))
	assert.Equal(t, 1, resolver.created)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(serverutils.SessionHeaderName, "garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(serverutils.SessionHeaderName))
	assert.Equal(t, 2, resolver.created)
}

func TestSessionMiddleware_SlidingExpiry(t *testing.T) {
	resolver := &fakeResolver{byID: map[string]*assistant.Workspace{}}
	app := fiber.New()
	app.Use(serverutils.SessionMiddleware("secret", 3*time.Second, resolver))
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString(serverutils.SessionID(ctx))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	token := resp.Header.Get(serverutils.SessionHeaderName)
	first, err := serverutils.ParseSessionToken("secret", token)
	require.NoError(t, err)

	// each request lands before the latest token expires; the first token
	// is expired by the last one
	for i := 0; i < 5; i++ {
		time.Sleep(time.Second)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(serverutils.SessionHeaderName, token)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, first, string(body))
		token = resp.Header.Get(serverutils.SessionHeaderName)
		require.NotEmpty(t, token)
	}
	assert.Equal(t, 1, resolver.created)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Name string `validate:"required,max=3"`
	}

	assert.NoError(t, serverutils.ValidateRequest(req{Name: "abc"}))

	err := serverutils.ValidateRequest(req{Name: "abcd"})
	var verr *serverutils.ValidationError
	require.ErrorAs(t, err, &verr)
	code, _ := serverutils.StatusFor(err)
	assert.Equal(t, fiber.StatusBadRequest, code)
}
