package serverutils

import (
	"time"

	"multimodal-assistant-be/pkg/assistant"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookieName  = "assistant_session"
	SessionHeaderName  = "X-Session-Token"
	sessionLocalsKey   = "workspace"
	sessionIDLocalsKey = "session_id"
)

// SessionResolver is satisfied by session.Manager
type SessionResolver interface {
	Create() *assistant.Workspace
	LoadOrCreate(sessionID string) *assistant.Workspace
}

// SessionMiddleware attaches the caller's workspace to the request. A missing
// or invalid token starts a new session. The token is reissued on every
// request so its expiry slides along with the idle TTL of the session store.
func SessionMiddleware(secret string, ttl time.Duration, sessions SessionResolver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ctx.Get(SessionHeaderName)
		if tokenStr == "" {
			tokenStr = ctx.Cookies(SessionCookieName)
		}

		var ws *assistant.Workspace
		if sessionID, err := ParseSessionToken(secret, tokenStr); err == nil {
			ws = sessions.LoadOrCreate(sessionID)
		} else {
			ws = sessions.Create()
		}

		now := time.Now()
		token, err := IssueSessionToken(secret, ws.Session.ID, ttl, now)
		if err != nil {
			return err
		}
		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookieName,
			Value:    token,
			Path:     "/",
			Expires:  now.Add(ttl),
			HTTPOnly: true,
			SameSite: "Lax",
		})
		ctx.Set(SessionHeaderName, token)

		ctx.Locals(sessionLocalsKey, ws)
		ctx.Locals(sessionIDLocalsKey, ws.Session.ID)
		return ctx.Next()
	}
}

// Workspace returns the workspace attached by SessionMiddleware
func Workspace(ctx *fiber.Ctx) *assistant.Workspace {
	ws, _ := ctx.Locals(sessionLocalsKey).(*assistant.Workspace)
	return ws
}

// SessionID returns the session id attached by SessionMiddleware
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(sessionIDLocalsKey).(string)
	return id
}
