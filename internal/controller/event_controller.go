package controller

import (
	"multimodal-assistant-be/internal/pkg/serverutils"
	ws "multimodal-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IEventController interface {
	RegisterRoutes(r fiber.Router, sessionMiddleware fiber.Handler)
}

type eventController struct {
	hub *ws.Hub
}

func NewEventController(hub *ws.Hub) IEventController {
	return &eventController{hub: hub}
}

// RegisterRoutes exposes GET /events/v1/ws, a websocket streaming this
// session's dispatch events. Browsers authenticate with the session cookie.
func (c *eventController) RegisterRoutes(r fiber.Router, sessionMiddleware fiber.Handler) {
	h := r.Group("/events/v1")
	h.Get("ws", sessionMiddleware, c.upgrade, websocket.New(func(conn *websocket.Conn) {
		sessionID, _ := conn.Locals("session_id").(string)
		c.hub.Serve(conn, sessionID)
	}))
}

func (c *eventController) upgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	ctx.Locals("session_id", serverutils.SessionID(ctx))
	return ctx.Next()
}
