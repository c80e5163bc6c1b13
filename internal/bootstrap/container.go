package bootstrap

import (
	"errors"

	"multimodal-assistant-be/internal/config"
	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/controller"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/internal/repository/contract"
	"multimodal-assistant-be/internal/repository/implementation"
	"multimodal-assistant-be/internal/repository/memory"
	"multimodal-assistant-be/internal/service"
	ws "multimodal-assistant-be/internal/websocket"
	"multimodal-assistant-be/pkg/assistant"
	"multimodal-assistant-be/pkg/assistant/session"
	"multimodal-assistant-be/pkg/collaborator"

	pktNats "multimodal-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Session state
	SessionRepository *memory.SessionRepository
	SessionManager    *session.Manager

	// Controllers
	SessionController   controller.ISessionController
	AssistantController controller.IAssistantController
	EventController     controller.IEventController

	Hub *ws.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func() error
}

// NewContainer wires every dependency. db may be nil, in which case the
// dispatch audit trail is only written to the dispatch log.
func NewContainer(cfg *config.Config, db *gorm.DB, collaborators collaborator.Set, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, pubSub.Close)

	// Live dispatch feed for browser tabs
	c.Hub = ws.NewHub(sysLogger)
	c.closers = append(c.closers, c.Hub.Close)
	forwarders := []service.IEventPublisher{c.Hub}

	// NATS (optional)
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			forwarders = append(forwarders, natsPub)
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}
	}

	var dispatchRepo contract.DispatchRepository
	if db != nil {
		dispatchRepo = implementation.NewDispatchRepository(db)
	}

	// Sessions
	c.SessionRepository = memory.NewSessionRepository(cfg.Session.TTL)
	c.SessionManager = session.NewManager(c.SessionRepository, collaborators)

	// Services
	scratch := assistant.NewScratchStore(cfg.App.ScratchDir)
	publisherService := service.NewPublisherService(constant.TopicDispatched, pubSub)
	dispatchLogger := logger.NewIsolatedLogger(cfg.App.DispatchLogPath)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		constant.TopicDispatched,
		dispatchRepo,
		dispatchLogger,
		forwarders...,
	)

	assistantService := service.NewAssistantService(scratch, publisherService, sysLogger)
	sessionService := service.NewSessionService(dispatchRepo, sysLogger)

	c.AssistantController = controller.NewAssistantController(assistantService)
	c.SessionController = controller.NewSessionController(sessionService)
	c.EventController = controller.NewEventController(c.Hub)

	return c
}

// AddCloser registers a resource released by Close
func (c *Container) AddCloser(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close releases the event bus and external connections in reverse order
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}
