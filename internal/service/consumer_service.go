package service

import (
	"context"
	"encoding/json"
	"time"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/internal/dto"
	"multimodal-assistant-be/internal/entity"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/internal/repository/contract"
	"multimodal-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// IEventPublisher forwards domain events to the external bus (NATS JetStream)
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	dispatchRepo contract.DispatchRepository
	forwarders   []IEventPublisher
	dispatchLog  logger.ILogger
}

// NewConsumerService wires the dispatch audit trail. dispatchRepo may be nil;
// every forwarder receives an UPLOAD_DISPATCHED event per message.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	dispatchRepo contract.DispatchRepository,
	dispatchLog logger.ILogger,
	forwarders ...IEventPublisher,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		dispatchRepo: dispatchRepo,
		forwarders:   forwarders,
		dispatchLog:  dispatchLog,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.DispatchEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.dispatchLog.Error("DISPATCH", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // invalid payloads are never retried
		return
	}

	cs.dispatchLog.Info("DISPATCH", "Upload dispatched", map[string]interface{}{
		"session_id":     payload.SessionId,
		"file":           payload.OriginalName,
		"requested_mode": payload.RequestedMode,
		"resolved_mode":  payload.ResolvedMode,
		"outcome":        payload.Outcome,
		"status":         payload.Status,
		"duration_ms":    payload.DurationMs,
	})

	if cs.dispatchRepo != nil {
		createdAt := payload.OccurredAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		record := entity.Dispatch{
			SessionId:     payload.SessionId,
			OriginalName:  payload.OriginalName,
			Extension:     payload.Extension,
			RequestedMode: payload.RequestedMode,
			ResolvedMode:  payload.ResolvedMode,
			Outcome:       payload.Outcome,
			Status:        payload.Status,
			ErrorMessage:  payload.ErrorMessage,
			DurationMs:    payload.DurationMs,
			Details: map[string]interface{}{
				"output_chars": payload.OutputChars,
				"message_id":   msg.UUID,
			},
			CreatedAt: createdAt,
		}
		if err := cs.dispatchRepo.Create(ctx, &record); err != nil {
			cs.dispatchLog.Error("DISPATCH", "Failed to store dispatch", map[string]interface{}{
				"session_id": payload.SessionId,
				"error":      err.Error(),
			})
			msg.Nack()
			return
		}
	}

	evt := events.BaseEvent{
		Type: constant.EventUploadDispatch,
		Data: map[string]interface{}{
			"session_id":    payload.SessionId,
			"file_name":     payload.OriginalName,
			"resolved_mode": payload.ResolvedMode,
			"outcome":       payload.Outcome,
			"status":        payload.Status,
			"error_message": payload.ErrorMessage,
		},
		OccurredAt: payload.OccurredAt,
	}
	// auxiliary, never blocks the ack
	for _, fwd := range cs.forwarders {
		if err := fwd.Publish(ctx, evt); err != nil {
			cs.dispatchLog.Warn("DISPATCH", "Failed to forward event", map[string]interface{}{
				"event": constant.EventUploadDispatch,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
