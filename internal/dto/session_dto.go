package dto

import (
	"time"

	"github.com/google/uuid"

	"multimodal-assistant-be/pkg/store"
)

type SessionResponse struct {
	SessionId       string              `json:"session_id"`
	HasCredential   bool                `json:"has_credential"`
	CurrentDocument string              `json:"current_document,omitempty"`
	LastUpload      *ArtifactResponse   `json:"last_upload,omitempty"`
	Transcript      []store.ChatMessage `json:"transcript"`
	CreatedAt       time.Time           `json:"created_at"`
}

type SetCredentialRequest struct {
	Credential string `json:"credential" validate:"required,max=512"`
}

type ClearHistoryResponse struct {
	SessionId  string              `json:"session_id"`
	Transcript []store.ChatMessage `json:"transcript"`
	Notices    []Notice            `json:"notices"`
}

type ListDispatchesRequest struct {
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset  int    `query:"offset" validate:"omitempty,min=0"`
	Outcome string `query:"outcome" validate:"omitempty,oneof=routed incompatible unroutable"`
}

type DispatchResponse struct {
	Id            uuid.UUID `json:"id"`
	OriginalName  string    `json:"original_name"`
	Extension     string    `json:"extension"`
	RequestedMode string    `json:"requested_mode"`
	ResolvedMode  string    `json:"resolved_mode"`
	Outcome       string    `json:"outcome"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
