package dto

import (
	"time"

	"multimodal-assistant-be/pkg/store"
)

const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a user-facing status message attached to a response
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type UploadRequest struct {
	FileName string `validate:"required,max=255"`
	Content  []byte
	Mode     string `validate:"omitempty,max=64"`
	Question string `validate:"omitempty,max=4000"`
}

type ArtifactResponse struct {
	OriginalName string `json:"original_name"`
	Extension    string `json:"extension"`
	ScratchPath  string `json:"scratch_path"`
}

// OutputResponse is the one-shot result of transcription or image description
type OutputResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type UploadResponse struct {
	SessionId     string              `json:"session_id"`
	Artifact      ArtifactResponse    `json:"artifact"`
	RequestedMode string              `json:"requested_mode"`
	ResolvedMode  string              `json:"resolved_mode,omitempty"`
	Outcome       string              `json:"outcome"`
	Output        *OutputResponse     `json:"output,omitempty"`
	Answer        *ChatTurnResponse   `json:"answer,omitempty"`
	Transcript    []store.ChatMessage `json:"transcript"`
	Notices       []Notice            `json:"notices"`
}

type SendChatRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

type ChatTurnResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

type SendChatResponse struct {
	SessionId  string              `json:"session_id"`
	Document   string              `json:"document"`
	Turn       *ChatTurnResponse   `json:"turn,omitempty"`
	Transcript []store.ChatMessage `json:"transcript"`
	Notices    []Notice            `json:"notices"`
}

type ModeResponse struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	Extensions []string `json:"extensions,omitempty"`
}

type ModesResponse struct {
	Modes            []ModeResponse    `json:"modes"`
	UploadExtensions []string          `json:"upload_extensions"`
	AutoDetect       map[string]string `json:"auto_detect"`
}

// DispatchEventMessage is published on the event bus after every upload
type DispatchEventMessage struct {
	SessionId     string    `json:"session_id"`
	OriginalName  string    `json:"original_name"`
	Extension     string    `json:"extension"`
	RequestedMode string    `json:"requested_mode"`
	ResolvedMode  string    `json:"resolved_mode"`
	Outcome       string    `json:"outcome"`
	Status        string    `json:"status"` // "ok" | "warning" | "error" | "skipped"
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	OutputChars   int       `json:"output_chars"`
	OccurredAt    time.Time `json:"occurred_at"`
}
