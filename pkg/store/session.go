package store

import "time"

// ChatMessage is one role-tagged turn of a document Q&A transcript
type ChatMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Artifact describes the last file written to scratch storage for a session
type Artifact struct {
	OriginalName string `json:"original_name"`
	Extension    string `json:"extension"`
	ScratchPath  string `json:"scratch_path"`
}

// Session represents the per-browser-session state kept in memory
type Session struct {
	ID string `json:"id"`

	// Transcript of the active document Q&A conversation
	Transcript []ChatMessage `json:"transcript"`

	// Scratch path of the PDF the transcript belongs to ("" when none)
	CurrentDocumentPath string `json:"current_document_path"`

	// User-supplied API key for the document Q&A backend. Never serialized.
	Credential string `json:"-"`

	LastUpload *Artifact `json:"last_upload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NewSession returns an initialised session with an empty transcript
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Transcript: []ChatMessage{},
		CreatedAt:  now,
	}
}

// HasCredential reports whether a credential has been captured
func (s *Session) HasCredential() bool {
	return s.Credential != ""
}

// ResetTranscript drops every stored turn
func (s *Session) ResetTranscript() {
	s.Transcript = []ChatMessage{}
}

func (s *Session) AppendTurn(role, content string) {
	s.Transcript = append(s.Transcript, ChatMessage{Role: role, Content: content})
}

// TranscriptCopy returns a snapshot safe to hand to callers outside the session lock
func (s *Session) TranscriptCopy() []ChatMessage {
	out := make([]ChatMessage, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}
