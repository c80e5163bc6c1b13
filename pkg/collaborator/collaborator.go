package collaborator

import "context"

// Transcriber turns an audio or video file into text
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

// ChatResult is the answer of one document Q&A turn
type ChatResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// DocumentQA answers questions about a single PDF. Conversation memory is
// kept per session id by the implementation.
type DocumentQA interface {
	Chat(ctx context.Context, question string, sessionID string) (*ChatResult, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// Captioner describes the content of an image file
type Captioner interface {
	GenerateDescription(ctx context.Context, imagePath string) (string, error)
}

// Factories build a collaborator on first use. The context outlives the
// request that triggered construction.
type (
	TranscriberFactory func(ctx context.Context) (Transcriber, error)
	DocumentQAFactory  func(ctx context.Context, pdfPath string, credential string) (DocumentQA, error)
	CaptionerFactory   func(ctx context.Context) (Captioner, error)
)

// Set groups the three factories the assistant dispatches to
type Set struct {
	Transcriber TranscriberFactory
	DocumentQA  DocumentQAFactory
	Captioner   CaptionerFactory
}
