package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"multimodal-assistant-be/pkg/collaborator"
	"multimodal-assistant-be/pkg/store"
)

// Collaborator names used in construction errors and notices
const (
	NameTranscriber = "Audio Transcriber"
	NameDocumentQA  = "PDF Chatbot"
	NameCaptioner   = "Image Description Generator"
)

// Workspace is the explicit per-session context: the session state plus the
// three collaborator handles it owns. Callers serialize access with Lock.
type Workspace struct {
	mu sync.Mutex

	Session *store.Session

	factories collaborator.Set

	transcriber Handle[collaborator.Transcriber]
	documentQA  Handle[collaborator.DocumentQA]
	captioner   Handle[collaborator.Captioner]

	// credential the current documentQA handle was built with
	qaCredential string
}

// NewWorkspace initialises the state of a new session
func NewWorkspace(sessionID string, factories collaborator.Set, now time.Time) *Workspace {
	return &Workspace{
		Session:   store.NewSession(sessionID, now),
		factories: factories,
	}
}

func (w *Workspace) Lock()   { w.mu.Lock() }
func (w *Workspace) Unlock() { w.mu.Unlock() }

// SetCredential stores the credential used by the document Q&A flow.
// Blank input leaves the stored credential untouched.
func (w *Workspace) SetCredential(credential string) bool {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return false
	}
	w.Session.Credential = credential
	return true
}

// HasDocumentQA reports whether a document Q&A handle is currently built
func (w *Workspace) HasDocumentQA() bool {
	_, ok := w.documentQA.Get()
	return ok
}

func (w *Workspace) HasTranscriber() bool {
	_, ok := w.transcriber.Get()
	return ok
}

func (w *Workspace) HasCaptioner() bool {
	_, ok := w.captioner.Get()
	return ok
}

// OpenDocument binds the document Q&A flow to pdfPath. A different path
// resets the transcript before the new handle is built.
func (w *Workspace) OpenDocument(ctx context.Context, pdfPath string) (collaborator.DocumentQA, error) {
	if !w.Session.HasCredential() {
		return nil, ErrMissingCredential
	}

	if w.Session.CurrentDocumentPath != pdfPath {
		w.Session.ResetTranscript()
		w.Session.CurrentDocumentPath = pdfPath
		_ = w.documentQA.Reset()
	} else if w.HasDocumentQA() && w.qaCredential != w.Session.Credential {
		_ = w.documentQA.Reset()
	}

	credential := w.Session.Credential
	qa, err := w.documentQA.GetOrCreate(func() (collaborator.DocumentQA, error) {
		if w.factories.DocumentQA == nil {
			return nil, errors.New("no document Q&A backend configured")
		}
		return w.factories.DocumentQA(context.WithoutCancel(ctx), pdfPath, credential)
	})
	if err != nil {
		return nil, &ConstructionError{Collaborator: NameDocumentQA, Err: err}
	}
	w.qaCredential = credential
	return qa, nil
}

// ReloadDocument rebuilds the document Q&A handle from the file currently at
// pdfPath. An upload may overwrite the file under the same path, so the old
// handle is never reused; the transcript survives when the path is unchanged.
func (w *Workspace) ReloadDocument(ctx context.Context, pdfPath string) (collaborator.DocumentQA, error) {
	if !w.Session.HasCredential() {
		return nil, ErrMissingCredential
	}
	_ = w.documentQA.Reset()
	return w.OpenDocument(ctx, pdfPath)
}

// Ask runs one Q&A turn against the current document. The transcript grows
// by a user and an assistant turn; a failed call rolls the user turn back.
func (w *Workspace) Ask(ctx context.Context, question string) (*collaborator.ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if w.Session.CurrentDocumentPath == "" {
		return nil, ErrNoActiveDocument
	}

	qa, err := w.OpenDocument(ctx, w.Session.CurrentDocumentPath)
	if err != nil {
		return nil, err
	}

	w.Session.AppendTurn(store.RoleUser, question)
	res, err := qa.Chat(ctx, question, w.Session.ID)
	if err != nil {
		w.Session.Transcript = w.Session.Transcript[:len(w.Session.Transcript)-1]
		return nil, err
	}
	if res == nil {
		res = &collaborator.ChatResult{}
	}
	w.Session.AppendTurn(store.RoleAssistant, res.Answer)
	return res, nil
}

// ClearHistory asks the Q&A collaborator (if any) to forget this session and
// always empties the local transcript.
func (w *Workspace) ClearHistory(ctx context.Context) error {
	var err error
	if qa, ok := w.documentQA.Get(); ok {
		err = qa.ClearHistory(ctx, w.Session.ID)
	}
	w.Session.ResetTranscript()
	return err
}

// Transcribe runs the transcriber over filePath. The transcript is not touched.
func (w *Workspace) Transcribe(ctx context.Context, filePath string) (string, error) {
	t, err := w.transcriber.GetOrCreate(func() (collaborator.Transcriber, error) {
		if w.factories.Transcriber == nil {
			return nil, errors.New("no transcription backend configured")
		}
		return w.factories.Transcriber(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", &ConstructionError{Collaborator: NameTranscriber, Err: err}
	}
	return t.Transcribe(ctx, filePath)
}

// Describe runs the captioner over imagePath. The transcript is not touched.
func (w *Workspace) Describe(ctx context.Context, imagePath string) (string, error) {
	c, err := w.captioner.GetOrCreate(func() (collaborator.Captioner, error) {
		if w.factories.Captioner == nil {
			return nil, errors.New("no captioning backend configured")
		}
		return w.factories.Captioner(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", &ConstructionError{Collaborator: NameCaptioner, Err: err}
	}
	return c.GenerateDescription(ctx, imagePath)
}

// Close releases every built handle
func (w *Workspace) Close() error {
	return errors.Join(
		w.transcriber.Reset(),
		w.documentQA.Reset(),
		w.captioner.Reset(),
	)
}
