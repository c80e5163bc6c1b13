// Package collaboratortest provides in-memory collaborators for tests.
package collaboratortest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"multimodal-assistant-be/pkg/collaborator"
)

// DocumentQA answers every question with "answer to <question>" and records
// the calls it receives.
type DocumentQA struct {
	mu        sync.Mutex
	Path      string
	Questions []string
	Cleared   []string
	ChatErr   error
	ClearErr  error
	Closed    bool
}

func (f *DocumentQA) Chat(_ context.Context, question, sessionID string) (*collaborator.ChatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Questions = append(f.Questions, question)
	if f.ChatErr != nil {
		return nil, f.ChatErr
	}
	return &collaborator.ChatResult{Answer: "answer to " + question, Sources: []string{"page 1"}}, nil
}

func (f *DocumentQA) ClearHistory(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cleared = append(f.Cleared, sessionID)
	return f.ClearErr
}

func (f *DocumentQA) Close() error {
	f.Closed = true
	return nil
}

type Transcriber struct {
	Calls []string
	Err   error
}

func (f *Transcriber) Transcribe(_ context.Context, filePath string) (string, error) {
	f.Calls = append(f.Calls, filePath)
	if f.Err != nil {
		return "", f.Err
	}
	return "transcript of " + filepath.Base(filePath), nil
}

type Captioner struct {
	Calls []string
	Err   error
}

func (f *Captioner) GenerateDescription(_ context.Context, imagePath string) (string, error) {
	f.Calls = append(f.Calls, imagePath)
	if f.Err != nil {
		return "", f.Err
	}
	return "description of " + filepath.Base(imagePath), nil
}

// Factories counts constructions and hands out the most recent fakes.
type Factories struct {
	mu sync.Mutex

	DocumentQABuilds  int
	TranscriberBuilds int
	CaptionerBuilds   int

	// Credentials seen by the document Q&A factory, in order
	Credentials []string

	DocumentQAErr  error
	TranscriberErr error
	CaptionerErr   error

	LastDocumentQA  *DocumentQA
	LastTranscriber *Transcriber
	LastCaptioner   *Captioner

	// Optional templates copied into each newly built fake
	ChatErr       error
	TranscribeErr error
	DescribeErr   error
}

var ErrBuild = errors.New("backend unavailable")

func (f *Factories) Set() collaborator.Set {
	return collaborator.Set{
		DocumentQA: func(_ context.Context, pdfPath, credential string) (collaborator.DocumentQA, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.DocumentQABuilds++
			f.Credentials = append(f.Credentials, credential)
			if f.DocumentQAErr != nil {
				return nil, fmt.Errorf("index %s: %w", filepath.Base(pdfPath), f.DocumentQAErr)
			}
			f.LastDocumentQA = &DocumentQA{Path: pdfPath, ChatErr: f.ChatErr}
			return f.LastDocumentQA, nil
		},
		Transcriber: func(context.Context) (collaborator.Transcriber, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.TranscriberBuilds++
			if f.TranscriberErr != nil {
				return nil, f.TranscriberErr
			}
			f.LastTranscriber = &Transcriber{Err: f.TranscribeErr}
			return f.LastTranscriber, nil
		},
		Captioner: func(context.Context) (collaborator.Captioner, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.CaptionerBuilds++
			if f.CaptionerErr != nil {
				return nil, f.CaptionerErr
			}
			f.LastCaptioner = &Captioner{Err: f.DescribeErr}
			return f.LastCaptioner, nil
		},
	}
}
