package assistant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"multimodal-assistant-be/pkg/store"
)

// ScratchStore writes uploads to a flat directory keyed by original file name.
// Same-name uploads overwrite each other, across sessions too; nothing is
// ever cleaned up by this type.
type ScratchStore struct {
	Dir string
}

func NewScratchStore(dir string) *ScratchStore {
	if dir == "" {
		dir = "temp"
	}
	return &ScratchStore{Dir: dir}
}

// Save persists content under the base name of originalName
func (s *ScratchStore) Save(originalName string, content []byte) (*store.Artifact, error) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(originalName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, ErrEmptyFileName
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write scratch file: %w", err)
	}

	return &store.Artifact{
		OriginalName: name,
		Extension:    ExtensionOf(name),
		ScratchPath:  path,
	}, nil
}
