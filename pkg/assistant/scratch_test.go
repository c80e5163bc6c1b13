package assistant_test

import (
	"os"
	"path/filepath"
	"testing"

	"multimodal-assistant-be/pkg/assistant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	s := assistant.NewScratchStore(dir)

	a, err := s.Save("../../etc/Report.PDF", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "Report.PDF", a.OriginalName)
	assert.Equal(t, ".pdf", a.Extension)
	assert.Equal(t, filepath.Join(dir, "Report.PDF"), a.ScratchPath)
	data, err := os.ReadFile(a.ScratchPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestScratchStore_SameNameOverwrites(t *testing.T) {
	s := assistant.NewScratchStore(t.TempDir())

	first, err := s.Save("clip.mp3", []byte("one"))
	require.NoError(t, err)
	second, err := s.Save("clip.mp3", []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, first.ScratchPath, second.ScratchPath)
	data, _ := os.ReadFile(second.ScratchPath)
	assert.Equal(t, "two", string(data))
}

func TestScratchStore_EmptyName(t *testing.T) {
	s := assistant.NewScratchStore(t.TempDir())

	_, err := s.Save("  ", nil)

	assert.ErrorIs(t, err, assistant.ErrEmptyFileName)
}
