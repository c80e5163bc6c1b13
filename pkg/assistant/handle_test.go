package assistant_test

import (
	"errors"
	"testing"

	"multimodal-assistant-be/pkg/assistant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closable struct{ closed int }

func (c *closable) Close() error {
	c.closed++
	return nil
}

func TestHandle_BuildsOnce(t *testing.T) {
	var h assistant.Handle[*closable]
	builds := 0
	build := func() (*closable, error) {
		builds++
		return &closable{}, nil
	}

	first, err := h.GetOrCreate(build)
	require.NoError(t, err)
	second, err := h.GetOrCreate(build)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestHandle_FailedBuildStaysUnset(t *testing.T) {
	var h assistant.Handle[*closable]

	_, err := h.GetOrCreate(func() (*closable, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	_, ok := h.Get()
	assert.False(t, ok)

	v, err := h.GetOrCreate(func() (*closable, error) { return &closable{}, nil })
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestHandle_ResetCloses(t *testing.T) {
	var h assistant.Handle[*closable]
	v, _ := h.GetOrCreate(func() (*closable, error) { return &closable{}, nil })

	require.NoError(t, h.Reset())
	require.NoError(t, h.Reset())

	assert.Equal(t, 1, v.closed)
	_, ok := h.Get()
	assert.False(t, ok)
}
