package assistant

import (
	"io"
	"sync"
)

// Handle holds a lazily constructed collaborator. The value is built at most
// once until Reset is called; a failed build leaves it unset.
type Handle[T any] struct {
	mu    sync.Mutex
	value T
	built bool
}

// GetOrCreate returns the held value, building it with build on first use.
func (h *Handle[T]) GetOrCreate(build func() (T, error)) (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.built {
		return h.value, nil
	}
	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	h.value = v
	h.built = true
	return v, nil
}

// Get returns the held value without building it
func (h *Handle[T]) Get() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.built
}

// Reset drops the held value, closing it when it implements io.Closer.
func (h *Handle[T]) Reset() error {
	h.mu.Lock()
	v, built := h.value, h.built
	var zero T
	h.value = zero
	h.built = false
	h.mu.Unlock()

	if !built {
		return nil
	}
	if c, ok := any(v).(io.Closer); ok {
		return c.Close()
	}
	return nil
}
