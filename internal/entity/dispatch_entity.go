package entity

import (
	"time"

	"github.com/google/uuid"
)

// Dispatch records how one upload was routed and what came back
type Dispatch struct {
	Id            uuid.UUID
	SessionId     string
	OriginalName  string
	Extension     string
	RequestedMode string
	ResolvedMode  string
	Outcome       string
	Status        string
	ErrorMessage  string
	DurationMs    int64
	Details       map[string]interface{}
	CreatedAt     time.Time
}
