package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Version describes one trained model stored in a Registry.
type Version struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	SampleCount int       `json:"sample_count"`
	Seed        uint64    `json:"seed"`
	Trees       int       `json:"trees"`
	Checksum    string    `json:"checksum"`
	Active      bool      `json:"active"`
}

// Registry stores versioned model artifacts. Exactly one version is active
// once anything has been saved.
type Registry interface {
	// Save stores the artifact and makes it the active version.
	Save(ctx context.Context, v Version, artifact []byte) error

	// Active returns the active version, or sentinel.ErrNotFound before the
	// first Save.
	Active(ctx context.Context) (*Version, error)

	// Load returns the artifact bytes for a version.
	Load(ctx context.Context, id uuid.UUID) ([]byte, error)

	// List returns retained versions, newest first.
	List(ctx context.Context) ([]Version, error)

	// Activate makes a retained version active again (rollback).
	Activate(ctx context.Context, id uuid.UUID) error
}
