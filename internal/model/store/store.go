// Package store implements model.Registry backends. Stores are pure I/O: they
// keep artifacts and version metadata and never inspect artifact contents.
package store

import (
	"log/slog"
	"slices"

	"graphtrust/internal/model"
)

// DefaultRetention is the number of versions kept per registry.
const DefaultRetention = 5

// Option configures any backend.
type Option func(*options)

type options struct {
	retention int
	logger    *slog.Logger
}

// WithRetention sets how many versions are kept. Values below 1 are ignored.
func WithRetention(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.retention = n
		}
	}
}

// WithLogger sets the logger used to report recoverable storage problems.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{retention: DefaultRetention, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// sortNewestFirst orders versions by creation time, newest first, with id as
// a stable tie breaker.
func sortNewestFirst(versions []model.Version) {
	slices.SortFunc(versions, func(a, b model.Version) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(b.ID[:], a.ID[:])
	})
}

// prune returns the versions beyond retention, never including the active one.
func prune(versions []model.Version, retention int) []model.Version {
	sortNewestFirst(versions)
	var dropped []model.Version
	kept := 0
	for _, v := range versions {
		if v.Active || kept < retention {
			kept++
			continue
		}
		dropped = append(dropped, v)
	}
	return dropped
}
