package backend

import (
	"context"

	"estoque/internal/core"
	"estoque/internal/statistics"
)

// TransactionWriter is implemented by the local backends, which own their
// data and accept new movements.
type TransactionWriter interface {
	InsertTransaction(ctx context.Context, req core.TransactionRequest) (core.Transaction, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the statistics source and optional extras
type BackendResult struct {
	Source statistics.Source
	// Writer is nil for the remote backend
	Writer  TransactionWriter
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Remote specific
	APIBaseURL string

	// SQLite specific
	SQLiteDBPath string

	// Local backends are seeded from this file, or demo data when it is missing
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	RemoteBackend BackendType = "remote"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case RemoteBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
