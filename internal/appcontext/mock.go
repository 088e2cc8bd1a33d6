package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/carryon"
	"github.com/agentstation/carryon/pkg/repository"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	store := memory.New()
//	client, _ := carryon.New(store)
//	mock := &appcontext.Mock{
//	    ClientFunc: func(context.Context) (carryon.Client, error) { return client, nil },
//	    StoreFunc:  func(context.Context) (repository.Store, error) { return store, nil },
//	    Format:     "json",
//	}
//	cmd := catalog.NewSeedCommand(mock)
type Mock struct {
	ClientFunc  func(ctx context.Context) (carryon.Client, error)
	StoreFunc   func(ctx context.Context) (repository.Store, error)
	LoggerFunc  func() *zerolog.Logger
	Format      string
	VersionFunc func() string
	CommitFunc  func() string
	DateFunc    func() string
	BuiltByFunc func() string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client(ctx context.Context) (carryon.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx)
	}
	return nil, nil
}

// Store returns a store using the mock function or nil.
func (m *Mock) Store(ctx context.Context) (repository.Store, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the configured format, or json.
func (m *Mock) OutputFormat() string {
	if m.Format != "" {
		return m.Format
	}
	return "json"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
