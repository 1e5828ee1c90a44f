package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/fwmap"
	"github.com/agentstation/fwmap/pkg/logging"
)

// Mock is an Interface whose methods can be replaced per test. A nil
// function field returns a zero value.
type Mock struct {
	ClientFunc       func() (fwmap.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Client returns the client from ClientFunc.
func (m *Mock) Client() (fwmap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Logger returns LoggerFunc's logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat returns OutputFormatFunc's format or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns VersionFunc's version or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns "test".
func (m *Mock) Commit() string { return "test" }

// Date returns "test".
func (m *Mock) Date() string { return "test" }

var _ Interface = (*Mock)(nil)
