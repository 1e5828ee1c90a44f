// Package appcontext defines what commands need from the application:
// the catalog client, the logger and the output settings.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/fwmap"
)

// Interface is implemented by cmd/fwmap/app.App. Commands accept it rather
// than the concrete type so they can be tested with Mock.
type Interface interface {
	// Client returns the catalog client, creating it on first use.
	Client() (fwmap.Client, error)

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format, or "" to detect.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string
}
