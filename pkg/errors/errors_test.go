package errors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/fwmap/pkg/errors"
)

func TestExtractionMiss(t *testing.T) {
	err := pkgerrors.NewExtractionMiss("model", "readme.txt")
	assert.Equal(t, `no model found in "readme.txt"`, err.Error())
	assert.True(t, pkgerrors.IsExtractionMiss(err))
	assert.True(t, pkgerrors.IsExtractionMiss(fmt.Errorf("candidate: %w", err)))
	assert.False(t, pkgerrors.IsValidationError(err))
}

func TestEvidenceError(t *testing.T) {
	err := &pkgerrors.EvidenceError{Key: "DS-2CD_UNKNOWN_5.7.0", Reason: "placeholder URL"}
	assert.True(t, errors.Is(err, pkgerrors.ErrNoEvidence))
	assert.Contains(t, err.Error(), "DS-2CD_UNKNOWN_5.7.0")
}

func TestCollaboratorError(t *testing.T) {
	base := errors.New("connection refused")
	err := pkgerrors.WrapCollaborator("releases", "list", base)

	assert.True(t, pkgerrors.IsCollaboratorUnavailable(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "releases unavailable during list: connection refused", err.Error())
	assert.Nil(t, pkgerrors.WrapCollaborator("releases", "list", nil))
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
		want   bool
	}{
		{"rate limited", http.StatusTooManyRequests, pkgerrors.ErrRateLimited, true},
		{"server error", http.StatusBadGateway, pkgerrors.ErrCollaboratorUnavailable, true},
		{"not found", http.StatusNotFound, pkgerrors.ErrNotFound, true},
		{"bad request", http.StatusBadRequest, pkgerrors.ErrCollaboratorUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &pkgerrors.APIError{Host: "github", StatusCode: tt.status, Message: "x"}
			assert.Equal(t, tt.want, errors.Is(err, tt.target))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Run("io", func(t *testing.T) {
		err := pkgerrors.WrapIO("read", "devices.json", fs.ErrPermission)
		var ioErr *pkgerrors.IOError
		assert.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "devices.json", ioErr.Path)
		assert.ErrorIs(t, err, fs.ErrPermission)
	})

	t.Run("parse", func(t *testing.T) {
		err := pkgerrors.WrapParse("json", "devices.json", errors.New("unexpected EOF"))
		assert.Equal(t, "parse error in json file devices.json: unexpected EOF", err.Error())
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
		assert.Nil(t, pkgerrors.WrapParse("json", "x", nil))
	})
}

func TestNotFoundAndValidation(t *testing.T) {
	assert.True(t, pkgerrors.IsNotFound(pkgerrors.NewNotFoundError("firmware", "k")))
	assert.True(t, pkgerrors.IsValidationError(pkgerrors.NewValidationError("model", "", "required")))
	assert.Equal(t, "validation failed for field model: required",
		pkgerrors.NewValidationError("model", "", "required").Error())
}
