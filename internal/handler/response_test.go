package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/feedboard/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation maps to 400",
			err:        apperror.ValidationFailed(apperror.Violation{Field: "title", Reason: "too short"}),
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "unauthenticated maps to 401",
			err:        apperror.Unauthenticated("log in first"),
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthenticated",
		},
		{
			name:       "forbidden maps to 403",
			err:        apperror.Forbidden("not yours"),
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
		{
			name:       "not found maps to 404",
			err:        apperror.NotFound("post", "abc"),
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "conflict maps to 409",
			err:        apperror.Conflict("already exists"),
			wantStatus: http.StatusConflict,
			wantError:  "conflict",
		},
		{
			name:       "internal maps to 500",
			err:        apperror.Internal("could not save", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestWriteError_UnknownErrorNeverLeaksDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("dsn=postgres://secret@host"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "An internal error occurred", body.Message)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestWriteError_ValidationIncludesViolations(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperror.ValidationFailed(
		apperror.Violation{Field: "title", Reason: "too short"},
		apperror.Violation{Field: "content", Reason: "too short"},
	))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Violations, 2)
	assert.Equal(t, "title", body.Violations[0].Field)
	assert.Equal(t, "content", body.Violations[1].Field)
}
