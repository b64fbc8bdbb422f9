package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "not found",
			err:        service.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   domain.ErrorTypeNotFound,
		},
		{
			name:       "forbidden",
			err:        service.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantType:   domain.ErrorTypeForbidden,
		},
		{
			name:       "already a member",
			err:        service.ErrAlreadyMember,
			wantStatus: http.StatusBadRequest,
			wantType:   domain.ErrorTypeBadRequest,
			wantDetail: "already a member",
		},
		{
			name:       "lead protected",
			err:        service.ErrLeadProtected,
			wantStatus: http.StatusConflict,
			wantType:   domain.ErrorTypeConflict,
		},
		{
			name:       "conflict carries its message",
			err:        fmt.Errorf("%w: a section with that id exists", service.ErrConflict),
			wantStatus: http.StatusBadRequest,
			wantType:   domain.ErrorTypeBadRequest,
			wantDetail: "a section with that id exists",
		},
		{
			name:       "upstream failure",
			err:        fmt.Errorf("%w: provider timeout", service.ErrUpstream),
			wantStatus: http.StatusBadGateway,
			wantType:   domain.ErrorTypeUpstream,
		},
		{
			name:       "wrapped sentinel still maps",
			err:        fmt.Errorf("failed to get proposal: %w", service.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   domain.ErrorTypeNotFound,
		},
		{
			name:       "unrecognized error is internal",
			err:        errors.New("unexpected database failure"),
			wantStatus: http.StatusInternalServerError,
			wantType:   domain.ErrorTypeInternal,
			wantDetail: "Failed to save the record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondServiceError(rr, zap.NewNop(), tt.err, "save the record")

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var apiErr domain.APIError
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			if tt.wantDetail != "" {
				assert.Contains(t, apiErr.Detail, tt.wantDetail)
			}
		})
	}
}
