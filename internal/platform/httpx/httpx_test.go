package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: token expired", shared.ErrUnauthenticated), http.StatusUnauthorized},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{shared.ErrInactiveAccount, http.StatusUnauthorized},
		{shared.ErrInvalidPassword, http.StatusUnauthorized},
		{fmt.Errorf("%w: missing permission delete_post", shared.ErrForbidden), http.StatusForbidden},
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrDuplicateEmail, http.StatusConflict},
		{shared.ErrInvalidCredentialFormat, http.StatusBadRequest},
		{shared.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", shared.ErrConfiguration), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status, StatusOf(tc.err))

			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password authentication")
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &target))
	assert.Equal(t, "a@b.c", target.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	err := DecodeJSON(httptest.NewRecorder(), req, &target)
	assert.ErrorIs(t, err, shared.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	err = DecodeJSON(httptest.NewRecorder(), req, &target)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
