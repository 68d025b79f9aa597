package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jonathan/job-harvester/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Token(t *testing.T) {
	s, h := newTestServer(t, &mockStore{}, nil)

	w := do(t, h, http.MethodPost, "/auth/token", "", types.TokenRequest{Username: "ops", Password: "operator-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var resp types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.ExpiresAt.IsZero())

	claims, err := s.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator())

	w = do(t, h, http.MethodDelete, "/jobs", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_TokenRejected(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantBody   string
	}{
		{"wrong password", types.TokenRequest{Username: "ops", Password: "guess"}, http.StatusUnauthorized, "invalid username or password"},
		{"wrong user", types.TokenRequest{Username: "root", Password: "operator-pass"}, http.StatusUnauthorized, "invalid username or password"},
		{"missing password", types.TokenRequest{Username: "ops"}, http.StatusBadRequest, "Password - required"},
		{"not json", "x", http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, &mockStore{}, nil)
			w := do(t, h, http.MethodPost, "/auth/token", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
