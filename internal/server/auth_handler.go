package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/job-harvester/internal/config"
	"github.com/jonathan/job-harvester/internal/types"
)

// AuthHandler exchanges operator credentials for a bearer token.
type AuthHandler struct {
	operator   *config.OperatorConfig
	passwords  *config.PasswordConfig
	jwtService *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(operator *config.OperatorConfig, passwords *config.PasswordConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{operator: operator, passwords: passwords, jwtService: jwtService}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if !h.operator.Authenticate(h.passwords, req.Username, req.Password) {
		log.Printf("[auth] Rejected token request for %q from %s", req.Username, clientID(r))
		err := &ErrInvalidCredentials{}
		writeJSONError(w, HTTPStatus(err), err.Error())
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(req.Username)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(types.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
