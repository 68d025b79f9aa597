package types

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	requestValidator     *validator.Validate
	requestValidatorOnce sync.Once
)

func validate(v any) error {
	requestValidatorOnce.Do(func() {
		requestValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return requestValidator.Struct(v)
}

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

// TokenResponse carries an operator bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RunPipelineRequest is the body of POST /pipeline/run.
type RunPipelineRequest struct {
	NumPostings   int  `json:"num_postings" validate:"required,min=1,max=100"`
	ClearExisting bool `json:"clear_existing"`
}

// ClearJobsResponse reports how many rows DELETE /jobs removed.
type ClearJobsResponse struct {
	Deleted int64 `json:"deleted"`
}

// Validate checks the TokenRequest fields.
func (r *TokenRequest) Validate() error {
	return validate(r)
}

// Validate checks the RunPipelineRequest fields.
func (r *RunPipelineRequest) Validate() error {
	return validate(r)
}
