package config

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewPasswordConfig creates a new password configuration from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"), // empty if not set
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	password := pw
	if c.Pepper != "" {
		password = pw + c.Pepper
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	password := pw
	if c.Pepper != "" {
		password = pw + c.Pepper
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	return err == nil
}


// OperatorConfig holds the single operator account allowed to call the
// mutating HTTP endpoints.
type OperatorConfig struct {
	Username     string
	PasswordHash string
}

// NewOperatorConfig reads OPERATOR_USERNAME and OPERATOR_PASSWORD_HASH (a
// bcrypt hash produced by `job_agent hash-password`).
func NewOperatorConfig() (*OperatorConfig, error) {
	c := &OperatorConfig{
		Username:     os.Getenv("OPERATOR_USERNAME"),
		PasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
	}
	if c.Username == "" || c.PasswordHash == "" {
		return nil, fmt.Errorf("OPERATOR_USERNAME and OPERATOR_PASSWORD_HASH are required")
	}
	if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
		return nil, fmt.Errorf("OPERATOR_PASSWORD_HASH is not a bcrypt hash: %w", err)
	}
	return c, nil
}

// Authenticate checks username and password against the operator account.
func (c *OperatorConfig) Authenticate(pw *PasswordConfig, username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) != 1 {
		// Keep timing similar for unknown usernames.
		pw.VerifyPassword(password, c.PasswordHash)
		return false
	}
	return pw.VerifyPassword(password, c.PasswordHash)
}
