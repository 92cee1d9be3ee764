package core

import (
	"context"
	"errors"
)

var (
	// identity provider errors, mapped to user-facing messages by the API layer
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCredentialNotFound = errors.New("credential not found")
)

// IdentityProvider issues and verifies credentials and returns stable user
// identifiers. The workflow engine consumes it; it never manages profiles.
type IdentityProvider interface {
	CreateCredential(ctx context.Context, email, password string) (userID string, err error)
	VerifyCredential(ctx context.Context, email, password string) (userID string, err error)
	DestroyCredential(ctx context.Context, userID string) error
	EndSession(ctx context.Context, userID string) error
}
