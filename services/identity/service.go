// Package identitysvc implements the identity provider contract on top of
// the document store: bcrypt-hashed credentials keyed by email, with a
// reverse index by user id. Sessions are stateless (JWT issued by the API
// layer), so EndSession has nothing to revoke.
package identitysvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusconnect/backend/core"
)

const minPasswordLen = 8

type credential struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type service struct {
	store core.DocumentStore
}

var _ core.IdentityProvider = (*service)(nil)

func NewService(store core.DocumentStore) core.IdentityProvider {
	return &service{store: store}
}

func (svc *service) CreateCredential(ctx context.Context, email, password string) (string, error) {
	email = core.CleanString(email, true /* lower */)
	if len(password) < minPasswordLen {
		return "", core.ErrWeakPassword
	}

	var existing credential
	found, err := svc.store.Read(ctx, credByEmailPath(email), &existing)
	if err != nil {
		return "", errors.Wrap(err, "checking credential")
	}
	if found {
		return "", core.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}

	cred := credential{
		UserID:       uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := svc.store.Write(ctx, credByEmailPath(email), cred); err != nil {
		return "", errors.Wrap(err, "writing credential")
	}
	if err := svc.store.Write(ctx, credByIDPath(cred.UserID), email); err != nil {
		return "", errors.Wrap(err, "writing credential index")
	}
	return cred.UserID, nil
}

func (svc *service) VerifyCredential(ctx context.Context, email, password string) (string, error) {
	email = core.CleanString(email, true /* lower */)

	var cred credential
	found, err := svc.store.Read(ctx, credByEmailPath(email), &cred)
	if err != nil {
		return "", errors.Wrap(err, "reading credential")
	}
	if !found {
		return "", core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return "", core.ErrInvalidCredentials
	}
	return cred.UserID, nil
}

func (svc *service) DestroyCredential(ctx context.Context, userID string) error {
	var email string
	found, err := svc.store.Read(ctx, credByIDPath(userID), &email)
	if err != nil {
		return errors.Wrap(err, "reading credential index")
	}
	if !found {
		return core.ErrCredentialNotFound
	}

	if err := svc.store.Delete(ctx, credByEmailPath(email)); err != nil {
		return errors.Wrap(err, "deleting credential")
	}
	return svc.store.Delete(ctx, credByIDPath(userID))
}

func (svc *service) EndSession(context.Context, string) error {
	return nil // JWT sessions expire on their own
}

func credByEmailPath(email string) string {
	return core.JoinPath("credentials", "byEmail", email)
}

func credByIDPath(userID string) string {
	return core.JoinPath("credentials", "byId", userID)
}
