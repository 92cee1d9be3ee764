package user

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type (
	Service interface {
		// Create writes a new profile; timestamps are set here.
		Create(ctx context.Context, usr User) (User, error)
		Get(ctx context.Context, role, id string) (User, error)
		// Update shallow-merges the set fields into the stored profile.
		Update(ctx context.Context, role, id string, up UpdateProfile) (User, error)
		// UploadPhoto stores the photo in the blob store and points the
		// profile's photoURL at it.
		UploadPhoto(ctx context.Context, role, id, filename string, r io.Reader) (string, error)
	}

	service struct {
		store core.DocumentStore
		blobs core.BlobStore
	}
)

var _ Service = (*service)(nil)

func NewService(store core.DocumentStore, blobs core.BlobStore) Service {
	return &service{store: store, blobs: blobs}
}

func (svc *service) Create(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	usr.FullName = core.CleanString(usr.FullName)
	usr.CreatedAt = now
	usr.UpdatedAt = now
	if err := svc.store.Write(ctx, ProfilePath(usr.Role, usr.ID), usr); err != nil {
		return User{}, errors.Wrap(err, "writing profile")
	}
	return usr, nil
}

func (svc *service) Get(ctx context.Context, role, id string) (User, error) {
	var usr User
	found, err := svc.store.Read(ctx, ProfilePath(role, id), &usr)
	if err != nil {
		return User{}, errors.Wrap(err, "reading profile")
	}
	if !found {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *service) Update(ctx context.Context, role, id string, up UpdateProfile) (User, error) {
	if _, err := svc.Get(ctx, role, id); err != nil {
		return User{}, err
	}

	// only merge set fields
	partial := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	if up.FullName != "" {
		partial["fullName"] = up.FullName
	}
	if up.Bio != "" {
		partial["bio"] = up.Bio
	}
	if up.PhotoURL != "" {
		partial["photoURL"] = up.PhotoURL
	}
	if err := svc.store.Merge(ctx, ProfilePath(role, id), partial); err != nil {
		return User{}, errors.Wrap(err, "merging profile")
	}
	return svc.Get(ctx, role, id)
}

func (svc *service) UploadPhoto(ctx context.Context, role, id, filename string, r io.Reader) (string, error) {
	if _, err := svc.Get(ctx, role, id); err != nil {
		return "", err
	}

	path := core.JoinPath("profilePhotos", role, id, filename)
	url, err := svc.blobs.Upload(ctx, path, r)
	if err != nil {
		return "", errors.Wrap(err, "uploading profile photo")
	}

	partial := map[string]interface{}{
		"photoURL":  url,
		"updatedAt": time.Now().UTC(),
	}
	if err := svc.store.Merge(ctx, ProfilePath(role, id), partial); err != nil {
		return "", errors.Wrap(err, "merging photoURL")
	}
	return url, nil
}
