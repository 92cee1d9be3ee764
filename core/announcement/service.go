package announcement

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type (
	Service interface {
		Post(ctx context.Context, teacherID string, na NewAnnouncement) (Announcement, error)
		ListFor(ctx context.Context, teacherID string) ([]Announcement, error)
		Delete(ctx context.Context, teacherID, id string) error
	}

	service struct {
		store core.DocumentStore
	}
)

var _ Service = (*service)(nil)

func NewService(store core.DocumentStore) Service {
	return &service{store: store}
}

func (svc *service) Post(ctx context.Context, teacherID string, na NewAnnouncement) (Announcement, error) {
	if err := na.Validate(); err != nil {
		return Announcement{}, err
	}

	ann := Announcement{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Title:     na.Title,
		Body:      na.Body,
		PostedAt:  time.Now().UTC(),
	}
	if err := svc.store.Write(ctx, announcementPath(teacherID, ann.ID), ann); err != nil {
		return Announcement{}, errors.Wrap(err, "writing announcement")
	}
	return ann, nil
}

func (svc *service) ListFor(ctx context.Context, teacherID string) ([]Announcement, error) {
	entries, err := svc.store.List(ctx, announcementsPath(teacherID))
	if err != nil {
		return nil, errors.Wrap(err, "listing announcements")
	}

	anns := make([]Announcement, 0, len(entries))
	for _, raw := range entries {
		var ann Announcement
		if err := json.Unmarshal(raw, &ann); err != nil {
			return nil, errors.Wrap(err, "decoding announcement")
		}
		anns = append(anns, ann)
	}
	// newest first
	sort.Slice(anns, func(i, j int) bool { return anns[i].PostedAt.After(anns[j].PostedAt) })
	return anns, nil
}

func (svc *service) Delete(ctx context.Context, teacherID, id string) error {
	var ann Announcement
	found, err := svc.store.Read(ctx, announcementPath(teacherID, id), &ann)
	if err != nil {
		return errors.Wrap(err, "reading announcement")
	}
	if !found {
		return ErrNotFound
	}
	return svc.store.Delete(ctx, announcementPath(teacherID, id))
}
