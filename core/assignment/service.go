package assignment

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type (
	Service interface {
		Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error)
		AssignmentsOf(ctx context.Context, teacherID string) ([]Assignment, error)
		Get(ctx context.Context, teacherID, assignmentID string) (Assignment, error)

		// Submit uploads the file first and records the submission only
		// after the upload succeeds; a failed upload leaves no record.
		Submit(ctx context.Context, studentID, teacherID, assignmentID, filename string, r io.Reader) (Submission, error)
		// Withdraw deletes the blob then the record. A blob that no longer
		// resolves (deleted externally) is reported via stale=true while the
		// record is still removed; any other blob failure keeps the record.
		Withdraw(ctx context.Context, studentID, teacherID, assignmentID string) (stale bool, err error)

		SubmissionOf(ctx context.Context, studentID, assignmentID string) (Submission, error)
		SubmissionsFor(ctx context.Context, assignmentID string) ([]Submission, error)
		// SetGrade fills the free-text grade field on an existing submission.
		SetGrade(ctx context.Context, assignmentID, studentID, grade string) (Submission, error)
	}

	service struct {
		store  core.DocumentStore
		blobs  core.BlobStore
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(store core.DocumentStore, blobs core.BlobStore, logger core.Logger) Service {
	return &service{store: store, blobs: blobs, logger: logger}
}

func (svc *service) Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error) {
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}

	asg := Assignment{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Title:     na.Title,
		Class:     na.Class,
		Mode:      na.Mode,
		Deadline:  na.Deadline.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.store.Write(ctx, assignmentPath(teacherID, asg.ID), asg); err != nil {
		return Assignment{}, errors.Wrap(err, "writing assignment")
	}
	return asg, nil
}

func (svc *service) AssignmentsOf(ctx context.Context, teacherID string) ([]Assignment, error) {
	entries, err := svc.store.List(ctx, assignmentsPath(teacherID))
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}

	asgs := make([]Assignment, 0, len(entries))
	for _, raw := range entries {
		var asg Assignment
		if err := json.Unmarshal(raw, &asg); err != nil {
			return nil, errors.Wrap(err, "decoding assignment")
		}
		asgs = append(asgs, asg)
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].Deadline.Before(asgs[j].Deadline) })
	return asgs, nil
}

func (svc *service) Get(ctx context.Context, teacherID, assignmentID string) (Assignment, error) {
	var asg Assignment
	found, err := svc.store.Read(ctx, assignmentPath(teacherID, assignmentID), &asg)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "reading assignment")
	}
	if !found {
		return Assignment{}, ErrNotFound
	}
	return asg, nil
}

func (svc *service) Submit(ctx context.Context, studentID, teacherID, assignmentID, filename string, r io.Reader) (Submission, error) {
	asg, err := svc.Get(ctx, teacherID, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	if asg.Mode != ModeOnline {
		return Submission{}, ErrOfflineSubmission
	}

	blobPath := submissionBlobPath(studentID, assignmentID, filename)
	url, err := svc.blobs.Upload(ctx, blobPath, r)
	if err != nil {
		// no partial record: the record is only written after a successful upload
		return Submission{}, errors.Wrap(ErrUploadFailed, err.Error())
	}

	sub := Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FileName:     filename,
		FilePath:     blobPath,
		FileURL:      url,
		Status:       StatusSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := svc.store.Write(ctx, submissionPath(assignmentID, studentID), sub); err != nil {
		return Submission{}, errors.Wrap(err, "writing submission")
	}
	return sub, nil
}

func (svc *service) Withdraw(ctx context.Context, studentID, teacherID, assignmentID string) (bool, error) {
	sub, err := svc.SubmissionOf(ctx, studentID, assignmentID)
	if err != nil {
		return false, err
	}

	var stale bool
	if err := svc.blobs.Delete(ctx, sub.FilePath); err != nil {
		if errors.Cause(err) != core.ErrBlobNotFound {
			return false, errors.Wrap(err, "deleting submission file")
		}
		// already gone externally; still remove the record to restore consistency
		stale = true
		svc.logger.Warn("submission file already deleted from blob storage", sub.FilePath)
	}

	if err := svc.store.Delete(ctx, submissionPath(assignmentID, studentID)); err != nil {
		return stale, errors.Wrap(err, "deleting submission record")
	}
	return stale, nil
}

func (svc *service) SubmissionOf(ctx context.Context, studentID, assignmentID string) (Submission, error) {
	var sub Submission
	found, err := svc.store.Read(ctx, submissionPath(assignmentID, studentID), &sub)
	if err != nil {
		return Submission{}, errors.Wrap(err, "reading submission")
	}
	if !found {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

func (svc *service) SubmissionsFor(ctx context.Context, assignmentID string) ([]Submission, error) {
	entries, err := svc.store.List(ctx, submissionsPath(assignmentID))
	if err != nil {
		return nil, errors.Wrap(err, "listing submissions")
	}

	subs := make([]Submission, 0, len(entries))
	for _, raw := range entries {
		var sub Submission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, errors.Wrap(err, "decoding submission")
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

func (svc *service) SetGrade(ctx context.Context, assignmentID, studentID, grade string) (Submission, error) {
	if _, err := svc.SubmissionOf(ctx, studentID, assignmentID); err != nil {
		return Submission{}, err
	}

	partial := map[string]interface{}{
		"grade":  core.CleanString(grade),
		"status": StatusGraded,
	}
	if err := svc.store.Merge(ctx, submissionPath(assignmentID, studentID), partial); err != nil {
		return Submission{}, errors.Wrap(err, "merging grade")
	}
	return svc.SubmissionOf(ctx, studentID, assignmentID)
}
