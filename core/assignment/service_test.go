package assignment

import (
	"context"
	"io"
	"io/ioutil"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/backend/core"
	inmemblob "github.com/campusconnect/backend/storage/blob/inmem"
	inmemdoc "github.com/campusconnect/backend/storage/document/inmem"
)

var ctx = context.Background()

func setup(t *testing.T) (Service, *inmemdoc.Store, *inmemblob.Store) {
	t.Helper()
	store := inmemdoc.New()
	blobs := inmemblob.New()
	logger := core.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
	return NewService(store, blobs, logger), store, blobs
}

func newAsg(mode string) NewAssignment {
	return NewAssignment{
		Title:    "Problem Set 1",
		Class:    "CS101-FA24",
		Mode:     mode,
		Deadline: time.Now().Add(7 * 24 * time.Hour),
	}
}

// brokenBlobs always fails uploads.
type brokenBlobs struct{ core.BlobStore }

func (brokenBlobs) Upload(context.Context, string, io.Reader) (string, error) {
	return "", errors.New("bucket unreachable")
}

func Test_service_Create(t *testing.T) {
	svc, _, _ := setup(t)

	asg, err := svc.Create(ctx, "t1", newAsg(ModeOnline))
	require.NoError(t, err)
	assert.NotEmpty(t, asg.ID)
	assert.Equal(t, "t1", asg.TeacherID)
	assert.Equal(t, ModeOnline, asg.Mode)

	// invalid mode rejected
	_, err = svc.Create(ctx, "t1", newAsg("carrier-pigeon"))
	assert.Error(t, err)

	got, err := svc.Get(ctx, "t1", asg.ID)
	require.NoError(t, err)
	assert.Equal(t, asg.ID, got.ID)

	_, err = svc.Get(ctx, "t1", "nope")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func Test_service_AssignmentsOf_sortedByDeadline(t *testing.T) {
	svc, _, _ := setup(t)

	later := newAsg(ModeOnline)
	later.Title = "Later"
	later.Deadline = time.Now().Add(48 * time.Hour)
	sooner := newAsg(ModeOnline)
	sooner.Title = "Sooner"
	sooner.Deadline = time.Now().Add(24 * time.Hour)

	_, err := svc.Create(ctx, "t1", later)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "t1", sooner)
	require.NoError(t, err)

	asgs, err := svc.AssignmentsOf(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, asgs, 2)
	assert.Equal(t, "Sooner", asgs[0].Title)
	assert.Equal(t, "Later", asgs[1].Title)
}

func Test_service_Submit(t *testing.T) {
	svc, _, blobs := setup(t)
	asg, err := svc.Create(ctx, "t1", newAsg(ModeOnline))
	require.NoError(t, err)

	sub, err := svc.Submit(ctx, "s1", "t1", asg.ID, "ps1.pdf", strings.NewReader("solution"))
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, sub.Status)
	assert.Equal(t, "ps1.pdf", sub.FileName)

	// the stored URL resolves
	url, err := blobs.URL(ctx, sub.FilePath)
	require.NoError(t, err)
	assert.Equal(t, sub.FileURL, url)
	content, ok := blobs.Content(sub.FilePath)
	require.True(t, ok)
	assert.Equal(t, "solution", string(content))

	got, err := svc.SubmissionOf(ctx, "s1", asg.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.FilePath, got.FilePath)
}

func Test_service_Submit_offline(t *testing.T) {
	svc, _, _ := setup(t)
	asg, err := svc.Create(ctx, "t1", newAsg(ModeOffline))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "s1", "t1", asg.ID, "ps1.pdf", strings.NewReader("x"))
	assert.Equal(t, ErrOfflineSubmission, errors.Cause(err))
}

func Test_service_Submit_uploadFailureLeavesNoRecord(t *testing.T) {
	_, store, blobs := setup(t)
	logger := core.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
	svc := NewService(store, brokenBlobs{blobs}, logger)

	asg, err := svc.Create(ctx, "t1", newAsg(ModeOnline))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "s1", "t1", asg.ID, "ps1.pdf", strings.NewReader("x"))
	assert.Equal(t, ErrUploadFailed, errors.Cause(err))

	_, err = svc.SubmissionOf(ctx, "s1", asg.ID)
	assert.Equal(t, ErrSubmissionNotFound, errors.Cause(err), "failed upload must leave no record")
}

func Test_service_Withdraw(t *testing.T) {
	svc, _, blobs := setup(t)
	asg, err := svc.Create(ctx, "t1", newAsg(ModeOnline))
	require.NoError(t, err)
	sub, err := svc.Submit(ctx, "s1", "t1", asg.ID, "ps1.pdf", strings.NewReader("solution"))
	require.NoError(t, err)

	stale, err := svc.Withdraw(ctx, "s1", "t1", asg.ID)
	require.NoError(t, err)
	assert.False(t, stale)

	// record and file are both gone
	_, err = svc.SubmissionOf(ctx, "s1", asg.ID)
	assert.Equal(t, ErrSubmissionNotFound, errors.Cause(err))
	_, err = blobs.URL(ctx, sub.FilePath)
	assert.Equal(t, core.ErrBlobNotFound, errors.Cause(err))

	// withdrawing again: nothing to withdraw
	_, err = svc.Withdraw(ctx, "s1", "t1", asg.ID)
	assert.Equal(t, ErrSubmissionNotFound, errors.Cause(err))
}

func Test_service_Withdraw_staleFileReference(t *testing.T) {
	svc, _, blobs := setup(t)
	asg, err := svc.Create(ctx, "t1", newAsg(ModeOnline))
	require.NoError(t, err)
	sub, err := svc.Submit(ctx, "s1", "t1", asg.ID, "ps1.pdf", strings.NewReader("solution"))
	require.NoError(t, err)

	// file vanished behind our back
	require.NoError(t, blobs.Delete(ctx, sub.FilePath))

	stale, err := svc.Withdraw(ctx, "s1", "t1", asg.ID)
	require.NoError(t, err)
	assert.True(t, stale, "externally deleted file should be reported as stale")

	// the record was still removed to restore consistency
	_, err = svc.SubmissionOf(ctx, "s1", asg.ID)
	assert.Equal(t, ErrSubmissionNotFound, errors.Cause(err))
}

func Test_service_SetGrade(t *testing.T) {
	svc, _, _ := setup(t)
	asg, err := svc.Create(ctx, "t1", newAsg(ModeOnline))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "s1", "t1", asg.ID, "ps1.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	sub, err := svc.SetGrade(ctx, asg.ID, "s1", " A- ")
	require.NoError(t, err)
	assert.Equal(t, "A-", sub.Grade)
	assert.Equal(t, StatusGraded, sub.Status)
	assert.Equal(t, "ps1.pdf", sub.FileName, "grading must not clobber the rest of the record")

	_, err = svc.SetGrade(ctx, asg.ID, "nobody", "F")
	assert.Equal(t, ErrSubmissionNotFound, errors.Cause(err))
}
