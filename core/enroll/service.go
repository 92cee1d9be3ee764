package enroll

import (
	"context"
	"encoding/json"
	"net/mail"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/user"
)

type (
	Service interface {
		// PublishCode makes code the teacher's live class code. No-op when
		// equal to the current code; ErrCodeConflict when any teacher
		// already owns it. The existence check and the writes are not
		// atomic: two teachers racing the same code can both pass the check
		// (documented limitation of the unguarded store).
		PublishCode(ctx context.Context, teacherID, code string) error
		// ResolveCode returns the owning teacher id; ErrUnknownCode when absent.
		ResolveCode(ctx context.Context, code string) (string, error)
		CurrentCodeOf(ctx context.Context, teacherID string) (string, error)

		// RequestJoin records a pending join request under the code's
		// teacher. Re-invoking overwrites the prior request (last wins).
		// No profile or roster entry is created yet.
		RequestJoin(ctx context.Context, jr JoinRequest) error
		// Approve converts a pending request into roster membership:
		// profile, roster entry, student-side mirror, request removal, in
		// that order.
		Approve(ctx context.Context, teacherID, studentID string) error
		// Deny discards the pending request. The student's identity
		// credential, if any, is left untouched (known gap, not fixed here).
		Deny(ctx context.Context, teacherID, studentID string) error

		Roster(ctx context.Context, teacherID string) ([]user.User, error)
		ClassesOf(ctx context.Context, studentID string) ([]string, error)
		PendingRequests(ctx context.Context, teacherID string) ([]ClassRequest, error)
		// WatchRequests streams the full pending-request set for a teacher;
		// every callback replaces prior state (nil store snapshot = empty).
		WatchRequests(teacherID string, fn func([]ClassRequest)) (core.Unsubscribe, error)

		// Reconcile finishes or undoes partially-applied approvals left by
		// crashes between the sequential writes.
		Reconcile(ctx context.Context) (ReconcileReport, error)
	}

	service struct {
		conf    *core.Config
		store   core.DocumentStore
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, store core.DocumentStore, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		conf:    conf,
		store:   store,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *service) PublishCode(ctx context.Context, teacherID, code string) error {
	code = NormalizeCode(code)
	if code == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class_code", Error: "this field is required"})
	}

	oldCode, err := svc.CurrentCodeOf(ctx, teacherID)
	if err != nil {
		return err
	}
	if oldCode == code {
		return nil // already live
	}

	var owner CodeOwner
	found, err := svc.store.Read(ctx, classCodePath(code), &owner)
	if err != nil {
		return errors.Wrap(err, "checking code availability")
	}
	if found {
		return ErrCodeConflict
	}

	steps := make([]step, 0, 3)
	if oldCode != "" {
		old := oldCode
		steps = append(steps, step{"delete old code mapping", func(ctx context.Context) error {
			return svc.store.Delete(ctx, classCodePath(old))
		}})
	}
	steps = append(steps,
		step{"write code mapping", func(ctx context.Context) error {
			return svc.store.Write(ctx, classCodePath(code), CodeOwner{TeacherID: teacherID})
		}},
		step{"write teacher code pointer", func(ctx context.Context) error {
			return svc.store.Write(ctx, teacherCodePath(teacherID), code)
		}},
	)
	return runSteps(ctx, "enroll.PublishCode", steps...)
}

func (svc *service) ResolveCode(ctx context.Context, code string) (string, error) {
	var owner CodeOwner
	found, err := svc.store.Read(ctx, classCodePath(NormalizeCode(code)), &owner)
	if err != nil {
		return "", errors.Wrap(err, "resolving class code")
	}
	if !found {
		return "", ErrUnknownCode
	}
	return owner.TeacherID, nil
}

func (svc *service) CurrentCodeOf(ctx context.Context, teacherID string) (string, error) {
	var code string
	if _, err := svc.store.Read(ctx, teacherCodePath(teacherID), &code); err != nil {
		return "", errors.Wrap(err, "reading teacher code pointer")
	}
	return code, nil
}

func (svc *service) RequestJoin(ctx context.Context, jr JoinRequest) error {
	if err := jr.Validate(); err != nil {
		return err
	}

	teacherID, err := svc.ResolveCode(ctx, jr.ClassCode)
	if err != nil {
		return err
	}

	req := ClassRequest{
		ID:          jr.StudentID,
		Email:       jr.Email,
		FullName:    jr.FullName,
		CollegeID:   jr.CollegeID,
		Status:      StatusPending,
		ClassCode:   jr.ClassCode,
		PhotoURL:    jr.PhotoURL,
		Bio:         jr.Bio,
		RequestedAt: time.Now().UTC(),
	}
	if err := svc.store.Write(ctx, requestPath(teacherID, jr.StudentID), req); err != nil {
		return errors.Wrap(err, "writing join request")
	}

	svc.notifyTeacher(ctx, teacherID, req)
	return nil
}

func (svc *service) Approve(ctx context.Context, teacherID, studentID string) error {
	var req ClassRequest
	found, err := svc.store.Read(ctx, requestPath(teacherID, studentID), &req)
	if err != nil {
		return errors.Wrap(err, "reading join request")
	}
	if !found {
		return ErrRequestNotFound
	}

	profile := user.User{
		ID:        studentID,
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      user.RoleStudent,
		CollegeID: req.CollegeID,
		PhotoURL:  req.PhotoURL,
		Bio:       req.Bio,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err = runSteps(ctx, "enroll.Approve",
		step{"create student profile", func(ctx context.Context) error {
			return svc.store.Write(ctx, user.ProfilePath(user.RoleStudent, studentID), profile)
		}},
		step{"add roster entry", func(ctx context.Context) error {
			return svc.store.Write(ctx, rosterEntryPath(teacherID, studentID), true)
		}},
		step{"add student class entry", func(ctx context.Context) error {
			return svc.store.Write(ctx, studentClassEntryPath(studentID, teacherID), true)
		}},
		step{"delete join request", func(ctx context.Context) error {
			return svc.store.Delete(ctx, requestPath(teacherID, studentID))
		}},
	)
	if err != nil {
		return err
	}

	svc.notifyStudent(req, "You're in!",
		"Your request to join class "+req.ClassCode+" has been approved. Welcome aboard!")
	return nil
}

func (svc *service) Deny(ctx context.Context, teacherID, studentID string) error {
	var req ClassRequest
	found, err := svc.store.Read(ctx, requestPath(teacherID, studentID), &req)
	if err != nil {
		return errors.Wrap(err, "reading join request")
	}
	if !found {
		return ErrRequestNotFound
	}

	if err := svc.store.Delete(ctx, requestPath(teacherID, studentID)); err != nil {
		return errors.Wrap(err, "deleting join request")
	}

	svc.notifyStudent(req, "Join request declined",
		"Your request to join class "+req.ClassCode+" was declined by the teacher.")
	return nil
}

func (svc *service) Roster(ctx context.Context, teacherID string) ([]user.User, error) {
	entries, err := svc.store.List(ctx, rosterPath(teacherID))
	if err != nil {
		return nil, errors.Wrap(err, "listing roster")
	}

	students := make([]user.User, 0, len(entries))
	for studentID := range entries {
		var usr user.User
		found, err := svc.store.Read(ctx, user.ProfilePath(user.RoleStudent, studentID), &usr)
		if err != nil {
			return nil, errors.Wrap(err, "reading student profile")
		}
		if !found {
			// roster entry without a profile: partial approve, left for Reconcile
			usr = user.User{ID: studentID, Role: user.RoleStudent}
		}
		students = append(students, usr)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].FullName < students[j].FullName })
	return students, nil
}

func (svc *service) ClassesOf(ctx context.Context, studentID string) ([]string, error) {
	entries, err := svc.store.List(ctx, studentClassesPath(studentID))
	if err != nil {
		return nil, errors.Wrap(err, "listing student classes")
	}
	teacherIDs := make([]string, 0, len(entries))
	for teacherID := range entries {
		teacherIDs = append(teacherIDs, teacherID)
	}
	sort.Strings(teacherIDs)
	return teacherIDs, nil
}

func (svc *service) PendingRequests(ctx context.Context, teacherID string) ([]ClassRequest, error) {
	entries, err := svc.store.List(ctx, requestsPath(teacherID))
	if err != nil {
		return nil, errors.Wrap(err, "listing join requests")
	}
	return sortedRequests(entries)
}

func (svc *service) WatchRequests(teacherID string, fn func([]ClassRequest)) (core.Unsubscribe, error) {
	return svc.store.Subscribe(requestsPath(teacherID), func(snapshot json.RawMessage) {
		// each snapshot is the whole current state, never a delta
		if snapshot == nil {
			fn(nil)
			return
		}
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(snapshot, &entries); err != nil {
			svc.logger.Error("decoding join request snapshot", err)
			return
		}
		reqs, err := sortedRequests(entries)
		if err != nil {
			svc.logger.Error("decoding join requests", err)
			return
		}
		fn(reqs)
	})
}

func sortedRequests(entries map[string]json.RawMessage) ([]ClassRequest, error) {
	reqs := make([]ClassRequest, 0, len(entries))
	for _, raw := range entries {
		var req ClassRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, errors.Wrap(err, "decoding join request")
		}
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].RequestedAt.Before(reqs[j].RequestedAt) })
	return reqs, nil
}

// notifications; best-effort, failures only logged

func (svc *service) notifyTeacher(ctx context.Context, teacherID string, req ClassRequest) {
	var teacher user.User
	found, err := svc.store.Read(ctx, user.ProfilePath(user.RoleTeacher, teacherID), &teacher)
	if err != nil || !found {
		svc.logger.Warn("join request notification skipped: teacher profile unavailable", err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: teacher.FullName, Address: teacher.Email}},
		Subject: "New join request",
		BodyStr: req.FullName + " (" + req.CollegeID + ") requested to join class " + req.ClassCode + ".",
	})
}

func (svc *service) notifyStudent(req ClassRequest, subject, body string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: req.FullName, Address: req.Email}},
		Subject: subject,
		BodyStr: body,
	})
}
