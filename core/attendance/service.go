package attendance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type (
	Service interface {
		// Mark overwrites the attendance sheet for one class and day.
		Mark(ctx context.Context, teacherID string, day time.Time, marks map[string]bool) error
		SheetFor(ctx context.Context, teacherID string, day time.Time) (map[string]bool, error)
		// SummaryOf computes a student's attendance percentage across all
		// recorded days of one class, flagging it when below the configured
		// warning threshold.
		SummaryOf(ctx context.Context, teacherID, studentID string) (Summary, error)
	}

	service struct {
		conf  *core.Config
		store core.DocumentStore
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, store core.DocumentStore) Service {
	return &service{conf: conf, store: store}
}

func (svc *service) Mark(ctx context.Context, teacherID string, day time.Time, marks map[string]bool) error {
	if len(marks) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "marks", Error: "this field is required"})
	}
	if err := svc.store.Write(ctx, sheetPath(teacherID, day), marks); err != nil {
		return errors.Wrap(err, "writing attendance sheet")
	}
	return nil
}

func (svc *service) SheetFor(ctx context.Context, teacherID string, day time.Time) (map[string]bool, error) {
	var marks map[string]bool
	if _, err := svc.store.Read(ctx, sheetPath(teacherID, day), &marks); err != nil {
		return nil, errors.Wrap(err, "reading attendance sheet")
	}
	if marks == nil {
		marks = make(map[string]bool)
	}
	return marks, nil
}

func (svc *service) SummaryOf(ctx context.Context, teacherID, studentID string) (Summary, error) {
	days, err := svc.store.List(ctx, sheetsPath(teacherID))
	if err != nil {
		return Summary{}, errors.Wrap(err, "listing attendance sheets")
	}

	var sum Summary
	for _, raw := range days {
		var marks map[string]bool
		if err := json.Unmarshal(raw, &marks); err != nil {
			return Summary{}, errors.Wrap(err, "decoding attendance sheet")
		}
		present, recorded := marks[studentID]
		if !recorded {
			continue // student not on that day's sheet
		}
		sum.Total++
		if present {
			sum.Present++
		}
	}
	if sum.Total > 0 {
		sum.Pct = sum.Present * 100 / sum.Total
		sum.BelowThreshold = sum.Pct < svc.conf.Attendance.WarnThresholdPct
	}
	return sum, nil
}
