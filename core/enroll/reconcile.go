package enroll

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core/user"
)

// ReconcileReport summarizes what a reconciliation pass repaired.
type ReconcileReport struct {
	FinishedApprovals   int      `json:"finished_approvals"`
	RepairedMirrors     int      `json:"repaired_mirrors"`
	RemovedStrayMirrors int      `json:"removed_stray_mirrors"`
	RebuiltProfiles     int      `json:"rebuilt_profiles"`
	OrphanRosterEntries []string `json:"orphan_roster_entries,omitempty"` // "teacherID/studentID"
}

func (r ReconcileReport) Empty() bool {
	return r.FinishedApprovals == 0 && r.RepairedMirrors == 0 &&
		r.RemovedStrayMirrors == 0 && r.RebuiltProfiles == 0 &&
		len(r.OrphanRosterEntries) == 0
}

// Reconcile walks the denormalized enrollment locations and repairs the
// partial states a crash mid-Approve can leave behind:
//
//   - a pending request whose student is already on the roster means the
//     approval died before its final steps: the profile/mirror are completed
//     and the request removed;
//   - a roster entry without its student-side mirror gets the mirror written;
//   - a roster entry without a student profile is rebuilt from the pending
//     request when one survives, otherwise reported as an orphan;
//   - a student-side mirror without a roster entry cannot result from the
//     approve order (roster is written first), so it is undone.
//
// The roster is treated as the authoritative enrollment flag throughout.
func (svc *service) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	teachers, err := svc.store.List(ctx, "classes")
	if err != nil {
		return report, errors.Wrap(err, "listing classes")
	}

	for teacherID := range teachers {
		entries, err := svc.store.List(ctx, rosterPath(teacherID))
		if err != nil {
			return report, errors.Wrap(err, "listing roster")
		}

		for studentID := range entries {
			finished := false

			// request still pending while enrolled: finish the approval
			var req ClassRequest
			reqFound, err := svc.store.Read(ctx, requestPath(teacherID, studentID), &req)
			if err != nil {
				return report, errors.Wrap(err, "reading join request")
			}

			profileFound, err := svc.hasProfile(ctx, studentID)
			if err != nil {
				return report, err
			}
			if !profileFound {
				if !reqFound {
					report.OrphanRosterEntries = append(report.OrphanRosterEntries, teacherID+"/"+studentID)
				} else {
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
					if err := svc.store.Write(ctx, user.ProfilePath(user.RoleStudent, studentID), profile); err != nil {
						return report, errors.Wrap(err, "rebuilding student profile")
					}
					report.RebuiltProfiles++
					finished = true
				}
			}

			var mirror bool
			mirrorFound, err := svc.store.Read(ctx, studentClassEntryPath(studentID, teacherID), &mirror)
			if err != nil {
				return report, errors.Wrap(err, "reading student class entry")
			}
			if !mirrorFound {
				if err := svc.store.Write(ctx, studentClassEntryPath(studentID, teacherID), true); err != nil {
					return report, errors.Wrap(err, "repairing student class entry")
				}
				report.RepairedMirrors++
				finished = true
			}

			if reqFound {
				if err := svc.store.Delete(ctx, requestPath(teacherID, studentID)); err != nil {
					return report, errors.Wrap(err, "removing handled join request")
				}
				finished = true
			}

			if finished {
				report.FinishedApprovals++
			}
		}
	}

	// student-side mirrors pointing at classes the roster does not confirm
	students, err := svc.store.List(ctx, "studentClasses")
	if err != nil {
		return report, errors.Wrap(err, "listing student classes")
	}
	for studentID, raw := range students {
		var classes map[string]json.RawMessage
		if err := json.Unmarshal(raw, &classes); err != nil {
			return report, errors.Wrap(err, "decoding student classes")
		}
		for teacherID := range classes {
			var enrolled bool
			found, err := svc.store.Read(ctx, rosterEntryPath(teacherID, studentID), &enrolled)
			if err != nil {
				return report, errors.Wrap(err, "reading roster entry")
			}
			if !found {
				if err := svc.store.Delete(ctx, studentClassEntryPath(studentID, teacherID)); err != nil {
					return report, errors.Wrap(err, "removing stray student class entry")
				}
				report.RemovedStrayMirrors++
			}
		}
	}

	if !report.Empty() {
		svc.logger.Info("enrollment reconciliation repaired state", report)
	}
	return report, nil
}

func (svc *service) hasProfile(ctx context.Context, studentID string) (bool, error) {
	var usr user.User
	found, err := svc.store.Read(ctx, user.ProfilePath(user.RoleStudent, studentID), &usr)
	if err != nil {
		return false, errors.Wrap(err, "reading student profile")
	}
	return found, nil
}
