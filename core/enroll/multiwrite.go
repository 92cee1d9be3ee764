package enroll

import (
	"context"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

// step is one write in a multi-step sequence. The store offers no multi-path
// transactions, so sequences are applied one write at a time and a failure
// mid-way leaves partial state behind.
type step struct {
	name  string
	apply func(context.Context) error
}

// runSteps applies steps in order. A failure on the first step returns a
// plain wrapped error (nothing committed); a failure after that returns a
// *core.PartialApplyError naming the steps that did commit, so the caller or
// the reconciler can finish or undo them. Nothing is rolled back here.
func runSteps(ctx context.Context, op string, steps ...step) error {
	completed := make([]string, 0, len(steps))
	for _, st := range steps {
		if err := st.apply(ctx); err != nil {
			if len(completed) == 0 {
				return errors.Wrap(err, op+": "+st.name)
			}
			return &core.PartialApplyError{
				Op:        op,
				Completed: completed,
				Step:      st.name,
				Err:       err,
			}
		}
		completed = append(completed, st.name)
	}
	return nil
}
