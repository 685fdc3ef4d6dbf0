package classifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yousefh409/llm-censorship/pkg/oracle"
	"github.com/yousefh409/llm-censorship/pkg/resultlog"
	"github.com/yousefh409/llm-censorship/pkg/types"
)

// Runner drives one classification pass: every selected post goes to the
// oracle exactly once and yields exactly one classified result, ERROR verdicts
// included. The oracle is injected so a deterministic double can stand in.
type Runner struct {
	Oracle oracle.Oracle
	Policy types.PolicyVersion
	Logger *logrus.Logger

	// Log is the durable result log; optional for in-memory runs.
	Log *resultlog.Writer
}

// Run classifies posts sequentially in input order. Classification failures
// degrade to ERROR verdicts and never abort the pass; only context
// cancellation and result-log write failures stop it early.
func (r *Runner) Run(ctx context.Context, posts []types.PostRecord, batch string) ([]types.ClassifiedPost, error) {
	runID := uuid.NewString()
	classified := make([]types.ClassifiedPost, 0, len(posts))

	for i, post := range posts {
		if err := ctx.Err(); err != nil {
			return classified, err
		}

		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{
				"post_id": post.PostID,
				"index":   i + 1,
				"total":   len(posts),
			}).Info("Classifying post")
		}

		// Empty content is still submitted so the run's post count matches
		// the source.
		raw := r.Oracle.Classify(ctx, post.Content)
		verdict := Parse(raw)

		result := types.ClassifiedPost{
			Post:         post,
			Verdict:      verdict,
			RunID:        runID,
			Batch:        batch,
			ClassifiedAt: time.Now().UTC(),
		}

		if r.Logger != nil {
			entry := r.Logger.WithFields(logrus.Fields{
				"post_id": post.PostID,
				"action":  verdict.Action,
			})
			switch {
			case verdict.IsError():
				entry.WithField("reasoning", verdict.Reasoning).Warn("Classification failed")
			case r.Policy.Drifted(verdict.Action):
				entry.Warn("Action outside configured taxonomy")
			default:
				entry.Debug("Post classified")
			}
		}

		if r.Log != nil {
			if err := r.Log.Append(result); err != nil {
				return classified, err
			}
		}
		classified = append(classified, result)
	}
	return classified, nil
}
