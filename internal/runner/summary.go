package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/AndreyAkinshin/lvunit/internal/output"
)

// Summary aggregates the results of a batch of runs.
type Summary struct {
	Results       []Result
	Passed        int
	Failed        int
	Skipped       int // Requests not started because ctx was done
	TotalDuration time.Duration
}

// Success reports whether every request ran and passed.
func (s *Summary) Success() bool {
	return s.Failed == 0 && s.Skipped == 0
}

// RunAll runs each request in order. A failed run never stops the batch;
// only cancellation of ctx does, in which case the remaining requests are
// counted as skipped.
func (r *Runner) RunAll(ctx context.Context, reqs []Request) *Summary {
	summary := &Summary{Results: make([]Result, 0, len(reqs))}
	start := time.Now()

	for i, req := range reqs {
		if ctx.Err() != nil {
			summary.Skipped = len(reqs) - i
			r.out.Warning("interrupted; skipping %d remaining run(s)", summary.Skipped)
			break
		}

		res := r.Run(ctx, req)
		summary.Results = append(summary.Results, res)
		if res.Success() {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	summary.TotalDuration = time.Since(start)
	return summary
}

// PrintSummary prints a per-run listing and totals for a batch.
func PrintSummary(s *Summary, out *output.Writer) {
	out.SummaryHeader("Unit Test Summary")

	for _, res := range s.Results {
		var errMsg string
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		out.SummaryAction(res.Request.ProjectPath, res.Success(), FormatDuration(res.Duration), errMsg)
	}
	out.Println("")

	out.SummaryPassed("Passed", fmt.Sprintf("%d", s.Passed))
	if s.Failed > 0 {
		out.SummaryFailed("Failed", fmt.Sprintf("%d", s.Failed))
	}
	if s.Skipped > 0 {
		out.SummaryFailed("Skipped", fmt.Sprintf("%d", s.Skipped))
	}
	out.SummaryItem("Duration", FormatDuration(s.TotalDuration))

	if s.Success() {
		out.FinalSuccess("All unit test runs completed successfully.")
	} else {
		out.FinalFailure("%d of %d unit test run(s) failed.", s.Failed+s.Skipped, len(s.Results)+s.Skipped)
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
