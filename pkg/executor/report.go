package executor

import (
	"fmt"
	"time"

	"github.com/edfm/edfm/pkg/plan"
	"github.com/edfm/edfm/pkg/result"
)

// Record captures the terminal outcome of one plan operation.
type Record struct {
	Operation plan.Operation              `json:"operation"`
	Result    result.Result[result.Empty] `json:"result"`

	// Attempts is the total number of backend calls issued for the
	// operation, across retries and lowering steps. Zero means the
	// operation never reached the backend.
	Attempts int `json:"attempts"`

	// Note carries execution context a status alone cannot: which step
	// of a lowered operation failed, or that a bulk-delete batch was
	// never issued.
	Note string `json:"note,omitempty"`
}

// Tally counts terminal outcomes by class.
type Tally struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Cancelled int `json:"cancelled"`
}

// Report is the full outcome of one plan execution: one record per
// operation, in plan order, regardless of the concurrency the operations
// actually ran with.
type Report struct {
	ID         string    `json:"id"`
	Backend    string    `json:"backend"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Records    []Record  `json:"records"`
	Tally      Tally     `json:"tally"`
}

// Complete reports whether every operation succeeded.
func (r *Report) Complete() bool {
	return r.Tally.Succeeded == len(r.Records)
}

// Failures returns the records that resolved to a failure status.
// Skipped (Unimplemented) and Cancelled records are not failures.
func (r *Report) Failures() []Record {
	var out []Record
	for _, rec := range r.Records {
		switch rec.Result.Status {
		case result.Success, result.Unimplemented, result.Cancelled:
		default:
			out = append(out, rec)
		}
	}
	return out
}

// Summary renders a one-line outcome for logs and CLI output.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped, %d cancelled (of %d)",
		r.Tally.Succeeded, r.Tally.Failed, r.Tally.Skipped, r.Tally.Cancelled, len(r.Records))
}

func (r *Report) tally() {
	t := Tally{}
	for _, rec := range r.Records {
		switch rec.Result.Status {
		case result.Success:
			t.Succeeded++
		case result.Unimplemented:
			t.Skipped++
		case result.Cancelled:
			t.Cancelled++
		default:
			t.Failed++
		}
	}
	r.Tally = t
}
