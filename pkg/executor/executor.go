// Package executor runs an operation plan against a backend.
//
// The plan's three groups execute in order with hard barriers between
// them: every create and copy reaches a terminal state before the first
// move is issued, and every move before the first delete. Inside a group
// operations run concurrently up to a configured bound; one operation's
// failure never aborts its siblings, only cancellation does.
//
// Capability mismatches are resolved before the backend is contacted:
// moves lower to copy+delete and copies to read+write when the native
// capability is missing, and operations with no viable lowering resolve
// to Unimplemented without a single backend call.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/edfm/edfm/internal/logger"
	"github.com/edfm/edfm/internal/ratelimiter"
	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/metrics"
	"github.com/edfm/edfm/pkg/plan"
	"github.com/edfm/edfm/pkg/result"
	"github.com/edfm/edfm/pkg/retry"
	"github.com/edfm/edfm/pkg/transfer"
)

// DefaultConcurrency bounds in-group parallelism when Options leaves it
// unset.
const DefaultConcurrency = 4

// ContentSource supplies the payload for a created file. The executor
// calls it once per file create; a nil source creates empty files.
type ContentSource func(ctx context.Context, e listing.Entry) ([]byte, error)

// ProgressFunc observes execution progress. It is called once per
// terminal operation with the operation's target path and the number of
// operations completed so far out of the plan total.
type ProgressFunc func(target string, completed, total int)

// Options configures an Executor. The zero value is usable: default
// concurrency, default retry policy, no rate limit, no progress sink.
type Options struct {
	// Concurrency bounds parallel operations within a plan group.
	// Values below 1 use DefaultConcurrency.
	Concurrency int

	// Retry applies to every backend call. A zero policy uses
	// retry.DefaultPolicy; set MaxAttempts to 1 to disable retries.
	Retry retry.Policy

	// RateLimit, when set, paces backend calls across all workers.
	RateLimit *ratelimiter.RateLimiter

	// Progress, when set, observes per-operation completion.
	Progress ProgressFunc

	// Metrics collects execution metrics. Nil uses the no-op collector.
	Metrics metrics.ExecutorMetrics

	// Source supplies file payloads for create operations.
	Source ContentSource

	// UploadThreshold and UploadPartSize tune chunked uploads; zero
	// values use the transfer package defaults.
	UploadThreshold int64
	UploadPartSize  int64

	// DeleteBatchSize tunes bulk deletes; zero uses the transfer
	// package default.
	DeleteBatchSize int
}

// Executor runs plans against a single backend.
type Executor struct {
	backend backend.Backend
	opts    Options
}

// New creates an Executor for the given backend.
func New(b backend.Backend, opts Options) *Executor {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Retry == (retry.Policy{}) {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop()
	}
	return &Executor{backend: b, opts: opts}
}

// Execute runs the plan and returns a report with one record per
// operation, in plan order. Execute never returns early: cancellation
// resolves the remaining operations to Cancelled records rather than
// abandoning the report.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) *Report {
	report := &Report{
		ID:        uuid.NewString(),
		Backend:   e.backend.Name(),
		StartedAt: time.Now(),
		Records:   make([]Record, len(p.Operations)),
	}

	logger.Info("executing plan %s: %d operations against %s", report.ID, len(p.Operations), e.backend.Name())

	nonDestructive, moves, deletes := p.Groups()
	completed := &atomic.Int64{}
	total := len(p.Operations)

	e.runGroup(ctx, nonDestructive, 0, report, completed, total)
	e.runGroup(ctx, moves, len(nonDestructive), report, completed, total)
	e.runDeletes(ctx, deletes, len(nonDestructive)+len(moves), report, completed, total)

	report.FinishedAt = time.Now()
	report.tally()

	if failed := len(report.Failures()); failed > 0 {
		logger.Warn("plan %s finished with failures: %s", report.ID, report.Summary())
	} else {
		logger.Info("plan %s finished: %s", report.ID, report.Summary())
	}
	return report
}

// runGroup executes one plan group with bounded concurrency and waits
// for every operation to reach a terminal state before returning. This
// wait is the ordering barrier between groups.
func (e *Executor) runGroup(ctx context.Context, ops []plan.Operation, base int, report *Report, completed *atomic.Int64, total int) {
	if len(ops) == 0 {
		return
	}

	sem := make(chan struct{}, e.opts.Concurrency)
	var wg sync.WaitGroup

	for i, op := range ops {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, op plan.Operation) {
			defer wg.Done()
			defer func() { <-sem }()

			started := time.Now()
			var rec Record
			if ctx.Err() != nil {
				rec = Record{Operation: op, Result: result.Aborted[result.Empty]()}
			} else {
				rec = e.dispatch(ctx, op)
			}
			e.finish(base+idx, rec, report, completed, total, time.Since(started))
		}(i, op)
	}

	wg.Wait()
}

// finish commits a terminal record and emits its observability signals.
// Records land at distinct indices, so no lock is needed.
func (e *Executor) finish(idx int, rec Record, report *Report, completed *atomic.Int64, total int, dur time.Duration) {
	report.Records[idx] = rec
	e.opts.Metrics.OperationCompleted(rec.Operation.Kind.String(), rec.Result.Status.String(), dur)

	n := completed.Add(1)
	if e.opts.Progress != nil {
		e.opts.Progress(rec.Operation.Target(), int(n), total)
	}
}

func (e *Executor) dispatch(ctx context.Context, op plan.Operation) Record {
	switch op.Kind {
	case plan.KindCreate:
		return e.create(ctx, op)
	case plan.KindCopy:
		return e.copy(ctx, op)
	case plan.KindMove:
		return e.move(ctx, op)
	case plan.KindDelete:
		return e.deleteOne(ctx, op)
	default:
		return Record{Operation: op, Result: result.Failed[result.Empty]("internal", "unknown operation kind")}
	}
}

// call wraps one backend call with rate limiting, the retry policy and
// retry metrics. It is a free function because methods cannot be
// generic.
func call[T any](e *Executor, ctx context.Context, kind string, fn func(context.Context) result.Result[T]) (result.Result[T], int) {
	res, attempts := retry.Do(ctx, e.opts.Retry, func(ctx context.Context) result.Result[T] {
		if e.opts.RateLimit != nil {
			if err := e.opts.RateLimit.Wait(ctx); err != nil {
				return result.Aborted[T]()
			}
		}
		return fn(ctx)
	})

	for i := 1; i < attempts; i++ {
		e.opts.Metrics.RetryAttempted(kind)
	}
	return res, attempts
}

func (e *Executor) create(ctx context.Context, op plan.Operation) Record {
	caps := e.backend.Capabilities()

	if op.Entry.IsDir() {
		if !caps.Has(backend.CapMkdir) {
			return Record{Operation: op, Result: result.Unsupported[result.Empty]("mkdir")}
		}
		res, attempts := call(e, ctx, "create", func(ctx context.Context) result.Result[result.Empty] {
			return e.backend.Mkdir(ctx, op.To)
		})
		return Record{Operation: op, Result: res, Attempts: attempts}
	}

	if !caps.Has(backend.CapWrite) {
		return Record{Operation: op, Result: result.Unsupported[result.Empty]("write")}
	}

	var payload []byte
	if e.opts.Source != nil {
		data, err := e.opts.Source(ctx, op.Entry)
		if err != nil {
			return Record{
				Operation: op,
				Result:    result.Wrap[result.Empty]("content_source", err),
				Note:      "content source failed; backend not contacted",
			}
		}
		payload = data
	}

	res, attempts := e.upload(ctx, "create", op.To, payload)
	return Record{Operation: op, Result: res, Attempts: attempts}
}

// upload stores a payload through the chunked uploader, retrying the
// whole transfer on transient failures. The byte counter resets at the
// start of each attempt so retried parts are not double-counted.
func (e *Executor) upload(ctx context.Context, kind, path string, payload []byte) (result.Result[result.Empty], int) {
	var prev int64
	up := &transfer.Uploader{
		Threshold: e.opts.UploadThreshold,
		PartSize:  e.opts.UploadPartSize,
		Progress: func(sent, total int64) {
			e.opts.Metrics.BytesUploaded(sent - prev)
			prev = sent
		},
	}

	return call(e, ctx, kind, func(ctx context.Context) result.Result[result.Empty] {
		prev = 0
		return up.Upload(ctx, e.backend, path, payload)
	})
}

func (e *Executor) copy(ctx context.Context, op plan.Operation) Record {
	caps := e.backend.Capabilities()

	switch {
	case caps.Has(backend.CapCopy):
		res, attempts := call(e, ctx, "copy", func(ctx context.Context) result.Result[result.Empty] {
			return e.backend.Copy(ctx, op.From, op.To)
		})
		return Record{Operation: op, Result: res, Attempts: attempts}

	case caps.HasAll(backend.CapRead, backend.CapWrite):
		return e.copyByReadWrite(ctx, op)

	default:
		return Record{Operation: op, Result: result.Unsupported[result.Empty]("copy")}
	}
}

// copyByReadWrite lowers a copy to a read followed by a write when the
// backend has no native copy.
func (e *Executor) copyByReadWrite(ctx context.Context, op plan.Operation) Record {
	read, readAttempts := call(e, ctx, "copy", func(ctx context.Context) result.Result[[]byte] {
		return e.backend.Read(ctx, op.From)
	})
	if !read.OK() {
		return Record{
			Operation: op,
			Result:    result.Discard(read),
			Attempts:  readAttempts,
			Note:      "lowered to read+write; read step failed",
		}
	}

	write, writeAttempts := e.upload(ctx, "copy", op.To, read.Data)
	rec := Record{
		Operation: op,
		Result:    write,
		Attempts:  readAttempts + writeAttempts,
		Note:      "lowered to read+write",
	}
	if !write.OK() {
		rec.Note = "lowered to read+write; write step failed"
	}
	return rec
}

func (e *Executor) move(ctx context.Context, op plan.Operation) Record {
	caps := e.backend.Capabilities()

	switch {
	case caps.Has(backend.CapMove):
		res, attempts := call(e, ctx, "move", func(ctx context.Context) result.Result[result.Empty] {
			return e.backend.Move(ctx, op.From, op.To)
		})
		return Record{Operation: op, Result: res, Attempts: attempts}

	case caps.HasAll(backend.CapCopy, backend.CapDelete):
		return e.moveByCopyDelete(ctx, op)

	default:
		return Record{Operation: op, Result: result.Unsupported[result.Empty]("move")}
	}
}

// moveByCopyDelete lowers a move to a copy followed by a delete of the
// source. The delete is skipped entirely when the copy fails, so a
// failed lowering never loses the source. A failed delete after a
// successful copy leaves both paths populated; the record's note says
// so because the caller must know the source survived.
func (e *Executor) moveByCopyDelete(ctx context.Context, op plan.Operation) Record {
	copyRes, copyAttempts := call(e, ctx, "move", func(ctx context.Context) result.Result[result.Empty] {
		return e.backend.Copy(ctx, op.From, op.To)
	})
	if !copyRes.OK() {
		return Record{
			Operation: op,
			Result:    copyRes,
			Attempts:  copyAttempts,
			Note:      "lowered to copy+delete; copy step failed, delete skipped",
		}
	}

	delRes, delAttempts := call(e, ctx, "move", func(ctx context.Context) result.Result[result.Empty] {
		return e.backend.Delete(ctx, op.From)
	})
	rec := Record{
		Operation: op,
		Result:    delRes,
		Attempts:  copyAttempts + delAttempts,
		Note:      "lowered to copy+delete",
	}
	if !delRes.OK() {
		rec.Note = "lowered to copy+delete; copy succeeded, source not removed"
	}
	return rec
}

func (e *Executor) deleteOne(ctx context.Context, op plan.Operation) Record {
	if !e.backend.Capabilities().Has(backend.CapDelete) {
		return Record{Operation: op, Result: result.Unsupported[result.Empty]("delete")}
	}

	res, attempts := call(e, ctx, "delete", func(ctx context.Context) result.Result[result.Empty] {
		return e.backend.Delete(ctx, op.From)
	})
	return Record{Operation: op, Result: res, Attempts: attempts}
}

// runDeletes executes the delete group. Backends declaring CapBulkDelete
// get batched bulk deletes; everything else falls back to per-operation
// deletes with the same concurrency as the other groups.
func (e *Executor) runDeletes(ctx context.Context, ops []plan.Operation, base int, report *Report, completed *atomic.Int64, total int) {
	if len(ops) == 0 {
		return
	}

	bulk, ok := e.backend.(backend.BulkDeleter)
	if !ok || !e.backend.Capabilities().Has(backend.CapBulkDelete) {
		e.runGroup(ctx, ops, base, report, completed, total)
		return
	}

	paths := make([]string, len(ops))
	for i, op := range ops {
		paths[i] = op.From
	}

	deleter := &transfer.BatchDeleter{BatchSize: e.opts.DeleteBatchSize}

	// Records for a batch are committed inside the callback, before the
	// deleter moves on, so issued always marks the boundary between
	// resolved and never-issued operations.
	issued := 0
	deleter.Run(ctx, paths, func(ctx context.Context, batch []string) result.Result[result.Empty] {
		started := time.Now()
		res, attempts := call(e, ctx, "delete", func(ctx context.Context) result.Result[result.Empty] {
			return bulk.DeleteBatch(ctx, batch)
		})
		e.opts.Metrics.BatchDeleteIssued(len(batch))

		dur := time.Since(started)
		for i := range batch {
			rec := Record{Operation: ops[issued+i], Result: res, Attempts: attempts}
			if !res.OK() {
				rec.Note = "bulk delete batch failed"
			}
			e.finish(base+issued+i, rec, report, completed, total, dur)
		}
		issued += len(batch)
		return res
	})

	// Batches after a failure (or a cancellation between batches) are
	// never issued; their operations resolve to Cancelled.
	for i := issued; i < len(ops); i++ {
		rec := Record{
			Operation: ops[i],
			Result:    result.Aborted[result.Empty](),
			Note:      "not attempted: earlier delete batch did not complete",
		}
		e.finish(base+i, rec, report, completed, total, 0)
	}
}
