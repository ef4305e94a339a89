// Package session runs independent module builds in parallel. Each job gets
// its own builder, scope stack and diagnostics, so sessions share nothing
// but the operator registry; that isolation is what makes the fan-out safe
// without locks in the build path.
package session

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rill/internal/buildcfg"
	"rill/internal/builder"
	"rill/internal/diag"
	"rill/internal/ir"
	"rill/internal/opreg"
	"rill/internal/trace"
)

// Job is one module to build. Build receives a builder with the module-root
// scope already open and emits functions into it.
type Job struct {
	Name  string
	Build func(b *builder.Builder) error
}

// Result is one finished session.
type Result struct {
	Name    string
	Session string // UUID tagging this session's trace events
	Module  *ir.Module
	Diags   []diag.Diagnostic
}

// Options configures a fan-out run.
type Options struct {
	Build   buildcfg.Options
	Ops     *opreg.Registry // nil = opreg.Global()
	Tracer  trace.Tracer    // nil = trace.Nop; must be goroutine-safe
	Workers int             // <=0 = GOMAXPROCS
}

// Run builds every job, bounded by Workers goroutines. Results keep job
// order. The first failing session cancels the rest via ctx.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runOne(jobs[i], opts)
			if err != nil {
				return fmt.Errorf("session: job %q: %w", jobs[i].Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(job Job, opts Options) (Result, error) {
	b, err := builder.New(opts.Build, opts.Ops, opts.Tracer)
	if err != nil {
		return Result{}, err
	}
	id := uuid.NewString()
	b.SetSession(id)

	if err := b.BeginModule(); err != nil {
		return Result{}, err
	}
	if err := job.Build(b); err != nil {
		return Result{}, err
	}
	mod, err := b.EndModule()
	if err != nil {
		return Result{}, err
	}
	if err := b.Close(); err != nil {
		return Result{}, err
	}

	bag := b.Diagnostics()
	bag.Sort()
	return Result{
		Name:    job.Name,
		Session: id,
		Module:  mod,
		Diags:   bag.Items(),
	}, nil
}
