package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"rill/internal/buildcfg"
	"rill/internal/builder"
	"rill/internal/ir"
	"rill/internal/opreg"
	"rill/internal/trace"
)

// identityJob emits a single-function module fn(x) = op(x).
func identityJob(name, op string) Job {
	return Job{
		Name: name,
		Build: func(b *builder.Builder) error {
			x := &ir.Var{ID: 1, Name: "x", Type: ir.TensorType{Rank: 1, DType: ir.DTypeF32}}
			fn := &ir.Function{Params: []*ir.Var{x}, Body: ir.NewCall(op, ir.NewVarRef(x))}
			_, err := b.AddFuncToModule(fn, name)
			return err
		},
	}
}

func TestRunBuildsIsolatedModules(t *testing.T) {
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = identityJob(fmt.Sprintf("mod%d", i), fmt.Sprintf("op%d", i))
	}
	results, err := Run(context.Background(), jobs, Options{
		Build:   buildcfg.Default(),
		Ops:     opreg.New(),
		Workers: 4,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	seen := make(map[string]bool)
	for i, res := range results {
		if res.Name != jobs[i].Name {
			t.Fatalf("results must keep job order: %q at %d", res.Name, i)
		}
		if res.Module.Len() != 1 {
			t.Fatalf("each session must build its own module, %q has %d funcs", res.Name, res.Module.Len())
		}
		if res.Session == "" || seen[res.Session] {
			t.Fatalf("session identities must be unique and non-empty")
		}
		seen[res.Session] = true
	}
}

func TestRunPropagatesBuildErrors(t *testing.T) {
	boom := errors.New("front end exploded")
	jobs := []Job{
		identityJob("ok", "relu"),
		{Name: "bad", Build: func(*builder.Builder) error { return boom }},
	}
	_, err := Run(context.Background(), jobs, Options{Build: buildcfg.Default(), Ops: opreg.New()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the job error, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), `job "bad"`) {
		t.Fatalf("error must name the failing job, got %v", err)
	}
}

// syncWriter lets concurrent sessions share one trace sink in the test.
type syncWriter struct {
	mu sync.Mutex
	sb strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sb.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sb.String()
}

func TestRunTagsTraceEventsPerSession(t *testing.T) {
	var w syncWriter
	tr := trace.NewStreamTracer(&w, trace.LevelSession)
	results, err := Run(context.Background(), []Job{identityJob("m", "relu")}, Options{
		Build:  buildcfg.Default(),
		Ops:    opreg.New(),
		Tracer: tr,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := w.String()
	if !strings.Contains(out, results[0].Session) {
		t.Fatalf("trace output must carry the session id:\n%s", out)
	}
	if !strings.Contains(out, "module.begin") || !strings.Contains(out, "module.end") {
		t.Fatalf("module brackets must be traced:\n%s", out)
	}
}
