package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/dlclark/regexp2"

	"github.com/TruptiM18/jscore"
)

// StepError reports the first failing step of a scenario.
type StepError struct {
	Index int
	Op    string
	Line  int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s, line %d): %v", e.Index+1, e.Op, e.Line, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Result struct {
	Name string
	File string

	// Skipped is set when the scenario's version requirement does not match
	// jscore.Version; no step ran.
	Skipped bool

	// Executed counts the steps that ran, including a failing one.
	Executed int
	Err      *StepError

	Heap     jscore.HeapStats
	Duration time.Duration
}

func (r *Result) Passed() bool {
	return !r.Skipped && r.Err == nil
}

// Runner executes scenarios. Options are applied to every runtime before
// the scenario's own config.
type Runner struct {
	Options []jscore.Option
	Logger  *slog.Logger
}

// Run executes sc with a zero Runner.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	return (&Runner{}).Run(ctx, sc)
}

// Run executes the steps of sc on a fresh runtime and stops at the first
// failing one. The returned error is reserved for problems with the
// scenario itself: a malformed requirement or an invalid config, or ctx
// being done between steps.
func (rn *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	log := rn.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("scenario", sc.Name)
	res := &Result{Name: sc.Name, File: sc.File}

	if sc.Requires != "" {
		ok, err := satisfies(sc.Requires)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
		if !ok {
			log.Info("skipped", "requires", sc.Requires, "version", jscore.Version)
			res.Skipped = true
			return res, nil
		}
	}

	opts := append([]jscore.Option{jscore.WithLogger(log)}, rn.Options...)
	if sc.Config != nil {
		if err := sc.Config.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
		opts = append(opts, sc.Config.Options()...)
	}
	host := NewHost(opts...)

	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		res.Heap = host.rt.HeapStats()
	}()
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Executed++
		if err := host.Exec(st); err != nil {
			res.Err = &StepError{Index: i, Op: st.Op, Line: st.Line, Err: err}
			log.Debug("step failed", "index", i+1, "op", st.Op, "error", err)
			return res, nil
		}
		if _, ran, err := host.rt.MaybeCollect(); err != nil {
			return res, err
		} else if ran {
			log.Debug("threshold collection", "after_step", i+1)
		}
	}
	return res, nil
}

func satisfies(requires string) (bool, error) {
	c, err := semver.NewConstraint(requires)
	if err != nil {
		return false, fmt.Errorf("requires %q: %w", requires, err)
	}
	v := semver.MustParse(jscore.Version)
	return c.Check(v), nil
}

// Filter returns the scenarios whose name matches pattern, an ECMAScript
// regular expression. An empty pattern matches everything.
func Filter(list []*Scenario, pattern string) ([]*Scenario, error) {
	if pattern == "" {
		return list, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("run pattern: %w", err)
	}
	var res []*Scenario
	for _, sc := range list {
		ok, err := re.MatchString(sc.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, sc)
		}
	}
	return res, nil
}
