package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/TruptiM18/jscore"
)

const globalEnv = "global"

// ErrMismatch is wrapped by every failed expectation.
var ErrMismatch = errors.New("unexpected result")

// Host executes steps against one runtime. It keeps the labels of the
// scenario: environments in one namespace, objects, closures and symbols in
// another.
type Host struct {
	rt     *jscore.Runtime
	envs   map[string]jscore.EnvRef
	labels map[string]jscore.Value
}

func NewHost(opts ...jscore.Option) *Host {
	return &Host{
		rt:     jscore.New(opts...),
		envs:   make(map[string]jscore.EnvRef),
		labels: make(map[string]jscore.Value),
	}
}

func (h *Host) Runtime() *jscore.Runtime {
	return h.rt
}

// Labels returns the object, closure and symbol labels in sorted order.
func (h *Host) Labels() []string {
	res := make([]string, 0, len(h.labels))
	for name := range h.labels {
		res = append(res, name)
	}
	slices.Sort(res)
	return res
}

// Exec runs one step. A step with an "error" argument succeeds only if the
// operation fails with an error whose message starts with that text.
func (h *Host) Exec(st Step) error {
	err := h.exec(st)
	want := st.Args.Error
	if want == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("%w: no error, want %s", ErrMismatch, want)
	}
	if errors.Is(err, ErrMismatch) || !strings.HasPrefix(err.Error(), want) {
		return fmt.Errorf("%w: error %q, want %s", ErrMismatch, err, want)
	}
	return nil
}

func (h *Host) exec(st Step) error {
	a := &st.Args
	switch st.Op {
	case "object":
		return h.newObject(a)
	case "env":
		return h.env(a)
	case "declare":
		env, err := h.lookupEnv(a.Env)
		if err != nil {
			return err
		}
		v, err := h.value(&a.Value)
		if err != nil {
			return err
		}
		return h.rt.Declare(env, a.Name, v)
	case "write":
		env, err := h.lookupEnv(a.Env)
		if err != nil {
			return err
		}
		v, err := h.value(&a.Value)
		if err != nil {
			return err
		}
		return h.rt.Assign(env, a.Name, v)
	case "read":
		env, err := h.lookupEnv(a.Env)
		if err != nil {
			return err
		}
		v, err := h.rt.Lookup(env, a.Name)
		if err != nil {
			return err
		}
		return h.expectValue(a, v)
	case "set":
		obj, key, err := h.targetKey(a)
		if err != nil {
			return err
		}
		v, err := h.value(&a.Value)
		if err != nil {
			return err
		}
		return h.rt.Set(obj, key, v)
	case "get":
		obj, key, err := h.targetKey(a)
		if err != nil {
			return err
		}
		v, err := h.rt.Get(obj, key)
		if err != nil {
			return err
		}
		return h.expectValue(a, v)
	case "delete":
		obj, key, err := h.targetKey(a)
		if err != nil {
			return err
		}
		ok, err := h.rt.Delete(obj, key)
		if err != nil {
			return err
		}
		return h.expectValue(a, jscore.ToValue(ok))
	case "keys", "forin", "names", "symbols":
		return h.enumerate(st.Op, a)
	case "assign":
		target, err := h.lookupObject(a.Target)
		if err != nil {
			return err
		}
		sources := make([]jscore.ObjectRef, 0, len(a.Sources))
		for _, name := range a.Sources {
			src, err := h.lookupObject(name)
			if err != nil {
				return err
			}
			sources = append(sources, src)
		}
		return h.rt.ObjectAssign(target, sources...)
	case "symbol":
		return h.symbol(a)
	case "keyfor":
		return h.keyFor(a)
	case "proto":
		obj, err := h.lookupObject(a.Target)
		if err != nil {
			return err
		}
		v, err := h.value(&a.Value)
		if err != nil {
			return err
		}
		return h.rt.SetPrototypeOf(obj, v)
	case "collect":
		stats, err := h.rt.Collect()
		if err != nil {
			return err
		}
		if a.Reclaimed != nil && stats.Reclaimed() != *a.Reclaimed {
			return fmt.Errorf("%w: reclaimed %d, want %d", ErrMismatch, stats.Reclaimed(), *a.Reclaimed)
		}
		return nil
	case "alive":
		return h.alive(a)
	case "counter":
		return h.counter(a)
	case "call":
		return h.call(a)
	}
	return fmt.Errorf("unknown step %q", st.Op)
}
