// Package scenario drives a jscore runtime from YAML documents. A scenario
// is a named list of steps; each step is a one-key mapping naming the
// operation:
//
//	name: prototype shadowing
//	steps:
//	  - object: {name: animal}
//	  - set: {target: animal, key: walk, value: animal walk}
//	  - object: {name: rabbit, proto: "@animal"}
//	  - get: {target: rabbit, key: walk, expect: animal walk}
//
// Scalars are primitives. A string starting with "@" names a labelled
// object, closure or symbol, "@undefined" is undefined and "@@x" is the
// literal string "@x". Labels are host references: they do not keep
// anything alive across a collection cycle.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TruptiM18/jscore"
)

type Scenario struct {
	Name     string         `yaml:"name"`
	Requires string         `yaml:"requires,omitempty"`
	Config   *jscore.Config `yaml:"config,omitempty"`
	Steps    []Step         `yaml:"steps"`

	// File is the path the scenario was loaded from, if any.
	File string `yaml:"-"`
}

// Step is one operation. Args holds the union of the fields every operation
// accepts; each operation reads the ones it needs.
type Step struct {
	Op   string
	Args Args
	Line int
}

type Args struct {
	Name        string    `yaml:"name"`
	Env         string    `yaml:"env"`
	Outer       string    `yaml:"outer"`
	Target      string    `yaml:"target"`
	Fn          string    `yaml:"fn"`
	As          string    `yaml:"as"`
	Symbol      string    `yaml:"symbol"`
	Description *string   `yaml:"description"`
	Intern      bool      `yaml:"intern"`
	Sources     []string  `yaml:"sources"`
	Key         yaml.Node `yaml:"key"`
	Value       yaml.Node `yaml:"value"`
	Proto       yaml.Node `yaml:"proto"`
	This        yaml.Node `yaml:"this"`
	Arguments   yaml.Node `yaml:"args"`
	Expect      yaml.Node `yaml:"expect"`
	Found       *bool     `yaml:"found"`
	Reclaimed   *int      `yaml:"reclaimed"`
	Error       string    `yaml:"error"`
}

var ops = map[string]struct{}{
	"object":  {},
	"env":     {},
	"declare": {},
	"write":   {},
	"read":    {},
	"set":     {},
	"get":     {},
	"delete":  {},
	"keys":    {},
	"forin":   {},
	"names":   {},
	"symbols": {},
	"assign":  {},
	"symbol":  {},
	"keyfor":  {},
	"proto":   {},
	"collect": {},
	"alive":   {},
	"counter": {},
	"call":    {},
}

var argNames = map[string]struct{}{}

func init() {
	t := reflect.TypeOf(Args{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		argNames[name] = struct{}{}
	}
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: a step is a mapping with exactly one key", node.Line)
	}
	op := node.Content[0].Value
	if _, ok := ops[op]; !ok {
		return fmt.Errorf("line %d: unknown step %q", node.Line, op)
	}
	s.Op = op
	s.Line = node.Line
	if body := node.Content[1]; body.Kind != yaml.ScalarNode || body.Tag != "!!null" {
		if body.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: %s: arguments must be a mapping", node.Line, op)
		}
		for i := 0; i < len(body.Content); i += 2 {
			if _, ok := argNames[body.Content[i].Value]; !ok {
				return fmt.Errorf("line %d: %s: unknown argument %q", body.Content[i].Line, op, body.Content[i].Value)
			}
		}
		if err := body.Decode(&s.Args); err != nil {
			return fmt.Errorf("line %d: %s: %w", node.Line, op, err)
		}
	}
	return nil
}

// Load reads every scenario from a YAML stream; documents are separated by
// "---".
func Load(r io.Reader) ([]*Scenario, error) {
	var res []*Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	for {
		sc := new(Scenario)
		err := dec.Decode(sc)
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario %d", len(res)+1)
		}
		res = append(res, sc)
	}
}

// LoadFile is Load on the contents of path.
func LoadFile(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	list, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, sc := range list {
		sc.File = path
	}
	return list, nil
}

// ParseStep decodes a single step, typically written in flow style:
//
//	get: {target: rabbit, key: walk}
func ParseStep(src string) (Step, error) {
	var s Step
	if err := yaml.Unmarshal([]byte(src), &s); err != nil {
		return Step{}, err
	}
	if s.Op == "" {
		return Step{}, errors.New("empty step")
	}
	return s, nil
}
