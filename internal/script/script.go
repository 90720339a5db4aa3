// Package script runs TOML command scripts against an engine. A script is
// a list of [[step]] tables, each one engine action:
//
//	[[step]]
//	op = "createArray"
//	size = 5
//	values = ["5", "3", "8", "1", "9"]
//	as = "nums"
//
//	[[step]]
//	op = "setPointer"
//	id = "$nums"
//	name = "i"
//	index = 0
//
// An id of the form "$name" refers to the entity a previous step created
// with as = "name".
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dsaviz/dsaviz/internal/engine"
)

type Script struct {
	Title string          `toml:"title"`
	Steps []engine.Action `toml:"step"`
}

// StepError reports which step of a script failed.
type StepError struct {
	Step int
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step+1, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse script: unknown keys %s", strings.Join(keys, ", "))
	}
	for i, st := range s.Steps {
		if st.Op == "" {
			return nil, &StepError{Step: i, Op: "?", Err: errors.New("missing op")}
		}
	}
	return &s, nil
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Run applies every step in order and stops at the first failure. It
// returns the ids bound with "as".
func (s *Script) Run(e *engine.Engine) (map[string]string, error) {
	names := make(map[string]string)
	for i, step := range s.Steps {
		if ref, ok := strings.CutPrefix(step.ID, "$"); ok {
			id, found := names[ref]
			if !found {
				return names, &StepError{Step: i, Op: step.Op, Err: fmt.Errorf("unknown reference %q", step.ID)}
			}
			step.ID = id
		}
		res, err := e.Do(step)
		if err != nil {
			return names, &StepError{Step: i, Op: step.Op, Err: err}
		}
		if step.As != "" {
			if res.ID == "" {
				return names, &StepError{Step: i, Op: step.Op, Err: fmt.Errorf("%q created nothing to name", step.Op)}
			}
			names[step.As] = res.ID
		}
	}
	return names, nil
}
