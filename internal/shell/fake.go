package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one invocation seen by a Fake.
type Call struct {
	Name string
	Args []string
}

// String renders the call the way it would appear on a command line.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Fake is a Runner for tests. Responses are matched by command-line prefix
// in registration order; unmatched commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     []Call
}

type fakeResponse struct {
	prefix string
	result Result
	err    error
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// Respond registers a canned result for commands whose rendered command line
// starts with prefix.
func (f *Fake) Respond(prefix string, result Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{prefix: prefix, result: result})
}

// RespondErr registers a start failure for commands matching prefix.
func (f *Fake) RespondErr(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{prefix: prefix, err: err})
}

// Run records the call and returns the first matching canned response.
func (f *Fake) Run(_ context.Context, name string, args ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Name: name, Args: args}
	f.calls = append(f.calls, call)

	line := call.String()
	for _, r := range f.responses {
		if strings.HasPrefix(line, r.prefix) {
			if r.err != nil {
				return Result{}, fmt.Errorf("starting %s: %w", name, r.err)
			}
			return r.result, nil
		}
	}
	return Result{}, nil
}

// Calls returns a copy of all recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallLines returns each recorded invocation rendered as a command line.
func (f *Fake) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}
