package pipeline

import (
	"fmt"
	"sort"

	"github.com/aretw0/gambit/pkg/domain"
)

// DefaultMaxSteps bounds the number of steps one Execute call may run.
const DefaultMaxSteps = 64

// StepFunc is the body of one pipeline step.
type StepFunc func(sc *domain.SessionContext) StepOutcome

// Status is the terminal or suspended state reported by Execute.
type Status int

const (
	Completed Status = iota + 1
	Suspended
	Failed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Suspended:
		return "suspended"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is what the driver hands back to the command handler.
type Result struct {
	Status    Status
	Decisions []domain.Decision
	Request   *domain.InteractionRequest
	Reason    string
}

// WiringError is the panic value raised for a malformed pipeline at run time:
// an unknown step id, a zero outcome or a Continue loop exceeding the step limit.
type WiringError struct {
	Pipeline string
	Step     string
	Reason   string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("pipeline %s: step %q: %s", e.Pipeline, e.Step, e.Reason)
}

// Pipeline is an immutable step graph with a start step.
type Pipeline struct {
	name     string
	start    string
	steps    map[string]StepFunc
	maxSteps int
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Start returns the id of the start step.
func (p *Pipeline) Start() string { return p.start }

// Has reports whether a step exists.
func (p *Pipeline) Has(id string) bool {
	_, ok := p.steps[id]
	return ok
}

// Steps returns the step ids in sorted order.
func (p *Pipeline) Steps() []string {
	ids := make([]string, 0, len(p.steps))
	for id := range p.steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Execute drives the session from sc.CurrentNodeID (or the start step when empty)
// until a step suspends, commits, ends or aborts.
//
// On suspension sc.CurrentNodeID holds the resume step and the returned request
// carries sc.SessionID. Wiring faults panic with *WiringError.
func (p *Pipeline) Execute(sc *domain.SessionContext) Result {
	current := sc.CurrentNodeID
	if current == "" {
		current = p.start
	}

	for steps := 0; ; steps++ {
		if steps >= p.maxSteps {
			panic(&WiringError{Pipeline: p.name, Step: current, Reason: fmt.Sprintf("step limit %d exceeded", p.maxSteps)})
		}
		step, ok := p.steps[current]
		if !ok {
			panic(&WiringError{Pipeline: p.name, Step: current, Reason: "unknown step"})
		}

		sc.CurrentNodeID = current
		sc.Trail = append(sc.Trail, current)
		out := step(sc)

		switch out.Kind {
		case OutcomeContinue:
			current = out.Next

		case OutcomeSuspend:
			if out.Request == nil {
				panic(&WiringError{Pipeline: p.name, Step: current, Reason: "suspend without request"})
			}
			if !p.Has(out.Next) {
				panic(&WiringError{Pipeline: p.name, Step: current, Reason: fmt.Sprintf("resume step %q does not exist", out.Next)})
			}
			sc.CurrentNodeID = out.Next
			req := *out.Request
			req.SessionID = sc.SessionID
			return Result{Status: Suspended, Request: &req}

		case OutcomeCommit:
			return Result{Status: Completed, Decisions: out.Decisions}

		case OutcomeEnd:
			return Result{Status: Completed}

		case OutcomeAbort:
			return Result{Status: Failed, Reason: out.Reason}

		default:
			panic(&WiringError{Pipeline: p.name, Step: current, Reason: "zero outcome"})
		}
	}
}
