// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	"sync"
	"testing"
	"time"
)

// WaitForCondition polls the condition function until it returns true or timeout is reached.
// It fails the test with a fatal error if the timeout is reached.
func WaitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timeout waiting for condition")
}

// Event is one notification captured by Recorder.
type Event struct {
	Kind    string
	From    domain.State
	To      domain.State
	Command domain.Command
	// State is the job state read from inside the callback.
	State domain.State
}

func (e Event) String() string {
	if e.Kind == "state" {
		return fmt.Sprintf("state %s->%s (%s)", e.From, e.To, e.Command)
	}
	return fmt.Sprintf("%s @%s", e.Kind, e.State)
}

// Recorder is a JobListener that records every notification.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ domain.JobListener = (*Recorder)(nil)

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) StateChanged(job domain.Job, from, to domain.State, cmd domain.Command) {
	r.add(Event{Kind: "state", From: from, To: to, Command: cmd, State: job.State()})
}

func (r *Recorder) ProgressChanged(job domain.Job) {
	r.add(Event{Kind: "progress", State: job.State()})
}

func (r *Recorder) FailureEmerged(job domain.Job, _ *domain.FailureDescription) {
	r.add(Event{Kind: "failure", State: job.State()})
}

func (r *Recorder) DescriptionChanged(job domain.Job) {
	r.add(Event{Kind: "description", State: job.State()})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// States returns the sequence of states observed: the initial From followed
// by every transition target.
func (r *Recorder) States() []domain.State {
	var res []domain.State
	for _, e := range r.Events() {
		if e.Kind != "state" {
			continue
		}
		if len(res) == 0 {
			res = append(res, e.From)
		}
		res = append(res, e.To)
	}
	return res
}

// Steps is a scripted Behavior: the forward work is done after Total steps,
// the rollback after as many rollback steps as forward steps were done.
type Steps struct {
	Total    int
	Undoable bool

	// OnStep runs before a forward step is counted; returning an error fails the step.
	OnStep func(ctrl domain.Control, n int) error
	// OnRollbackStep runs before a rollback step is counted.
	OnRollbackStep func(ctrl domain.Control, n int) error

	mu        sync.Mutex
	done      int
	undone    int
	pre, post int
	stepCalls int
	undoCalls int
}

var _ domain.Behavior = (*Steps)(nil)

func (s *Steps) PreExecution(domain.Control) error {
	s.mu.Lock()
	s.pre++
	s.mu.Unlock()
	return nil
}

func (s *Steps) NextStep(ctrl domain.Control) (bool, error) {
	s.mu.Lock()
	s.stepCalls++
	n := s.done + 1
	s.mu.Unlock()

	if s.OnStep != nil {
		if err := s.OnStep(ctrl, n); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = n
	return s.done >= s.Total, nil
}

func (s *Steps) NextRollbackStep(ctrl domain.Control) (bool, error) {
	s.mu.Lock()
	s.undoCalls++
	n := s.undone + 1
	s.mu.Unlock()

	if s.OnRollbackStep != nil {
		if err := s.OnRollbackStep(ctrl, n); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.undone = n
	return s.undone >= s.done, nil
}

func (s *Steps) PostExecution(domain.Control) error {
	s.mu.Lock()
	s.post++
	s.mu.Unlock()
	return nil
}

func (s *Steps) Percentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Total == 0 {
		return domain.UNKNOWN_PERCENTAGE
	}
	return s.done * 100 / s.Total
}

func (s *Steps) SupportsRollback() bool { return s.Undoable }

// Done returns the number of completed forward steps.
func (s *Steps) Done() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// StepCalls returns how many times NextStep was called.
func (s *Steps) StepCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepCalls
}

// RollbackCalls returns how many times NextRollbackStep was called.
func (s *Steps) RollbackCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undoCalls
}

// Hooks returns how many times PreExecution and PostExecution ran.
func (s *Steps) Hooks() (pre, post int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pre, s.post
}

// Sink is a FailureSink that keeps every report.
type Sink struct {
	mu      sync.Mutex
	reports []domain.FailureReport
}

func (s *Sink) ReportFailure(r domain.FailureReport) error {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	return nil
}

// Reports returns a copy of the received reports.
func (s *Sink) Reports() []domain.FailureReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FailureReport(nil), s.reports...)
}
