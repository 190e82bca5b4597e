package domain

import (
	"fmt"
	errs "github.com/osmike/jobrun/internal/error"
	"slices"
	"sync"
	"time"
)

// FailureOption is a response an external actor may choose for a recoverable failure.
type FailureOption string

const (
	// NoResponse means no response has been chosen yet.
	NoResponse      FailureOption = ""
	OptionRetry     FailureOption = "retry"
	OptionIgnore    FailureOption = "ignore"
	OptionIgnoreAll FailureOption = "ignore_all"
	OptionRollback  FailureOption = "rollback"
	OptionCancel    FailureOption = "cancel"
)

// FailureDescription describes a recoverable failure raised by a job and
// carries the response chosen for it.
//
// The option list is fixed at construction. The response may be set from any
// goroutine; it must be NoResponse or one of the options.
type FailureDescription struct {
	cause   error
	message string
	options []FailureOption

	mu      sync.Mutex
	respond FailureOption
}

// NewFailureDescription creates a description with the allowed options.
// Duplicate options are dropped, NoResponse is never an option.
func NewFailureDescription(cause error, message string, options ...FailureOption) *FailureDescription {
	opts := make([]FailureOption, 0, len(options))
	for _, o := range options {
		if o == NoResponse || slices.Contains(opts, o) {
			continue
		}
		opts = append(opts, o)
	}
	return &FailureDescription{
		cause:   cause,
		message: message,
		options: opts,
	}
}

// Cause returns the underlying error, if any.
func (d *FailureDescription) Cause() error { return d.cause }

// Message returns the human readable text of the failure.
func (d *FailureDescription) Message() string { return d.message }

// Options returns a copy of the allowed responses.
func (d *FailureDescription) Options() []FailureOption {
	return slices.Clone(d.options)
}

// HasOption reports whether o is an allowed response.
func (d *FailureDescription) HasOption(o FailureOption) bool {
	return slices.Contains(d.options, o)
}

// SetRespond records the chosen response.
//
// Returns:
//   - ErrInvalidArgument if o is neither NoResponse nor one of Options.
func (d *FailureDescription) SetRespond(o FailureOption) error {
	if o != NoResponse && !d.HasOption(o) {
		return errs.New(errs.ErrInvalidArgument, fmt.Sprintf("response %q not in %v", o, d.options))
	}
	d.mu.Lock()
	d.respond = o
	d.mu.Unlock()
	return nil
}

// Respond returns the chosen response, NoResponse if none was set.
func (d *FailureDescription) Respond() FailureOption {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.respond
}

func (d *FailureDescription) String() string {
	if d.cause != nil {
		return fmt.Sprintf("%s: %v %v", d.message, d.cause, d.options)
	}
	return fmt.Sprintf("%s %v", d.message, d.options)
}

// FailureReport is what a job hands to its FailureSink when a hook lets an
// error escape.
type FailureReport struct {
	// Err is the escaped error. Panics are wrapped in ErrJobPanicked.
	Err error
	// Origin identifies the goroutine the error came from ("name#id").
	Origin  string
	Message string
	JobID   string
	JobName string
	// State is the job state at the moment the error was caught.
	State State
	Time  time.Time
}

// FailureSink receives unexpected job failures. It is called at most once per job run.
type FailureSink interface {
	ReportFailure(report FailureReport) error
}
