// Package fileops runs file operations inside jobs and escalates their
// failures through the job's failure handling handshake.
//
// An Escalation wraps one job's Control. When an operation fails it offers
// the failure to whoever watches the job (retry, ignore, ignore all, roll
// back, cancel) and acts on the chosen response once the job is resumed.
// CopyBatch and RenameBatch are ready-made behaviors built on it.
package fileops

import (
	"errors"
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	errs "github.com/osmike/jobrun/internal/error"
	"go.uber.org/zap"
)

// Outcome tells the caller what became of an escalated operation.
type Outcome int

const (
	// Done means the operation eventually succeeded.
	Done Outcome = iota
	// Skipped means the failure was ignored.
	Skipped
	// Stopped means the job was rolled back or cancelled; the current step should end.
	Stopped
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

const DEFAULT_RETRY_LIMIT = 3

// Escalation drives the failure handling handshake for one job.
// It is used from the job's worker goroutine only.
type Escalation struct {
	ctrl       domain.Control
	logger     *zap.Logger
	auto       domain.FailureOption
	retryLimit int

	// ignoreAll sticks once chosen: later failures are skipped silently.
	ignoreAll bool
}

// EscalationOption configures an Escalation.
type EscalationOption func(*Escalation)

// WithAutoResponse answers every failure with o without blocking the job,
// for unattended runs. Options that are not offered for a failure (Rollback
// on a job that cannot roll back, for instance) fall back to the handshake.
func WithAutoResponse(o domain.FailureOption) EscalationOption {
	return func(e *Escalation) { e.auto = o }
}

// WithRetryLimit bounds automatic retries of one operation. Once exhausted
// the failure is escalated through the handshake. Defaults to DEFAULT_RETRY_LIMIT.
func WithRetryLimit(n int) EscalationOption {
	return func(e *Escalation) {
		if n >= 0 {
			e.retryLimit = n
		}
	}
}

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) EscalationOption {
	return func(e *Escalation) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEscalation returns an escalation bound to ctrl.
func NewEscalation(ctrl domain.Control, opts ...EscalationOption) *Escalation {
	e := &Escalation{
		ctrl:       ctrl,
		logger:     zap.NewNop(),
		retryLimit: DEFAULT_RETRY_LIMIT,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("fileops").With(zap.String("job_id", ctrl.ID()), zap.String("job_name", ctrl.Name()))
	return e
}

// IgnoringAll reports whether IgnoreAll was chosen.
func (e *Escalation) IgnoringAll() bool { return e.ignoreAll }

// Options returns the responses offered for a failure in the job's current state.
func (e *Escalation) Options() []domain.FailureOption {
	opts := []domain.FailureOption{domain.OptionRetry, domain.OptionIgnore, domain.OptionIgnoreAll}
	if st := e.ctrl.State(); e.ctrl.SupportsRollback() && !st.Undoing() && !st.Final() {
		opts = append(opts, domain.OptionRollback)
	}
	return append(opts, domain.OptionCancel)
}

// Do runs op until it succeeds or a response ends the attempt.
//
// Returns:
//   - Done, Skipped or Stopped as described on Outcome.
//   - An error only when the handshake itself failed unexpectedly.
func (e *Escalation) Do(message string, op func() error) (Outcome, error) {
	autoRetries := 0
	for {
		err := op()
		if err == nil {
			return Done, nil
		}
		if e.ignoreAll {
			e.logger.Debug("failure ignored", zap.String("operation", message), zap.Error(err))
			return Skipped, nil
		}

		desc := domain.NewFailureDescription(err, fmt.Sprintf("%s: %v", message, err), e.Options()...)
		if sErr := desc.SetRespond(domain.OptionRetry); sErr != nil {
			return Stopped, sErr
		}

		resp, stopped, hErr := e.respond(desc, &autoRetries)
		if hErr != nil || stopped {
			return Stopped, hErr
		}

		switch resp {
		case domain.OptionRetry, domain.NoResponse:
			continue
		case domain.OptionIgnore:
			return Skipped, nil
		case domain.OptionIgnoreAll:
			e.ignoreAll = true
			return Skipped, nil
		case domain.OptionRollback:
			return Stopped, e.ignoreRejected(e.ctrl.Rollback())
		case domain.OptionCancel:
			return Stopped, e.ignoreRejected(e.ctrl.Cancel())
		default:
			return Stopped, errs.New(errs.ErrInvalidArgument, fmt.Sprintf("unknown response %q", resp))
		}
	}
}

// respond picks the response for desc, either automatically or through
// RequestFailureHandling. stopped is true when the job ended or switched
// between forward work and rollback while it waited (cancelled or rolled back
// by someone else). Waking in the resume target of the failure state, from
// any state the operation failed in, keeps the chosen response.
func (e *Escalation) respond(desc *domain.FailureDescription, autoRetries *int) (resp domain.FailureOption, stopped bool, err error) {
	if e.auto != domain.NoResponse && desc.HasOption(e.auto) {
		if e.auto != domain.OptionRetry || *autoRetries < e.retryLimit {
			if e.auto == domain.OptionRetry {
				*autoRetries++
			}
			e.logger.Info("failure answered automatically",
				zap.String("failure", desc.Message()),
				zap.String("response", string(e.auto)),
			)
			return e.auto, false, nil
		}
	}

	before := e.ctrl.State()
	woke, err := e.ctrl.RequestFailureHandling(desc)
	if err != nil {
		if errors.Is(err, errs.ErrRejectedTransition) && e.ctrl.State().Final() {
			return domain.NoResponse, true, nil
		}
		return domain.NoResponse, true, err
	}
	if woke.Final() || woke.Undoing() != before.Undoing() {
		e.logger.Debug("job left its state while failure was pending",
			zap.String("before", string(before)),
			zap.String("after", string(woke)),
		)
		return domain.NoResponse, true, nil
	}
	return desc.Respond(), false, nil
}

// ignoreRejected drops the error of a rollback or cancel the job no longer accepts.
func (e *Escalation) ignoreRejected(err error) error {
	if errors.Is(err, errs.ErrRejectedTransition) {
		e.logger.Debug("response no longer applicable", zap.Error(err))
		return nil
	}
	return err
}
