package fileops

import (
	"fmt"
	"github.com/osmike/jobrun/internal/domain"
	"sync"
)

// Pair is one source and destination path.
type Pair struct {
	Src string
	Dst string
}

// batch walks a list of pairs one per step and undoes completed ones in
// reverse order on rollback.
type batch struct {
	pairs []Pair
	opts  []EscalationOption

	verb    string
	forward func(e *Escalation, p Pair) (Outcome, error)
	reverse func(e *Escalation, p Pair) (Outcome, error)

	esc *Escalation

	mu      sync.Mutex
	next    int
	applied []Pair
	undoing bool
}

func (b *batch) PreExecution(ctrl domain.Control) error {
	b.esc = NewEscalation(ctrl, b.opts...)
	ctrl.SaveData(map[string]interface{}{"total": len(b.pairs)})
	return nil
}

func (b *batch) NextStep(ctrl domain.Control) (bool, error) {
	b.mu.Lock()
	idx := b.next
	b.mu.Unlock()
	if idx >= len(b.pairs) {
		return true, nil
	}

	p := b.pairs[idx]
	ctrl.SetDescription(fmt.Sprintf("%s %s", b.verb, p.Src))

	outcome, err := b.forward(b.esc, p)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	switch outcome {
	case Done:
		b.applied = append(b.applied, p)
		b.next++
	case Skipped:
		b.next++
	case Stopped:
		return false, nil
	}
	return b.next >= len(b.pairs), nil
}

func (b *batch) NextRollbackStep(ctrl domain.Control) (bool, error) {
	b.mu.Lock()
	b.undoing = true
	n := len(b.applied)
	b.mu.Unlock()
	if n == 0 {
		return true, nil
	}

	p := b.applied[n-1]
	ctrl.SetDescription(fmt.Sprintf("reverting %s %s", b.verb, p.Src))

	outcome, err := b.reverse(b.esc, p)
	if err != nil {
		return false, err
	}
	if outcome == Stopped {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied = b.applied[:n-1]
	return len(b.applied) == 0, nil
}

func (b *batch) PostExecution(ctrl domain.Control) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ctrl.SaveData(map[string]interface{}{
		"processed": b.next,
		"applied":   len(b.applied),
	})
	return nil
}

// Percentage reports forward progress, or the share still to revert while rolling back.
func (b *batch) Percentage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pairs) == 0 {
		return 100
	}
	if b.undoing {
		return len(b.applied) * 100 / len(b.pairs)
	}
	return b.next * 100 / len(b.pairs)
}

func (b *batch) SupportsRollback() bool { return true }

// Applied returns the pairs whose operation is currently in effect.
func (b *batch) Applied() []Pair {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Pair(nil), b.applied...)
}

// CopyBatch copies every pair, one per step. Rollback deletes the copies it made.
// An existing destination is never overwritten; the copy fails and is escalated.
type CopyBatch struct {
	batch
}

var _ domain.Behavior = (*CopyBatch)(nil)

// NewCopyBatch returns a behavior copying pairs in order.
func NewCopyBatch(pairs []Pair, opts ...EscalationOption) *CopyBatch {
	return &CopyBatch{batch{
		pairs:   append([]Pair(nil), pairs...),
		opts:    opts,
		verb:    "copying",
		forward: func(e *Escalation, p Pair) (Outcome, error) { return e.Copy(p.Src, p.Dst) },
		reverse: func(e *Escalation, p Pair) (Outcome, error) { return e.Delete(p.Dst) },
	}}
}

// RenameBatch renames every pair, one per step. Rollback renames them back.
type RenameBatch struct {
	batch
}

var _ domain.Behavior = (*RenameBatch)(nil)

// NewRenameBatch returns a behavior renaming pairs in order.
func NewRenameBatch(pairs []Pair, opts ...EscalationOption) *RenameBatch {
	return &RenameBatch{batch{
		pairs:   append([]Pair(nil), pairs...),
		opts:    opts,
		verb:    "renaming",
		forward: func(e *Escalation, p Pair) (Outcome, error) { return e.Rename(p.Src, p.Dst) },
		reverse: func(e *Escalation, p Pair) (Outcome, error) { return e.Rename(p.Dst, p.Src) },
	}}
}
