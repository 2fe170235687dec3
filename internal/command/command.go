// Package command implements the reversible mutation protocol of
// §4.D: every Command runs in either direction against a
// project.State, symmetrically, and adjacent commands from live
// editing may merge into one undo-stack entry.
//
// Grounded on the teacher's internal/model undo stack
// (PushUndoState/PopUndoState/UndoHistory, see undo_test.go), which
// snapshots the whole model; here the same "push now, pop to undo"
// idea is generalized from whole-state snapshotting to per-command
// symmetric apply/rollback, matching the original Rust design's
// StateCommand::execute/rollback more closely while keeping the
// teacher's History naming and logging idiom.
package command

import (
	"errors"
	"log"

	"github.com/cubedaw/engine/internal/project"
)

// Direction selects which half of a reversible Command runs.
type Direction int

const (
	Execute Direction = iota
	Rollback
)

func (d Direction) String() string {
	if d == Rollback {
		return "rollback"
	}
	return "execute"
}

// Strength distinguishes a command produced by live/in-progress
// editing (Weak, e.g. every intermediate frame of a drag) from one
// produced by a release event (Strong). On release, trailing weak
// commands that produced no net change are pruned from the undo
// stack (see History.PruneTrailingWeak).
type Strength int

const (
	Weak Strength = iota
	Strong
)

// ErrNoop is returned by Run when the command had nothing to do (e.g.
// a move that would overlap): the caller should treat it as if the
// command had never been pushed, not as a hard failure.
var ErrNoop = errors.New("command: no-op")

// Command is a reversible unit of state mutation. Run must be
// symmetric: Run(s, Execute) followed by Run(s, Rollback) must leave s
// structurally equal to its state before the pair ran.
type Command interface {
	// Run applies or reverses this command against s, depending on dir.
	Run(s *project.State, dir Direction) error
	// TryMerge attempts to fold other (which ran immediately after the
	// receiver) into the receiver, so a single undo step can undo both.
	// Returns false if the two commands aren't mergeable.
	TryMerge(other Command) bool
	// Strength reports whether this command came from live editing or a
	// release event.
	Strength() Strength
}

// entry is one slot on a History's undo stack.
type entry struct {
	cmd Command
}

// History is the GUI-side undo stack described in §4.D/§6: commands
// are pushed as they execute, adjacent weak commands merge, and a
// release event prunes trailing weak commands that produced no net
// change. Kept here (rather than purely in the GUI, an out-of-scope
// collaborator) because merge/prune is part of the command protocol's
// testable behavior (§8).
type History struct {
	undone []entry
	redone []entry
}

// NewHistory returns an empty undo/redo stack.
func NewHistory() *History { return &History{} }

// Push runs cmd against s (Execute) and records it, attempting to
// merge it into the top of the undo stack first.
func (h *History) Push(s *project.State, cmd Command) error {
	if err := cmd.Run(s, Execute); err != nil {
		if errors.Is(err, ErrNoop) {
			log.Printf("command: push produced no-op, discarding")
			return nil
		}
		return err
	}
	h.redone = nil
	if len(h.undone) > 0 {
		top := h.undone[len(h.undone)-1]
		if top.cmd.TryMerge(cmd) {
			return nil
		}
	}
	h.undone = append(h.undone, entry{cmd: cmd})
	return nil
}

// Undo rolls back the most recent command, if any.
func (h *History) Undo(s *project.State) error {
	if len(h.undone) == 0 {
		return nil
	}
	e := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]
	if err := e.cmd.Run(s, Rollback); err != nil {
		return err
	}
	h.redone = append(h.redone, e)
	return nil
}

// Redo re-executes the most recently undone command, if any.
func (h *History) Redo(s *project.State) error {
	if len(h.redone) == 0 {
		return nil
	}
	e := h.redone[len(h.redone)-1]
	h.redone = h.redone[:len(h.redone)-1]
	if err := e.cmd.Run(s, Execute); err != nil {
		return err
	}
	h.undone = append(h.undone, e)
	return nil
}

// PruneTrailingWeak drops trailing Weak commands from the undo stack
// without rolling them back — used on a release event when the weak
// commands that preceded it produced no net change (e.g. a drag that
// ends where it started): the GUI has already decided they're
// irrelevant and just wants them gone from the undo stack.
func (h *History) PruneTrailingWeak() {
	for len(h.undone) > 0 && h.undone[len(h.undone)-1].cmd.Strength() == Weak {
		h.undone = h.undone[:len(h.undone)-1]
	}
}

// Len reports the current undo-stack depth.
func (h *History) Len() int { return len(h.undone) }
