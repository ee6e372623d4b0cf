// Package conflict presents detected sync conflicts and applies the
// caller's per-item decisions back into the merge.
package conflict

import (
	"sync"

	"github.com/hkaya/meallogger/internal/logging"
	"github.com/hkaya/meallogger/internal/models"
)

// Choice is the caller's decision for one conflict.
type Choice string

const (
	// ChoiceLocal keeps this device's record; local wins by inaction.
	ChoiceLocal Choice = "local"
	// ChoiceRemote overwrites local content with the cloud row.
	ChoiceRemote Choice = "remote"
)

// Conflict is a pair of divergent edits sharing a sync id: content differs
// and the two ModifiedAt instants differ.
type Conflict struct {
	SyncID string
	Local  *models.MealRecord
	Remote models.RemoteRow
}

// Resolution is one resolved conflict, forwarded into the merge.
type Resolution struct {
	SyncID string
	Choice Choice
	Local  *models.MealRecord
	Remote models.RemoteRow
}

// Pending holds the three partitions of a suspended sync round.
type Pending struct {
	Conflicts     []Conflict
	NewFromRemote []models.RemoteRow
	LocalOnly     []*models.MealRecord
}

// Resolver stores a suspended round's partitions and turns the caller's
// choices into resolutions. Resolution is all-or-nothing per round: every
// conflict gets a choice, defaulting to this device.
type Resolver struct {
	mu      sync.Mutex
	pending *Pending
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Present stores the partitions of a suspended round, replacing any
// previous pending state.
func (r *Resolver) Present(p Pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &p

	logging.Info("conflicts awaiting resolution", map[string]interface{}{
		"conflicts":       len(p.Conflicts),
		"new_from_remote": len(p.NewFromRemote),
		"local_only":      len(p.LocalOnly),
	})
}

// HasPending reports whether a round is suspended on this resolver.
func (r *Resolver) HasPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

// Pending returns the suspended partitions, or nil.
func (r *Resolver) Pending() *Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Resolve reads the caller's per-item choices and returns one resolution per
// pending conflict, keyed by sync id. Conflicts without an explicit choice
// default to this device. Returns ErrNothingPending when no round is
// suspended. Pending state is kept until Clear or Cancel so the merge can
// still read the other partitions.
func (r *Resolver) Resolve(choices map[string]Choice) ([]Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return nil, ErrNothingPending
	}

	resolutions := make([]Resolution, 0, len(r.pending.Conflicts))
	for _, c := range r.pending.Conflicts {
		choice, ok := choices[c.SyncID]
		if !ok || (choice != ChoiceLocal && choice != ChoiceRemote) {
			choice = ChoiceLocal
		}
		resolutions = append(resolutions, Resolution{
			SyncID: c.SyncID,
			Choice: choice,
			Local:  c.Local,
			Remote: c.Remote,
		})

		logging.Debug("conflict resolved", map[string]interface{}{
			"sync_id": c.SyncID,
			"choice":  string(choice),
		})
	}
	return resolutions, nil
}

// Clear discards pending state after the merge has consumed it.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

// Cancel discards all pending partitions without applying anything. The
// local store is left untouched; canceling means "keep local data, skip
// this round", not an error.
func (r *Resolver) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		logging.Info("conflict resolution canceled", map[string]interface{}{
			"discarded_conflicts": len(r.pending.Conflicts),
		})
	}
	r.pending = nil
}

// ConflictError represents a conflict resolution error.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ErrNothingPending is returned by Resolve when no round is suspended.
var ErrNothingPending = &ConflictError{Message: "no conflicts pending resolution"}
