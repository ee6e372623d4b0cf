package sync

import (
	"context"
	"sort"
	gosync "sync"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/auth"
	"github.com/hkaya/meallogger/internal/logging"
	"github.com/hkaya/meallogger/internal/models"
	"github.com/hkaya/meallogger/internal/sync/conflict"
)

// State is the engine's explicit position in the sync state machine.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateMerging State = "merging"
	// StateAwaitingResolution suspends the round until the resolver's
	// choices come back through ResolveConflicts or Cancel.
	StateAwaitingResolution State = "awaiting_conflict_resolution"
)

// Result reports one sync round.
type Result struct {
	Skipped            bool
	SkipReason         string
	AwaitingResolution bool
	Conflicts          int
	Imported           int
	Backfilled         int
	Overwritten        int
	Pushed             int
}

// Engine is the sync state machine. One engine instance owns all sync state;
// there are no ambient globals. A round that finds conflicts suspends in
// StateAwaitingResolution and resumes only through ResolveConflicts or
// Cancel.
type Engine struct {
	mu       gosync.Mutex
	state    State
	store    MealStore
	remote   RemoteStore
	auth     auth.TokenProvider
	settings SettingsStore
	resolver *conflict.Resolver
	listener StatusListener
}

// NewEngine creates an idle engine over its collaborators.
func NewEngine(store MealStore, remote RemoteStore, provider auth.TokenProvider, settingsStore SettingsStore) *Engine {
	return &Engine{
		state:    StateIdle,
		store:    store,
		remote:   remote,
		auth:     provider,
		settings: settingsStore,
		resolver: conflict.NewResolver(),
	}
}

// SetStatusListener sets the UI collaborator's callback sink.
func (e *Engine) SetStatusListener(l StatusListener) {
	e.listener = l
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Resolver exposes the pending partitions of a suspended round.
func (e *Engine) Resolver() *conflict.Resolver {
	return e.resolver
}

// SmartSync runs one pull-diff-merge-push round. A request arriving while a
// round is in flight is dropped, not queued; without a remote target or a
// credential it is a no-op. When conflicts are detected the round suspends
// and the result carries AwaitingResolution.
func (e *Engine) SmartSync(ctx context.Context) (*Result, error) {
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.HasRemoteTarget() {
		return &Result{Skipped: true, SkipReason: "no remote target configured"}, nil
	}
	if !e.auth.HasValidCredential() {
		return &Result{Skipped: true, SkipReason: "not authenticated"}, nil
	}
	if !e.tryBegin() {
		logging.Debug("sync request dropped, round already in flight")
		return &Result{Skipped: true, SkipReason: "sync already in progress"}, nil
	}

	e.emitStatus(StatusSyncing, "")

	// Local read happens before any remote call; a storage failure aborts
	// the round with no remote side effects.
	localMeals, err := e.store.GetAllMeals()
	if err != nil {
		return nil, e.fail(apperrors.ErrSyncFailed, "failed to read local meals", err)
	}

	e.remote.SetSpreadsheet(cfg.SheetID)
	remoteRows, err := e.remote.FetchRows(ctx)
	if err != nil {
		if cfg.LastSyncTime == "" {
			// Brand-new target: nothing has ever been pushed, so a fetch
			// failure means "no remote data yet".
			logging.Warn("remote fetch failed on fresh target, treating as empty", map[string]interface{}{
				"sheet_id": cfg.SheetID,
			})
			remoteRows = nil
		} else {
			return nil, e.fail(apperrors.ErrRemoteUnavailable, "failed to fetch remote rows", err)
		}
	}

	conflicts, newFromRemote, localOnly := partition(localMeals, remoteRows)

	logging.Info("sync round partitioned", map[string]interface{}{
		"local":           len(localMeals),
		"remote":          len(remoteRows),
		"conflicts":       len(conflicts),
		"new_from_remote": len(newFromRemote),
		"local_only":      len(localOnly),
	})

	if len(conflicts) > 0 {
		e.resolver.Present(conflict.Pending{
			Conflicts:     conflicts,
			NewFromRemote: newFromRemote,
			LocalOnly:     localOnly,
		})
		e.setState(StateAwaitingResolution)
		return &Result{AwaitingResolution: true, Conflicts: len(conflicts)}, nil
	}

	e.setState(StateMerging)
	return e.performMerge(ctx, cfg, nil, newFromRemote)
}

// ResolveConflicts resumes a suspended round with the caller's per-item
// choices and runs the merge.
func (e *Engine) ResolveConflicts(ctx context.Context, choices map[string]conflict.Choice) (*Result, error) {
	e.mu.Lock()
	if e.state != StateAwaitingResolution {
		e.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrInvalid, "no sync round awaiting conflict resolution")
	}
	e.state = StateMerging
	e.mu.Unlock()

	resolutions, err := e.resolver.Resolve(choices)
	if err != nil {
		return nil, e.fail(apperrors.ErrSyncFailed, "failed to resolve conflicts", err)
	}
	pending := e.resolver.Pending()
	newFromRemote := pending.NewFromRemote
	e.resolver.Clear()

	cfg, err := e.settings.Load()
	if err != nil {
		return nil, e.fail(apperrors.ErrSyncFailed, "failed to load settings", err)
	}
	return e.performMerge(ctx, cfg, resolutions, newFromRemote)
}

// Cancel discards a suspended round. Local data is kept, the round is
// skipped, and the status reads synced: canceling is not an error.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.state != StateAwaitingResolution {
		e.mu.Unlock()
		return
	}
	e.state = StateIdle
	e.mu.Unlock()

	e.resolver.Cancel()

	label := ""
	if cfg, err := e.settings.Load(); err == nil {
		label = cfg.SheetName
	}
	e.emitStatus(StatusSynced, label)
}

// partition splits the two record sets by sync id. Remote rows without a
// sync id cannot participate in an identity-based merge and are discarded;
// local records without one are export candidates. A pair conflicts iff its
// content differs AND its ModifiedAt instants differ. Byte-identical pairs
// from a prior round-trip, or pairs with equal ModifiedAt, are already
// synced.
func partition(localMeals []*models.MealRecord, remoteRows []models.RemoteRow) (
	[]conflict.Conflict, []models.RemoteRow, []*models.MealRecord) {

	localBySyncID := make(map[string]*models.MealRecord)
	var localWithoutSyncID []*models.MealRecord
	for _, m := range localMeals {
		if m.SyncID == "" {
			localWithoutSyncID = append(localWithoutSyncID, m)
			continue
		}
		localBySyncID[m.SyncID] = m
	}

	remoteBySyncID := make(map[string]models.RemoteRow)
	for _, row := range remoteRows {
		if row.SyncID == "" {
			continue
		}
		remoteBySyncID[row.SyncID] = row
	}

	var conflicts []conflict.Conflict
	var newFromRemote []models.RemoteRow
	for syncID, row := range remoteBySyncID {
		local, ok := localBySyncID[syncID]
		if !ok {
			newFromRemote = append(newFromRemote, row)
			continue
		}
		if !row.ContentEquals(local) && row.ModifiedAt != local.ModifiedAt {
			conflicts = append(conflicts, conflict.Conflict{SyncID: syncID, Local: local, Remote: row})
		}
	}

	var localOnly []*models.MealRecord
	for syncID, local := range localBySyncID {
		if _, ok := remoteBySyncID[syncID]; !ok {
			localOnly = append(localOnly, local)
		}
	}
	localOnly = append(localOnly, localWithoutSyncID...)

	// The maps above make the partitions order-unstable; sort so that the
	// resolution prompt shows conflicts in the same order on every run.
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].SyncID < conflicts[j].SyncID })
	sort.Slice(newFromRemote, func(i, j int) bool { return newFromRemote[i].SyncID < newFromRemote[j].SyncID })
	sort.Slice(localOnly, func(i, j int) bool { return localOnly[i].ID < localOnly[j].ID })

	return conflicts, newFromRemote, localOnly
}

// tryBegin flips Idle to Syncing; any other state drops the trigger.
func (e *Engine) tryBegin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return false
	}
	e.state = StateSyncing
	return true
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// fail returns the engine to Idle with an error status, classifying the
// round's failure under the given code.
func (e *Engine) fail(code apperrors.ErrorCode, message string, err error) error {
	e.setState(StateIdle)
	e.emitStatus(StatusError, "")
	logging.Error(message, err)
	return apperrors.Wrap(code, message, err)
}

func (e *Engine) emitStatus(status Status, label string) {
	if e.listener != nil {
		e.listener.OnSyncStatus(status, label)
	}
}

func (e *Engine) emitToast(message, kind string) {
	if e.listener != nil {
		e.listener.OnToast(message, kind)
	}
}
