package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/logging"
	"github.com/hkaya/meallogger/internal/models"
	"github.com/hkaya/meallogger/internal/settings"
	"github.com/hkaya/meallogger/internal/sync/conflict"
	"github.com/hkaya/meallogger/internal/uuid"
)

// performMerge runs the write half of a round: import, backfill, apply
// resolutions, push, record. The steps are not transactional as a whole; a
// failure partway leaves local and remote divergent and the next round
// re-derives the partitions and converges again.
func (e *Engine) performMerge(ctx context.Context, cfg *settings.Settings,
	resolutions []conflict.Resolution, newFromRemote []models.RemoteRow) (*Result, error) {

	result := &Result{Conflicts: len(resolutions)}

	// 1. Import remote-only rows. The remote local id is discarded, the
	// creation instant is fresh, SyncID and ModifiedAt come from the row.
	for _, row := range newFromRemote {
		m := row.ToMeal()
		if _, err := e.store.CreateMeal(m); err != nil {
			return nil, e.failMerge("failed to import remote meal", err)
		}
		result.Imported++
	}

	// 2. Backfill sync identity on legacy records, exactly once.
	all, err := e.store.GetAllMeals()
	if err != nil {
		return nil, e.failMerge("failed to re-read local meals", err)
	}
	for _, m := range all {
		if m.HasSyncIdentity() {
			continue
		}
		if m.SyncID == "" {
			m.SyncID = uuid.NewSyncID()
		}
		if m.ModifiedAt == "" {
			m.Touch()
		}
		if err := e.store.UpdateMeal(m); err != nil {
			return nil, e.failMerge("failed to backfill sync identity", err)
		}
		result.Backfilled++
	}

	// 3. Apply resolutions. "remote" overwrites local content by sync id,
	// keeping the local integer id and creation instant; "local" wins by
	// inaction. A missing record is logged and skipped, the round continues.
	for _, res := range resolutions {
		if res.Choice != conflict.ChoiceRemote {
			continue
		}
		local, err := e.store.GetMealBySyncID(res.SyncID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				logging.Warn("resolution references a missing record, skipping", map[string]interface{}{
					"sync_id": res.SyncID,
				})
				continue
			}
			return nil, e.failMerge("failed to look up conflicted record", err)
		}

		merged := res.Remote.ToMeal()
		merged.ID = local.ID
		merged.Timestamp = local.Timestamp
		merged.SyncID = res.SyncID
		merged.Touch() // merge time, not the remote instant
		if err := e.store.UpdateMeal(merged); err != nil {
			return nil, e.failMerge("failed to apply remote resolution", err)
		}
		result.Overwritten++
	}

	// 4. Push the full local set back; the remote region is the source of
	// truth for shape only, the content is ours now.
	all, err = e.store.GetAllMeals()
	if err != nil {
		return nil, e.failMerge("failed to read meals for push", err)
	}
	rows := make([]models.RemoteRow, 0, len(all))
	for _, m := range all {
		rows = append(rows, models.RemoteRowFromMeal(m))
	}
	if err := e.remote.ReplaceRows(ctx, rows); err != nil {
		return nil, e.failMerge("failed to push rows", err)
	}
	result.Pushed = len(rows)

	// Targets piggyback on the round, best effort: a settings-region
	// hiccup must not fail an otherwise converged merge.
	if !cfg.Targets.IsZero() {
		if err := e.remote.EnsureSettingsSheet(ctx); err != nil {
			logging.Warn("failed to ensure settings region", map[string]interface{}{"error": err.Error()})
		} else if err := e.remote.WriteSettings(ctx, cfg.Targets.ToMap()); err != nil {
			logging.Warn("failed to push targets", map[string]interface{}{"error": err.Error()})
		}
	}

	// 5. Record the round.
	cfg.LastSyncTime = time.Now().Format(time.RFC3339)
	if err := e.settings.Save(cfg); err != nil {
		return nil, e.failMerge("failed to record sync time", err)
	}

	e.setState(StateIdle)
	e.emitStatus(StatusSynced, cfg.SheetName)
	if result.Imported > 0 {
		e.emitToast(fmt.Sprintf("Synced, %d new meals imported", result.Imported), "success")
	} else {
		e.emitToast("Synced to Google Sheets", "success")
	}

	logging.Info("merge completed", map[string]interface{}{
		"imported":    result.Imported,
		"backfilled":  result.Backfilled,
		"overwritten": result.Overwritten,
		"pushed":      result.Pushed,
	})
	return result, nil
}

// failMerge reports a failed merge round. Whatever local writes already
// happened stay; re-running the next round is the recovery path, not
// rollback.
func (e *Engine) failMerge(message string, err error) error {
	e.setState(StateIdle)
	e.emitStatus(StatusError, "")
	e.emitToast("Sync failed", "error")
	logging.Error(message, err)
	return apperrors.Wrap(apperrors.ErrSyncFailed, message, err)
}

// LoadFromRemote destructively replaces the local store with the remote
// rows. The local clear only happens after the replacement data has been
// fetched.
func (e *Engine) LoadFromRemote(ctx context.Context) (*Result, error) {
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.HasRemoteTarget() {
		return nil, apperrors.New(apperrors.ErrSyncNotConfigured, "no remote target configured")
	}
	if !e.auth.HasValidCredential() {
		return nil, apperrors.New(apperrors.ErrSyncAuthFailed, "not authenticated")
	}
	if !e.tryBegin() {
		return &Result{Skipped: true, SkipReason: "sync already in progress"}, nil
	}

	e.emitStatus(StatusSyncing, "Loading data...")

	e.remote.SetSpreadsheet(cfg.SheetID)
	rows, err := e.remote.FetchRows(ctx)
	if err != nil {
		e.setState(StateIdle)
		e.emitStatus(StatusError, "")
		e.emitToast("Failed to load data", "error")
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to load remote rows", err)
	}
	if len(rows) == 0 {
		e.setState(StateIdle)
		e.emitStatus(StatusSynced, cfg.SheetName)
		e.emitToast("No data found in spreadsheet", "error")
		return &Result{}, nil
	}

	if err := e.store.ClearMeals(); err != nil {
		return nil, e.failMerge("failed to clear local meals", err)
	}

	result := &Result{}
	for _, row := range rows {
		m := row.ToMeal()
		if _, err := e.store.CreateMeal(m); err != nil {
			return nil, e.failMerge("failed to import remote meal", err)
		}
		result.Imported++
	}

	// Adopt remote targets on an explicit full load; this is the one path
	// where the remote settings region wins over the device's.
	if pairs, err := e.remote.ReadSettings(ctx); err == nil {
		if t := models.TargetsFromMap(pairs); !t.IsZero() {
			cfg.Targets = t
		}
	}

	cfg.LastSyncTime = time.Now().Format(time.RFC3339)
	if err := e.settings.Save(cfg); err != nil {
		return nil, e.failMerge("failed to record load", err)
	}

	e.setState(StateIdle)
	e.emitStatus(StatusSynced, cfg.SheetName)
	e.emitToast(fmt.Sprintf("Loaded %d meals", result.Imported), "success")
	return result, nil
}

// CreateRemoteTarget creates a fresh spreadsheet, selects it as the sync
// target and pushes the current local data to it.
func (e *Engine) CreateRemoteTarget(ctx context.Context, title string) (*Result, error) {
	if !e.auth.HasValidCredential() {
		return nil, apperrors.New(apperrors.ErrSyncAuthFailed, "not authenticated")
	}
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, err
	}
	if !e.tryBegin() {
		return &Result{Skipped: true, SkipReason: "sync already in progress"}, nil
	}

	e.emitStatus(StatusSyncing, "Creating new spreadsheet...")

	id, name, err := e.remote.CreateSpreadsheet(ctx, title)
	if err != nil {
		e.setState(StateIdle)
		e.emitStatus(StatusError, "")
		e.emitToast("Failed to create spreadsheet", "error")
		return nil, err
	}

	cfg.SheetID = id
	cfg.SheetName = name
	cfg.LastSyncTime = "" // fresh target, nothing pushed yet
	if err := e.settings.Save(cfg); err != nil {
		e.setState(StateIdle)
		e.emitStatus(StatusError, "")
		return nil, err
	}

	e.setState(StateIdle)
	e.emitStatus(StatusSynced, name)
	e.emitToast("Spreadsheet created!", "success")

	// Seed the new target with the current local data.
	return e.SmartSync(ctx)
}
