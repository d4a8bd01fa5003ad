package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/revops/revenue-sync-service/internal/syncrun/model"
	"github.com/revops/revenue-sync-service/internal/system/database/provider"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
)

const uniqueViolation = "23505"

func scanSyncRunRow(row map[string]interface{}) (model.SyncRun, error) {

	var run model.SyncRun

	run.RunId = row["run_id"].(string)
	run.Source = row["source"].(string)
	run.Status = row["status"].(string)
	run.TotalFetched = intOrZero(row["total_fetched"])
	run.TotalInserted = intOrZero(row["total_inserted"])
	run.TotalUpdated = intOrZero(row["total_updated"])
	run.TotalSkipped = intOrZero(row["total_skipped"])
	run.TotalConflicts = intOrZero(row["total_conflicts"])
	run.DryRun = row["dry_run"].(bool)
	if msg, ok := row["error_message"].(string); ok {
		run.ErrorMessage = msg
	}
	run.StartedAt = row["started_at"].(time.Time)
	run.LastActivityAt = row["last_activity_at"].(time.Time)
	if completedAt, ok := row["completed_at"].(time.Time); ok {
		run.CompletedAt = &completedAt
	}

	if checkpointJSON, ok := row["checkpoint"].([]byte); ok {
		if err := json.Unmarshal(checkpointJSON, &run.Checkpoint); err != nil {
			return model.SyncRun{}, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.UNMARSHAL_JSON.Code,
				Message:     errors2.UNMARSHAL_JSON.Message,
				Description: "Failed to unmarshal sync run checkpoint",
			}, err)
		}
	}
	return run, nil
}

func intOrZero(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// InsertSyncRun creates a new run record in pending state. A concurrent
// insert for the same source loses against the single-active-run index and
// is reported as a conflict, not a server fault.
func InsertSyncRun(run model.SyncRun) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.ADD_SYNC_RUN, err)
	}
	defer dbClient.Close()

	checkpointJSON, err := json.Marshal(run.Checkpoint)
	if err != nil {
		return errors2.NewServerError(errors2.MARSHAL_JSON, err)
	}

	query := `INSERT INTO sync_runs (run_id, source, status, checkpoint, total_fetched,
			total_inserted, total_updated, total_skipped, total_conflicts, dry_run,
			started_at, last_activity_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, 0, 0, $5, $6, $6)`
	_, err = dbClient.ExecuteQuery(query, run.RunId, run.Source, run.Status,
		checkpointJSON, run.DryRun, run.StartedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors2.NewClientError(errors2.ErrRunAlreadyRunning, http.StatusConflict)
		}
		return errors2.NewServerError(errors2.ADD_SYNC_RUN, err)
	}
	return nil
}

// GetSyncRun fetches a run by id. Returns nil when absent.
func GetSyncRun(runId string) (*model.SyncRun, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_SYNC_RUN, err)
	}
	defer dbClient.Close()

	query := `SELECT run_id, source, status, checkpoint, total_fetched, total_inserted,
			total_updated, total_skipped, total_conflicts, dry_run, error_message,
			started_at, last_activity_at, completed_at
		FROM sync_runs WHERE run_id = $1`
	results, err := dbClient.ExecuteQuery(query, runId)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_SYNC_RUN, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	run, err := scanSyncRunRow(results[0])
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetActiveRunForSource returns the source's non-terminal run, if any. The
// schema enforces at most one via a partial unique index.
func GetActiveRunForSource(source string) (*model.SyncRun, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_SYNC_RUN, err)
	}
	defer dbClient.Close()

	query := `SELECT run_id, source, status, checkpoint, total_fetched, total_inserted,
			total_updated, total_skipped, total_conflicts, dry_run, error_message,
			started_at, last_activity_at, completed_at
		FROM sync_runs WHERE source = $1 AND status IN ('pending', 'running', 'continuing')`
	results, err := dbClient.ExecuteQuery(query, source)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_SYNC_RUN, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	run, err := scanSyncRunRow(results[0])
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListSyncRuns returns recent runs for a source, newest first. An empty
// source lists across all sources.
func ListSyncRuns(source string, limit int) ([]model.SyncRun, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_SYNC_RUN, err)
	}
	defer dbClient.Close()

	query := `SELECT run_id, source, status, checkpoint, total_fetched, total_inserted,
			total_updated, total_skipped, total_conflicts, dry_run, error_message,
			started_at, last_activity_at, completed_at
		FROM sync_runs WHERE ($1 = '' OR source = $1)
		ORDER BY started_at DESC LIMIT $2`
	results, err := dbClient.ExecuteQuery(query, source, limit)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_SYNC_RUN, err)
	}

	runs := make([]model.SyncRun, 0, len(results))
	for _, row := range results {
		run, err := scanSyncRunRow(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// MarkRunning moves a pending or continuing run into running. Returns false
// when the run was no longer claimable, so two concurrent invocations cannot
// both process the same page.
func MarkRunning(runId string) (bool, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return false, errors2.NewServerError(errors2.UPDATE_SYNC_RUN, err)
	}
	defer dbClient.Close()

	query := `UPDATE sync_runs SET status = 'running', last_activity_at = $2
		WHERE run_id = $1 AND status IN ('pending', 'continuing')`
	affected, err := dbClient.ExecuteStatement(query, runId, time.Now().UTC())
	if err != nil {
		return false, errors2.NewServerError(errors2.UPDATE_SYNC_RUN, err)
	}
	return affected == 1, nil
}

// RecordPageProgress folds one page's outcome into the run: counters are
// incremented in SQL so concurrent readers never observe torn totals, the
// checkpoint advances, and the status settles to continuing or completed.
// Returns false when the run left the running state under the invocation
// (cancelled or reaped mid-page), in which case nothing was persisted.
func RecordPageProgress(runId string, checkpoint model.Checkpoint, progress model.PageProgress) (bool, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return false, errors2.NewServerError(errors2.UPDATE_SYNC_RUN, err)
	}
	defer dbClient.Close()

	checkpointJSON, err := json.Marshal(checkpoint)
	if err != nil {
		return false, errors2.NewServerError(errors2.MARSHAL_JSON, err)
	}

	status := "continuing"
	var completedAt interface{}
	if !progress.HasMore {
		status = "completed"
		completedAt = time.Now().UTC()
	}

	query := `UPDATE sync_runs SET
			checkpoint = $2,
			total_fetched = total_fetched + $3,
			total_inserted = total_inserted + $4,
			total_updated = total_updated + $5,
			total_skipped = total_skipped + $6,
			total_conflicts = total_conflicts + $7,
			status = $8,
			last_activity_at = $9,
			completed_at = $10
		WHERE run_id = $1 AND status = 'running'`
	affected, err := dbClient.ExecuteStatement(query, runId, checkpointJSON,
		progress.Fetched, progress.Inserted, progress.Updated, progress.Skipped,
		progress.Conflicts, status, time.Now().UTC(), completedAt)
	if err != nil {
		return false, errors2.NewServerError(errors2.UPDATE_SYNC_RUN, err)
	}
	return affected == 1, nil
}

// MarkRunTerminal moves a run into a terminal status, guarded so terminal
// runs stay terminal. Returns false when the run had already terminated.
func MarkRunTerminal(runId, status, errorMessage string) (bool, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return false, errors2.NewServerError(errors2.UPDATE_SYNC_RUN, err)
	}
	defer dbClient.Close()

	query := `UPDATE sync_runs SET status = $2, error_message = NULLIF($3, ''),
			last_activity_at = $4, completed_at = $4
		WHERE run_id = $1 AND status IN ('pending', 'running', 'continuing')`
	affected, err := dbClient.ExecuteStatement(query, runId, status, errorMessage, time.Now().UTC())
	if err != nil {
		return false, errors2.NewServerError(errors2.UPDATE_SYNC_RUN, err)
	}
	return affected == 1, nil
}

// ReapStaleRuns fails the source's active run when its last activity
// predates the cutoff, and returns the ids of the runs it failed. Each
// source carries its own staleness window, so reaping is per source.
func ReapStaleRuns(source string, cutoff time.Time) ([]string, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.REAP_SYNC_RUNS, err)
	}
	defer dbClient.Close()

	query := `UPDATE sync_runs SET status = 'failed', error_message = 'stale',
			completed_at = $3
		WHERE source = $1 AND status IN ('pending', 'running', 'continuing')
			AND last_activity_at < $2
		RETURNING run_id`
	results, err := dbClient.ExecuteQuery(query, source, cutoff, time.Now().UTC())
	if err != nil {
		return nil, errors2.NewServerError(errors2.REAP_SYNC_RUNS, err)
	}

	reaped := make([]string, 0, len(results))
	for _, row := range results {
		reaped = append(reaped, row["run_id"].(string))
	}
	return reaped, nil
}
