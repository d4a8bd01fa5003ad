package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/revops/revenue-sync-service/internal/conflict/model"
	sourcemodel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/database/provider"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

func scanConflictRow(row map[string]interface{}) (model.MergeConflict, error) {

	var conflict model.MergeConflict

	conflict.ConflictId = row["conflict_id"].(string)
	conflict.Source = row["source"].(string)
	conflict.ExternalId = row["external_id"].(string)
	conflict.ConflictType = row["conflict_type"].(string)
	conflict.Status = row["status"].(string)
	if resolution, ok := row["resolution"].(string); ok {
		conflict.Resolution = resolution
	}
	if resolvedTo, ok := row["resolved_to"].(string); ok {
		conflict.ResolvedTo = resolvedTo
	}
	conflict.CreatedAt = row["created_at"].(time.Time)
	if resolvedAt, ok := row["resolved_at"].(time.Time); ok {
		conflict.ResolvedAt = &resolvedAt
	}

	if candidatesJSON, ok := row["candidate_ids"].([]byte); ok {
		if err := json.Unmarshal(candidatesJSON, &conflict.CandidateIds); err != nil {
			return model.MergeConflict{}, errors2.NewServerError(errors2.UNMARSHAL_JSON, err)
		}
	}
	if recordJSON, ok := row["record"].([]byte); ok {
		var record sourcemodel.RawContact
		if err := json.Unmarshal(recordJSON, &record); err != nil {
			return model.MergeConflict{}, errors2.NewServerError(errors2.UNMARSHAL_JSON, err)
		}
		conflict.Record = record
	}
	return conflict, nil
}

// InsertConflict records a merge conflict. One pending conflict per
// (source, external_id) is kept; replays of the same page do not duplicate it.
func InsertConflict(conflict model.MergeConflict) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.ADD_MERGE_CONFLICT, err)
	}
	defer dbClient.Close()

	candidatesJSON, _ := json.Marshal(conflict.CandidateIds)
	recordJSON, _ := json.Marshal(conflict.Record)

	query := `
		INSERT INTO merge_conflicts (
			conflict_id, source, external_id, conflict_type, candidate_ids,
			record, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, external_id) WHERE status = 'pending' DO NOTHING;`

	_, err = dbClient.ExecuteStatement(query,
		conflict.ConflictId,
		conflict.Source,
		conflict.ExternalId,
		conflict.ConflictType,
		candidatesJSON,
		recordJSON,
		conflict.Status,
		conflict.CreatedAt,
	)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to insert conflict for %s/%s", conflict.Source, conflict.ExternalId)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_MERGE_CONFLICT.Code,
			Message:     errors2.ADD_MERGE_CONFLICT.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetConflict retrieves a conflict by its Id.
func GetConflict(conflictId string) (*model.MergeConflict, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_MERGE_CONFLICT, err)
	}
	defer dbClient.Close()

	query := `
		SELECT conflict_id, source, external_id, conflict_type, candidate_ids,
			record, status, resolution, resolved_to, created_at, resolved_at
		FROM merge_conflicts
		WHERE conflict_id = $1;`

	results, err := dbClient.ExecuteQuery(query, conflictId)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_MERGE_CONFLICT, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	conflict, err := scanConflictRow(results[0])
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

// ListPendingConflicts returns the conflict queue, oldest first so operators
// work it in arrival order.
func ListPendingConflicts(limit int) ([]model.MergeConflict, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_MERGE_CONFLICT, err)
	}
	defer dbClient.Close()

	query := `
		SELECT conflict_id, source, external_id, conflict_type, candidate_ids,
			record, status, resolution, resolved_to, created_at, resolved_at
		FROM merge_conflicts
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1;`

	results, err := dbClient.ExecuteQuery(query, limit)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_MERGE_CONFLICT, err)
	}

	conflicts := make([]model.MergeConflict, 0, len(results))
	for _, row := range results {
		conflict, err := scanConflictRow(row)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, conflict)
	}
	return conflicts, nil
}

// MarkResolved terminally resolves a conflict. The guard on status makes the
// operation idempotent and rejects double resolution.
func MarkResolved(conflictId, resolution, resolvedTo string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.RESOLVE_MERGE_CONFLICT, err)
	}
	defer dbClient.Close()

	query := `
		UPDATE merge_conflicts
		SET status = 'resolved', resolution = $2, resolved_to = NULLIF($3, ''), resolved_at = now()
		WHERE conflict_id = $1 AND status = 'pending';`

	affected, err := dbClient.ExecuteStatement(query, conflictId, resolution, resolvedTo)
	if err != nil {
		return errors2.NewServerError(errors2.RESOLVE_MERGE_CONFLICT, err)
	}
	if affected == 0 {
		return errors2.NewClientError(errors2.ErrConflictAlreadyResolved, http.StatusConflict)
	}
	return nil
}

// CountPending counts unresolved conflicts; used for dashboard summaries.
func CountPending() (int, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return 0, errors2.NewServerError(errors2.GET_MERGE_CONFLICT, err)
	}
	defer dbClient.Close()

	results, err := dbClient.ExecuteQuery(`SELECT COUNT(*) AS total FROM merge_conflicts WHERE status = 'pending';`)
	if err != nil {
		return 0, errors2.NewServerError(errors2.GET_MERGE_CONFLICT, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	if total, ok := results[0]["total"].(int64); ok {
		return int(total), nil
	}
	return 0, nil
}
