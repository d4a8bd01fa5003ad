package store

import (
	"time"

	"github.com/revops/revenue-sync-service/internal/apikeys/model"
	"github.com/revops/revenue-sync-service/internal/system/database/provider"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
)

func scanAPIKeyRow(row map[string]interface{}) model.APIKey {

	return model.APIKey{
		KeyId:     row["key_id"].(string),
		Name:      row["name"].(string),
		KeyHash:   row["key_hash"].(string),
		Revoked:   row["revoked"].(bool),
		CreatedAt: row["created_at"].(time.Time),
	}
}

// InsertAPIKey stores a new hashed key.
func InsertAPIKey(key model.APIKey) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.ADD_API_KEY, err)
	}
	defer dbClient.Close()

	query := `INSERT INTO api_keys (key_id, name, key_hash, revoked, created_at)
		VALUES ($1, $2, $3, false, $4)`
	_, err = dbClient.ExecuteQuery(query, key.KeyId, key.Name, key.KeyHash, key.CreatedAt)
	if err != nil {
		return errors2.NewServerError(errors2.ADD_API_KEY, err)
	}
	return nil
}

// FindByHash returns the active key matching the hash, or nil.
func FindByHash(keyHash string) (*model.APIKey, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_API_KEY, err)
	}
	defer dbClient.Close()

	query := `SELECT key_id, name, key_hash, revoked, created_at
		FROM api_keys WHERE key_hash = $1 AND revoked = false`
	results, err := dbClient.ExecuteQuery(query, keyHash)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_API_KEY, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	key := scanAPIKeyRow(results[0])
	return &key, nil
}

// ListAPIKeys returns all keys without their hashes exposed in JSON.
func ListAPIKeys() ([]model.APIKey, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_API_KEY, err)
	}
	defer dbClient.Close()

	results, err := dbClient.ExecuteQuery(
		`SELECT key_id, name, key_hash, revoked, created_at FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_API_KEY, err)
	}

	keys := make([]model.APIKey, 0, len(results))
	for _, row := range results {
		keys = append(keys, scanAPIKeyRow(row))
	}
	return keys, nil
}

// RevokeAPIKey deactivates a key and returns its hash so callers can evict
// cached validations. Empty hash means no active key matched.
func RevokeAPIKey(keyId string) (string, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return "", errors2.NewServerError(errors2.ADD_API_KEY, err)
	}
	defer dbClient.Close()

	results, err := dbClient.ExecuteQuery(
		`UPDATE api_keys SET revoked = true WHERE key_id = $1 AND revoked = false RETURNING key_hash`, keyId)
	if err != nil {
		return "", errors2.NewServerError(errors2.ADD_API_KEY, err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0]["key_hash"].(string), nil
}
