package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/revops/revenue-sync-service/internal/customer/model"
	"github.com/revops/revenue-sync-service/internal/system/database/provider"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/internal/system/pagination"
)

// scanCustomerRow maps a result row onto the model, unmarshalling JSONB
// fields separately.
func scanCustomerRow(row map[string]interface{}) (model.CanonicalCustomer, error) {

	var customer model.CanonicalCustomer

	customer.CustomerId = row["customer_id"].(string)
	customer.Email = stringOrEmpty(row["email"])
	customer.Phone = stringOrEmpty(row["phone"])
	customer.FullName = stringOrEmpty(row["full_name"])
	customer.Lifecycle = stringOrEmpty(row["lifecycle"])
	customer.Status = row["status"].(string)
	customer.FirstSeenAt = row["first_seen_at"].(time.Time)
	customer.LastSyncAt = row["last_sync_at"].(time.Time)
	customer.UpdatedAt = row["updated_at"].(time.Time)

	if tagsJSON, ok := row["tags"].([]byte); ok {
		if err := json.Unmarshal(tagsJSON, &customer.Tags); err != nil {
			return model.CanonicalCustomer{}, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.UNMARSHAL_JSON.Code,
				Message:     errors2.UNMARSHAL_JSON.Message,
				Description: "Failed to unmarshal customer tags",
			}, err)
		}
	}
	if optInsJSON, ok := row["opt_ins"].([]byte); ok {
		if err := json.Unmarshal(optInsJSON, &customer.OptIns); err != nil {
			return model.CanonicalCustomer{}, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.UNMARSHAL_JSON.Code,
				Message:     errors2.UNMARSHAL_JSON.Message,
				Description: "Failed to unmarshal customer opt-in flags",
			}, err)
		}
	}
	if sourcesJSON, ok := row["field_sources"].([]byte); ok {
		if err := json.Unmarshal(sourcesJSON, &customer.FieldSources); err != nil {
			return model.CanonicalCustomer{}, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.UNMARSHAL_JSON.Code,
				Message:     errors2.UNMARSHAL_JSON.Message,
				Description: "Failed to unmarshal customer field sources",
			}, err)
		}
	}
	return customer, nil
}

func stringOrEmpty(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// InsertCustomer inserts a new canonical customer. The insert is idempotent
// on customer_id so a replayed page cannot create duplicates.
func InsertCustomer(customer model.CanonicalCustomer) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		return errors2.NewServerError(errors2.ADD_CUSTOMER, err)
	}
	defer dbClient.Close()

	tagsJSON, _ := json.Marshal(customer.Tags)
	optInsJSON, _ := json.Marshal(customer.OptIns)
	sourcesJSON, _ := json.Marshal(customer.FieldSources)

	query := `
		INSERT INTO canonical_customers (
			customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
			status, field_sources, first_seen_at, last_sync_at, updated_at
		) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12)
		ON CONFLICT (customer_id) DO NOTHING;`

	_, err = dbClient.ExecuteStatement(query,
		customer.CustomerId,
		customer.Email,
		customer.Phone,
		customer.FullName,
		tagsJSON,
		optInsJSON,
		customer.Lifecycle,
		customer.Status,
		sourcesJSON,
		customer.FirstSeenAt,
		customer.LastSyncAt,
		customer.UpdatedAt,
	)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to insert customer with Id: %s", customer.CustomerId)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CUSTOMER.Code,
			Message:     errors2.ADD_CUSTOMER.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// UpdateCustomer overwrites the merged fields of an existing customer.
func UpdateCustomer(customer model.CanonicalCustomer) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.UPDATE_CUSTOMER, err)
	}
	defer dbClient.Close()

	tagsJSON, _ := json.Marshal(customer.Tags)
	optInsJSON, _ := json.Marshal(customer.OptIns)
	sourcesJSON, _ := json.Marshal(customer.FieldSources)

	query := `
		UPDATE canonical_customers
		SET email = NULLIF($2, ''), phone = NULLIF($3, ''), full_name = NULLIF($4, ''),
			tags = $5, opt_ins = $6, lifecycle = NULLIF($7, ''), field_sources = $8,
			last_sync_at = $9, updated_at = $10
		WHERE customer_id = $1;`

	_, err = dbClient.ExecuteStatement(query,
		customer.CustomerId,
		customer.Email,
		customer.Phone,
		customer.FullName,
		tagsJSON,
		optInsJSON,
		customer.Lifecycle,
		sourcesJSON,
		customer.LastSyncAt,
		customer.UpdatedAt,
	)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to update customer with Id: %s", customer.CustomerId)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_CUSTOMER.Code,
			Message:     errors2.UPDATE_CUSTOMER.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetCustomer retrieves a customer by its Id.
func GetCustomer(customerId string) (*model.CanonicalCustomer, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	query := `
		SELECT customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
			status, field_sources, first_seen_at, last_sync_at, updated_at
		FROM canonical_customers
		WHERE customer_id = $1;`

	results, err := dbClient.ExecuteQuery(query, customerId)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	customer, err := scanCustomerRow(results[0])
	if err != nil {
		return nil, err
	}
	customer.ExternalIds, err = FetchExternalIdentities(customerId)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByExternalId returns the customer bound to the given (source, external
// id) pair, if any.
func FindByExternalId(source, externalId string) (*model.CanonicalCustomer, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	query := `
		SELECT c.customer_id, c.email, c.phone, c.full_name, c.tags, c.opt_ins,
			c.lifecycle, c.status, c.field_sources, c.first_seen_at, c.last_sync_at, c.updated_at
		FROM canonical_customers c
		JOIN external_identities e ON e.customer_id = c.customer_id
		WHERE e.source = $1 AND e.external_id = $2;`

	results, err := dbClient.ExecuteQuery(query, source, externalId)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	customer, err := scanCustomerRow(results[0])
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail performs a case-insensitive exact email match.
func FindByEmail(email string) (*model.CanonicalCustomer, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	query := `
		SELECT customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
			status, field_sources, first_seen_at, last_sync_at, updated_at
		FROM canonical_customers
		WHERE lower(email) = lower($1);`

	results, err := dbClient.ExecuteQuery(query, email)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	customer, err := scanCustomerRow(results[0])
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByPhone returns every customer carrying the normalized phone. The
// matcher needs the full list to detect ambiguous weak-identifier records.
func FindByPhone(phone string) ([]model.CanonicalCustomer, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	query := `
		SELECT customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
			status, field_sources, first_seen_at, last_sync_at, updated_at
		FROM canonical_customers
		WHERE phone = $1;`

	results, err := dbClient.ExecuteQuery(query, phone)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}

	customers := make([]model.CanonicalCustomer, 0, len(results))
	for _, row := range results {
		customer, err := scanCustomerRow(row)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// BindExternalIdentity binds (source, external_id) to a customer. The bind is
// idempotent: re-binding the same pair to the same customer is a no-op, and a
// pair already bound elsewhere is left untouched.
func BindExternalIdentity(identity model.ExternalIdentity) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.BIND_EXTERNAL_IDENTITY, err)
	}
	defer dbClient.Close()

	query := `
		INSERT INTO external_identities (source, external_id, customer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, external_id) DO NOTHING;`

	_, err = dbClient.ExecuteStatement(query, identity.Source, identity.ExternalId, identity.CustomerId)
	if err != nil {
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.BIND_EXTERNAL_IDENTITY.Code,
			Message:     errors2.BIND_EXTERNAL_IDENTITY.Message,
			Description: fmt.Sprintf("Failed to bind identity %s/%s", identity.Source, identity.ExternalId),
		}, err)
	}
	return nil
}

// RebindExternalIdentity moves an identity onto another customer. Only the
// conflict-resolution path may call this.
func RebindExternalIdentity(identity model.ExternalIdentity) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.BIND_EXTERNAL_IDENTITY, err)
	}
	defer dbClient.Close()

	query := `
		INSERT INTO external_identities (source, external_id, customer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, external_id) DO UPDATE SET customer_id = EXCLUDED.customer_id;`

	_, err = dbClient.ExecuteStatement(query, identity.Source, identity.ExternalId, identity.CustomerId)
	if err != nil {
		return errors2.NewServerError(errors2.BIND_EXTERNAL_IDENTITY, err)
	}
	return nil
}

// FetchExternalIdentities lists every platform identity bound to a customer.
func FetchExternalIdentities(customerId string) ([]model.ExternalIdentity, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	query := `
		SELECT source, external_id, customer_id
		FROM external_identities
		WHERE customer_id = $1
		ORDER BY source, external_id;`

	results, err := dbClient.ExecuteQuery(query, customerId)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}

	identities := make([]model.ExternalIdentity, 0, len(results))
	for _, row := range results {
		identities = append(identities, model.ExternalIdentity{
			Source:     row["source"].(string),
			ExternalId: row["external_id"].(string),
			CustomerId: row["customer_id"].(string),
		})
	}
	return identities, nil
}

// ListCustomers returns one keyset page of active customers, newest first.
func ListCustomers(cursor *pagination.CustomerCursor, limit int) ([]model.CanonicalCustomer, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	var results []map[string]interface{}
	if cursor == nil {
		query := `
			SELECT customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
				status, field_sources, first_seen_at, last_sync_at, updated_at
			FROM canonical_customers
			WHERE status = 'active'
			ORDER BY updated_at DESC, customer_id DESC
			LIMIT $1;`
		results, err = dbClient.ExecuteQuery(query, limit)
	} else {
		query := `
			SELECT customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
				status, field_sources, first_seen_at, last_sync_at, updated_at
			FROM canonical_customers
			WHERE status = 'active' AND (updated_at, customer_id) < ($1, $2)
			ORDER BY updated_at DESC, customer_id DESC
			LIMIT $3;`
		results, err = dbClient.ExecuteQuery(query, cursor.UpdatedAt, cursor.CustomerId, limit)
	}
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}

	customers := make([]model.CanonicalCustomer, 0, len(results))
	for _, row := range results {
		customer, err := scanCustomerRow(row)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// ArchiveCustomer status-flags a customer instead of deleting it.
func ArchiveCustomer(customerId string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.UPDATE_CUSTOMER, err)
	}
	defer dbClient.Close()

	affected, err := dbClient.ExecuteStatement(
		`UPDATE canonical_customers SET status = $2, updated_at = now() WHERE customer_id = $1;`,
		customerId, model.StatusArchived)
	if err != nil {
		return errors2.NewServerError(errors2.UPDATE_CUSTOMER, err)
	}
	if affected == 0 {
		return errors2.NewClientError(errors2.ErrCustomerNotFound, http.StatusNotFound)
	}
	return nil
}

// SearchByTag lists active customers carrying the tag.
func SearchByTag(tag string, limit int) ([]model.CanonicalCustomer, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}
	defer dbClient.Close()

	query := `
		SELECT customer_id, email, phone, full_name, tags, opt_ins, lifecycle,
			status, field_sources, first_seen_at, last_sync_at, updated_at
		FROM canonical_customers
		WHERE status = 'active' AND tags @> $1
		ORDER BY updated_at DESC
		LIMIT $2;`

	tagJSON, _ := json.Marshal([]string{tag})
	results, err := dbClient.ExecuteQuery(query, tagJSON, limit)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			log.GetLogger().Debug("Tag search failed", log.String("pq_code", string(pqErr.Code)))
		}
		return nil, errors2.NewServerError(errors2.GET_CUSTOMER, err)
	}

	customers := make([]model.CanonicalCustomer, 0, len(results))
	for _, row := range results {
		customer, err := scanCustomerRow(row)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}
