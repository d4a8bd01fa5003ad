package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	conflictModel "github.com/revops/revenue-sync-service/internal/conflict/model"
	conflictStore "github.com/revops/revenue-sync-service/internal/conflict/store"
	customerModel "github.com/revops/revenue-sync-service/internal/customer/model"
	customerStore "github.com/revops/revenue-sync-service/internal/customer/store"
	"github.com/revops/revenue-sync-service/internal/precedence"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

// MergeOutcome is the result of processing one raw record.
type MergeOutcome struct {
	Action     string `json:"action"`
	CustomerId string `json:"client_id,omitempty"`
}

type MergeServiceInterface interface {
	ProcessRecord(record sourceModel.RawContact, dryRun bool) (MergeOutcome, error)
	ProcessPage(ctx context.Context, records []sourceModel.RawContact, subBatchSize int,
		dryRun bool, cancelled CancelCheck) (PageStats, error)
	CreateFromRecord(record sourceModel.RawContact) (string, error)
	ApplyToCustomer(record sourceModel.RawContact, customerId string) error
}

// MergeService is the single authorized write path into canonical customers,
// external identities and merge conflicts.
type MergeService struct{}

// GetMergeService creates a new instance of MergeService.
func GetMergeService() MergeServiceInterface {

	return &MergeService{}
}

// ProcessRecord decides whether a raw external record extends an existing
// canonical customer or requires a new one, and reconciles field values.
//
// Lookup priority, first match wins: bound external identity, then
// case-insensitive email, then E.164 phone. Identifiers pointing at two
// different customers are never merged automatically.
func (ms *MergeService) ProcessRecord(record sourceModel.RawContact, dryRun bool) (MergeOutcome, error) {

	logger := log.GetLogger()
	record.Email = NormalizeEmail(record.Email)
	record.Phone = NormalizePhone(record.Phone)

	byExternal, err := customerStore.FindByExternalId(record.Source, record.ExternalId)
	if err != nil {
		return MergeOutcome{}, err
	}

	var byEmail *customerModel.CanonicalCustomer
	if record.Email != "" {
		byEmail, err = customerStore.FindByEmail(record.Email)
		if err != nil {
			return MergeOutcome{}, err
		}
	}

	var byPhone []customerModel.CanonicalCustomer
	if record.Phone != "" {
		byPhone, err = customerStore.FindByPhone(record.Phone)
		if err != nil {
			return MergeOutcome{}, err
		}
	}

	// Records with no usable identifier cannot be processed automatically.
	if byExternal == nil && record.Email == "" && record.Phone == "" {
		logger.Debug("Record has no usable identifier, holding as weak-identifier conflict",
			log.String("source", record.Source), log.String("external_id", record.ExternalId))
		if !dryRun {
			if err := ms.recordConflict(record, conflictModel.TypeWeakIdentifier, nil); err != nil {
				return MergeOutcome{}, err
			}
		}
		return MergeOutcome{Action: constants.ActionSkipped}, nil
	}

	// A phone-only record matching several customers is ambiguous.
	if byExternal == nil && byEmail == nil && record.Email == "" && len(byPhone) > 1 {
		if !dryRun {
			if err := ms.recordConflict(record, conflictModel.TypeAmbiguousPhone, candidateIds(byExternal, byEmail, byPhone)); err != nil {
				return MergeOutcome{}, err
			}
		}
		return MergeOutcome{Action: constants.ActionConflict}, nil
	}

	candidates := candidateIds(byExternal, byEmail, byPhone)
	if len(candidates) > 1 {
		logger.Info(fmt.Sprintf("Record %s/%s points at %d different customers, recording conflict",
			record.Source, record.ExternalId, len(candidates)))
		if !dryRun {
			if err := ms.recordConflict(record, conflictModel.TypeIdentityCollision, candidates); err != nil {
				return MergeOutcome{}, err
			}
		}
		return MergeOutcome{Action: constants.ActionConflict}, nil
	}

	if len(candidates) == 0 {
		if dryRun {
			return MergeOutcome{Action: constants.ActionCreated}, nil
		}
		customerId, err := ms.CreateFromRecord(record)
		if err != nil {
			return MergeOutcome{}, err
		}
		return MergeOutcome{Action: constants.ActionCreated, CustomerId: customerId}, nil
	}

	target := pickCandidate(candidates[0], byExternal, byEmail, byPhone)
	if dryRun {
		return MergeOutcome{Action: constants.ActionUpdated, CustomerId: target.CustomerId}, nil
	}

	merged := mergeInto(*target, record, precedence.Get())
	if err := customerStore.UpdateCustomer(merged); err != nil {
		return MergeOutcome{}, err
	}
	if byExternal == nil {
		err = customerStore.BindExternalIdentity(customerModel.ExternalIdentity{
			Source:     record.Source,
			ExternalId: record.ExternalId,
			CustomerId: target.CustomerId,
		})
		if err != nil {
			return MergeOutcome{}, err
		}
	}
	return MergeOutcome{Action: constants.ActionUpdated, CustomerId: target.CustomerId}, nil
}

// CreateFromRecord seeds a new canonical customer from the record and binds
// its external identity. Insert and bind are both idempotent, so a replayed
// page converges on the same state.
func (ms *MergeService) CreateFromRecord(record sourceModel.RawContact) (string, error) {

	now := time.Now().UTC()
	customer := customerModel.CanonicalCustomer{
		CustomerId:   uuid.New().String(),
		Email:        NormalizeEmail(record.Email),
		Phone:        NormalizePhone(record.Phone),
		FullName:     strings.TrimSpace(record.FullName),
		Tags:         uniqueTags(nil, record.Tags),
		OptIns:       copyOptIns(record.OptIns),
		Lifecycle:    record.Lifecycle,
		Status:       customerModel.StatusActive,
		FieldSources: seedFieldSources(record),
		FirstSeenAt:  now,
		LastSyncAt:   now,
		UpdatedAt:    now,
	}

	if err := customerStore.InsertCustomer(customer); err != nil {
		return "", err
	}
	err := customerStore.BindExternalIdentity(customerModel.ExternalIdentity{
		Source:     record.Source,
		ExternalId: record.ExternalId,
		CustomerId: customer.CustomerId,
	})
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("Created canonical customer " + customer.CustomerId +
		" from " + record.Source + "/" + record.ExternalId)
	return customer.CustomerId, nil
}

// ApplyToCustomer merges the record into the named customer and binds the
// identity there. Used by conflict resolution (link-to-existing).
func (ms *MergeService) ApplyToCustomer(record sourceModel.RawContact, customerId string) error {

	target, err := customerStore.GetCustomer(customerId)
	if err != nil {
		return err
	}
	if target == nil {
		return errors2.NewClientError(errors2.ErrCustomerNotFound, http.StatusNotFound)
	}

	record.Email = NormalizeEmail(record.Email)
	record.Phone = NormalizePhone(record.Phone)

	merged := mergeInto(*target, record, precedence.Get())
	if err := customerStore.UpdateCustomer(merged); err != nil {
		return err
	}
	return customerStore.RebindExternalIdentity(customerModel.ExternalIdentity{
		Source:     record.Source,
		ExternalId: record.ExternalId,
		CustomerId: customerId,
	})
}

func (ms *MergeService) recordConflict(record sourceModel.RawContact, conflictType string, candidates []string) error {

	return conflictStore.InsertConflict(conflictModel.MergeConflict{
		ConflictId:   uuid.New().String(),
		Source:       record.Source,
		ExternalId:   record.ExternalId,
		ConflictType: conflictType,
		CandidateIds: candidates,
		Record:       record,
		Status:       conflictModel.StatusPending,
		CreatedAt:    time.Now().UTC(),
	})
}

// candidateIds returns the distinct customer ids the record's identifiers
// point at, in lookup-priority order.
func candidateIds(byExternal, byEmail *customerModel.CanonicalCustomer, byPhone []customerModel.CanonicalCustomer) []string {

	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if byExternal != nil {
		add(byExternal.CustomerId)
	}
	if byEmail != nil {
		add(byEmail.CustomerId)
	}
	for _, c := range byPhone {
		add(c.CustomerId)
	}
	return ids
}

func pickCandidate(id string, byExternal, byEmail *customerModel.CanonicalCustomer, byPhone []customerModel.CanonicalCustomer) *customerModel.CanonicalCustomer {

	if byExternal != nil && byExternal.CustomerId == id {
		return byExternal
	}
	if byEmail != nil && byEmail.CustomerId == id {
		return byEmail
	}
	for i := range byPhone {
		if byPhone[i].CustomerId == id {
			return &byPhone[i]
		}
	}
	return nil
}

// mergeInto reconciles the record into the existing customer. Existing
// non-null fields are only replaced when the incoming source outranks the
// field's recorded source in the precedence table; absent fields are filled.
// Tags merge as a set union. An explicit opt-out from any source always wins
// over an opt-in from another, since opt-out is a compliance signal.
func mergeInto(existing customerModel.CanonicalCustomer, record sourceModel.RawContact, table *precedence.Table) customerModel.CanonicalCustomer {

	merged := existing
	if merged.FieldSources == nil {
		merged.FieldSources = make(map[string]string)
	}

	merged.Email, merged.FieldSources["email"] = mergeScalar(table, "email",
		existing.Email, existing.FieldSources["email"], record.Email, record.Source)
	merged.Phone, merged.FieldSources["phone"] = mergeScalar(table, "phone",
		existing.Phone, existing.FieldSources["phone"], record.Phone, record.Source)
	merged.FullName, merged.FieldSources["full_name"] = mergeScalar(table, "full_name",
		existing.FullName, existing.FieldSources["full_name"], strings.TrimSpace(record.FullName), record.Source)
	merged.Lifecycle, merged.FieldSources["lifecycle"] = mergeScalar(table, "lifecycle",
		existing.Lifecycle, existing.FieldSources["lifecycle"], record.Lifecycle, record.Source)

	merged.Tags = uniqueTags(existing.Tags, record.Tags)
	merged.OptIns = mergeOptIns(existing.OptIns, record.OptIns)

	now := time.Now().UTC()
	merged.LastSyncAt = now
	merged.UpdatedAt = now
	return merged
}

func mergeScalar(table *precedence.Table, field, existingVal, existingSrc, incomingVal, incomingSrc string) (string, string) {

	if incomingVal == "" {
		return existingVal, existingSrc
	}
	if existingVal == "" {
		// Fill-null policy.
		return incomingVal, incomingSrc
	}
	if strings.EqualFold(existingVal, incomingVal) {
		return existingVal, existingSrc
	}
	if table.Wins(field, existingSrc, incomingSrc) {
		return incomingVal, incomingSrc
	}
	return existingVal, existingSrc
}

func uniqueTags(existing, incoming []string) []string {

	seen := make(map[string]bool)
	var combined []string
	for _, tag := range append(append([]string{}, existing...), incoming...) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		combined = append(combined, tag)
	}
	return combined
}

func mergeOptIns(existing, incoming map[string]bool) map[string]bool {

	if existing == nil && incoming == nil {
		return nil
	}
	merged := make(map[string]bool, len(existing)+len(incoming))
	for channel, optedIn := range existing {
		merged[channel] = optedIn
	}
	for channel, optedIn := range incoming {
		if !optedIn {
			// Opt-out is sticky across sources.
			merged[channel] = false
			continue
		}
		if current, declared := merged[channel]; declared && !current {
			continue
		}
		merged[channel] = true
	}
	return merged
}

func copyOptIns(optIns map[string]bool) map[string]bool {

	if optIns == nil {
		return nil
	}
	copied := make(map[string]bool, len(optIns))
	for channel, optedIn := range optIns {
		copied[channel] = optedIn
	}
	return copied
}

func seedFieldSources(record sourceModel.RawContact) map[string]string {

	sources := make(map[string]string)
	if NormalizeEmail(record.Email) != "" {
		sources["email"] = record.Source
	}
	if NormalizePhone(record.Phone) != "" {
		sources["phone"] = record.Source
	}
	if strings.TrimSpace(record.FullName) != "" {
		sources["full_name"] = record.Source
	}
	if record.Lifecycle != "" {
		sources["lifecycle"] = record.Source
	}
	return sources
}
