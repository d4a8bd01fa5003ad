/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import (
	"net/http"

	"github.com/revops/revenue-sync-service/internal/conflict/model"
	"github.com/revops/revenue-sync-service/internal/conflict/store"
	identityProvider "github.com/revops/revenue-sync-service/internal/identity/provider"
	"github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

type ConflictServiceInterface interface {
	ListPendingConflicts(limit int) ([]model.MergeConflict, error)
	GetConflict(conflictId string) (*model.MergeConflict, error)
	ResolveConflict(conflictId string, request model.ResolveRequest) (*model.MergeConflict, error)
}

// ConflictService reviews and resolves records the merge engine refused to
// unify automatically.
type ConflictService struct{}

// GetConflictService creates a new instance of ConflictService.
func GetConflictService() ConflictServiceInterface {

	return &ConflictService{}
}

func (cs *ConflictService) ListPendingConflicts(limit int) ([]model.MergeConflict, error) {

	return store.ListPendingConflicts(limit)
}

func (cs *ConflictService) GetConflict(conflictId string) (*model.MergeConflict, error) {

	conflict, err := store.GetConflict(conflictId)
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return nil, errors.NewClientError(errors.ErrConflictNotFound, http.StatusNotFound)
	}
	return conflict, nil
}

// ResolveConflict applies an operator decision to a pending conflict. The
// held raw record is replayed through the merge engine according to the
// chosen resolution, then the conflict is closed. Closing is guarded in the
// store so two concurrent resolutions cannot both apply.
func (cs *ConflictService) ResolveConflict(conflictId string, request model.ResolveRequest) (*model.MergeConflict, error) {

	logger := log.GetLogger()
	conflict, err := cs.GetConflict(conflictId)
	if err != nil {
		return nil, err
	}
	if conflict.Status == model.StatusResolved {
		return nil, errors.NewClientError(errors.ErrConflictAlreadyResolved, http.StatusConflict)
	}

	mergeService := identityProvider.NewMergeProvider().GetMergeService()
	resolvedTo := ""

	switch request.Resolution {
	case model.ResolutionCreateNew:
		customerId, err := mergeService.CreateFromRecord(conflict.Record)
		if err != nil {
			return nil, err
		}
		resolvedTo = customerId
	case model.ResolutionLinkToExisting:
		if request.CustomerId == "" {
			return nil, errors.NewClientError(errors.ErrInvalidResolution, http.StatusBadRequest)
		}
		if err := mergeService.ApplyToCustomer(conflict.Record, request.CustomerId); err != nil {
			return nil, err
		}
		resolvedTo = request.CustomerId
	case model.ResolutionIgnore:
		// The record is dropped; a future sync of the same external id will
		// raise a fresh conflict if the situation persists.
	default:
		return nil, errors.NewClientError(errors.ErrInvalidResolution, http.StatusBadRequest)
	}

	if err := store.MarkResolved(conflictId, request.Resolution, resolvedTo); err != nil {
		return nil, err
	}
	logger.Info("Resolved merge conflict " + conflictId + " as " + request.Resolution)
	return store.GetConflict(conflictId)
}
