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

package model

import (
	"time"

	sourcemodel "github.com/revops/revenue-sync-service/internal/sources/model"
)

// Conflict types recorded by the matcher.
const (
	TypeIdentityCollision = "identity_collision"
	TypeWeakIdentifier    = "weak_identifier"
	TypeAmbiguousPhone    = "ambiguous_phone"
)

// Resolution states and operator actions.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"

	ResolutionCreateNew      = "create_new"
	ResolutionIgnore         = "ignore"
	ResolutionLinkToExisting = "link_to_existing"
)

// MergeConflict is a raw record whose identifiers point at two different
// canonical customers, or one too weak to process automatically. Conflicts
// are never auto-resolved; silently collapsing identities is an unrecoverable
// data-integrity error.
type MergeConflict struct {
	ConflictId   string                  `json:"conflict_id"`
	Source       string                  `json:"source"`
	ExternalId   string                  `json:"external_id"`
	ConflictType string                  `json:"conflict_type"`
	CandidateIds []string                `json:"candidate_ids,omitempty"`
	Record       sourcemodel.RawContact  `json:"record"`
	Status       string                  `json:"status"`
	Resolution   string                  `json:"resolution,omitempty"`
	ResolvedTo   string                  `json:"resolved_to,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	ResolvedAt   *time.Time              `json:"resolved_at,omitempty"`
}

// ResolveRequest is the operator action against a pending conflict.
type ResolveRequest struct {
	Resolution string `json:"resolution"`
	CustomerId string `json:"customer_id,omitempty"`
}
