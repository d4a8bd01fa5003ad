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

import "time"

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// CanonicalCustomer is the single deduplicated record representing one
// real-world contact across all source platforms. Customers are never hard
// deleted, only status-flagged.
type CanonicalCustomer struct {
	CustomerId string          `json:"customer_id"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	FullName   string          `json:"full_name,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	OptIns     map[string]bool `json:"opt_ins,omitempty"`
	Lifecycle  string          `json:"lifecycle,omitempty"`
	Status     string          `json:"status"`
	// FieldSources records which source last set each scalar field, so the
	// precedence table can arbitrate later disagreements.
	FieldSources map[string]string  `json:"field_sources,omitempty"`
	ExternalIds  []ExternalIdentity `json:"external_ids,omitempty"`
	FirstSeenAt  time.Time          `json:"first_seen_at"`
	LastSyncAt   time.Time          `json:"last_sync_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ExternalIdentity binds a platform-specific identifier to exactly one
// canonical customer. (Source, ExternalId) is unique.
type ExternalIdentity struct {
	Source     string `json:"source"`
	ExternalId string `json:"external_id"`
	CustomerId string `json:"customer_id"`
}

// CustomerListResponse is the paginated dashboard listing shape.
type CustomerListResponse struct {
	Customers  []CanonicalCustomer `json:"customers"`
	NextCursor string              `json:"next_cursor,omitempty"`
	HasMore    bool                `json:"has_more"`
}
