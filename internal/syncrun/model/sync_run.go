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

// Sync run statuses. A run is the durable memory of a multi-invocation sync:
// each stateless invocation loads it, processes one page and writes it back.
const (
	StatusPending    = "pending"
	StatusRunning    = "running"
	StatusContinuing = "continuing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}

// Checkpoint is the resumption state persisted after every page.
type Checkpoint struct {
	Cursor    string `json:"cursor,omitempty"`
	PageCount int    `json:"page_count"`
}

// SyncRun tracks one logical sync of one source across many invocations.
type SyncRun struct {
	RunId          string     `json:"sync_run_id"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Checkpoint     Checkpoint `json:"checkpoint"`
	TotalFetched   int        `json:"total_fetched"`
	TotalInserted  int        `json:"total_inserted"`
	TotalUpdated   int        `json:"total_updated"`
	TotalSkipped   int        `json:"total_skipped"`
	TotalConflicts int        `json:"total_conflicts"`
	DryRun         bool       `json:"dry_run"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// PageProgress carries one page's deltas into the run record.
type PageProgress struct {
	Cursor    string
	Fetched   int
	Inserted  int
	Updated   int
	Skipped   int
	Conflicts int
	HasMore   bool
}
