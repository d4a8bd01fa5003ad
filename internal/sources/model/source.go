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
	"context"
	"time"
)

// RawContact is the single record shape every ingestion path funnels through
// before identity matching, whether the source is an HTTP page, a webhook or
// an uploaded file.
type RawContact struct {
	Source     string   `json:"source"`
	ExternalId string   `json:"external_id"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	FullName   string   `json:"full_name,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	// OptIns carries explicit per-channel consent signals. A key that is
	// absent means the source said nothing; false is an explicit opt-out.
	OptIns       map[string]bool        `json:"opt_ins,omitempty"`
	Lifecycle    string                 `json:"lifecycle,omitempty"`
	TrackingData map[string]interface{} `json:"tracking_data,omitempty"`
	FetchedAt    time.Time              `json:"fetched_at"`
}

// Page is the uniform result of one paginated fetch. NextCursor must be
// derived from the last record of the page, never computed independently,
// so a changing upstream collection cannot skip or duplicate records.
type Page struct {
	Records    []RawContact
	NextCursor string
	HasMore    bool
}

// SourceAdapter maps one platform's native pagination primitive onto the
// uniform page shape.
type SourceAdapter interface {
	Name() string
	FetchPage(ctx context.Context, cursor string, pageSize int) (Page, error)
}
