/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
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

package constants

import "time"

const ApiBasePath = "/api/v1"

const (
	// DefaultPageSize is used when a source config does not set one.
	DefaultPageSize = 100
	// MaxPageSize bounds the page size a caller may request.
	MaxPageSize = 500

	// DefaultSubBatchSize bounds concurrent merges within one page.
	DefaultSubBatchSize = 10

	// DefaultStalenessWindow is the time an active run may remain without
	// activity before the reaper fails it.
	DefaultStalenessWindow = 15 * time.Minute

	// DefaultBreakerProbeTimeout bounds the webhook-path datastore probe.
	DefaultBreakerProbeTimeout = 2 * time.Second

	// DefaultRetryMaxAttempts is the per-page retry budget for transient
	// source failures.
	DefaultRetryMaxAttempts = 5
	// DefaultRetryMaxElapsed is the total retry time budget per page.
	DefaultRetryMaxElapsed = 90 * time.Second
)

// Source kinds map a configured source onto its adapter implementation.
const (
	SourceKindBilling = "billing"
	SourceKindCRMA    = "crm-a"
	SourceKindCRMB    = "crm-b"
	SourceKindUpload  = "upload"
)

// Merge actions returned by the identity merge service.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionConflict = "conflict"
	ActionSkipped  = "skipped"
)

// Opt-in channels tracked on the canonical customer.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const (
	DefaultAPIKeyHeader = "X-API-Key"
)
