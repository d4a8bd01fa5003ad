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

package crmb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("error")
	os.Exit(m.Run())
}

func TestFetchPageDerivesCursorFromLastLead(t *testing.T) {

	updated := time.Date(2026, 5, 2, 10, 30, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/leads", r.URL.Path)
		unsub := true
		_ = json.NewEncoder(w).Encode(crmLeadsResponse{Leads: []crmLead{
			{LeadId: "l-1", EmailAddress: "a@example.com", UpdatedAt: updated.Add(-time.Hour)},
			{LeadId: "l-2", EmailAddress: "b@example.com", Unsubscribed: &unsub, UpdatedAt: updated},
		}})
	}))
	defer server.Close()

	adapter := NewAdapter(config.SourceConfig{Name: "crm-b", BaseURL: server.URL})
	page, err := adapter.FetchPage(context.Background(), "", 2)
	require.NoError(t, err)

	assert.Equal(t, updated.Format(time.RFC3339Nano)+"|l-2", page.NextCursor,
		"cursor must come from the last record of the page")
	assert.True(t, page.HasMore)
	assert.False(t, page.Records[1].OptIns["email"], "unsubscribed maps to email opt-out")
}

func TestFetchPagePassesCursorUpstream(t *testing.T) {

	cursor := "2026-05-02T10:30:00Z|l-2"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-05-02T10:30:00Z", r.URL.Query().Get("updated_since"))
		assert.Equal(t, "l-2", r.URL.Query().Get("after_id"))
		_ = json.NewEncoder(w).Encode(crmLeadsResponse{})
	}))
	defer server.Close()

	adapter := NewAdapter(config.SourceConfig{Name: "crm-b", BaseURL: server.URL})
	page, err := adapter.FetchPage(context.Background(), cursor, 50)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Equal(t, cursor, page.NextCursor, "empty page keeps the cursor")
}

func TestFetchPageRejectsMalformedCursor(t *testing.T) {

	adapter := NewAdapter(config.SourceConfig{Name: "crm-b", BaseURL: "http://unused"})
	_, err := adapter.FetchPage(context.Background(), "garbage", 50)
	assert.Error(t, err)

	_, err = adapter.FetchPage(context.Background(), "not-a-time|l-1", 50)
	assert.Error(t, err)
}
