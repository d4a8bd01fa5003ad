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

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/internal/system/retry"
)

func TestMain(m *testing.M) {
	_ = log.Init("error")
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAdapter(config.SourceConfig{Name: "billing", BaseURL: server.URL, APIKey: "test-key"})
}

func TestFetchPageMapsCustomers(t *testing.T) {

	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		optIn := true
		_ = json.NewEncoder(w).Encode(billingListResponse{Customers: []billingCustomer{
			{
				Id:              "cus_001",
				Email:           "jane@example.com",
				PhoneNumber:     "555-123-4567",
				Name:            "Jane Doe",
				Plan:            "enterprise",
				Labels:          []string{"vip"},
				MarketingEmails: &optIn,
			},
			{Id: "cus_002", Email: "john@example.com"},
		}})
	})

	page, err := adapter.FetchPage(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	first := page.Records[0]
	assert.Equal(t, "billing", first.Source)
	assert.Equal(t, "cus_001", first.ExternalId)
	assert.Equal(t, "jane@example.com", first.Email)
	assert.Equal(t, "enterprise", first.Lifecycle)
	assert.True(t, first.OptIns["email"])
	_, smsDeclared := first.OptIns["sms"]
	assert.False(t, smsDeclared, "unspecified consent must stay unspecified")

	assert.Equal(t, "2", page.NextCursor, "cursor advances by records returned")
	assert.True(t, page.HasMore, "full page implies more")
}

func TestFetchPageShortPageEndsSync(t *testing.T) {

	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("offset"))
		_ = json.NewEncoder(w).Encode(billingListResponse{Customers: []billingCustomer{
			{Id: "cus_101"},
		}})
	})

	page, err := adapter.FetchPage(context.Background(), "100", 50)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Equal(t, "101", page.NextCursor)
}

func TestFetchPageEmptyPageKeepsCursor(t *testing.T) {

	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(billingListResponse{})
	})

	page, err := adapter.FetchPage(context.Background(), "40", 50)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.False(t, page.HasMore)
	assert.Equal(t, "40", page.NextCursor, "empty page must not advance the cursor")
}

func TestFetchPageInvalidCursor(t *testing.T) {

	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the platform")
	})

	_, err := adapter.FetchPage(context.Background(), "not-a-number", 50)
	var clientErr *errors2.ClientError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, http.StatusBadRequest, clientErr.StatusCode)
}

func TestFetchPageRetryableStatusIsTransient(t *testing.T) {

	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := adapter.FetchPage(context.Background(), "", 50)
	var transient *retry.TransientError
	assert.True(t, errors.As(err, &transient))
}

func TestFetchPageRejectionIsPermanent(t *testing.T) {

	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	_, err := adapter.FetchPage(context.Background(), "", 50)
	require.Error(t, err)
	var transient *retry.TransientError
	assert.False(t, errors.As(err, &transient))
	assert.Contains(t, err.Error(), fmt.Sprintf("%d", http.StatusUnauthorized))
}
