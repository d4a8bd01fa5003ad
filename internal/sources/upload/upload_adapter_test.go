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

package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/revops/revenue-sync-service/internal/system/config"
)

func writeCSV(t *testing.T, content string) *Adapter {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return NewAdapter(config.SourceConfig{Name: "legacy-upload", BaseURL: path})
}

const sampleCSV = `external_id,email,phone,full_name,tags,lifecycle,email_opt_in
u-1,jane@example.com,555-123-4567,Jane Doe,"vip,legacy",customer,true
u-2,john@example.com,,John Roe,,lead,
u-3,,+442071234567,Ada L,legacy,lead,false
`

func TestFetchPageReadsRows(t *testing.T) {

	adapter := writeCSV(t, sampleCSV)

	page, err := adapter.FetchPage(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "2", page.NextCursor)

	first := page.Records[0]
	assert.Equal(t, "legacy-upload", first.Source)
	assert.Equal(t, "u-1", first.ExternalId)
	assert.Equal(t, []string{"vip", "legacy"}, first.Tags)
	assert.True(t, first.OptIns["email"])

	second := page.Records[1]
	assert.Empty(t, second.Tags)
	_, declared := second.OptIns["email"]
	assert.False(t, declared, "empty consent cell says nothing")
}

func TestFetchPageResumesFromCursor(t *testing.T) {

	adapter := writeCSV(t, sampleCSV)

	page, err := adapter.FetchPage(context.Background(), "2", 2)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "3", page.NextCursor)
	assert.Equal(t, "u-3", page.Records[0].ExternalId)
	assert.False(t, page.Records[0].OptIns["email"], "explicit opt-out survives import")
}

func TestFetchPagePastEnd(t *testing.T) {

	adapter := writeCSV(t, sampleCSV)

	page, err := adapter.FetchPage(context.Background(), "3", 2)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.False(t, page.HasMore)
	assert.Equal(t, "3", page.NextCursor)
}

func TestFetchPageMissingFile(t *testing.T) {

	adapter := NewAdapter(config.SourceConfig{Name: "legacy-upload", BaseURL: "/nonexistent.csv"})
	_, err := adapter.FetchPage(context.Background(), "", 10)
	assert.Error(t, err)
}
