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

package precedence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWins(t *testing.T) {

	table := Default()

	// billing leads the email ordering.
	assert.True(t, table.Wins("email", "crm-a", "billing"))
	assert.False(t, table.Wins("email", "billing", "crm-a"))
	assert.False(t, table.Wins("email", "billing", "billing"))

	// Unknown incoming source never outranks a known one.
	assert.False(t, table.Wins("email", "crm-a", "mystery"))
	// A known source outranks an unknown incumbent.
	assert.True(t, table.Wins("email", "mystery", "upload"))

	// Fields without an ordering keep the incumbent.
	assert.False(t, table.Wins("nickname", "crm-a", "billing"))
}

func TestLoadInstallsTable(t *testing.T) {

	path := filepath.Join(t.TempDir(), "precedence.yaml")
	artifact := `version: 3
fields:
  email: ["upload", "billing"]
`
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Version)
	assert.True(t, Get().Wins("email", "billing", "upload"))

	// Restore the default for other tests.
	Install(nil)
	assert.Equal(t, 1, Get().Version)
}

func TestLoadMissingFile(t *testing.T) {

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
