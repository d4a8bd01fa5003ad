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

// Package precedence holds the versioned source-precedence configuration that
// resolves conflicting field values during identity merges. The table is
// configuration data, never hard-coded per record.
package precedence

import (
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

// Table maps a canonical field name to an ordered list of sources; earlier
// entries win when two sources disagree on a non-null value.
type Table struct {
	Version int                 `yaml:"version"`
	Fields  map[string][]string `yaml:"fields"`
}

var (
	table *Table
	mutex sync.RWMutex
)

// Default returns the baseline table used when no artifact is configured.
// Billing data wins contact fields since it is verified at payment time.
func Default() *Table {
	return &Table{
		Version: 1,
		Fields: map[string][]string{
			"email":     {"billing", "crm-a", "crm-b", "upload"},
			"phone":     {"crm-b", "crm-a", "billing", "upload"},
			"full_name": {"billing", "crm-a", "crm-b", "upload"},
			"lifecycle": {"crm-a", "crm-b", "billing", "upload"},
		},
	}
}

// Load reads the precedence artifact from disk and installs it.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}

	Install(&t)
	return &t, nil
}

// Install replaces the active table.
func Install(t *Table) {
	mutex.Lock()
	defer mutex.Unlock()
	table = t
}

// Get returns the active table, falling back to the default.
func Get() *Table {
	mutex.RLock()
	defer mutex.RUnlock()
	if table == nil {
		return Default()
	}
	return table
}

// Wins reports whether the incoming source outranks the incumbent source for
// the given field. Unknown sources never outrank known ones, and a field with
// no configured ordering keeps the incumbent value (fill-null only).
func (t *Table) Wins(field, incumbent, incoming string) bool {

	order, ok := t.Fields[field]
	if !ok {
		return false
	}

	incumbentRank := rank(order, incumbent)
	incomingRank := rank(order, incoming)
	return incomingRank < incumbentRank
}

func rank(order []string, source string) int {
	for i, s := range order {
		if s == source {
			return i
		}
	}
	return len(order)
}
