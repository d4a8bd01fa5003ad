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

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {

	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "jane+tag@example.com", NormalizeEmail("jane+tag@example.com"))
	assert.Equal(t, "", NormalizeEmail(""))
	assert.Equal(t, "", NormalizeEmail("not-an-email"))
	assert.Equal(t, "", NormalizeEmail("@example.com"))
	assert.Equal(t, "", NormalizeEmail("jane@"))
}

func TestNormalizePhone(t *testing.T) {

	// Ten digits assume NANP.
	assert.Equal(t, "+15551234567", NormalizePhone("555-123-4567"))
	assert.Equal(t, "+15551234567", NormalizePhone("(555) 123 4567"))
	// Eleven digits with leading 1.
	assert.Equal(t, "+15551234567", NormalizePhone("1 555 123 4567"))
	// Explicit country code passes through.
	assert.Equal(t, "+442071234567", NormalizePhone("+44 20 7123 4567"))
	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))

	assert.Equal(t, "", NormalizePhone(""))
	assert.Equal(t, "", NormalizePhone("12345"))
	assert.Equal(t, "", NormalizePhone("not a phone"))
	// Too many digits even for E.164.
	assert.Equal(t, "", NormalizePhone("+1234567890123456"))
}
