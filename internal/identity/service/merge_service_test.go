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
	customerModel "github.com/revops/revenue-sync-service/internal/customer/model"
	"github.com/revops/revenue-sync-service/internal/precedence"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
)

func TestMergeInto_FillNull(t *testing.T) {

	existing := customerModel.CanonicalCustomer{
		CustomerId:   "c1",
		Email:        "jane@example.com",
		FieldSources: map[string]string{"email": "crm-a"},
	}
	record := sourceModel.RawContact{
		Source:   "crm-b",
		Email:    "jane@example.com",
		Phone:    "+15551234567",
		FullName: "Jane Doe",
	}

	merged := mergeInto(existing, record, precedence.Default())

	assert.Equal(t, "jane@example.com", merged.Email)
	assert.Equal(t, "+15551234567", merged.Phone, "absent phone should be filled")
	assert.Equal(t, "Jane Doe", merged.FullName)
	assert.Equal(t, "crm-b", merged.FieldSources["phone"])
	assert.Equal(t, "crm-b", merged.FieldSources["full_name"])
	assert.Equal(t, "crm-a", merged.FieldSources["email"], "agreeing value keeps its source")
}

func TestMergeInto_PrecedenceArbitratesDisagreement(t *testing.T) {

	existing := customerModel.CanonicalCustomer{
		CustomerId:   "c1",
		FullName:     "J. Doe",
		FieldSources: map[string]string{"full_name": "crm-b"},
	}

	// billing outranks crm-b for full_name in the default table.
	merged := mergeInto(existing, sourceModel.RawContact{
		Source:   "billing",
		FullName: "Jane Doe",
	}, precedence.Default())
	assert.Equal(t, "Jane Doe", merged.FullName)
	assert.Equal(t, "billing", merged.FieldSources["full_name"])

	// The lower-ranked source must not overwrite.
	merged = mergeInto(merged, sourceModel.RawContact{
		Source:   "upload",
		FullName: "Janet Doe",
	}, precedence.Default())
	assert.Equal(t, "Jane Doe", merged.FullName)
	assert.Equal(t, "billing", merged.FieldSources["full_name"])
}

func TestMergeInto_TagsUnion(t *testing.T) {

	existing := customerModel.CanonicalCustomer{
		CustomerId: "c1",
		Tags:       []string{"vip", "churn-risk"},
	}
	merged := mergeInto(existing, sourceModel.RawContact{
		Source: "crm-a",
		Tags:   []string{"churn-risk", "newsletter", " "},
	}, precedence.Default())

	assert.ElementsMatch(t, []string{"vip", "churn-risk", "newsletter"}, merged.Tags)
}

func TestMergeOptIns_OptOutWins(t *testing.T) {

	// An explicit opt-out survives a later opt-in from another source.
	merged := mergeOptIns(map[string]bool{"email": false}, map[string]bool{"email": true, "sms": true})
	assert.False(t, merged["email"])
	assert.True(t, merged["sms"])

	// An incoming opt-out overrides an existing opt-in.
	merged = mergeOptIns(map[string]bool{"email": true}, map[string]bool{"email": false})
	assert.False(t, merged["email"])

	// Absent channels stay absent.
	merged = mergeOptIns(nil, map[string]bool{"sms": true})
	_, declared := merged["email"]
	assert.False(t, declared)

	assert.Nil(t, mergeOptIns(nil, nil))
}

func TestCandidateIds_DistinctInPriorityOrder(t *testing.T) {

	byExternal := &customerModel.CanonicalCustomer{CustomerId: "c1"}
	byEmail := &customerModel.CanonicalCustomer{CustomerId: "c2"}
	byPhone := []customerModel.CanonicalCustomer{{CustomerId: "c2"}, {CustomerId: "c3"}}

	ids := candidateIds(byExternal, byEmail, byPhone)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)

	ids = candidateIds(byExternal, byExternal, nil)
	assert.Equal(t, []string{"c1"}, ids)

	assert.Empty(t, candidateIds(nil, nil, nil))
}

func TestMergeScalar_CaseInsensitiveAgreement(t *testing.T) {

	value, source := mergeScalar(precedence.Default(), "email",
		"jane@example.com", "crm-a", "JANE@EXAMPLE.COM", "billing")
	assert.Equal(t, "jane@example.com", value)
	assert.Equal(t, "crm-a", source)
}

func TestMergeScalar_UnknownFieldKeepsIncumbent(t *testing.T) {

	value, source := mergeScalar(precedence.Default(), "nickname",
		"JJ", "crm-a", "Jay", "billing")
	assert.Equal(t, "JJ", value)
	assert.Equal(t, "crm-a", source)
}
