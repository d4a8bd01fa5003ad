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

package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	customerService "github.com/revops/revenue-sync-service/internal/customer/service"
	customerStore "github.com/revops/revenue-sync-service/internal/customer/store"
	identityService "github.com/revops/revenue-sync-service/internal/identity/service"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/constants"
)

func Test_IdentityMerge(t *testing.T) {

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	email := fmt.Sprintf("merge-%s@example.com", suffix)
	mergeSvc := identityService.GetMergeService()
	customerSvc := customerService.GetCustomersService()

	var customerId string

	t.Run("Create_New_Customer", func(t *testing.T) {
		outcome, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "billing",
			ExternalId: "cus_" + suffix,
			Email:      email,
			FullName:   "Ada Lovelace",
			Tags:       []string{"enterprise"},
			OptIns:     map[string]bool{constants.ChannelEmail: true},
			Lifecycle:  "customer",
		}, false)
		require.NoError(t, err)
		require.Equal(t, constants.ActionCreated, outcome.Action)
		require.NotEmpty(t, outcome.CustomerId)
		customerId = outcome.CustomerId

		customer, err := customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.Equal(t, email, customer.Email)
		require.Equal(t, "Ada Lovelace", customer.FullName)
		require.Equal(t, "billing", customer.FieldSources["email"])
		require.Len(t, customer.ExternalIds, 1)
	})

	t.Run("Replay_Is_Idempotent", func(t *testing.T) {
		outcome, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "billing",
			ExternalId: "cus_" + suffix,
			Email:      email,
			FullName:   "Ada Lovelace",
		}, false)
		require.NoError(t, err)
		require.Equal(t, constants.ActionUpdated, outcome.Action)
		require.Equal(t, customerId, outcome.CustomerId)
	})

	t.Run("Email_Match_Binds_New_Source", func(t *testing.T) {
		// Same person seen in crm-b under a different external id; the
		// case-insensitive email match must attach it to the same customer.
		outcome, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "crm-b",
			ExternalId: "lead_" + suffix,
			Email:      "  Merge-" + suffix + "@Example.COM ",
			Phone:      "(415) 555-0100",
			FullName:   "A. Lovelace",
		}, false)
		require.NoError(t, err)
		require.Equal(t, constants.ActionUpdated, outcome.Action)
		require.Equal(t, customerId, outcome.CustomerId)

		customer, err := customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.Equal(t, "+14155550100", customer.Phone, "absent phone is filled from the new source")
		require.Equal(t, "Ada Lovelace", customer.FullName, "billing outranks crm-b for full_name")
		require.Len(t, customer.ExternalIds, 2)
	})

	t.Run("Precedence_Overrides_Lower_Rank", func(t *testing.T) {
		// crm-a outranks billing for lifecycle, so its value replaces the one
		// billing wrote at creation.
		outcome, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "crm-a",
			ExternalId: "contact_" + suffix,
			Email:      email,
			Lifecycle:  "opportunity",
		}, false)
		require.NoError(t, err)
		require.Equal(t, constants.ActionUpdated, outcome.Action)

		customer, err := customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.Equal(t, "opportunity", customer.Lifecycle)
		require.Equal(t, "crm-a", customer.FieldSources["lifecycle"])
	})

	t.Run("Lower_Rank_Never_Overrides", func(t *testing.T) {
		outcome, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "upload",
			ExternalId: "row_" + suffix,
			Email:      email,
			FullName:   "Wrong Name",
			Lifecycle:  "lead",
		}, false)
		require.NoError(t, err)
		require.Equal(t, constants.ActionUpdated, outcome.Action)

		customer, err := customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.Equal(t, "Ada Lovelace", customer.FullName)
		require.Equal(t, "opportunity", customer.Lifecycle)
	})

	t.Run("Tags_Merge_As_Set_Union", func(t *testing.T) {
		_, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "crm-b",
			ExternalId: "lead_" + suffix,
			Email:      email,
			Tags:       []string{"enterprise", "newsletter"},
		}, false)
		require.NoError(t, err)

		customer, err := customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"enterprise", "newsletter"}, customer.Tags)
	})

	t.Run("OptOut_Wins_And_Sticks", func(t *testing.T) {
		_, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "crm-b",
			ExternalId: "lead_" + suffix,
			Email:      email,
			OptIns:     map[string]bool{constants.ChannelEmail: false},
		}, false)
		require.NoError(t, err)

		customer, err := customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.False(t, customer.OptIns[constants.ChannelEmail])

		// A later opt-in from a higher-precedence source must not revive it.
		_, err = mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "billing",
			ExternalId: "cus_" + suffix,
			Email:      email,
			OptIns:     map[string]bool{constants.ChannelEmail: true},
		}, false)
		require.NoError(t, err)

		customer, err = customerSvc.GetCustomer(customerId)
		require.NoError(t, err)
		require.False(t, customer.OptIns[constants.ChannelEmail])
	})

	t.Run("DryRun_Writes_Nothing", func(t *testing.T) {
		outcome, err := mergeSvc.ProcessRecord(sourceModel.RawContact{
			Source:     "billing",
			ExternalId: "cus_dry_" + suffix,
			Email:      fmt.Sprintf("dry-%s@example.com", suffix),
		}, true)
		require.NoError(t, err)
		require.Equal(t, constants.ActionCreated, outcome.Action)
		require.Empty(t, outcome.CustomerId)

		found, err := customerStore.FindByExternalId("billing", "cus_dry_"+suffix)
		require.NoError(t, err)
		require.Nil(t, found)
	})
}
