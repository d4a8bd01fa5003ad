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
	identityService "github.com/revops/revenue-sync-service/internal/identity/service"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

func Test_CustomerListing(t *testing.T) {

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	mergeSvc := identityService.GetMergeService()
	customerSvc := customerService.GetCustomersService()

	created := make(map[string]bool)
	for i := 0; i < 5; i++ {
		customerId, err := mergeSvc.CreateFromRecord(sourceModel.RawContact{
			Source:     "upload",
			ExternalId: fmt.Sprintf("list_%d_%s", i, suffix),
			Email:      fmt.Sprintf("list-%d-%s@example.com", i, suffix),
			Tags:       []string{"listing-fixture-" + suffix},
		})
		require.NoError(t, err)
		created[customerId] = true
	}

	t.Run("Cursor_Walk_Visits_Each_Customer_Once", func(t *testing.T) {
		seen := make(map[string]int)
		cursor := ""
		for pages := 0; pages < 100; pages++ {
			response, err := customerSvc.ListCustomers(cursor, 2)
			require.NoError(t, err)
			for _, c := range response.Customers {
				seen[c.CustomerId]++
			}
			if !response.HasMore {
				break
			}
			require.NotEmpty(t, response.NextCursor)
			cursor = response.NextCursor
		}

		for customerId := range created {
			require.Equal(t, 1, seen[customerId], "keyset walk must visit each customer exactly once")
		}
	})

	t.Run("Invalid_Cursor_Is_Rejected", func(t *testing.T) {
		_, err := customerSvc.ListCustomers("not-a-cursor", 2)
		var clientErr *errors.ClientError
		require.ErrorAs(t, err, &clientErr)
		require.Equal(t, 400, clientErr.StatusCode)
	})

	t.Run("Search_By_Tag", func(t *testing.T) {
		customers, err := customerSvc.SearchByTag("listing-fixture-"+suffix, 10)
		require.NoError(t, err)
		require.Len(t, customers, 5)
	})

	t.Run("Archive_Keeps_Row_With_Status_Flag", func(t *testing.T) {
		var target string
		for customerId := range created {
			target = customerId
			break
		}
		require.NoError(t, customerSvc.ArchiveCustomer(target))

		customer, err := customerSvc.GetCustomer(target)
		require.NoError(t, err)
		require.Equal(t, "archived", customer.Status)
	})
}
