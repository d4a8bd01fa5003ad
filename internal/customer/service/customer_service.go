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
	"net/http"

	"github.com/revops/revenue-sync-service/internal/customer/model"
	"github.com/revops/revenue-sync-service/internal/customer/store"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/pagination"
)

type CustomersServiceInterface interface {
	GetCustomer(customerId string) (*model.CanonicalCustomer, error)
	ListCustomers(cursor string, limit int) (*model.CustomerListResponse, error)
	ArchiveCustomer(customerId string) error
	SearchByTag(tag string, limit int) ([]model.CanonicalCustomer, error)
}

// CustomersService is the read-side service backing the dashboard. All
// writes to canonical customers go through the identity merge service.
type CustomersService struct{}

// GetCustomersService creates a new instance of CustomersService.
func GetCustomersService() CustomersServiceInterface {

	return &CustomersService{}
}

func (cs *CustomersService) GetCustomer(customerId string) (*model.CanonicalCustomer, error) {

	customer, err := store.GetCustomer(customerId)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors2.NewClientError(errors2.ErrCustomerNotFound, http.StatusNotFound)
	}
	return customer, nil
}

func (cs *CustomersService) ListCustomers(cursor string, limit int) (*model.CustomerListResponse, error) {

	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	decoded, err := pagination.DecodeCustomerCursor(cursor)
	if err != nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.ErrInvalidCursor.Code,
			Message:     errors2.ErrInvalidCursor.Message,
			Description: err.Error(),
		}, http.StatusBadRequest)
	}

	// Fetch one extra row to learn whether more pages remain.
	customers, err := store.ListCustomers(decoded, limit+1)
	if err != nil {
		return nil, err
	}

	response := &model.CustomerListResponse{}
	if len(customers) > limit {
		customers = customers[:limit]
		response.HasMore = true
		last := customers[len(customers)-1]
		response.NextCursor = pagination.EncodeCustomerCursor(pagination.CustomerCursor{
			UpdatedAt:  last.UpdatedAt,
			CustomerId: last.CustomerId,
		})
	}
	response.Customers = customers
	return response, nil
}

func (cs *CustomersService) ArchiveCustomer(customerId string) error {

	return store.ArchiveCustomer(customerId)
}

func (cs *CustomersService) SearchByTag(tag string, limit int) ([]model.CanonicalCustomer, error) {

	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	return store.SearchByTag(tag, limit)
}
