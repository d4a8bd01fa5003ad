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

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/revops/revenue-sync-service/internal/customer/provider"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

type CustomerHandler struct{}

func NewCustomerHandler() *CustomerHandler {

	return &CustomerHandler{}
}

// GetCustomer handles retrieval of a single canonical customer.
func (ch *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(r.URL.Path, "/")
	if len(pathParts) < 3 {
		http.Error(w, "Invalid path", http.StatusNotFound)
		return
	}
	customerId := pathParts[len(pathParts)-1]

	customersService := provider.NewCustomersProvider().GetCustomersService()
	customer, err := customersService.GetCustomer(customerId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, customer)
}

// ListCustomers handles the paginated dashboard listing.
func (ch *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {

	cursor := r.URL.Query().Get("cursor")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tag := r.URL.Query().Get("tag")

	customersService := provider.NewCustomersProvider().GetCustomersService()

	if tag != "" {
		customers, err := customersService.SearchByTag(tag, limit)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, customers)
		return
	}

	response, err := customersService.ListCustomers(cursor, limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, response)
}

// ArchiveCustomer status-flags a customer. Customers are never hard deleted.
func (ch *CustomerHandler) ArchiveCustomer(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(r.URL.Path, "/")
	if len(pathParts) < 3 {
		http.Error(w, "Invalid path", http.StatusNotFound)
		return
	}
	customerId := pathParts[len(pathParts)-1]

	customersService := provider.NewCustomersProvider().GetCustomersService()
	if err := customersService.ArchiveCustomer(customerId); err != nil {
		utils.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
