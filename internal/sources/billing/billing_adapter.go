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
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/revops/revenue-sync-service/internal/sources/client"
	"github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

// wire shapes of the billing platform's customer listing API.
type billingCustomer struct {
	Id               string                 `json:"id"`
	Email            string                 `json:"email"`
	PhoneNumber      string                 `json:"phone_number"`
	Name             string                 `json:"name"`
	Plan             string                 `json:"plan"`
	Labels           []string               `json:"labels"`
	MarketingEmails  *bool                  `json:"marketing_emails_ok"`
	MarketingSMS     *bool                  `json:"marketing_sms_ok"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type billingListResponse struct {
	Customers []billingCustomer `json:"customers"`
}

// Adapter paginates the billing platform with a numeric offset cursor.
type Adapter struct {
	name   string
	client *client.SourceClient
}

func NewAdapter(cfg config.SourceConfig) *Adapter {

	return &Adapter{
		name:   cfg.Name,
		client: client.NewSourceClient(cfg),
	}
}

func (a *Adapter) Name() string {
	return a.name
}

// FetchPage lists one page of customers. The next cursor is the offset after
// the last record actually returned, not offset+pageSize, so upstream
// short pages cannot skip records.
func (a *Adapter) FetchPage(ctx context.Context, cursor string, pageSize int) (model.Page, error) {

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return model.Page{}, errors.NewClientError(errors.ErrInvalidCursor, http.StatusBadRequest)
		}
		offset = parsed
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(pageSize))

	var resp billingListResponse
	if err := a.client.GetJSON(ctx, "/v1/customers", query, &resp); err != nil {
		return model.Page{}, err
	}

	now := time.Now().UTC()
	records := make([]model.RawContact, 0, len(resp.Customers))
	for _, customer := range resp.Customers {
		records = append(records, model.RawContact{
			Source:       a.name,
			ExternalId:   customer.Id,
			Email:        customer.Email,
			Phone:        customer.PhoneNumber,
			FullName:     customer.Name,
			Tags:         customer.Labels,
			OptIns:       billingOptIns(customer),
			Lifecycle:    customer.Plan,
			TrackingData: customer.Metadata,
			FetchedAt:    now,
		})
	}

	page := model.Page{
		Records: records,
		HasMore: len(records) == pageSize,
	}
	if len(records) > 0 {
		page.NextCursor = strconv.Itoa(offset + len(records))
	} else {
		page.NextCursor = cursor
	}
	return page, nil
}

func billingOptIns(customer billingCustomer) map[string]bool {

	var optIns map[string]bool
	set := func(channel string, flag *bool) {
		if flag == nil {
			return
		}
		if optIns == nil {
			optIns = make(map[string]bool)
		}
		optIns[channel] = *flag
	}
	set(constants.ChannelEmail, customer.MarketingEmails)
	set(constants.ChannelSMS, customer.MarketingSMS)
	return optIns
}
