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

// Package crmb adapts a CRM that paginates by modification time. The cursor
// is "updatedAt|leadId" taken from the last record of each page; the id part
// breaks ties between leads sharing a modification timestamp.
package crmb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/revops/revenue-sync-service/internal/sources/client"
	"github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

type crmLead struct {
	LeadId       string                 `json:"lead_id"`
	EmailAddress string                 `json:"email_address"`
	Mobile       string                 `json:"mobile"`
	FullName     string                 `json:"full_name"`
	Stage        string                 `json:"stage"`
	Tags         []string               `json:"tags"`
	Unsubscribed *bool                  `json:"unsubscribed"`
	Attribution  map[string]interface{} `json:"attribution"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type crmLeadsResponse struct {
	Leads []crmLead `json:"leads"`
}

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

func (a *Adapter) FetchPage(ctx context.Context, cursor string, pageSize int) (model.Page, error) {

	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	if cursor != "" {
		updatedSince, afterId, err := decodeCursor(cursor)
		if err != nil {
			return model.Page{}, err
		}
		query.Set("updated_since", updatedSince.Format(time.RFC3339Nano))
		query.Set("after_id", afterId)
	}

	var resp crmLeadsResponse
	if err := a.client.GetJSON(ctx, "/v2/leads", query, &resp); err != nil {
		return model.Page{}, err
	}

	now := time.Now().UTC()
	records := make([]model.RawContact, 0, len(resp.Leads))
	for _, lead := range resp.Leads {
		records = append(records, model.RawContact{
			Source:       a.name,
			ExternalId:   lead.LeadId,
			Email:        lead.EmailAddress,
			Phone:        lead.Mobile,
			FullName:     lead.FullName,
			Tags:         lead.Tags,
			OptIns:       leadOptIns(lead.Unsubscribed),
			Lifecycle:    lead.Stage,
			TrackingData: lead.Attribution,
			FetchedAt:    now,
		})
	}

	page := model.Page{
		Records: records,
		HasMore: len(records) == pageSize,
	}
	if len(resp.Leads) > 0 {
		last := resp.Leads[len(resp.Leads)-1]
		page.NextCursor = last.UpdatedAt.UTC().Format(time.RFC3339Nano) + "|" + last.LeadId
	} else {
		page.NextCursor = cursor
	}
	return page, nil
}

func decodeCursor(cursor string) (time.Time, string, error) {

	parts := strings.SplitN(cursor, "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", errors.NewClientError(errors.ErrInvalidCursor, http.StatusBadRequest)
	}
	updatedSince, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", errors.NewClientError(errors.ErrInvalidCursor, http.StatusBadRequest)
	}
	return updatedSince, parts[1], nil
}

// The platform only models an unsubscribe flag, which maps to the email
// channel. Absence of the flag says nothing about consent.
func leadOptIns(unsubscribed *bool) map[string]bool {

	if unsubscribed == nil {
		return nil
	}
	return map[string]bool{constants.ChannelEmail: !*unsubscribed}
}
