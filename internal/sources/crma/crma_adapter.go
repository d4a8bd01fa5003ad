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

// Package crma adapts a CRM whose listing API hands out opaque page tokens.
// The token is stored verbatim as the checkpoint cursor.
package crma

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/revops/revenue-sync-service/internal/sources/client"
	"github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
)

type crmContact struct {
	ContactId  string `json:"contact_id"`
	Properties struct {
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		LifecycleStage string `json:"lifecycle_stage"`
		Segments       string `json:"segments"`
		EmailOptIn     *bool  `json:"email_opt_in"`
		SMSOptIn       *bool  `json:"sms_opt_in"`
	} `json:"properties"`
	Analytics map[string]interface{} `json:"analytics"`
}

type crmListResponse struct {
	Contacts      []crmContact `json:"contacts"`
	NextPageToken string       `json:"next_page_token"`
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
	query.Set("page_size", strconv.Itoa(pageSize))
	if cursor != "" {
		query.Set("page_token", cursor)
	}

	var resp crmListResponse
	if err := a.client.GetJSON(ctx, "/api/contacts", query, &resp); err != nil {
		return model.Page{}, err
	}

	now := time.Now().UTC()
	records := make([]model.RawContact, 0, len(resp.Contacts))
	for _, contact := range resp.Contacts {
		props := contact.Properties
		records = append(records, model.RawContact{
			Source:       a.name,
			ExternalId:   contact.ContactId,
			Email:        props.Email,
			Phone:        props.Phone,
			FullName:     strings.TrimSpace(props.FirstName + " " + props.LastName),
			Tags:         splitSegments(props.Segments),
			OptIns:       crmOptIns(props.EmailOptIn, props.SMSOptIn),
			Lifecycle:    props.LifecycleStage,
			TrackingData: contact.Analytics,
			FetchedAt:    now,
		})
	}

	nextCursor := resp.NextPageToken
	if nextCursor == "" {
		nextCursor = cursor
	}
	return model.Page{
		Records:    records,
		NextCursor: nextCursor,
		HasMore:    resp.NextPageToken != "",
	}, nil
}

// Segments arrive as a semicolon-joined string.
func splitSegments(segments string) []string {

	if segments == "" {
		return nil
	}
	var tags []string
	for _, segment := range strings.Split(segments, ";") {
		if segment = strings.TrimSpace(segment); segment != "" {
			tags = append(tags, segment)
		}
	}
	return tags
}

func crmOptIns(email, sms *bool) map[string]bool {

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
	set(constants.ChannelEmail, email)
	set(constants.ChannelSMS, sms)
	return optIns
}
