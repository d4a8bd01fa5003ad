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

// Package upload adapts an operator-dropped CSV export into the uniform page
// shape. The source's base_url holds the file path; the cursor is the row
// offset past the header.
package upload

import (
	"context"
	"encoding/csv"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

type Adapter struct {
	name string
	path string
}

func NewAdapter(cfg config.SourceConfig) *Adapter {

	return &Adapter{
		name: cfg.Name,
		path: cfg.BaseURL,
	}
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) FetchPage(ctx context.Context, cursor string, pageSize int) (model.Page, error) {

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return model.Page{}, errors.NewClientError(errors.ErrInvalidCursor, http.StatusBadRequest)
		}
		offset = parsed
	}

	file, err := os.Open(a.path)
	if err != nil {
		return model.Page{}, pkgerrors.Wrapf(err, "opening upload file %s", a.path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return model.Page{}, pkgerrors.Wrapf(err, "reading upload file %s", a.path)
	}
	if len(rows) == 0 {
		return model.Page{NextCursor: cursor}, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	data := rows[1:]
	if offset > len(data) {
		offset = len(data)
	}
	end := offset + pageSize
	if end > len(data) {
		end = len(data)
	}

	now := time.Now().UTC()
	records := make([]model.RawContact, 0, end-offset)
	for _, row := range data[offset:end] {
		cell := func(name string) string {
			if i, ok := columns[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		records = append(records, model.RawContact{
			Source:     a.name,
			ExternalId: cell("external_id"),
			Email:      cell("email"),
			Phone:      cell("phone"),
			FullName:   cell("full_name"),
			Tags:       splitTags(cell("tags")),
			OptIns:     csvOptIns(cell("email_opt_in"), cell("sms_opt_in")),
			Lifecycle:  cell("lifecycle"),
			FetchedAt:  now,
		})
	}

	page := model.Page{
		Records: records,
		HasMore: end < len(data),
	}
	if len(records) > 0 {
		page.NextCursor = strconv.Itoa(end)
	} else {
		page.NextCursor = cursor
	}
	return page, nil
}

func splitTags(raw string) []string {

	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Empty cells mean the export said nothing about consent.
func csvOptIns(email, sms string) map[string]bool {

	var optIns map[string]bool
	set := func(channel, raw string) {
		if raw == "" {
			return
		}
		if optIns == nil {
			optIns = make(map[string]bool)
		}
		optIns[channel] = strings.EqualFold(raw, "true") || raw == "1" || strings.EqualFold(raw, "yes")
	}
	set(constants.ChannelEmail, email)
	set(constants.ChannelSMS, sms)
	return optIns
}
