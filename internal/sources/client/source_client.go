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

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/internal/system/retry"
)

// SourceClient performs authenticated GETs against one external platform.
// Retryable upstream statuses come back wrapped as transient errors so the
// caller's retry policy can distinguish them from platform rejections.
type SourceClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewSourceClient creates a client for a configured source.
func NewSourceClient(cfg config.SourceConfig) *SourceClient {

	timeout := 30 * time.Second
	if cfg.RequestTimeoutSecs > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSecs) * time.Second
	}
	return &SourceClient{
		BaseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		APIKey:  cfg.APIKey,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    100,
				MaxConnsPerHost: 100,
				IdleConnTimeout: 60 * time.Second,
			},
			Timeout: timeout,
		},
	}
}

// GetJSON fetches path with query params and decodes the JSON body into out.
func (c *SourceClient) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {

	logger := log.GetLogger()
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "building request for %s", endpoint)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Network failures are transient by definition.
		return retry.Transient(pkgerrors.Wrapf(err, "calling %s", endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := pkgerrors.Errorf("%s returned status %d: %s",
			endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
		if retry.RetryableStatus(resp.StatusCode) {
			logger.Debug("Retryable upstream status",
				log.String("endpoint", endpoint), log.Int("status", resp.StatusCode))
			return retry.Transient(err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrapf(err, "decoding response from %s", endpoint)
	}
	return nil
}
