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

package provider

import (
	"net/http"

	"github.com/revops/revenue-sync-service/internal/sources/billing"
	"github.com/revops/revenue-sync-service/internal/sources/crma"
	"github.com/revops/revenue-sync-service/internal/sources/crmb"
	"github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/sources/upload"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

// SourceProviderInterface resolves configured sources to their adapters.
type SourceProviderInterface interface {
	GetSourceAdapter(source string) (model.SourceAdapter, *config.SourceConfig, error)
}

// SourceProvider is the default implementation of the SourceProviderInterface.
type SourceProvider struct{}

// NewSourceProvider creates a new instance of SourceProvider.
func NewSourceProvider() SourceProviderInterface {

	return &SourceProvider{}
}

// GetSourceAdapter looks the source up in runtime config and builds the
// adapter for its kind.
func (sp *SourceProvider) GetSourceAdapter(source string) (model.SourceAdapter, *config.SourceConfig, error) {

	cfg := config.GetRSSRuntime().Config.SourceByName(source)
	if cfg == nil {
		return nil, nil, errors.NewClientError(errors.ErrUnknownSource, http.StatusNotFound)
	}

	switch cfg.Kind {
	case constants.SourceKindBilling:
		return billing.NewAdapter(*cfg), cfg, nil
	case constants.SourceKindCRMA:
		return crma.NewAdapter(*cfg), cfg, nil
	case constants.SourceKindCRMB:
		return crmb.NewAdapter(*cfg), cfg, nil
	case constants.SourceKindUpload:
		return upload.NewAdapter(*cfg), cfg, nil
	}
	return nil, nil, errors.NewClientError(errors.ErrUnknownSource, http.StatusNotFound)
}
