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
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/database/provider"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/test/setup"
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	os.Setenv("TEST_MODE", "true")

	conf := config.Config{
		Log: config.LogConfig{
			LogLevel: "DEBUG",
		},
		Sources: []config.SourceConfig{
			{Name: "billing", Kind: "billing", PageSize: 50, StalenessWindowMins: 15},
			{Name: "crm-a", Kind: "crm-a", PageSize: 50, StalenessWindowMins: 15},
			{Name: "crm-b", Kind: "crm-b", PageSize: 50, StalenessWindowMins: 15},
			{Name: "upload", Kind: "upload", PageSize: 50, StalenessWindowMins: 30},
		},
		Merge: config.MergeConfig{
			SubBatchSize: 10,
		},
	}
	config.OverrideRSSRuntime(conf)
	_ = log.Init("DEBUG")

	pg, err := setup.SetupTestPostgres(ctx)
	if err != nil {
		fmt.Println("Failed to start test DB:", err)
		os.Exit(1)
	}

	provider.SetTestDB(pg.DB)
	err = setup.CreateTablesFromFile(pg.DB, "../../dbscripts/postgres.sql")
	if err != nil {
		fmt.Println("Failed to create tables from schema:", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = pg.Container.Terminate(ctx)

	os.Exit(code)
}
