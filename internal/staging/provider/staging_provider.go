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
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/revops/revenue-sync-service/internal/staging/store"
	"github.com/revops/revenue-sync-service/internal/system/config"
)

var (
	repoInstance *store.StagingRepository
	once         sync.Once
	initErr      error
)

// GetStagingRepository returns the shared staging repository, connecting on
// first use.
func GetStagingRepository() (*store.StagingRepository, error) {

	once.Do(func() {
		staging := config.GetRSSRuntime().Config.StagingStore
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(staging.URI))
		if err != nil {
			initErr = err
			return
		}
		if err := client.Ping(ctx, nil); err != nil {
			initErr = err
			return
		}

		repo := store.NewStagingRepository(client.Database(staging.Database), staging.Collection)
		if err := repo.EnsureIndexes(time.Duration(staging.TTLHours) * time.Hour); err != nil {
			initErr = err
			return
		}
		repoInstance = repo
	})
	return repoInstance, initErr
}

// SetTestRepository injects a repository for tests.
func SetTestRepository(repo *store.StagingRepository) {

	once.Do(func() {})
	repoInstance = repo
	initErr = nil
}
