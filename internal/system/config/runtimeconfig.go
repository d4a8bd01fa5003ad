/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
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

package config

import "sync"

// RSSRuntime holds the runtime configuration for the revenue sync server.
type RSSRuntime struct {
	RSSHome string `yaml:"rss_home"`
	Config  Config `yaml:"config"`
}

var (
	runtimeConfig *RSSRuntime
	once          sync.Once
)

// InitializeRSSRuntime initializes the RSSRuntime configuration.
func InitializeRSSRuntime(rssHome string, config *Config) error {

	once.Do(func() {
		runtimeConfig = &RSSRuntime{
			RSSHome: rssHome,
			Config:  *config,
		}
	})

	return nil
}

// GetRSSRuntime returns the RSSRuntime configuration.
func GetRSSRuntime() *RSSRuntime {

	if runtimeConfig == nil {
		panic("RSSRuntime is not initialized")
	}
	return runtimeConfig
}

// OverrideRSSRuntime replaces the runtime configuration. Used by tests.
func OverrideRSSRuntime(conf Config) {
	runtimeConfig = &RSSRuntime{
		Config: conf,
	}
}
