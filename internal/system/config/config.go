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

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type AuthConfig struct {
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	APIKeyHeader       string   `yaml:"api_key_header"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// StagingStoreConfig points at the MongoDB landing zone for raw payloads.
type StagingStoreConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	TTLHours   int    `yaml:"ttl_hours"`
}

// SourceConfig describes one external platform to sync from.
type SourceConfig struct {
	Name                 string  `yaml:"name"`
	Kind                 string  `yaml:"kind"`
	BaseURL              string  `yaml:"base_url"`
	APIKey               string  `yaml:"api_key"`
	PageSize             int     `yaml:"page_size"`
	RequestsPerSecond    float64 `yaml:"requests_per_second"`
	StalenessWindowMins  int     `yaml:"staleness_window_mins"`
	RetryMaxAttempts     int     `yaml:"retry_max_attempts"`
	RetryMaxElapsedSecs  int     `yaml:"retry_max_elapsed_secs"`
	RequestTimeoutSecs   int     `yaml:"request_timeout_secs"`
}

type MergeConfig struct {
	SubBatchSize   int    `yaml:"sub_batch_size"`
	PrecedenceFile string `yaml:"precedence_file"`
}

type BreakerConfig struct {
	ProbeTimeoutSecs int `yaml:"probe_timeout_secs"`
}

type ReaperConfig struct {
	IntervalMins int `yaml:"interval_mins"`
}

type Config struct {
	Addr         AddrConfig         `yaml:"addr"`
	Log          LogConfig          `yaml:"log"`
	Auth         AuthConfig         `yaml:"auth"`
	DataSource   DataSourceConfig   `yaml:"datasource"`
	StagingStore StagingStoreConfig `yaml:"staging_store"`
	Sources      []SourceConfig     `yaml:"sources"`
	Merge        MergeConfig        `yaml:"merge"`
	Breaker      BreakerConfig      `yaml:"breaker"`
	Reaper       ReaperConfig       `yaml:"reaper"`
}

// SourceByName returns the configuration for the named source, or nil when
// no such source is configured.
func (c *Config) SourceByName(name string) *SourceConfig {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i]
		}
	}
	return nil
}
