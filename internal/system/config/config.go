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
	JWTSecret          string   `yaml:"jwt_secret"`
	Audience           string   `yaml:"audience"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// MetaAPIConfig holds the ads platform connection settings.
type MetaAPIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIVersion  string `yaml:"api_version"`
	AccessToken string `yaml:"access_token"`
	// MinBudget is the platform-enforced minimum daily budget in minor units.
	MinBudget int64 `yaml:"min_budget"`
}

type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
	// CronSpec drives the SCHEDULE rule sweep, standard cron syntax.
	CronSpec             string `yaml:"cron_spec"`
	QueueSize            int    `yaml:"queue_size"`
	MaxConcurrentActions int    `yaml:"max_concurrent_actions"`
	EvaluationTimeoutSec int    `yaml:"evaluation_timeout_sec"`
}

type Config struct {
	Addr       AddrConfig       `yaml:"addr"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Mongo      MongoConfig      `yaml:"mongo"`
	MetaAPI    MetaAPIConfig    `yaml:"meta_api"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}
