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

// ADSRuntime holds the runtime configuration for the automation service.
type ADSRuntime struct {
	ADSHome string `yaml:"ads_home"`
	Config  Config `yaml:"config"`
}

var (
	runtimeConfig *ADSRuntime
	once          sync.Once
)

// InitializeADSRuntime initializes the ADSRuntime configuration.
func InitializeADSRuntime(adsHome string, config *Config) error {

	once.Do(func() {
		runtimeConfig = &ADSRuntime{
			ADSHome: adsHome,
			Config:  *config,
		}
	})

	return nil
}

// GetADSRuntime returns the ADSRuntime configuration.
func GetADSRuntime() *ADSRuntime {

	if runtimeConfig == nil {
		panic("ADSRuntime is not initialized")
	}
	return runtimeConfig
}

// OverrideADSRuntime replaces the runtime configuration. Used by tests.
func OverrideADSRuntime(conf Config) {
	runtimeConfig = &ADSRuntime{
		Config: conf,
	}
}
