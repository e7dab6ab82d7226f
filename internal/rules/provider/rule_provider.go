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

package provider

import (
	"github.com/wso2/ads-automation-service/internal/rules/service"
	"github.com/wso2/ads-automation-service/internal/system/client"
	"github.com/wso2/ads-automation-service/internal/system/config"
)

// RuleProviderInterface defines the interface for the rule provider.
type RuleProviderInterface interface {
	GetRuleService() service.RuleServiceInterface
	GetSyncService() service.SyncServiceInterface
	GetEvaluator() service.EvaluatorInterface
}

// RuleProvider is the default implementation of the RuleProviderInterface.
type RuleProvider struct{}

// NewRuleProvider creates a new instance of RuleProvider.
func NewRuleProvider() RuleProviderInterface {

	return &RuleProvider{}
}

func metaClient() client.MetaClientInterface {
	return client.NewMetaClient(config.GetADSRuntime().Config.MetaAPI)
}

// GetRuleService returns the rule lifecycle service instance.
func (rp *RuleProvider) GetRuleService() service.RuleServiceInterface {

	return service.GetRuleService(metaClient())
}

// GetSyncService returns the platform rule synchronizer instance.
func (rp *RuleProvider) GetSyncService() service.SyncServiceInterface {

	return service.GetSyncService(metaClient())
}

// GetEvaluator returns the rule evaluator instance.
func (rp *RuleProvider) GetEvaluator() service.EvaluatorInterface {

	return service.GetEvaluator(metaClient())
}
