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

package services

import (
	"fmt"
	"net/http"

	"github.com/wso2/ads-automation-service/internal/rules/handler"
)

type AutomationRulesService struct {
	rulesHandler *handler.RulesHandler
}

func NewAutomationRulesService(mux *http.ServeMux, apiBasePath string) *AutomationRulesService {

	instance := &AutomationRulesService{
		rulesHandler: handler.NewRulesHandler(),
	}
	instance.RegisterRoutes(mux, apiBasePath)

	return instance
}

func (s *AutomationRulesService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {

	accountBase := fmt.Sprintf("%s/workspaces/{workspaceId}/accounts/{accountId}", apiBasePath)
	base := accountBase + "/automation-rules"

	mux.HandleFunc(fmt.Sprintf("POST %s/stat-changes", accountBase), s.rulesHandler.ReportStatChange)
	mux.HandleFunc(fmt.Sprintf("POST %s", base), s.rulesHandler.AddAutomationRule)
	mux.HandleFunc(fmt.Sprintf("GET %s", base), s.rulesHandler.GetAutomationRules)
	mux.HandleFunc(fmt.Sprintf("POST %s/sync", base), s.rulesHandler.SyncAutomationRules)
	mux.HandleFunc(fmt.Sprintf("GET %s/{ruleId}", base), s.rulesHandler.GetAutomationRule)
	mux.HandleFunc(fmt.Sprintf("PATCH %s/{ruleId}", base), s.rulesHandler.UpdateAutomationRule)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/{ruleId}", base), s.rulesHandler.DeleteAutomationRule)
	mux.HandleFunc(fmt.Sprintf("POST %s/{ruleId}/toggle", base), s.rulesHandler.ToggleAutomationRule)
	mux.HandleFunc(fmt.Sprintf("POST %s/{ruleId}/promote", base), s.rulesHandler.PromoteAutomationRule)
	mux.HandleFunc(fmt.Sprintf("GET %s/{ruleId}/preview", base), s.rulesHandler.PreviewAutomationRule)
	mux.HandleFunc(fmt.Sprintf("GET %s/{ruleId}/history", base), s.rulesHandler.GetExecutionHistory)
}
