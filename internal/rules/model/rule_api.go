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

package model

import "time"

// AutomationRuleAPIRequest is the create request body. Rule type defaults to
// LOCAL; EXTERNAL_NATIVE rows enter the store only through synchronization.
type AutomationRuleAPIRequest struct {
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	TriggerType    TriggerType    `json:"trigger_type"`
	EvaluationSpec EvaluationSpec `json:"evaluation_spec"`
	ExecutionSpec  ExecutionSpec  `json:"execution_spec"`
}

// AutomationRuleUpdateRequest is the partial-update request body. Nil fields
// are left untouched.
type AutomationRuleUpdateRequest struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	EvaluationSpec *EvaluationSpec `json:"evaluation_spec,omitempty"`
	ExecutionSpec  *ExecutionSpec  `json:"execution_spec,omitempty"`
}

// AutomationRuleAPIResponse is the rule representation returned to callers.
type AutomationRuleAPIResponse struct {
	RuleID         string         `json:"rule_id"`
	AccountID      string         `json:"account_id"`
	WorkspaceID    string         `json:"workspace_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Status         RuleStatus     `json:"status"`
	RuleType       RuleType       `json:"rule_type"`
	TriggerType    TriggerType    `json:"trigger_type"`
	EvaluationSpec EvaluationSpec `json:"evaluation_spec"`
	ExecutionSpec  ExecutionSpec  `json:"execution_spec"`
	MetaRuleID     *string        `json:"meta_rule_id,omitempty"`
	LastExecutedAt *time.Time     `json:"last_executed_at,omitempty"`
	ExecutionCount int64          `json:"execution_count"`
	CreatedAt      time.Time      `json:"created_at"`
}

// PreviewAPIResponse reports how many entities a rule's condition currently
// matches, without executing the action.
type PreviewAPIResponse struct {
	MatchedCount int `json:"matched_count"`
}

// ToAPIResponse converts a stored rule to its API representation.
func (r Rule) ToAPIResponse() AutomationRuleAPIResponse {
	return AutomationRuleAPIResponse{
		RuleID:         r.RuleID,
		AccountID:      r.AccountID,
		WorkspaceID:    r.WorkspaceID,
		Name:           r.Name,
		Description:    r.Description,
		Status:         r.Status,
		RuleType:       r.RuleType,
		TriggerType:    r.TriggerType,
		EvaluationSpec: r.EvaluationSpec,
		ExecutionSpec:  r.ExecutionSpec,
		MetaRuleID:     r.MetaRuleID,
		LastExecutedAt: r.LastExecutedAt,
		ExecutionCount: r.ExecutionCount,
		CreatedAt:      r.CreatedAt,
	}
}
