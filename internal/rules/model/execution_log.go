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

// ExecutionResult is the terminal state of one evaluation attempt.
type ExecutionResult string

const (
	ExecutionResultSuccess ExecutionResult = "SUCCESS"
	ExecutionResultFailed  ExecutionResult = "FAILED"
	ExecutionResultPartial ExecutionResult = "PARTIAL"
)

// ExecutionLog is the immutable audit record of one evaluation attempt.
// Written exclusively by the evaluator, once per attempt that reaches the
// action phase or fails before it. A rule whose condition matched nothing
// still logs SUCCESS with zero entities affected. Log entries outlive their
// rule's soft-delete.
type ExecutionLog struct {
	LogID            string                 `json:"log_id"`
	RuleID           string                 `json:"rule_id"`
	ExecutedAt       time.Time              `json:"executed_at"`
	ActionTaken      string                 `json:"action_taken"`
	Result           ExecutionResult        `json:"result"`
	EntitiesAffected int                    `json:"entities_affected"`
	Details          map[string]interface{} `json:"details,omitempty"`
}
