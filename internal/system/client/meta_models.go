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

package client

import "github.com/wso2/ads-automation-service/internal/rules/model"

// MetaAdRule is the wire representation of a platform-native automation rule.
type MetaAdRule struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Status         string             `json:"status"`
	EvaluationSpec MetaEvaluationSpec `json:"evaluation_spec"`
	ExecutionSpec  MetaExecutionSpec  `json:"execution_spec"`
}

// MetaEvaluationSpec mirrors the platform's rule condition shape.
// EvaluationType is SCHEDULE or TRIGGER.
type MetaEvaluationSpec struct {
	EvaluationType string       `json:"evaluation_type"`
	EntityType     string       `json:"entity_type"`
	Filters        []MetaFilter `json:"filters"`
	Trigger        *MetaTrigger `json:"trigger,omitempty"`
}

// MetaFilter carries either a numeric Value (metric filters) or a Text
// value (enum-like selectors such as effective_status and time_preset).
type MetaFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    int64  `json:"value,omitempty"`
	Text     string `json:"text,omitempty"`
	// UpperValue accompanies IN_RANGE filters.
	UpperValue *int64 `json:"upper_value,omitempty"`
}

type MetaTrigger struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    int64  `json:"value"`
}

// MetaExecutionSpec mirrors the platform's rule action shape.
type MetaExecutionSpec struct {
	ExecutionType    string                `json:"execution_type"`
	ExecutionOptions []MetaExecutionOption `json:"execution_options,omitempty"`
}

type MetaExecutionOption struct {
	Field string `json:"field"`
	Value int64  `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// Entity is one ad object returned by entity listing.
type Entity struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	EffectiveStatus string `json:"effective_status"`
}

// Metrics holds the fetched metric values for one entity. Monetary fields
// are integer minor units (x100).
type Metrics map[string]int64

// Entity status values accepted by the platform's status mutation.
const (
	EntityStatusActive = "ACTIVE"
	EntityStatusPaused = "PAUSED"
)

// Platform rule status values.
const (
	MetaRuleStatusEnabled  = "ENABLED"
	MetaRuleStatusDisabled = "DISABLED"
)

// Platform evaluation types.
const (
	MetaEvaluationTypeSchedule = "SCHEDULE"
	MetaEvaluationTypeTrigger  = "TRIGGER"
)

// ToLocalRule maps a platform-native rule onto the local schema. The
// platform identifier is preserved as meta_rule_id and the rule type is
// always EXTERNAL_NATIVE; the caller fills account and workspace scope.
func ToLocalRule(external MetaAdRule, accountID, workspaceID string) model.Rule {

	metaRuleID := external.ID

	triggerType := model.TriggerTypeSchedule
	var trigger *model.TriggerCondition
	if external.EvaluationSpec.EvaluationType == MetaEvaluationTypeTrigger {
		triggerType = model.TriggerTypeRealtime
		if external.EvaluationSpec.Trigger != nil {
			trigger = &model.TriggerCondition{
				Field:    external.EvaluationSpec.Trigger.Field,
				Operator: model.Operator(external.EvaluationSpec.Trigger.Operator),
				Value:    external.EvaluationSpec.Trigger.Value,
			}
		}
	}

	filters := make([]model.Filter, 0, len(external.EvaluationSpec.Filters))
	entityStatus := ""
	timePreset := ""
	for _, f := range external.EvaluationSpec.Filters {
		switch f.Field {
		case "effective_status":
			// Non-metric selector, applied during entity resolution.
			entityStatus = f.Text
		case "time_preset":
			timePreset = f.Text
		default:
			filters = append(filters, model.Filter{
				Field:      f.Field,
				Operator:   model.Operator(f.Operator),
				Value:      f.Value,
				UpperValue: f.UpperValue,
			})
		}
	}

	options := make([]model.ExecutionOption, 0, len(external.ExecutionSpec.ExecutionOptions))
	for _, opt := range external.ExecutionSpec.ExecutionOptions {
		options = append(options, model.ExecutionOption{
			Field: opt.Field,
			Value: opt.Value,
			Text:  opt.Text,
			Unit:  opt.Unit,
		})
	}

	status := model.RuleStatusPaused
	if external.Status == MetaRuleStatusEnabled {
		status = model.RuleStatusActive
	}

	return model.Rule{
		AccountID:   accountID,
		WorkspaceID: workspaceID,
		Name:        external.Name,
		Status:      status,
		RuleType:    model.RuleTypeExternalNative,
		TriggerType: triggerType,
		EvaluationSpec: model.EvaluationSpec{
			EntityType:   model.EntityType(external.EvaluationSpec.EntityType),
			EntityStatus: entityStatus,
			Filters:      filters,
			TimePreset:   timePreset,
			Trigger:      trigger,
		},
		ExecutionSpec: model.ExecutionSpec{
			ExecutionType: model.ExecutionType(external.ExecutionSpec.ExecutionType),
			Options:       options,
		},
		MetaRuleID: &metaRuleID,
	}
}

// ToExternalRule maps a local rule onto the platform's wire shape. Used when
// a LOCAL rule is promoted to the platform.
func ToExternalRule(rule model.Rule) MetaAdRule {

	evaluationType := MetaEvaluationTypeSchedule
	var trigger *MetaTrigger
	if rule.TriggerType == model.TriggerTypeRealtime {
		evaluationType = MetaEvaluationTypeTrigger
		if rule.EvaluationSpec.Trigger != nil {
			trigger = &MetaTrigger{
				Field:    rule.EvaluationSpec.Trigger.Field,
				Operator: string(rule.EvaluationSpec.Trigger.Operator),
				Value:    rule.EvaluationSpec.Trigger.Value,
			}
		}
	}

	filters := make([]MetaFilter, 0, len(rule.EvaluationSpec.Filters)+2)
	for _, f := range rule.EvaluationSpec.Filters {
		filters = append(filters, MetaFilter{
			Field:      f.Field,
			Operator:   string(f.Operator),
			Value:      f.Value,
			UpperValue: f.UpperValue,
		})
	}
	if rule.EvaluationSpec.EntityStatus != "" {
		filters = append(filters, MetaFilter{
			Field:    "effective_status",
			Operator: string(model.OperatorEqual),
			Text:     rule.EvaluationSpec.EntityStatus,
		})
	}
	if rule.EvaluationSpec.TimePreset != "" {
		filters = append(filters, MetaFilter{
			Field:    "time_preset",
			Operator: string(model.OperatorEqual),
			Text:     rule.EvaluationSpec.TimePreset,
		})
	}

	options := make([]MetaExecutionOption, 0, len(rule.ExecutionSpec.Options))
	for _, opt := range rule.ExecutionSpec.Options {
		options = append(options, MetaExecutionOption{
			Field: opt.Field,
			Value: opt.Value,
			Text:  opt.Text,
			Unit:  opt.Unit,
		})
	}

	status := MetaRuleStatusDisabled
	if rule.Status == model.RuleStatusActive {
		status = MetaRuleStatusEnabled
	}

	external := MetaAdRule{
		Name:   rule.Name,
		Status: status,
		EvaluationSpec: MetaEvaluationSpec{
			EvaluationType: evaluationType,
			EntityType:     string(rule.EvaluationSpec.EntityType),
			Filters:        filters,
			Trigger:        trigger,
		},
		ExecutionSpec: MetaExecutionSpec{
			ExecutionType:    string(rule.ExecutionSpec.ExecutionType),
			ExecutionOptions: options,
		},
	}
	if rule.MetaRuleID != nil {
		external.ID = *rule.MetaRuleID
	}
	return external
}
