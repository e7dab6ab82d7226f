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

package service

import (
	"fmt"
	"net/http"

	"github.com/wso2/ads-automation-service/internal/rules/model"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
)

func ruleValidationError(description string) *errors2.ClientError {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.RULE_VALIDATION.Code,
		Message:     errors2.RULE_VALIDATION.Message,
		Description: description,
	}, http.StatusBadRequest)
}

// validateRule enforces the structural invariants of an automation rule at
// the write boundary. Rules read back from the store or mirrored from the
// platform are assumed valid and are not re-validated on every evaluation.
func validateRule(rule model.Rule) error {

	if rule.Name == "" {
		return ruleValidationError("Rule name must not be empty.")
	}
	if rule.AccountID == "" {
		return ruleValidationError("Rule must belong to an ad account.")
	}

	switch rule.RuleType {
	case model.RuleTypeExternalNative:
		if rule.MetaRuleID == nil || *rule.MetaRuleID == "" {
			return ruleValidationError("Externally mirrored rules must carry a platform rule id.")
		}
	case model.RuleTypeLocal:
		if rule.MetaRuleID != nil {
			return ruleValidationError("Local rules must not carry a platform rule id.")
		}
	default:
		return ruleValidationError(fmt.Sprintf("Unknown rule type: %s.", rule.RuleType))
	}

	switch rule.Status {
	case model.RuleStatusActive, model.RuleStatusPaused, model.RuleStatusDeleted:
	default:
		return ruleValidationError(fmt.Sprintf("Unknown rule status: %s.", rule.Status))
	}

	if err := validateEvaluationSpec(rule.TriggerType, rule.EvaluationSpec); err != nil {
		return err
	}
	return validateExecutionSpec(rule.RuleType, rule.ExecutionSpec)
}

func validateEvaluationSpec(triggerType model.TriggerType, spec model.EvaluationSpec) error {

	switch spec.EntityType {
	case model.EntityTypeCampaign, model.EntityTypeAdset, model.EntityTypeAd:
	default:
		return ruleValidationError(fmt.Sprintf("Unknown entity type: %s.", spec.EntityType))
	}

	if len(spec.Filters) == 0 {
		return ruleValidationError("Evaluation spec must define at least one metric filter.")
	}
	for _, filter := range spec.Filters {
		if filter.Field == "" {
			return ruleValidationError("Metric filter must name a metric field.")
		}
		switch filter.Operator {
		case model.OperatorGreaterThan, model.OperatorLessThan, model.OperatorEqual:
			if filter.UpperValue != nil {
				return ruleValidationError(fmt.Sprintf(
					"Operator %s does not take an upper bound.", filter.Operator))
			}
		case model.OperatorInRange:
			if filter.UpperValue == nil {
				return ruleValidationError("IN_RANGE filters must define an upper bound.")
			}
			if *filter.UpperValue < filter.Value {
				return ruleValidationError("IN_RANGE upper bound must not be below the lower bound.")
			}
		default:
			return ruleValidationError(fmt.Sprintf("Unknown filter operator: %s.", filter.Operator))
		}
	}

	switch triggerType {
	case model.TriggerTypeSchedule:
		if spec.Trigger != nil {
			return ruleValidationError("Scheduled rules must not define a realtime trigger condition.")
		}
		if _, ok := model.AllowedTimePresets[spec.TimePreset]; !ok {
			return ruleValidationError(fmt.Sprintf("Unknown time preset: %s.", spec.TimePreset))
		}
	case model.TriggerTypeRealtime:
		if spec.Trigger == nil {
			return ruleValidationError("Realtime rules must define a trigger condition.")
		}
		if spec.Trigger.Field == "" {
			return ruleValidationError("Realtime trigger condition must name a metric field.")
		}
		switch spec.Trigger.Operator {
		case model.OperatorGreaterThan, model.OperatorLessThan, model.OperatorEqual:
		default:
			return ruleValidationError(fmt.Sprintf(
				"Unsupported trigger operator: %s.", spec.Trigger.Operator))
		}
	default:
		return ruleValidationError(fmt.Sprintf("Unknown trigger type: %s.", triggerType))
	}
	return nil
}

func validateExecutionSpec(ruleType model.RuleType, spec model.ExecutionSpec) error {

	switch spec.ExecutionType {
	case model.ExecutionTypePause, model.ExecutionTypeUnpause:
		return nil

	case model.ExecutionTypeNotification:
		if option, ok := spec.Option(model.ExecutionOptionMessage); !ok || option.Text == "" {
			return ruleValidationError("Notification actions must define a message option.")
		}
		return nil

	case model.ExecutionTypeIncreaseDailyBudgetBy, model.ExecutionTypeIncreaseBidBy:
		option, ok := spec.Option(model.ExecutionOptionAmount)
		if !ok {
			return ruleValidationError(fmt.Sprintf("Action %s must define an amount option.",
				spec.ExecutionType))
		}
		if option.Value <= 0 {
			return ruleValidationError(fmt.Sprintf("Action %s must carry a positive amount.",
				spec.ExecutionType))
		}
		return nil

	case model.ExecutionTypeDecreaseDailyBudgetBy, model.ExecutionTypeDecreaseBidBy:
		option, ok := spec.Option(model.ExecutionOptionAmount)
		if !ok {
			return ruleValidationError(fmt.Sprintf("Action %s must define an amount option.",
				spec.ExecutionType))
		}
		if option.Value >= 0 {
			return ruleValidationError(fmt.Sprintf("Action %s must carry a negative amount.",
				spec.ExecutionType))
		}
		return nil

	case model.ExecutionTypeMoveToFolder, model.ExecutionTypeMoveCreative:
		if ruleType != model.RuleTypeLocal {
			return ruleValidationError("Folder move actions are only available on local rules.")
		}
		if option, ok := spec.Option(model.ExecutionOptionFolderID); !ok || option.Text == "" {
			return ruleValidationError("Folder move actions must define a folder_id option.")
		}
		return nil

	default:
		return ruleValidationError(fmt.Sprintf("Unknown execution type: %s.", spec.ExecutionType))
	}
}
