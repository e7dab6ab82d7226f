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
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/store"
	"github.com/wso2/ads-automation-service/internal/system/client"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// RuleStore is the persistence surface the rule services depend on. The
// default implementation delegates to the store package; tests swap in fakes.
type RuleStore interface {
	AddRule(rule model.Rule) error
	GetRule(ruleID string) (*model.Rule, error)
	GetRules(accountID string) ([]model.Rule, error)
	UpdateRule(rule model.Rule) error
	UpdateRuleStatus(ruleID string, status model.RuleStatus) error
	UpdateRuleBookkeeping(ruleID string, executedAt time.Time) error
	GetMirroredRules(accountID string) ([]model.Rule, error)
	GetActiveRulesByTrigger(triggerType model.TriggerType) ([]model.Rule, error)
}

// LogStore is the append-only execution history surface.
type LogStore interface {
	AddExecutionLog(logEntry model.ExecutionLog) error
	GetExecutionLogs(ruleID string) ([]model.ExecutionLog, error)
}

type defaultRuleStore struct{}

func (defaultRuleStore) AddRule(rule model.Rule) error          { return store.AddRule(rule) }
func (defaultRuleStore) GetRule(ruleID string) (*model.Rule, error) {
	return store.GetRule(ruleID)
}
func (defaultRuleStore) GetRules(accountID string) ([]model.Rule, error) {
	return store.GetRules(accountID)
}
func (defaultRuleStore) UpdateRule(rule model.Rule) error { return store.UpdateRule(rule) }
func (defaultRuleStore) UpdateRuleStatus(ruleID string, status model.RuleStatus) error {
	return store.UpdateRuleStatus(ruleID, status)
}
func (defaultRuleStore) UpdateRuleBookkeeping(ruleID string, executedAt time.Time) error {
	return store.UpdateRuleBookkeeping(ruleID, executedAt)
}
func (defaultRuleStore) GetMirroredRules(accountID string) ([]model.Rule, error) {
	return store.GetMirroredRules(accountID)
}
func (defaultRuleStore) GetActiveRulesByTrigger(triggerType model.TriggerType) ([]model.Rule, error) {
	return store.GetActiveRulesByTrigger(triggerType)
}

type defaultLogStore struct{}

func (defaultLogStore) AddExecutionLog(logEntry model.ExecutionLog) error {
	return store.AddExecutionLog(logEntry)
}
func (defaultLogStore) GetExecutionLogs(ruleID string) ([]model.ExecutionLog, error) {
	return store.GetExecutionLogs(ruleID)
}

// RuleServiceInterface covers the rule lifecycle operations exposed over the
// API: create, read, partial update, toggle, soft delete, history and
// promotion of local rules to the platform.
type RuleServiceInterface interface {
	AddAutomationRule(accountID, workspaceID string, request model.AutomationRuleAPIRequest) (*model.Rule, error)
	GetAutomationRules(accountID string) ([]model.Rule, error)
	GetAutomationRule(ruleID string) (*model.Rule, error)
	UpdateAutomationRule(ctx context.Context, ruleID string, request model.AutomationRuleUpdateRequest) (*model.Rule, error)
	ToggleAutomationRule(ruleID string) (*model.Rule, error)
	DeleteAutomationRule(ctx context.Context, ruleID string) error
	GetExecutionHistory(ruleID string) ([]model.ExecutionLog, error)
	PromoteAutomationRule(ctx context.Context, ruleID string) (*model.Rule, error)
}

// RuleService is the default implementation of RuleServiceInterface.
type RuleService struct {
	ruleStore  RuleStore
	logStore   LogStore
	metaClient client.MetaClientInterface
}

// GetRuleService creates a rule service wired to the real store and the
// configured Meta client.
func GetRuleService(metaClient client.MetaClientInterface) RuleServiceInterface {

	return &RuleService{
		ruleStore:  defaultRuleStore{},
		logStore:   defaultLogStore{},
		metaClient: metaClient,
	}
}

func ruleNotFoundError(ruleID string) *errors2.ClientError {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.RULE_NOT_FOUND.Code,
		Message:     errors2.RULE_NOT_FOUND.Message,
		Description: fmt.Sprintf("No automation rule found with id: %s.", ruleID),
	}, http.StatusNotFound)
}

// AddAutomationRule creates a LOCAL rule for the account. Externally
// mirrored rules are only ever created by the synchronizer.
func (rs *RuleService) AddAutomationRule(accountID, workspaceID string,
	request model.AutomationRuleAPIRequest) (*model.Rule, error) {

	now := time.Now().UTC()
	rule := model.Rule{
		RuleID:         uuid.New().String(),
		AccountID:      accountID,
		WorkspaceID:    workspaceID,
		Name:           request.Name,
		Description:    request.Description,
		Status:         model.RuleStatusActive,
		RuleType:       model.RuleTypeLocal,
		TriggerType:    request.TriggerType,
		EvaluationSpec: request.EvaluationSpec,
		ExecutionSpec:  request.ExecutionSpec,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if err := rs.ruleStore.AddRule(rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (rs *RuleService) GetAutomationRules(accountID string) ([]model.Rule, error) {

	return rs.ruleStore.GetRules(accountID)
}

func (rs *RuleService) GetAutomationRule(ruleID string) (*model.Rule, error) {

	rule, err := rs.ruleStore.GetRule(ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruleNotFoundError(ruleID)
	}
	return rule, nil
}

// UpdateAutomationRule applies a partial update. Spec changes are only
// allowed on LOCAL rules; name and description edits on mirrored rules are
// pushed back to the platform so the mirror stays the source of truth.
func (rs *RuleService) UpdateAutomationRule(ctx context.Context, ruleID string,
	request model.AutomationRuleUpdateRequest) (*model.Rule, error) {

	rule, err := rs.GetAutomationRule(ruleID)
	if err != nil {
		return nil, err
	}

	if rule.RuleType == model.RuleTypeExternalNative &&
		(request.EvaluationSpec != nil || request.ExecutionSpec != nil) {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_TYPE_MISMATCH.Code,
			Message:     errors2.RULE_TYPE_MISMATCH.Message,
			Description: "Evaluation and execution specs of externally mirrored rules can only change on the platform.",
		}, http.StatusConflict)
	}

	if request.Name != nil {
		rule.Name = *request.Name
	}
	if request.Description != nil {
		rule.Description = *request.Description
	}
	if request.EvaluationSpec != nil {
		rule.EvaluationSpec = *request.EvaluationSpec
	}
	if request.ExecutionSpec != nil {
		rule.ExecutionSpec = *request.ExecutionSpec
	}

	if err := validateRule(*rule); err != nil {
		return nil, err
	}

	if rule.RuleType == model.RuleTypeExternalNative && request.Name != nil {
		if err := rs.metaClient.UpdateAdRule(ctx, client.ToExternalRule(*rule)); err != nil {
			return nil, err
		}
	}

	if err := rs.ruleStore.UpdateRule(*rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ToggleAutomationRule flips a rule between ACTIVE and PAUSED. Toggling is
// idempotent in the sense that two toggles restore the original status.
func (rs *RuleService) ToggleAutomationRule(ruleID string) (*model.Rule, error) {

	rule, err := rs.GetAutomationRule(ruleID)
	if err != nil {
		return nil, err
	}

	var next model.RuleStatus
	switch rule.Status {
	case model.RuleStatusActive:
		next = model.RuleStatusPaused
	case model.RuleStatusPaused:
		next = model.RuleStatusActive
	default:
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_NOT_TOGGLEABLE.Code,
			Message:     errors2.RULE_NOT_TOGGLEABLE.Message,
			Description: fmt.Sprintf("Rule: %s is in status: %s and cannot be toggled.", ruleID, rule.Status),
		}, http.StatusConflict)
	}

	if err := rs.ruleStore.UpdateRuleStatus(ruleID, next); err != nil {
		return nil, err
	}
	rule.Status = next
	return rule, nil
}

// DeleteAutomationRule soft-deletes a rule. Execution history is preserved.
// Deleting a mirrored rule also removes its native counterpart so the next
// sync does not resurrect it.
func (rs *RuleService) DeleteAutomationRule(ctx context.Context, ruleID string) error {

	rule, err := rs.GetAutomationRule(ruleID)
	if err != nil {
		return err
	}

	if rule.RuleType == model.RuleTypeExternalNative && rule.MetaRuleID != nil {
		if err := rs.metaClient.DeleteAdRule(ctx, *rule.MetaRuleID); err != nil {
			return err
		}
	}

	if err := rs.ruleStore.UpdateRuleStatus(ruleID, model.RuleStatusDeleted); err != nil {
		return err
	}
	log.GetLogger().Info(fmt.Sprintf("Automation rule: %s deleted.", ruleID))
	return nil
}

func (rs *RuleService) GetExecutionHistory(ruleID string) ([]model.ExecutionLog, error) {

	// History survives deletion, so the lookup must not exclude DELETED
	// rules. Absence of logs for an unknown rule id is an empty list.
	return rs.logStore.GetExecutionLogs(ruleID)
}

// PromoteAutomationRule creates a native counterpart for a LOCAL rule on the
// platform and converts the rule into a mirror of it. MOVE actions cannot be
// promoted because the platform has no folders.
func (rs *RuleService) PromoteAutomationRule(ctx context.Context, ruleID string) (*model.Rule, error) {

	rule, err := rs.GetAutomationRule(ruleID)
	if err != nil {
		return nil, err
	}
	if rule.RuleType == model.RuleTypeExternalNative {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_ALREADY_PROMOTED.Code,
			Message:     errors2.RULE_ALREADY_PROMOTED.Message,
			Description: fmt.Sprintf("Rule: %s already mirrors a platform rule.", ruleID),
		}, http.StatusConflict)
	}
	if rule.ExecutionSpec.ExecutionType.IsMove() {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_TYPE_MISMATCH.Code,
			Message:     errors2.RULE_TYPE_MISMATCH.Message,
			Description: "Folder move actions have no platform equivalent and cannot be promoted.",
		}, http.StatusConflict)
	}

	metaRuleID, err := rs.metaClient.CreateAdRule(ctx, rule.AccountID, client.ToExternalRule(*rule))
	if err != nil {
		return nil, err
	}

	rule.RuleType = model.RuleTypeExternalNative
	rule.MetaRuleID = &metaRuleID
	if err := rs.ruleStore.UpdateRule(*rule); err != nil {
		return nil, err
	}
	log.GetLogger().Info(fmt.Sprintf("Automation rule: %s promoted to platform rule: %s.", ruleID, metaRuleID))
	return rule, nil
}
