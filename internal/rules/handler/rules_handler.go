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

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/provider"
	"github.com/wso2/ads-automation-service/internal/system/authn"
	"github.com/wso2/ads-automation-service/internal/system/constants"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
	"github.com/wso2/ads-automation-service/internal/system/utils"
	"github.com/wso2/ads-automation-service/internal/system/workers"
)

// RulesHandler serves the automation rule API.
type RulesHandler struct{}

func NewRulesHandler() *RulesHandler {

	return &RulesHandler{}
}

func authenticate(w http.ResponseWriter, r *http.Request) bool {

	workspaceID := r.PathValue(constants.PathParamWorkspaceID)
	if err := authn.ValidateRequest(r, workspaceID); err != nil {
		utils.HandleError(w, err)
		return false
	}
	return true
}

// AddAutomationRule handles creating a new local rule.
func (rh *RulesHandler) AddAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	var request model.AutomationRuleAPIRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		utils.HandleError(w, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "automation rule"),
		}, http.StatusBadRequest))
		return
	}

	accountID := r.PathValue(constants.PathParamAccountID)
	workspaceID := r.PathValue(constants.PathParamWorkspaceID)

	ruleService := provider.NewRuleProvider().GetRuleService()
	rule, err := ruleService.AddAutomationRule(accountID, workspaceID, request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      rule.RuleID,
		TargetType:    log.TargetTypeAutomationRule,
		ActionID:      log.ActionCreateAutomationRule,
		Data: map[string]string{
			"account_id": accountID,
			"rule_name":  rule.Name,
		},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, rule.ToAPIResponse())
}

// GetAutomationRules handles listing the rules of an ad account.
func (rh *RulesHandler) GetAutomationRules(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	accountID := r.PathValue(constants.PathParamAccountID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	rules, err := ruleService.GetAutomationRules(accountID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	responses := make([]model.AutomationRuleAPIResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, rule.ToAPIResponse())
	}
	utils.WriteJSONResponse(w, http.StatusOK, responses)
}

// GetAutomationRule handles fetching a single rule.
func (rh *RulesHandler) GetAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	rule, err := ruleService.GetAutomationRule(ruleID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rule.ToAPIResponse())
}

// UpdateAutomationRule handles partial updates of a rule.
func (rh *RulesHandler) UpdateAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	var request model.AutomationRuleUpdateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		utils.HandleError(w, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "automation rule"),
		}, http.StatusBadRequest))
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	rule, err := ruleService.UpdateAutomationRule(r.Context(), ruleID, request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      rule.RuleID,
		TargetType:    log.TargetTypeAutomationRule,
		ActionID:      log.ActionUpdateAutomationRule,
		Data: map[string]string{
			"account_id": rule.AccountID,
		},
	})

	utils.WriteJSONResponse(w, http.StatusOK, rule.ToAPIResponse())
}

// ToggleAutomationRule handles flipping a rule between ACTIVE and PAUSED.
func (rh *RulesHandler) ToggleAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	rule, err := ruleService.ToggleAutomationRule(ruleID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      rule.RuleID,
		TargetType:    log.TargetTypeAutomationRule,
		ActionID:      log.ActionToggleAutomationRule,
		Data: map[string]string{
			"account_id": rule.AccountID,
			"status":     string(rule.Status),
		},
	})

	utils.WriteJSONResponse(w, http.StatusOK, rule.ToAPIResponse())
}

// DeleteAutomationRule handles soft deletion of a rule.
func (rh *RulesHandler) DeleteAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	if err := ruleService.DeleteAutomationRule(r.Context(), ruleID); err != nil {
		utils.HandleError(w, err)
		return
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      ruleID,
		TargetType:    log.TargetTypeAutomationRule,
		ActionID:      log.ActionDeleteAutomationRule,
		Data: map[string]string{
			"account_id": r.PathValue(constants.PathParamAccountID),
		},
	})

	w.WriteHeader(http.StatusNoContent)
}

// PreviewAutomationRule handles the read-only evaluation preview.
func (rh *RulesHandler) PreviewAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	evaluator := provider.NewRuleProvider().GetEvaluator()
	matched, err := evaluator.PreviewRule(r.Context(), ruleID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, model.PreviewAPIResponse{MatchedCount: matched})
}

// GetExecutionHistory handles fetching the execution log of a rule.
func (rh *RulesHandler) GetExecutionHistory(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	logs, err := ruleService.GetExecutionHistory(ruleID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, logs)
}

// SyncAutomationRules handles pulling the platform's native rules into the
// local mirror.
func (rh *RulesHandler) SyncAutomationRules(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	accountID := r.PathValue(constants.PathParamAccountID)
	workspaceID := r.PathValue(constants.PathParamWorkspaceID)

	syncService := provider.NewRuleProvider().GetSyncService()
	result, err := syncService.SyncFromMeta(r.Context(), accountID, workspaceID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      accountID,
		TargetType:    log.TargetTypeAdAccount,
		ActionID:      log.ActionSyncRules,
	})

	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// ReportStatChange handles ingesting one stat change event for the account
// and fans it out to the realtime rules watching the changed entity. The
// event is accepted once it is queued; evaluation happens asynchronously.
func (rh *RulesHandler) ReportStatChange(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	var change model.StatChange
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&change); err != nil {
		utils.HandleError(w, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "stat change"),
		}, http.StatusBadRequest))
		return
	}

	change.AccountID = r.PathValue(constants.PathParamAccountID)
	if change.EntityID == "" || change.Field == "" {
		utils.HandleError(w, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "entity_id and field are required.",
		}, http.StatusBadRequest))
		return
	}
	switch change.EntityType {
	case model.EntityTypeCampaign, model.EntityTypeAdset, model.EntityTypeAd:
	default:
		utils.HandleError(w, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "entity_type must be one of CAMPAIGN, ADSET or AD.",
		}, http.StatusBadRequest))
		return
	}

	workers.DispatchStatChange(change)
	w.WriteHeader(http.StatusAccepted)
}

// PromoteAutomationRule handles converting a local rule into a platform
// native rule.
func (rh *RulesHandler) PromoteAutomationRule(w http.ResponseWriter, r *http.Request) {

	if !authenticate(w, r) {
		return
	}

	ruleID := r.PathValue(constants.PathParamRuleID)
	ruleService := provider.NewRuleProvider().GetRuleService()
	rule, err := ruleService.PromoteAutomationRule(r.Context(), ruleID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      rule.RuleID,
		TargetType:    log.TargetTypeAutomationRule,
		ActionID:      log.ActionPromoteAutomationRule,
		Data: map[string]string{
			"account_id": rule.AccountID,
		},
	})

	utils.WriteJSONResponse(w, http.StatusOK, rule.ToAPIResponse())
}
