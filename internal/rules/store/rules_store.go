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

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/database/provider"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// AddRule inserts a new automation rule.
func AddRule(rule model.Rule) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for adding automation rule: %s", rule.Name)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_AUTOMATION_RULE.Code,
			Message:     errors2.ADD_AUTOMATION_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	evaluationSpec, executionSpec, err := marshalSpecs(rule)
	if err != nil {
		return err
	}

	query := `INSERT INTO automation_rules
		(rule_id, account_id, workspace_id, name, description, status, rule_type, trigger_type,
		 evaluation_spec, execution_spec, meta_rule_id, last_executed_at, execution_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err = dbClient.ExecuteQuery(query,
		rule.RuleID, rule.AccountID, rule.WorkspaceID, rule.Name, rule.Description, rule.Status,
		rule.RuleType, rule.TriggerType, evaluationSpec, executionSpec, rule.MetaRuleID,
		rule.LastExecutedAt, rule.ExecutionCount, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed on inserting automation rule: %s", rule.Name)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_AUTOMATION_RULE.Code,
			Message:     errors2.ADD_AUTOMATION_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Info(fmt.Sprintf("Automation rule: %s added successfully for account: %s.", rule.RuleID,
		rule.AccountID))
	return nil
}

// GetRule fetches a single automation rule by its id. Returns nil when no
// rule exists or the rule has been deleted.
func GetRule(ruleID string) (*model.Rule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching automation rule: %s", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := ruleSelectColumns + ` FROM automation_rules WHERE rule_id = $1 AND status != $2`

	results, err := dbClient.ExecuteQuery(query, ruleID, model.RuleStatusDeleted)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch automation rule with rule id: %s.", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}
	if len(results) == 0 {
		logger.Debug(fmt.Sprintf("No automation rule found for rule id: %s.", ruleID))
		return nil, nil
	}
	rule, err := buildRuleFromRow(results[0])
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetRules fetches the automation rules of an ad account, newest first.
// Deleted rules never appear in the result.
func GetRules(accountID string) ([]model.Rule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching automation rules of account: %s",
			accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := ruleSelectColumns + ` FROM automation_rules
		WHERE account_id = $1 AND status != $2 ORDER BY created_at DESC`

	results, err := dbClient.ExecuteQuery(query, accountID, model.RuleStatusDeleted)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch automation rules for account: %s.", accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}

	rules := make([]model.Rule, 0, len(results))
	for _, row := range results {
		rule, err := buildRuleFromRow(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

// UpdateRule overwrites the mutable fields of an automation rule.
func UpdateRule(rule model.Rule) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for updating automation rule: %s", rule.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_AUTOMATION_RULE.Code,
			Message:     errors2.UPDATE_AUTOMATION_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	evaluationSpec, executionSpec, err := marshalSpecs(rule)
	if err != nil {
		return err
	}

	query := `UPDATE automation_rules SET
		name=$1, description=$2, status=$3, rule_type=$4, trigger_type=$5, evaluation_spec=$6,
		execution_spec=$7, meta_rule_id=$8, updated_at=$9
		WHERE rule_id=$10`

	_, err = dbClient.ExecuteQuery(query,
		rule.Name, rule.Description, rule.Status, rule.RuleType, rule.TriggerType, evaluationSpec,
		executionSpec, rule.MetaRuleID, time.Now().UTC(), rule.RuleID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to update automation rule: %s.", rule.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_AUTOMATION_RULE.Code,
			Message:     errors2.UPDATE_AUTOMATION_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Info(fmt.Sprintf("Automation rule: %s updated successfully.", rule.RuleID))
	return nil
}

// UpdateRuleStatus sets the lifecycle status of a rule. Soft deletion goes
// through here with RuleStatusDeleted; rows are never physically removed.
func UpdateRuleStatus(ruleID string, status model.RuleStatus) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for updating status of automation rule: %s", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_AUTOMATION_RULE.Code,
			Message:     errors2.UPDATE_AUTOMATION_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	_, err = dbClient.ExecuteQuery(
		`UPDATE automation_rules SET status=$1, updated_at=$2 WHERE rule_id=$3`,
		status, time.Now().UTC(), ruleID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to update status of automation rule: %s.", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_AUTOMATION_RULE.Code,
			Message:     errors2.UPDATE_AUTOMATION_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Info(fmt.Sprintf("Automation rule: %s moved to status: %s.", ruleID, status))
	return nil
}

// UpdateRuleBookkeeping records an evaluation attempt against the rule:
// last execution time and a monotonically growing execution count. This is
// written on every attempt regardless of the evaluation outcome.
func UpdateRuleBookkeeping(ruleID string, executedAt time.Time) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for updating bookkeeping of rule: %s", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_RULE_BOOKKEEPING.Code,
			Message:     errors2.UPDATE_RULE_BOOKKEEPING.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	_, err = dbClient.ExecuteQuery(
		`UPDATE automation_rules SET last_executed_at=$1, execution_count=execution_count+1 WHERE rule_id=$2`,
		executedAt, ruleID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to update bookkeeping of automation rule: %s.", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPDATE_RULE_BOOKKEEPING.Code,
			Message:     errors2.UPDATE_RULE_BOOKKEEPING.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetMirroredRules fetches the externally mirrored rules of an account,
// including deleted ones. The sync reconciler needs the full mirror set to
// detect rules that were removed on the platform and later recreated.
func GetMirroredRules(accountID string) ([]model.Rule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching mirrored rules of account: %s",
			accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := ruleSelectColumns + ` FROM automation_rules WHERE account_id = $1 AND rule_type = $2`

	results, err := dbClient.ExecuteQuery(query, accountID, model.RuleTypeExternalNative)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch mirrored rules for account: %s.", accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}

	rules := make([]model.Rule, 0, len(results))
	for _, row := range results {
		rule, err := buildRuleFromRow(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

// GetActiveRulesByTrigger fetches the ACTIVE rules of the given trigger type
// across all accounts. The scheduler and the realtime dispatcher use this to
// decide what to evaluate.
func GetActiveRulesByTrigger(triggerType model.TriggerType) ([]model.Rule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching active rules of trigger type: %s",
			triggerType)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := ruleSelectColumns + ` FROM automation_rules WHERE trigger_type = $1 AND status = $2`

	results, err := dbClient.ExecuteQuery(query, triggerType, model.RuleStatusActive)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch active rules for trigger type: %s.", triggerType)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_AUTOMATION_RULES.Code,
			Message:     errors2.FETCH_AUTOMATION_RULES.Message,
			Description: errorMsg,
		}, err)
	}

	rules := make([]model.Rule, 0, len(results))
	for _, row := range results {
		rule, err := buildRuleFromRow(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

const ruleSelectColumns = `SELECT rule_id, account_id, workspace_id, name, description, status, rule_type,
	trigger_type, evaluation_spec, execution_spec, meta_rule_id, last_executed_at, execution_count,
	created_at, updated_at`

func marshalSpecs(rule model.Rule) ([]byte, []byte, error) {

	evaluationSpec, err := json.Marshal(rule.EvaluationSpec)
	if err != nil {
		return nil, nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MARSHAL_JSON.Code,
			Message:     errors2.MARSHAL_JSON.Message,
			Description: fmt.Sprintf("Failed to marshal evaluation spec of rule: %s", rule.RuleID),
		}, err)
	}
	executionSpec, err := json.Marshal(rule.ExecutionSpec)
	if err != nil {
		return nil, nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MARSHAL_JSON.Code,
			Message:     errors2.MARSHAL_JSON.Message,
			Description: fmt.Sprintf("Failed to marshal execution spec of rule: %s", rule.RuleID),
		}, err)
	}
	return evaluationSpec, executionSpec, nil
}

// buildRuleFromRow maps a result row onto a Rule. The jsonb spec columns
// arrive as byte slices and are decoded back into their typed forms.
func buildRuleFromRow(row map[string]interface{}) (*model.Rule, error) {

	var rule model.Rule
	rule.RuleID = row["rule_id"].(string)
	rule.AccountID = row["account_id"].(string)
	rule.WorkspaceID = row["workspace_id"].(string)
	rule.Name = row["name"].(string)
	if description, ok := row["description"].(string); ok {
		rule.Description = description
	}
	rule.Status = model.RuleStatus(row["status"].(string))
	rule.RuleType = model.RuleType(row["rule_type"].(string))
	rule.TriggerType = model.TriggerType(row["trigger_type"].(string))

	if err := unmarshalColumn(row["evaluation_spec"], &rule.EvaluationSpec, rule.RuleID); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(row["execution_spec"], &rule.ExecutionSpec, rule.RuleID); err != nil {
		return nil, err
	}

	if metaRuleID, ok := row["meta_rule_id"].(string); ok {
		rule.MetaRuleID = &metaRuleID
	}
	if lastExecutedAt, ok := row["last_executed_at"].(time.Time); ok {
		rule.LastExecutedAt = &lastExecutedAt
	}
	if executionCount, ok := row["execution_count"].(int64); ok {
		rule.ExecutionCount = executionCount
	}
	rule.CreatedAt = row["created_at"].(time.Time)
	rule.UpdatedAt = row["updated_at"].(time.Time)
	return &rule, nil
}

func unmarshalColumn(raw interface{}, out interface{}, ruleID string) error {

	var data []byte
	switch value := raw.(type) {
	case []byte:
		data = value
	case string:
		data = []byte(value)
	default:
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UNMARSHAL_JSON.Code,
			Message:     errors2.UNMARSHAL_JSON.Message,
			Description: fmt.Sprintf("Unexpected spec column type for rule: %s", ruleID),
		}, nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UNMARSHAL_JSON.Code,
			Message:     errors2.UNMARSHAL_JSON.Message,
			Description: fmt.Sprintf("Failed to decode spec column of rule: %s", ruleID),
		}, err)
	}
	return nil
}
