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
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/database/provider"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// AddExecutionLog appends one record to the execution history of a rule.
// The history is append only; there are no update or delete paths.
func AddExecutionLog(logEntry model.ExecutionLog) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for adding execution log for rule: %s",
			logEntry.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_EXECUTION_LOG.Code,
			Message:     errors2.ADD_EXECUTION_LOG.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	details, err := json.Marshal(logEntry.Details)
	if err != nil {
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MARSHAL_JSON.Code,
			Message:     errors2.MARSHAL_JSON.Message,
			Description: fmt.Sprintf("Failed to marshal details of execution log for rule: %s", logEntry.RuleID),
		}, err)
	}

	query := `INSERT INTO execution_logs
		(log_id, rule_id, executed_at, action_taken, result, entities_affected, details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = dbClient.ExecuteQuery(query,
		logEntry.LogID, logEntry.RuleID, logEntry.ExecutedAt, logEntry.ActionTaken, logEntry.Result,
		logEntry.EntitiesAffected, details)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed on inserting execution log for rule: %s", logEntry.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_EXECUTION_LOG.Code,
			Message:     errors2.ADD_EXECUTION_LOG.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetExecutionLogs fetches the execution history of a rule, newest first.
func GetExecutionLogs(ruleID string) ([]model.ExecutionLog, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching execution logs of rule: %s", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_EXECUTION_LOGS.Code,
			Message:     errors2.FETCH_EXECUTION_LOGS.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := `SELECT log_id, rule_id, executed_at, action_taken, result, entities_affected, details
		FROM execution_logs WHERE rule_id = $1 ORDER BY executed_at DESC`

	results, err := dbClient.ExecuteQuery(query, ruleID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch execution logs for rule: %s.", ruleID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_EXECUTION_LOGS.Code,
			Message:     errors2.FETCH_EXECUTION_LOGS.Message,
			Description: errorMsg,
		}, err)
	}

	logs := make([]model.ExecutionLog, 0, len(results))
	for _, row := range results {
		var logEntry model.ExecutionLog
		logEntry.LogID = row["log_id"].(string)
		logEntry.RuleID = row["rule_id"].(string)
		logEntry.ExecutedAt = row["executed_at"].(time.Time)
		logEntry.ActionTaken = row["action_taken"].(string)
		logEntry.Result = model.ExecutionResult(row["result"].(string))
		if entitiesAffected, ok := row["entities_affected"].(int64); ok {
			logEntry.EntitiesAffected = int(entitiesAffected)
		}
		if row["details"] != nil {
			if err := unmarshalColumn(row["details"], &logEntry.Details, ruleID); err != nil {
				return nil, err
			}
		}
		logs = append(logs, logEntry)
	}
	return logs, nil
}
