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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/client"
)

func newTestEvaluator(ruleStore *fakeRuleStore, logStore *fakeLogStore,
	metaClient *fakeMetaClient) (*Evaluator, *fakeFolderStore, *fakeNotifier) {

	folderStore := newFakeFolderStore()
	notifier := &fakeNotifier{}
	return &Evaluator{
		ruleStore:            ruleStore,
		logStore:             logStore,
		folderStore:          folderStore,
		notifier:             notifier,
		metaClient:           metaClient,
		minBudget:            100,
		maxConcurrentActions: 4,
	}, folderStore, notifier
}

func pauseHighCPARule() model.Rule {
	rule := validLocalRule()
	rule.EvaluationSpec.Filters = []model.Filter{
		{Field: "cost_per_result", Operator: model.OperatorGreaterThan, Value: 10000},
	}
	rule.ExecutionSpec = model.ExecutionSpec{ExecutionType: model.ExecutionTypePause}
	return rule
}

func TestEvaluateRulePausesEntitiesAboveThreshold(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{
		{ID: "c-1", Name: "Spring sale"},
		{ID: "c-2", Name: "Brand push"},
	}
	// One campaign above the 100.00 threshold, one below.
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.insights["c-2"] = client.Metrics{"cost_per_result": 5000}

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	assert.Equal(t, client.EntityStatusPaused, metaClient.statusUpdates["c-1"])
	assert.NotContains(t, metaClient.statusUpdates, "c-2")

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultSuccess, logEntry.Result)
	assert.Equal(t, 1, logEntry.EntitiesAffected)
	assert.Equal(t, string(model.ExecutionTypePause), logEntry.ActionTaken)
	assert.Equal(t, 1, logEntry.Details["matched_count"])

	stored := ruleStore.stored(rule.RuleID)
	assert.Equal(t, int64(1), stored.ExecutionCount)
	require.NotNil(t, stored.LastExecutedAt)
}

func TestEvaluateRuleNoMatchLogsSuccessWithZeroAffected(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 5000}

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultSuccess, logEntry.Result)
	assert.Equal(t, 0, logEntry.EntitiesAffected)
	assert.Equal(t, "NO_MATCH", logEntry.Details["note"])
	assert.Empty(t, metaClient.statusUpdates)

	// A no-match attempt still counts as an attempt.
	assert.Equal(t, int64(1), ruleStore.stored(rule.RuleID).ExecutionCount)
}

func TestEvaluateRuleSkipsInactiveRule(t *testing.T) {

	rule := pauseHighCPARule()
	rule.Status = model.RuleStatusPaused
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	assert.Empty(t, logStore.logs)
	assert.Equal(t, int64(0), ruleStore.stored(rule.RuleID).ExecutionCount)
}

func TestEvaluateRuleMetricGapYieldsPartial(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}, {ID: "c-2"}}
	// No insights row for c-2: a gap, not a non-match.
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultPartial, logEntry.Result)
	assert.Equal(t, 1, logEntry.EntitiesAffected)
	assert.Equal(t, 1, logEntry.Details["metric_gaps"])
}

func TestEvaluateRuleAllActionsFailingYieldsFailed(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}, {ID: "c-2"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.insights["c-2"] = client.Metrics{"cost_per_result": 20000}
	metaClient.failEntityIDs["c-1"] = true
	metaClient.failEntityIDs["c-2"] = true

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultFailed, logEntry.Result)
	assert.Equal(t, 0, logEntry.EntitiesAffected)
	failures, ok := logEntry.Details["entity_failures"].([]string)
	require.True(t, ok)
	assert.Len(t, failures, 2)
}

func TestEvaluateRulePartialWhenSomeActionsFail(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}, {ID: "c-2"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.insights["c-2"] = client.Metrics{"cost_per_result": 20000}
	metaClient.failEntityIDs["c-2"] = true

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultPartial, logEntry.Result)
	assert.Equal(t, 1, logEntry.EntitiesAffected)
}

func TestEvaluateRuleBudgetFloorClampYieldsPartial(t *testing.T) {

	rule := validLocalRule()
	rule.EvaluationSpec.Filters = []model.Filter{
		{Field: "cost_per_result", Operator: model.OperatorGreaterThan, Value: 10000},
	}
	rule.ExecutionSpec = model.ExecutionSpec{
		ExecutionType: model.ExecutionTypeDecreaseDailyBudgetBy,
		Options: []model.ExecutionOption{
			{Field: model.ExecutionOptionAmount, Value: -100, Unit: model.UnitPercentage},
		},
	}
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.budgets["c-1"] = 5000

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	// -100% would zero the budget; it floors at the platform minimum instead.
	assert.Equal(t, int64(100), metaClient.budgetWrites["c-1"])

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultPartial, logEntry.Result)
	assert.Equal(t, 1, logEntry.EntitiesAffected)
	assert.Equal(t, 1, logEntry.Details["clamped_count"])
}

func TestEvaluateRuleBudgetIncreaseAppliesPercentage(t *testing.T) {

	rule := validLocalRule()
	rule.ExecutionSpec = model.ExecutionSpec{
		ExecutionType: model.ExecutionTypeIncreaseDailyBudgetBy,
		Options: []model.ExecutionOption{
			{Field: model.ExecutionOptionAmount, Value: 20, Unit: model.UnitPercentage},
		},
	}
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.budgets["c-1"] = 5000

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	assert.Equal(t, int64(6000), metaClient.budgetWrites["c-1"])
	require.Len(t, logStore.logs, 1)
	assert.Equal(t, model.ExecutionResultSuccess, logStore.logs[0].Result)
	assert.Equal(t, "INCREASE_DAILY_BUDGET_BY +20%", logStore.logs[0].ActionTaken)
}

func TestEvaluateRuleNotificationAction(t *testing.T) {

	rule := validLocalRule()
	rule.ExecutionSpec = model.ExecutionSpec{
		ExecutionType: model.ExecutionTypeNotification,
		Options: []model.ExecutionOption{
			{Field: model.ExecutionOptionMessage, Text: "CPA above target"},
		},
	}
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1", Name: "Spring sale"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}

	evaluator, _, notifier := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	require.Len(t, notifier.notifications, 1)
	notification := notifier.notifications[0]
	assert.Equal(t, "CPA above target", notification.Message)
	assert.Equal(t, "c-1", notification.EntityID)
	assert.Equal(t, "Spring sale", notification.EntityName)
	assert.Equal(t, rule.RuleID, notification.RuleID)
}

func TestEvaluateRuleMoveToFolderAction(t *testing.T) {

	rule := validLocalRule()
	rule.ExecutionSpec = model.ExecutionSpec{
		ExecutionType: model.ExecutionTypeMoveToFolder,
		Options: []model.ExecutionOption{
			{Field: model.ExecutionOptionFolderID, Text: "folder-42"},
		},
	}
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}

	evaluator, folderStore, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	assert.Equal(t, "folder-42", folderStore.assignments["c-1"])
	require.Len(t, logStore.logs, 1)
	assert.Equal(t, "MOVE_TO_FOLDER folder-42", logStore.logs[0].ActionTaken)
}

func TestDescribeAction(t *testing.T) {

	assert.Equal(t, "PAUSE", describeAction(model.ExecutionSpec{
		ExecutionType: model.ExecutionTypePause,
	}))
	assert.Equal(t, "DECREASE_BID_BY -30%", describeAction(model.ExecutionSpec{
		ExecutionType: model.ExecutionTypeDecreaseBidBy,
		Options: []model.ExecutionOption{
			{Field: model.ExecutionOptionAmount, Value: -30, Unit: model.UnitPercentage},
		},
	}))
	assert.Equal(t, "MOVE_CREATIVE folder-7", describeAction(model.ExecutionSpec{
		ExecutionType: model.ExecutionTypeMoveCreative,
		Options: []model.ExecutionOption{
			{Field: model.ExecutionOptionFolderID, Text: "folder-7"},
		},
	}))
}

func TestEvaluateRuleEntityStatusSelector(t *testing.T) {

	rule := pauseHighCPARule()
	rule.EvaluationSpec.EntityStatus = "ACTIVE"
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{
		{ID: "c-1", EffectiveStatus: "ACTIVE"},
		{ID: "c-2", EffectiveStatus: "PAUSED"},
	}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.insights["c-2"] = client.Metrics{"cost_per_result": 15000}

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, nil))

	assert.Contains(t, metaClient.statusUpdates, "c-1")
	assert.NotContains(t, metaClient.statusUpdates, "c-2")
}

func TestEvaluateRuleEntityFetchFailureLogsFailedStage(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entitiesErr = errors.New("platform unavailable")

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	err := evaluator.EvaluateRule(context.Background(), rule.RuleID, nil)
	require.Error(t, err)

	require.Len(t, logStore.logs, 1)
	logEntry := logStore.logs[0]
	assert.Equal(t, model.ExecutionResultFailed, logEntry.Result)
	assert.Equal(t, "FETCH_ENTITIES", logEntry.Details["failed_stage"])

	// A failed attempt still updates bookkeeping.
	assert.Equal(t, int64(1), ruleStore.stored(rule.RuleID).ExecutionCount)
}

func TestEvaluateRuleMetricsFetchFailureLogsFailedStage(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}}
	metaClient.insightsErr = errors.New("insights timeout")

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	err := evaluator.EvaluateRule(context.Background(), rule.RuleID, nil)
	require.Error(t, err)

	require.Len(t, logStore.logs, 1)
	assert.Equal(t, "FETCH_METRICS", logStore.logs[0].Details["failed_stage"])
}

func realtimeSpendRule() model.Rule {
	rule := pauseHighCPARule()
	rule.TriggerType = model.TriggerTypeRealtime
	rule.EvaluationSpec.TimePreset = ""
	rule.EvaluationSpec.Filters = []model.Filter{
		{Field: "spend", Operator: model.OperatorGreaterThan, Value: 0},
	}
	rule.EvaluationSpec.Trigger = &model.TriggerCondition{
		Field: "spend", Operator: model.OperatorGreaterThan, Value: 500000,
	}
	return rule
}

func TestEvaluateRuleRealtimeTriggerCrossing(t *testing.T) {

	rule := realtimeSpendRule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}, {ID: "c-2"}}
	metaClient.insights["c-1"] = client.Metrics{"spend": 510000}
	metaClient.insights["c-2"] = client.Metrics{"spend": 510000}

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	change := &model.StatChange{
		AccountID:  rule.AccountID,
		EntityType: model.EntityTypeCampaign,
		EntityID:   "c-1",
		Field:      "spend",
		Previous:   490000,
		Current:    510000,
	}
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, change))

	// Only the entity named by the stat change is acted on.
	assert.Contains(t, metaClient.statusUpdates, "c-1")
	assert.NotContains(t, metaClient.statusUpdates, "c-2")
	require.Len(t, logStore.logs, 1)
}

func TestEvaluateRuleRealtimeRepeatedSatisfyingValueDoesNotRetrigger(t *testing.T) {

	rule := realtimeSpendRule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	change := &model.StatChange{
		AccountID: rule.AccountID,
		EntityID:  "c-1",
		Field:     "spend",
		Previous:  510000,
		Current:   520000,
	}
	require.NoError(t, evaluator.EvaluateRule(context.Background(), rule.RuleID, change))

	// Both values satisfy the condition, so no boundary was crossed and the
	// attempt is not recorded.
	assert.Empty(t, logStore.logs)
	assert.Empty(t, metaClient.statusUpdates)
	assert.Equal(t, int64(0), ruleStore.stored(rule.RuleID).ExecutionCount)
}

func TestPreviewRuleCountsMatchesWithoutSideEffects(t *testing.T) {

	rule := pauseHighCPARule()
	ruleStore := newFakeRuleStore(rule)
	logStore := &fakeLogStore{}
	metaClient := newFakeMetaClient()
	metaClient.entities = []client.Entity{{ID: "c-1"}, {ID: "c-2"}, {ID: "c-3"}}
	metaClient.insights["c-1"] = client.Metrics{"cost_per_result": 15000}
	metaClient.insights["c-2"] = client.Metrics{"cost_per_result": 5000}
	metaClient.insights["c-3"] = client.Metrics{"cost_per_result": 10001}

	evaluator, _, _ := newTestEvaluator(ruleStore, logStore, metaClient)
	matched, err := evaluator.PreviewRule(context.Background(), rule.RuleID)
	require.NoError(t, err)

	assert.Equal(t, 2, matched)
	assert.Empty(t, logStore.logs)
	assert.Empty(t, metaClient.statusUpdates)
	assert.Equal(t, int64(0), ruleStore.stored(rule.RuleID).ExecutionCount)
}

func TestSatisfiesOperators(t *testing.T) {

	assert.True(t, satisfies(model.OperatorGreaterThan, 15000, 10000, nil))
	assert.False(t, satisfies(model.OperatorGreaterThan, 10000, 10000, nil))
	assert.True(t, satisfies(model.OperatorLessThan, 5000, 10000, nil))
	assert.True(t, satisfies(model.OperatorEqual, 10000, 10000, nil))

	// IN_RANGE bounds are inclusive on both ends.
	assert.True(t, satisfies(model.OperatorInRange, 1000, 1000, int64Ptr(2000)))
	assert.True(t, satisfies(model.OperatorInRange, 2000, 1000, int64Ptr(2000)))
	assert.False(t, satisfies(model.OperatorInRange, 2001, 1000, int64Ptr(2000)))
	assert.False(t, satisfies(model.OperatorInRange, 999, 1000, int64Ptr(2000)))
}

func TestApplyPercentageTruncatesTowardZero(t *testing.T) {

	assert.Equal(t, int64(6000), applyPercentage(5000, 20))
	assert.Equal(t, int64(2500), applyPercentage(5000, -50))
	assert.Equal(t, int64(0), applyPercentage(5000, -100))
	// 333 * 10 / 100 = 33 after truncation.
	assert.Equal(t, int64(366), applyPercentage(333, 10))
}
