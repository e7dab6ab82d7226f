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

package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/store"
)

func newStoredRule(accountID string) model.Rule {

	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Rule{
		RuleID:      uuid.New().String(),
		AccountID:   accountID,
		WorkspaceID: "ws-1",
		Name:        "Pause expensive campaigns",
		Description: "Pauses campaigns whose CPA exceeds 100.00",
		Status:      model.RuleStatusActive,
		RuleType:    model.RuleTypeLocal,
		TriggerType: model.TriggerTypeSchedule,
		EvaluationSpec: model.EvaluationSpec{
			EntityType: model.EntityTypeCampaign,
			Filters: []model.Filter{
				{Field: "cost_per_result", Operator: model.OperatorGreaterThan, Value: 10000},
			},
			TimePreset: model.TimePresetLast7D,
		},
		ExecutionSpec: model.ExecutionSpec{ExecutionType: model.ExecutionTypePause},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRuleStoreAddAndGetRoundTrip(t *testing.T) {

	rule := newStoredRule("acct-roundtrip")
	require.NoError(t, store.AddRule(rule))

	fetched, err := store.GetRule(rule.RuleID)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	assert.Equal(t, rule.RuleID, fetched.RuleID)
	assert.Equal(t, rule.Name, fetched.Name)
	assert.Equal(t, rule.Status, fetched.Status)
	assert.Equal(t, rule.RuleType, fetched.RuleType)
	assert.Equal(t, rule.TriggerType, fetched.TriggerType)
	assert.Equal(t, rule.EvaluationSpec, fetched.EvaluationSpec)
	assert.Equal(t, rule.ExecutionSpec, fetched.ExecutionSpec)
	assert.Nil(t, fetched.MetaRuleID)
	assert.Equal(t, int64(0), fetched.ExecutionCount)
	assert.Nil(t, fetched.LastExecutedAt)
}

func TestRuleStoreGetUnknownRuleReturnsNil(t *testing.T) {

	fetched, err := store.GetRule(uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, fetched)
}

func TestRuleStoreListExcludesDeletedAndOrdersByCreation(t *testing.T) {

	accountID := "acct-listing"
	older := newStoredRule(accountID)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := newStoredRule(accountID)
	deleted := newStoredRule(accountID)
	deleted.Status = model.RuleStatusDeleted

	require.NoError(t, store.AddRule(older))
	require.NoError(t, store.AddRule(newer))
	require.NoError(t, store.AddRule(deleted))

	rules, err := store.GetRules(accountID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, newer.RuleID, rules[0].RuleID)
	assert.Equal(t, older.RuleID, rules[1].RuleID)
}

func TestRuleStoreSoftDeleteHidesRule(t *testing.T) {

	rule := newStoredRule("acct-delete")
	require.NoError(t, store.AddRule(rule))
	require.NoError(t, store.UpdateRuleStatus(rule.RuleID, model.RuleStatusDeleted))

	fetched, err := store.GetRule(rule.RuleID)
	require.NoError(t, err)
	assert.Nil(t, fetched)
}

func TestRuleStoreUpdateOverwritesSpecs(t *testing.T) {

	rule := newStoredRule("acct-update")
	require.NoError(t, store.AddRule(rule))

	rule.Name = "Pause very expensive campaigns"
	rule.EvaluationSpec.Filters[0].Value = 20000
	require.NoError(t, store.UpdateRule(rule))

	fetched, err := store.GetRule(rule.RuleID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Pause very expensive campaigns", fetched.Name)
	assert.Equal(t, int64(20000), fetched.EvaluationSpec.Filters[0].Value)
}

func TestRuleStoreBookkeepingIncrementsExecutionCount(t *testing.T) {

	rule := newStoredRule("acct-bookkeeping")
	require.NoError(t, store.AddRule(rule))

	firstRun := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, store.UpdateRuleBookkeeping(rule.RuleID, firstRun))
	require.NoError(t, store.UpdateRuleBookkeeping(rule.RuleID, firstRun.Add(time.Minute)))

	fetched, err := store.GetRule(rule.RuleID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, int64(2), fetched.ExecutionCount)
	require.NotNil(t, fetched.LastExecutedAt)
	assert.WithinDuration(t, firstRun.Add(time.Minute), *fetched.LastExecutedAt, time.Second)
}

func TestRuleStoreMirroredRulesIncludeDeleted(t *testing.T) {

	accountID := "acct-mirror"
	metaRuleID := "ext-" + uuid.New().String()
	mirror := newStoredRule(accountID)
	mirror.RuleType = model.RuleTypeExternalNative
	mirror.MetaRuleID = &metaRuleID
	local := newStoredRule(accountID)

	require.NoError(t, store.AddRule(mirror))
	require.NoError(t, store.AddRule(local))
	require.NoError(t, store.UpdateRuleStatus(mirror.RuleID, model.RuleStatusDeleted))

	// The sync needs the full mirror set, deleted rows included, to keep
	// reconciliation idempotent.
	mirrored, err := store.GetMirroredRules(accountID)
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, mirror.RuleID, mirrored[0].RuleID)
	assert.Equal(t, model.RuleStatusDeleted, mirrored[0].Status)
}

func TestRuleStoreActiveRulesByTrigger(t *testing.T) {

	accountID := "acct-trigger"
	realtime := newStoredRule(accountID)
	realtime.TriggerType = model.TriggerTypeRealtime
	realtime.EvaluationSpec.TimePreset = ""
	realtime.EvaluationSpec.Trigger = &model.TriggerCondition{
		Field: "spend", Operator: model.OperatorGreaterThan, Value: 500000,
	}
	pausedRealtime := newStoredRule(accountID)
	pausedRealtime.TriggerType = model.TriggerTypeRealtime
	pausedRealtime.Status = model.RuleStatusPaused
	scheduled := newStoredRule(accountID)

	require.NoError(t, store.AddRule(realtime))
	require.NoError(t, store.AddRule(pausedRealtime))
	require.NoError(t, store.AddRule(scheduled))

	rules, err := store.GetActiveRulesByTrigger(model.TriggerTypeRealtime)
	require.NoError(t, err)

	ids := make(map[string]bool, len(rules))
	for _, r := range rules {
		ids[r.RuleID] = true
	}
	assert.True(t, ids[realtime.RuleID])
	assert.False(t, ids[pausedRealtime.RuleID])
	assert.False(t, ids[scheduled.RuleID])
}
