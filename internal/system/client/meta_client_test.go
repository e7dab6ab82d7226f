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

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/config"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

func TestMain(m *testing.M) {
	if err := log.Init("ERROR"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestClient(server *httptest.Server) *MetaClient {

	metaClient := NewMetaClient(config.MetaAPIConfig{
		BaseURL:     server.URL,
		APIVersion:  "v21.0",
		AccessToken: "test-token",
	})
	metaClient.HTTPClient = server.Client()
	return metaClient
}

func TestListAdRulesDecodesRulesAndSendsToken(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/act_acct-1/adrules_library", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []MetaAdRule{
				{ID: "ext-1", Name: "Pause expensive", Status: MetaRuleStatusEnabled},
			},
		})
	}))
	defer server.Close()

	rules, err := newTestClient(server).ListAdRules(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "ext-1", rules[0].ID)
	assert.Equal(t, MetaRuleStatusEnabled, rules[0].Status)
}

func TestCreateAdRuleReturnsPlatformID(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var received MetaAdRule
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "Pause expensive", received.Name)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "ext-42"})
	}))
	defer server.Close()

	id, err := newTestClient(server).CreateAdRule(context.Background(), "acct-1",
		MetaAdRule{Name: "Pause expensive"})
	require.NoError(t, err)
	assert.Equal(t, "ext-42", id)
}

func TestDoRequestNonSuccessStatusBecomesCodedError(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).ListAdRules(context.Background(), "acct-1")
	require.Error(t, err)
	var serverError *errors2.ServerError
	require.ErrorAs(t, err, &serverError)
	assert.Equal(t, errors2.META_API_RESPONSE.Code, serverError.Code)
	assert.Contains(t, serverError.Description, "429")
}

func TestListEntitiesRequestsEdgeAndFields(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/act_acct-1/adsets", r.URL.Path)
		assert.Equal(t, "id,name,effective_status", r.URL.Query().Get("fields"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []Entity{
				{ID: "as-1", Name: "Retargeting", EffectiveStatus: "ACTIVE"},
			},
		})
	}))
	defer server.Close()

	entities, err := newTestClient(server).ListEntities(context.Background(), "acct-1",
		model.EntityTypeAdset)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "as-1", entities[0].ID)
	assert.Equal(t, "ACTIVE", entities[0].EffectiveStatus)
}

func TestListEntitiesUnknownTypeRejectedLocally(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an unknown entity type")
	}))
	defer server.Close()

	_, err := newTestClient(server).ListEntities(context.Background(), "acct-1", "CREATIVE")
	require.Error(t, err)
	var serverError *errors2.ServerError
	require.ErrorAs(t, err, &serverError)
	assert.Equal(t, errors2.ENTITY_RESOLUTION.Code, serverError.Code)
}

func TestGetInsightsKeysMetricsByEntity(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "campaign", r.URL.Query().Get("level"))
		assert.Equal(t, "last_7d", r.URL.Query().Get("date_preset"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"entity_id": "c-1", "metrics": map[string]int64{"cost_per_result": 15000}},
			},
		})
	}))
	defer server.Close()

	insights, err := newTestClient(server).GetInsights(context.Background(), "acct-1",
		model.EntityTypeCampaign, []string{"c-1", "c-2"}, model.TimePresetLast7D)
	require.NoError(t, err)

	assert.Equal(t, int64(15000), insights["c-1"]["cost_per_result"])
	// c-2 was absent from the response; a gap, not an error.
	_, ok := insights["c-2"]
	assert.False(t, ok)
}

func TestGetEntityBudgetDecodesStringAmount(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "daily_budget", r.URL.Query().Get("fields"))
		// The platform serialises monetary amounts as strings.
		_, _ = w.Write([]byte(`{"id":"c-1","daily_budget":"5000"}`))
	}))
	defer server.Close()

	budget, err := newTestClient(server).GetEntityBudget(context.Background(),
		model.EntityTypeCampaign, "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), budget)
}

func TestUpdateEntityBudgetWritesStringAmount(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "6000", body["daily_budget"])
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	err := newTestClient(server).UpdateEntityBudget(context.Background(),
		model.EntityTypeCampaign, "c-1", 6000)
	require.NoError(t, err)
}

func TestToLocalRuleMapsPlatformRule(t *testing.T) {

	upper := int64(20000)
	external := MetaAdRule{
		ID:     "ext-1",
		Name:   "Pause expensive",
		Status: MetaRuleStatusEnabled,
		EvaluationSpec: MetaEvaluationSpec{
			EvaluationType: MetaEvaluationTypeSchedule,
			EntityType:     "CAMPAIGN",
			Filters: []MetaFilter{
				{Field: "cost_per_result", Operator: "IN_RANGE", Value: 10000, UpperValue: &upper},
				{Field: "effective_status", Operator: "EQUAL", Text: "ACTIVE"},
				{Field: "time_preset", Operator: "EQUAL", Text: "LAST_7D"},
			},
		},
		ExecutionSpec: MetaExecutionSpec{ExecutionType: "PAUSE"},
	}

	rule := ToLocalRule(external, "acct-1", "ws-1")

	assert.Equal(t, model.RuleTypeExternalNative, rule.RuleType)
	require.NotNil(t, rule.MetaRuleID)
	assert.Equal(t, "ext-1", *rule.MetaRuleID)
	assert.Equal(t, model.RuleStatusActive, rule.Status)
	assert.Equal(t, model.TriggerTypeSchedule, rule.TriggerType)
	assert.Equal(t, model.EntityTypeCampaign, rule.EvaluationSpec.EntityType)

	// Selector filters become dedicated fields, not metric filters.
	assert.Equal(t, "ACTIVE", rule.EvaluationSpec.EntityStatus)
	assert.Equal(t, "LAST_7D", rule.EvaluationSpec.TimePreset)
	require.Len(t, rule.EvaluationSpec.Filters, 1)
	assert.Equal(t, model.OperatorInRange, rule.EvaluationSpec.Filters[0].Operator)
	require.NotNil(t, rule.EvaluationSpec.Filters[0].UpperValue)
	assert.Equal(t, int64(20000), *rule.EvaluationSpec.Filters[0].UpperValue)
}

func TestToLocalRuleMapsTriggerRule(t *testing.T) {

	external := MetaAdRule{
		ID:     "ext-2",
		Name:   "Spend spike",
		Status: MetaRuleStatusDisabled,
		EvaluationSpec: MetaEvaluationSpec{
			EvaluationType: MetaEvaluationTypeTrigger,
			EntityType:     "ADSET",
			Filters: []MetaFilter{
				{Field: "spend", Operator: "GREATER_THAN", Value: 0},
			},
			Trigger: &MetaTrigger{Field: "spend", Operator: "GREATER_THAN", Value: 500000},
		},
		ExecutionSpec: MetaExecutionSpec{ExecutionType: "NOTIFICATION"},
	}

	rule := ToLocalRule(external, "acct-1", "ws-1")

	assert.Equal(t, model.TriggerTypeRealtime, rule.TriggerType)
	assert.Equal(t, model.RuleStatusPaused, rule.Status)
	require.NotNil(t, rule.EvaluationSpec.Trigger)
	assert.Equal(t, int64(500000), rule.EvaluationSpec.Trigger.Value)
}

func TestToExternalRuleRoundTrip(t *testing.T) {

	metaRuleID := "ext-1"
	local := model.Rule{
		RuleID:      "rule-1",
		AccountID:   "acct-1",
		WorkspaceID: "ws-1",
		Name:        "Pause expensive",
		Status:      model.RuleStatusActive,
		RuleType:    model.RuleTypeExternalNative,
		TriggerType: model.TriggerTypeSchedule,
		EvaluationSpec: model.EvaluationSpec{
			EntityType:   model.EntityTypeCampaign,
			EntityStatus: "ACTIVE",
			Filters: []model.Filter{
				{Field: "cost_per_result", Operator: model.OperatorGreaterThan, Value: 10000},
			},
			TimePreset: model.TimePresetLast7D,
		},
		ExecutionSpec: model.ExecutionSpec{ExecutionType: model.ExecutionTypePause},
		MetaRuleID:    &metaRuleID,
	}

	external := ToExternalRule(local)
	assert.Equal(t, "ext-1", external.ID)
	assert.Equal(t, MetaRuleStatusEnabled, external.Status)
	assert.Equal(t, MetaEvaluationTypeSchedule, external.EvaluationSpec.EvaluationType)

	roundTripped := ToLocalRule(external, local.AccountID, local.WorkspaceID)
	assert.Equal(t, local.Name, roundTripped.Name)
	assert.Equal(t, local.Status, roundTripped.Status)
	assert.Equal(t, local.EvaluationSpec, roundTripped.EvaluationSpec)
	assert.Equal(t, local.ExecutionSpec.ExecutionType, roundTripped.ExecutionSpec.ExecutionType)
	assert.Empty(t, roundTripped.ExecutionSpec.Options)
}
