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

// RuleStatus is the lifecycle state of an automation rule. DELETED is a
// soft-delete marker; deleted rules are hidden from listing and never
// evaluated, but their execution logs remain for audit.
type RuleStatus string

const (
	RuleStatusActive  RuleStatus = "ACTIVE"
	RuleStatusPaused  RuleStatus = "PAUSED"
	RuleStatusDeleted RuleStatus = "DELETED"
)

// RuleType distinguishes rules mirrored from the ads platform from rules
// that exist only in this service.
type RuleType string

const (
	// RuleTypeExternalNative rules are authoritative on the ads platform and
	// mirrored locally for display and history.
	RuleTypeExternalNative RuleType = "EXTERNAL_NATIVE"
	// RuleTypeLocal rules are stored, evaluated and executed entirely here.
	RuleTypeLocal RuleType = "LOCAL"
)

// TriggerType selects how a rule is driven.
type TriggerType string

const (
	// TriggerTypeSchedule rules are evaluated periodically against metrics
	// aggregated over the lookback window named by the time preset.
	TriggerTypeSchedule TriggerType = "SCHEDULE"
	// TriggerTypeRealtime rules are evaluated when a stat-change event for a
	// watched field arrives.
	TriggerTypeRealtime TriggerType = "REALTIME"
)

// EntityType is the ad object class a rule targets.
type EntityType string

const (
	EntityTypeCampaign EntityType = "CAMPAIGN"
	EntityTypeAdset    EntityType = "ADSET"
	EntityTypeAd       EntityType = "AD"
)

// Operator compares a fetched metric value against a filter value.
type Operator string

const (
	OperatorGreaterThan Operator = "GREATER_THAN"
	OperatorLessThan    Operator = "LESS_THAN"
	OperatorEqual       Operator = "EQUAL"
	OperatorInRange     Operator = "IN_RANGE"
)

// ExecutionType is the closed set of actions a rule can take. The executor
// dispatches on it with an exhaustive switch; adding an action means
// extending this set and the switch, never a string lookup.
type ExecutionType string

const (
	ExecutionTypePause                 ExecutionType = "PAUSE"
	ExecutionTypeUnpause               ExecutionType = "UNPAUSE"
	ExecutionTypeNotification          ExecutionType = "NOTIFICATION"
	ExecutionTypeIncreaseDailyBudgetBy ExecutionType = "INCREASE_DAILY_BUDGET_BY"
	ExecutionTypeDecreaseDailyBudgetBy ExecutionType = "DECREASE_DAILY_BUDGET_BY"
	ExecutionTypeIncreaseBidBy         ExecutionType = "INCREASE_BID_BY"
	ExecutionTypeDecreaseBidBy         ExecutionType = "DECREASE_BID_BY"
	ExecutionTypeMoveToFolder          ExecutionType = "MOVE_TO_FOLDER"
	ExecutionTypeMoveCreative          ExecutionType = "MOVE_CREATIVE"
)

// TimePreset names the metrics lookback window for SCHEDULE evaluation.
const (
	TimePresetToday   = "TODAY"
	TimePresetLast3D  = "LAST_3D"
	TimePresetLast7D  = "LAST_7D"
	TimePresetLast14D = "LAST_14D"
	TimePresetLast30D = "LAST_30D"
)

// AllowedTimePresets defines the valid set of lookback windows.
var AllowedTimePresets = map[string]bool{
	TimePresetToday:   true,
	TimePresetLast3D:  true,
	TimePresetLast7D:  true,
	TimePresetLast14D: true,
	TimePresetLast30D: true,
}

// Filter is one metric condition. All monetary values are integer minor
// units (stored x100), so comparisons never touch floating point.
// UpperValue is set only for IN_RANGE; both bounds are inclusive.
type Filter struct {
	Field      string   `json:"field"`
	Operator   Operator `json:"operator"`
	Value      int64    `json:"value"`
	UpperValue *int64   `json:"upper_value,omitempty"`
}

// TriggerCondition is the stat-change condition of a REALTIME rule.
type TriggerCondition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    int64    `json:"value"`
}

// EvaluationSpec is the condition side of a rule. Filters are combined with
// AND semantics. EntityStatus is a non-metric selector applied while
// resolving the entity set (e.g. "ACTIVE").
type EvaluationSpec struct {
	EntityType   EntityType        `json:"entity_type"`
	EntityStatus string            `json:"entity_status,omitempty"`
	Filters      []Filter          `json:"filters"`
	TimePreset   string            `json:"time_preset,omitempty"`
	Trigger      *TriggerCondition `json:"trigger,omitempty"`
}

// ExecutionOption parameterizes an action. Budget and bid changes carry an
// "amount" option with a signed percentage (positive = increase) and unit
// PERCENTAGE; MOVE_* actions carry a "folder_id" option in Text.
type ExecutionOption struct {
	Field string `json:"field"`
	Value int64  `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

const (
	ExecutionOptionAmount   = "amount"
	ExecutionOptionFolderID = "folder_id"
	ExecutionOptionMessage  = "message"

	UnitPercentage = "PERCENTAGE"
)

// ExecutionSpec is the action side of a rule.
type ExecutionSpec struct {
	ExecutionType ExecutionType     `json:"execution_type"`
	Options       []ExecutionOption `json:"execution_options,omitempty"`
}

// Option returns the option with the given field name, if present.
func (s ExecutionSpec) Option(field string) (ExecutionOption, bool) {
	for _, opt := range s.Options {
		if opt.Field == field {
			return opt, true
		}
	}
	return ExecutionOption{}, false
}

// IsBudgetOrBidChange reports whether the execution type adjusts a monetary
// setting and therefore requires an amount option.
func (t ExecutionType) IsBudgetOrBidChange() bool {
	switch t {
	case ExecutionTypeIncreaseDailyBudgetBy, ExecutionTypeDecreaseDailyBudgetBy,
		ExecutionTypeIncreaseBidBy, ExecutionTypeDecreaseBidBy:
		return true
	}
	return false
}

// IsMove reports whether the execution type reassigns local grouping
// metadata. Move actions are valid for LOCAL rules only.
func (t ExecutionType) IsMove() bool {
	return t == ExecutionTypeMoveToFolder || t == ExecutionTypeMoveCreative
}

// Rule is a stored condition-action pair scoped to an ad account within a
// workspace. MetaRuleID is non-nil iff RuleType is EXTERNAL_NATIVE.
type Rule struct {
	RuleID         string         `json:"rule_id"`
	AccountID      string         `json:"account_id"`
	WorkspaceID    string         `json:"workspace_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Status         RuleStatus     `json:"status"`
	RuleType       RuleType       `json:"rule_type"`
	TriggerType    TriggerType    `json:"trigger_type"`
	EvaluationSpec EvaluationSpec `json:"evaluation_spec"`
	ExecutionSpec  ExecutionSpec  `json:"execution_spec"`
	MetaRuleID     *string        `json:"meta_rule_id,omitempty"`
	LastExecutedAt *time.Time     `json:"last_executed_at,omitempty"`
	ExecutionCount int64          `json:"execution_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// StatChange is a point-in-time metric transition for one entity, delivered
// by the stat-change event source that drives REALTIME rules.
type StatChange struct {
	AccountID  string     `json:"account_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Field      string     `json:"field"`
	Previous   int64      `json:"previous"`
	Current    int64      `json:"current"`
}

// SyncResult reports what a reconcile run changed. It is informational;
// sync is idempotent and safe to repeat.
type SyncResult struct {
	CreatedCount int `json:"created_count"`
	UpdatedCount int `json:"updated_count"`
	DeletedCount int `json:"deleted_count"`
}
