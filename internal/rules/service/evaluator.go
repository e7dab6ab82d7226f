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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/client"
	"github.com/wso2/ads-automation-service/internal/system/config"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// Pipeline stage names recorded in execution log details.
const (
	stageFetchEntities     = "FETCH_ENTITIES"
	stageFetchMetrics      = "FETCH_METRICS"
	stageEvaluateCondition = "EVALUATE_CONDITION"
	stageExecuteAction     = "EXECUTE_ACTION"
)

// EvaluatorInterface runs automation rules against live account state.
type EvaluatorInterface interface {
	EvaluateRule(ctx context.Context, ruleID string, change *model.StatChange) error
	PreviewRule(ctx context.Context, ruleID string) (int, error)
}

// Evaluator drives the evaluation pipeline for a single rule attempt:
// resolve entities, fetch metrics, evaluate the condition, execute the
// action on matches and append the outcome to the execution history.
// Attempts share no mutable state, so one Evaluator serves all rules.
type Evaluator struct {
	ruleStore   RuleStore
	logStore    LogStore
	folderStore FolderStore
	notifier    Notifier
	metaClient  client.MetaClientInterface

	minBudget            int64
	maxConcurrentActions int
}

// GetEvaluator creates an evaluator wired to the real stores and the
// configured Meta client. Budget clamping and action concurrency come from
// deployment configuration.
func GetEvaluator(metaClient client.MetaClientInterface) EvaluatorInterface {

	runtime := config.GetADSRuntime()
	maxConcurrent := runtime.Config.Scheduler.MaxConcurrentActions
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Evaluator{
		ruleStore:            defaultRuleStore{},
		logStore:             defaultLogStore{},
		folderStore:          defaultFolderStore{},
		notifier:             defaultNotifier{},
		metaClient:           metaClient,
		minBudget:            runtime.Config.MetaAPI.MinBudget,
		maxConcurrentActions: maxConcurrent,
	}
}

// evaluationRun accumulates the outcome of one attempt for logging.
type evaluationRun struct {
	rule       model.Rule
	executedAt time.Time

	matched    []client.Entity
	affected   int
	failed     int
	clamped    int
	metricGaps int
	failures   []string
}

// EvaluateRule runs one evaluation attempt for the rule. For REALTIME rules
// the stat change that triggered the attempt restricts the entity set and
// supplies the crossing check. Every attempt updates the rule's bookkeeping
// and, unless the rule was skipped, appends exactly one execution log entry.
func (ev *Evaluator) EvaluateRule(ctx context.Context, ruleID string, change *model.StatChange) error {

	logger := log.GetLogger()

	rule, err := ev.ruleStore.GetRule(ruleID)
	if err != nil {
		return err
	}
	if rule == nil || rule.Status != model.RuleStatusActive {
		// The rule was paused or deleted between dispatch and execution.
		logger.Debug(fmt.Sprintf("Skipping evaluation of inactive rule: %s.", ruleID))
		return nil
	}

	if change != nil && !triggerCrossed(rule.EvaluationSpec.Trigger, change) {
		// The stat change did not cross the trigger boundary. Not an
		// attempt worth recording; the rule simply was not triggered.
		logger.Debug(fmt.Sprintf("Stat change for entity: %s did not trigger rule: %s.",
			change.EntityID, ruleID))
		return nil
	}

	run := &evaluationRun{rule: *rule, executedAt: time.Now().UTC()}
	defer func() {
		if err := ev.ruleStore.UpdateRuleBookkeeping(ruleID, run.executedAt); err != nil {
			logger.Error("Failed to update bookkeeping for rule: "+ruleID, log.Error(err))
		}
	}()

	entities, metrics, pipelineErr := ev.runReadOnlyPrefix(ctx, *rule, change, run)
	if pipelineErr != nil {
		ev.writeLog(run, model.ExecutionResultFailed, pipelineErr.stage, pipelineErr.err.Error())
		return pipelineErr.err
	}

	if err := ctx.Err(); err != nil {
		ev.writeLog(run, model.ExecutionResultFailed, stageEvaluateCondition, "evaluation cancelled")
		return err
	}

	for _, entity := range entities {
		entityMetrics, ok := metrics[entity.ID]
		if !ok {
			run.metricGaps++
			continue
		}
		if matchesFilters(rule.EvaluationSpec.Filters, entityMetrics) {
			run.matched = append(run.matched, entity)
		}
	}

	if len(run.matched) == 0 {
		ev.writeLog(run, model.ExecutionResultSuccess, "", "NO_MATCH")
		return nil
	}

	if err := ctx.Err(); err != nil {
		ev.writeLog(run, model.ExecutionResultFailed, stageExecuteAction, "evaluation cancelled")
		return err
	}

	ev.executeActions(ctx, run)

	result := aggregateResult(run)
	ev.writeLog(run, result, "", "")
	logger.Info(fmt.Sprintf("Evaluated rule: %s with result: %s.", ruleID, result),
		log.Int("matched", len(run.matched)), log.Int("affected", run.affected))
	return nil
}

// PreviewRule runs the read-only prefix of the pipeline and reports how many
// entities currently match the rule's condition. No action is executed, no
// log is written and no bookkeeping is touched.
func (ev *Evaluator) PreviewRule(ctx context.Context, ruleID string) (int, error) {

	rule, err := ev.ruleStore.GetRule(ruleID)
	if err != nil {
		return 0, err
	}
	if rule == nil {
		return 0, ruleNotFoundError(ruleID)
	}

	run := &evaluationRun{rule: *rule, executedAt: time.Now().UTC()}
	entities, metrics, pipelineErr := ev.runReadOnlyPrefix(ctx, *rule, nil, run)
	if pipelineErr != nil {
		return 0, pipelineErr.err
	}

	matched := 0
	for _, entity := range entities {
		entityMetrics, ok := metrics[entity.ID]
		if !ok {
			continue
		}
		if matchesFilters(rule.EvaluationSpec.Filters, entityMetrics) {
			matched++
		}
	}
	return matched, nil
}

type stageError struct {
	stage string
	err   error
}

// runReadOnlyPrefix resolves the entity set and fetches its metrics. Both
// stages talk to the platform and may fail; failures carry the stage they
// occurred in so the log entry can name it.
func (ev *Evaluator) runReadOnlyPrefix(ctx context.Context, rule model.Rule, change *model.StatChange,
	run *evaluationRun) ([]client.Entity, map[string]client.Metrics, *stageError) {

	if err := ctx.Err(); err != nil {
		return nil, nil, &stageError{stage: stageFetchEntities, err: err}
	}

	entities, err := ev.metaClient.ListEntities(ctx, rule.AccountID, rule.EvaluationSpec.EntityType)
	if err != nil {
		return nil, nil, &stageError{stage: stageFetchEntities, err: errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ENTITY_RESOLUTION.Code,
			Message:     errors2.ENTITY_RESOLUTION.Message,
			Description: fmt.Sprintf("Failed to resolve entities for rule: %s", rule.RuleID),
		}, err)}
	}

	filtered := make([]client.Entity, 0, len(entities))
	for _, entity := range entities {
		if rule.EvaluationSpec.EntityStatus != "" && entity.EffectiveStatus != rule.EvaluationSpec.EntityStatus {
			continue
		}
		if change != nil && entity.ID != change.EntityID {
			continue
		}
		filtered = append(filtered, entity)
	}
	if len(filtered) == 0 {
		return nil, map[string]client.Metrics{}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, &stageError{stage: stageFetchMetrics, err: err}
	}

	entityIDs := make([]string, 0, len(filtered))
	for _, entity := range filtered {
		entityIDs = append(entityIDs, entity.ID)
	}
	timePreset := rule.EvaluationSpec.TimePreset
	if timePreset == "" {
		timePreset = model.TimePresetToday
	}
	metrics, err := ev.metaClient.GetInsights(ctx, rule.AccountID, rule.EvaluationSpec.EntityType,
		entityIDs, timePreset)
	if err != nil {
		return nil, nil, &stageError{stage: stageFetchMetrics, err: errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.METRICS_FETCH.Code,
			Message:     errors2.METRICS_FETCH.Message,
			Description: fmt.Sprintf("Failed to fetch metrics for rule: %s", rule.RuleID),
		}, err)}
	}
	return filtered, metrics, nil
}

// executeActions runs the rule's action against every matched entity on a
// bounded worker pool. Entity failures are isolated; one entity failing
// never stops the others.
func (ev *Evaluator) executeActions(ctx context.Context, run *evaluationRun) {

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, ev.maxConcurrentActions)

	for _, entity := range run.matched {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(entity client.Entity) {
			defer wg.Done()
			defer func() { <-semaphore }()

			clamped, err := ev.executeAction(ctx, run.rule, entity)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				run.failed++
				run.failures = append(run.failures, fmt.Sprintf("%s: %v", entity.ID, err))
				return
			}
			run.affected++
			if clamped {
				run.clamped++
			}
		}(entity)
	}
	wg.Wait()
}

func aggregateResult(run *evaluationRun) model.ExecutionResult {

	if run.failed == len(run.matched) {
		return model.ExecutionResultFailed
	}
	if run.failed > 0 || run.clamped > 0 || run.metricGaps > 0 {
		return model.ExecutionResultPartial
	}
	return model.ExecutionResultSuccess
}

// writeLog appends the attempt's outcome to the execution history. The log
// write must never be skipped; if it fails the failure is escalated on the
// system log since the history is now missing an attempt.
func (ev *Evaluator) writeLog(run *evaluationRun, result model.ExecutionResult, stage, note string) {

	details := map[string]interface{}{
		"matched_count": len(run.matched),
	}
	if stage != "" {
		details["failed_stage"] = stage
	}
	if note != "" {
		details["note"] = note
	}
	if run.metricGaps > 0 {
		details["metric_gaps"] = run.metricGaps
	}
	if run.clamped > 0 {
		details["clamped_count"] = run.clamped
	}
	if len(run.failures) > 0 {
		details["entity_failures"] = run.failures
	}

	logEntry := model.ExecutionLog{
		LogID:            uuid.New().String(),
		RuleID:           run.rule.RuleID,
		ExecutedAt:       run.executedAt,
		ActionTaken:      describeAction(run.rule.ExecutionSpec),
		Result:           result,
		EntitiesAffected: run.affected,
		Details:          details,
	}
	if err := ev.logStore.AddExecutionLog(logEntry); err != nil {
		log.GetLogger().Error(fmt.Sprintf("ALERT [%s] execution history lost an attempt for rule: %s",
			errors2.EXECUTION_LOG_WRITE.Code, run.rule.RuleID), log.Error(err))
	}
}

// describeAction renders the execution spec as the action description stored
// in the execution history: budget and bid changes carry their signed
// percentage, move actions the target folder.
func describeAction(spec model.ExecutionSpec) string {

	switch {
	case spec.ExecutionType.IsBudgetOrBidChange():
		if amount, ok := spec.Option(model.ExecutionOptionAmount); ok {
			return fmt.Sprintf("%s %+d%%", spec.ExecutionType, amount.Value)
		}
	case spec.ExecutionType.IsMove():
		if folder, ok := spec.Option(model.ExecutionOptionFolderID); ok {
			return fmt.Sprintf("%s %s", spec.ExecutionType, folder.Text)
		}
	}
	return string(spec.ExecutionType)
}

// matchesFilters evaluates every metric filter against the entity's metrics
// with AND semantics. A metric absent from the map fails its filter.
func matchesFilters(filters []model.Filter, metrics client.Metrics) bool {

	for _, filter := range filters {
		value, ok := metrics[filter.Field]
		if !ok {
			return false
		}
		if !satisfies(filter.Operator, value, filter.Value, filter.UpperValue) {
			return false
		}
	}
	return true
}

func satisfies(operator model.Operator, metric, threshold int64, upper *int64) bool {

	switch operator {
	case model.OperatorGreaterThan:
		return metric > threshold
	case model.OperatorLessThan:
		return metric < threshold
	case model.OperatorEqual:
		return metric == threshold
	case model.OperatorInRange:
		if upper == nil {
			return false
		}
		return metric >= threshold && metric <= *upper
	default:
		return false
	}
}

// triggerCrossed reports whether the stat change moved the watched metric
// across the trigger boundary: the current value satisfies the condition
// and the previous value did not. A repeated satisfying value does not
// re-trigger the rule.
func triggerCrossed(trigger *model.TriggerCondition, change *model.StatChange) bool {

	if trigger == nil || change.Field != trigger.Field {
		return false
	}
	current := satisfies(trigger.Operator, change.Current, trigger.Value, nil)
	previous := satisfies(trigger.Operator, change.Previous, trigger.Value, nil)
	return current && !previous
}
