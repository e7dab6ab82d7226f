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

package schedulers

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/store"
	"github.com/wso2/ads-automation-service/internal/system/config"
	"github.com/wso2/ads-automation-service/internal/system/log"
	"github.com/wso2/ads-automation-service/internal/system/workers"
)

// StartRuleEvaluationScheduler starts the cron loop that sweeps ACTIVE
// SCHEDULE rules into the evaluation queue. Returns the cron runner so the
// caller can stop it on shutdown.
func StartRuleEvaluationScheduler() (*cron.Cron, error) {

	logger := log.GetLogger()
	schedulerConfig := config.GetADSRuntime().Config.Scheduler

	cronSpec := schedulerConfig.CronSpec
	if cronSpec == "" {
		cronSpec = "@every 15m"
	}

	runner := cron.New()
	_, err := runner.AddFunc(cronSpec, sweepScheduledRules)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler cron spec %q: %w", cronSpec, err)
	}
	runner.Start()
	logger.Info("Rule evaluation scheduler started with spec: " + cronSpec)
	return runner, nil
}

// sweepScheduledRules enqueues every ACTIVE SCHEDULE rule for evaluation.
// PAUSED and DELETED rules never reach the queue.
func sweepScheduledRules() {

	logger := log.GetLogger()

	rules, err := store.GetActiveRulesByTrigger(model.TriggerTypeSchedule)
	if err != nil {
		logger.Error("Scheduled rule sweep failed to list active rules.", log.Error(err))
		return
	}

	enqueued := 0
	for _, rule := range rules {
		if workers.EnqueueEvaluationJob(workers.EvaluationJob{RuleID: rule.RuleID}) {
			enqueued++
		}
	}
	logger.Debug(fmt.Sprintf("Scheduled rule sweep enqueued %d of %d rules.", enqueued, len(rules)))
}
