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

package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/provider"
	"github.com/wso2/ads-automation-service/internal/rules/store"
	"github.com/wso2/ads-automation-service/internal/system/config"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// EvaluationJob is one unit of evaluation work. Change is nil for scheduler
// ticks and carries the triggering stat change for REALTIME dispatch.
type EvaluationJob struct {
	RuleID string
	Change *model.StatChange
}

var EvaluationQueue chan EvaluationJob
var startOnce sync.Once

const defaultQueueSize = 1000

// StartEvaluationWorker initializes and starts the evaluation worker.
// Safe to call multiple times; the worker starts once.
func StartEvaluationWorker() {

	startOnce.Do(func() {
		queueSize := config.GetADSRuntime().Config.Scheduler.QueueSize
		if queueSize <= 0 {
			queueSize = defaultQueueSize
		}
		EvaluationQueue = make(chan EvaluationJob, queueSize)

		go func() {
			for job := range EvaluationQueue {
				processEvaluationJob(job)
			}
		}()
	})
}

// EnqueueEvaluationJob adds an evaluation job to the queue. The send is
// non-blocking; a full queue drops the job and reports false, the next
// scheduler sweep will pick the rule up again.
func EnqueueEvaluationJob(job EvaluationJob) bool {

	if EvaluationQueue == nil {
		log.GetLogger().Error("Evaluation queue is not initialized. Cannot enqueue job.")
		return false
	}

	select {
	case EvaluationQueue <- job:
		return true
	default:
		log.GetLogger().Error(fmt.Sprintf("Evaluation queue is full. Dropping job for rule: %s",
			job.RuleID))
		return false
	}
}

// DispatchStatChange fans a stat change event out to the ACTIVE REALTIME
// rules watching the changed entity's account and entity type.
func DispatchStatChange(change model.StatChange) {

	logger := log.GetLogger()

	rules, err := store.GetActiveRulesByTrigger(model.TriggerTypeRealtime)
	if err != nil {
		logger.Error("Failed to fetch realtime rules for stat change dispatch.", log.Error(err))
		return
	}

	for _, rule := range rules {
		if rule.AccountID != change.AccountID {
			continue
		}
		if rule.EvaluationSpec.EntityType != change.EntityType {
			continue
		}
		if rule.EvaluationSpec.Trigger == nil || rule.EvaluationSpec.Trigger.Field != change.Field {
			continue
		}
		change := change
		EnqueueEvaluationJob(EvaluationJob{RuleID: rule.RuleID, Change: &change})
	}
}

func processEvaluationJob(job EvaluationJob) {

	logger := log.GetLogger()
	timeoutSec := config.GetADSRuntime().Config.Scheduler.EvaluationTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	evaluator := provider.NewRuleProvider().GetEvaluator()
	if err := evaluator.EvaluateRule(ctx, job.RuleID, job.Change); err != nil {
		logger.Error(fmt.Sprintf("Evaluation attempt failed for rule: %s", job.RuleID), log.Error(err))
	}
}
