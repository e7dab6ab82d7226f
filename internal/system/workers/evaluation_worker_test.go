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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

func TestMain(m *testing.M) {
	if err := log.Init("ERROR"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestEnqueueEvaluationJobUninitializedQueue(t *testing.T) {

	saved := EvaluationQueue
	defer func() { EvaluationQueue = saved }()
	EvaluationQueue = nil

	assert.False(t, EnqueueEvaluationJob(EvaluationJob{RuleID: "rule-1"}))
}

func TestEnqueueEvaluationJobFullQueueDropsJob(t *testing.T) {

	saved := EvaluationQueue
	defer func() { EvaluationQueue = saved }()
	EvaluationQueue = make(chan EvaluationJob, 1)

	assert.True(t, EnqueueEvaluationJob(EvaluationJob{RuleID: "rule-1"}))
	// The queue is full; the drop must not block the caller.
	assert.False(t, EnqueueEvaluationJob(EvaluationJob{RuleID: "rule-2"}))

	queued := <-EvaluationQueue
	assert.Equal(t, "rule-1", queued.RuleID)
}
