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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/ads-automation-service/internal/system/database/lock"
)

func TestAdvisoryLockHeldAcrossAcquireAndRelease(t *testing.T) {

	first := lock.NewPostgresLock()
	second := lock.NewPostgresLock()

	acquired, err := first.Acquire("rule_sync:lock-acct-1")
	require.NoError(t, err)
	require.True(t, acquired)

	// While the first holder's session is open, the same key cannot be
	// taken by another session.
	blocked, err := second.Acquire("rule_sync:lock-acct-1")
	require.NoError(t, err)
	assert.False(t, blocked)

	// A different key is independent.
	other, err := second.Acquire("rule_sync:lock-acct-2")
	require.NoError(t, err)
	assert.True(t, other)
	require.NoError(t, second.Release("rule_sync:lock-acct-2"))

	// Release must succeed without errors: the unlock runs on the same
	// session that took the lock.
	require.NoError(t, first.Release("rule_sync:lock-acct-1"))

	// After release the key is free again.
	reacquired, err := second.Acquire("rule_sync:lock-acct-1")
	require.NoError(t, err)
	assert.True(t, reacquired)
	require.NoError(t, second.Release("rule_sync:lock-acct-1"))
}

func TestAdvisoryLockReleaseWithoutAcquireFails(t *testing.T) {

	unheld := lock.NewPostgresLock()
	assert.Error(t, unheld.Release("rule_sync:never-held"))
}
