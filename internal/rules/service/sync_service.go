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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/client"
	"github.com/wso2/ads-automation-service/internal/system/database/lock"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// SyncServiceInterface reconciles the local mirror of externally managed
// rules against the platform's rule library.
type SyncServiceInterface interface {
	SyncFromMeta(ctx context.Context, accountID, workspaceID string) (*model.SyncResult, error)
}

// SyncService serialises reconciliation per account with a distributed lock
// so concurrent sync requests for the same account cannot interleave.
type SyncService struct {
	ruleStore  RuleStore
	metaClient client.MetaClientInterface
	lock       lock.DistributedLock
}

// GetSyncService creates a sync service backed by the real store, the
// configured Meta client and the Postgres advisory lock.
func GetSyncService(metaClient client.MetaClientInterface) SyncServiceInterface {

	return &SyncService{
		ruleStore:  defaultRuleStore{},
		metaClient: metaClient,
		lock:       lock.NewPostgresLock(),
	}
}

func syncLockResource(accountID string) string {
	return "rule_sync:" + accountID
}

// SyncFromMeta pulls the platform's native rules for the account and
// reconciles the local mirror: unseen rules are inserted, drifted rules are
// overwritten with the platform state, and mirrored rules that no longer
// exist on the platform are soft-deleted. LOCAL rules and evaluation
// bookkeeping are never touched. A platform read failure aborts the run
// before any local write.
func (ss *SyncService) SyncFromMeta(ctx context.Context, accountID, workspaceID string) (*model.SyncResult, error) {

	logger := log.GetLogger()

	acquired, err := ss.lock.Acquire(syncLockResource(accountID))
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.SYNC_IN_PROGRESS.Code,
			Message:     errors2.SYNC_IN_PROGRESS.Message,
			Description: fmt.Sprintf("A rule sync for account: %s is already running.", accountID),
		}, http.StatusConflict)
	}
	defer func() {
		if err := ss.lock.Release(syncLockResource(accountID)); err != nil {
			logger.Error("Failed to release rule sync lock for account: "+accountID, log.Error(err))
		}
	}()

	externalRules, err := ss.metaClient.ListAdRules(ctx, accountID)
	if err != nil {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.RULE_SYNC.Code,
			Message:     errors2.RULE_SYNC.Message,
			Description: fmt.Sprintf("Failed to list platform rules for account: %s", accountID),
		}, err)
	}

	mirrored, err := ss.ruleStore.GetMirroredRules(accountID)
	if err != nil {
		return nil, err
	}
	mirrorByMetaID := make(map[string]model.Rule, len(mirrored))
	for _, rule := range mirrored {
		if rule.MetaRuleID != nil {
			mirrorByMetaID[*rule.MetaRuleID] = rule
		}
	}

	result := &model.SyncResult{}
	seen := make(map[string]bool, len(externalRules))

	for _, external := range externalRules {
		if err := ctx.Err(); err != nil {
			return nil, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.RULE_SYNC.Code,
				Message:     errors2.RULE_SYNC.Message,
				Description: fmt.Sprintf("Rule sync for account: %s cancelled.", accountID),
			}, err)
		}
		seen[external.ID] = true

		incoming := client.ToLocalRule(external, accountID, workspaceID)
		existing, known := mirrorByMetaID[external.ID]
		if !known {
			incoming.RuleID = uuid.New().String()
			now := time.Now().UTC()
			incoming.CreatedAt = now
			incoming.UpdatedAt = now
			if err := ss.ruleStore.AddRule(incoming); err != nil {
				return nil, err
			}
			result.CreatedCount++
			continue
		}

		if !ruleDrifted(existing, incoming) {
			continue
		}
		// Last writer wins: the platform state overwrites local edits.
		existing.Name = incoming.Name
		existing.Status = incoming.Status
		existing.TriggerType = incoming.TriggerType
		existing.EvaluationSpec = incoming.EvaluationSpec
		existing.ExecutionSpec = incoming.ExecutionSpec
		if err := ss.ruleStore.UpdateRule(existing); err != nil {
			return nil, err
		}
		result.UpdatedCount++
	}

	for metaRuleID, rule := range mirrorByMetaID {
		if seen[metaRuleID] || rule.Status == model.RuleStatusDeleted {
			continue
		}
		if err := ss.ruleStore.UpdateRuleStatus(rule.RuleID, model.RuleStatusDeleted); err != nil {
			return nil, err
		}
		result.DeletedCount++
	}

	logger.Info(fmt.Sprintf("Rule sync completed for account: %s.", accountID),
		log.Int("created", result.CreatedCount), log.Int("updated", result.UpdatedCount),
		log.Int("deleted", result.DeletedCount))
	return result, nil
}

// ruleDrifted reports whether the platform state of a mirrored rule differs
// from the stored mirror in any field the sync owns.
func ruleDrifted(existing, incoming model.Rule) bool {

	return existing.Name != incoming.Name ||
		existing.Status != incoming.Status ||
		existing.TriggerType != incoming.TriggerType ||
		!specsEqual(existing.EvaluationSpec, incoming.EvaluationSpec) ||
		!specsEqual(existing.ExecutionSpec, incoming.ExecutionSpec)
}

// specsEqual compares two spec values through their JSON encoding. Stored
// specs round-trip through jsonb columns, which erases the difference
// between nil and empty option slices, so the encoded form is the only
// representation the store actually preserves.
func specsEqual(existing, incoming interface{}) bool {

	existingBytes, err := json.Marshal(existing)
	if err != nil {
		return false
	}
	incomingBytes, err := json.Marshal(incoming)
	if err != nil {
		return false
	}
	return bytes.Equal(existingBytes, incomingBytes)
}
