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
	"time"

	"github.com/google/uuid"
	notificationmodel "github.com/wso2/ads-automation-service/internal/notifications/model"
	notificationstore "github.com/wso2/ads-automation-service/internal/notifications/store"
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/store"
	"github.com/wso2/ads-automation-service/internal/system/client"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
)

// FolderStore is the local folder-assignment surface used by MOVE actions.
type FolderStore interface {
	AssignEntityFolder(accountID string, entityType model.EntityType, entityID, folderID string) error
}

// Notifier sinks NOTIFICATION action outcomes.
type Notifier interface {
	Notify(ctx context.Context, notification notificationmodel.Notification) error
}

type defaultFolderStore struct{}

func (defaultFolderStore) AssignEntityFolder(accountID string, entityType model.EntityType,
	entityID, folderID string) error {
	return store.AssignEntityFolder(accountID, entityType, entityID, folderID)
}

type defaultNotifier struct{}

func (defaultNotifier) Notify(ctx context.Context, notification notificationmodel.Notification) error {
	return notificationstore.AddNotification(ctx, notification)
}

// executeAction applies the rule's action to one matched entity. The clamped
// flag reports that a budget or bid change hit the platform floor and the
// applied value differs from the requested one.
func (ev *Evaluator) executeAction(ctx context.Context, rule model.Rule, entity client.Entity) (bool, error) {

	entityType := rule.EvaluationSpec.EntityType

	switch rule.ExecutionSpec.ExecutionType {
	case model.ExecutionTypePause:
		// Pausing an already paused entity is a platform no-op.
		return false, ev.metaClient.UpdateEntityStatus(ctx, entityType, entity.ID, client.EntityStatusPaused)

	case model.ExecutionTypeUnpause:
		return false, ev.metaClient.UpdateEntityStatus(ctx, entityType, entity.ID, client.EntityStatusActive)

	case model.ExecutionTypeNotification:
		option, _ := rule.ExecutionSpec.Option(model.ExecutionOptionMessage)
		notification := notificationmodel.Notification{
			NotificationID: uuid.New().String(),
			AccountID:      rule.AccountID,
			RuleID:         rule.RuleID,
			RuleName:       rule.Name,
			EntityType:     string(entityType),
			EntityID:       entity.ID,
			EntityName:     entity.Name,
			Message:        option.Text,
			CreatedAt:      time.Now().UTC(),
		}
		return false, ev.notifier.Notify(ctx, notification)

	case model.ExecutionTypeIncreaseDailyBudgetBy, model.ExecutionTypeDecreaseDailyBudgetBy:
		return ev.applyBudgetChange(ctx, rule, entityType, entity.ID)

	case model.ExecutionTypeIncreaseBidBy, model.ExecutionTypeDecreaseBidBy:
		return ev.applyBidChange(ctx, rule, entityType, entity.ID)

	case model.ExecutionTypeMoveToFolder, model.ExecutionTypeMoveCreative:
		option, _ := rule.ExecutionSpec.Option(model.ExecutionOptionFolderID)
		return false, ev.folderStore.AssignEntityFolder(rule.AccountID, entityType, entity.ID, option.Text)

	default:
		return false, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ACTION_EXECUTION.Code,
			Message:     errors2.ACTION_EXECUTION.Message,
			Description: fmt.Sprintf("Unknown execution type: %s on rule: %s",
				rule.ExecutionSpec.ExecutionType, rule.RuleID),
		}, nil)
	}
}

// applyBudgetChange adjusts the entity's daily budget by the rule's signed
// percentage. The result is clamped to the configured platform minimum, so
// a -100% rule floors the budget instead of zeroing it.
func (ev *Evaluator) applyBudgetChange(ctx context.Context, rule model.Rule,
	entityType model.EntityType, entityID string) (bool, error) {

	option, _ := rule.ExecutionSpec.Option(model.ExecutionOptionAmount)

	current, err := ev.metaClient.GetEntityBudget(ctx, entityType, entityID)
	if err != nil {
		return false, err
	}

	adjusted := applyPercentage(current, option.Value)
	clamped := false
	if adjusted < ev.minBudget {
		adjusted = ev.minBudget
		clamped = true
	}
	if adjusted == current {
		return clamped, nil
	}
	return clamped, ev.metaClient.UpdateEntityBudget(ctx, entityType, entityID, adjusted)
}

// applyBidChange adjusts the entity's bid by the rule's signed percentage,
// clamped to one minor unit so the bid never reaches zero.
func (ev *Evaluator) applyBidChange(ctx context.Context, rule model.Rule,
	entityType model.EntityType, entityID string) (bool, error) {

	option, _ := rule.ExecutionSpec.Option(model.ExecutionOptionAmount)

	current, err := ev.metaClient.GetEntityBid(ctx, entityType, entityID)
	if err != nil {
		return false, err
	}

	adjusted := applyPercentage(current, option.Value)
	clamped := false
	if adjusted < 1 {
		adjusted = 1
		clamped = true
	}
	if adjusted == current {
		return clamped, nil
	}
	return clamped, ev.metaClient.UpdateEntityBid(ctx, entityType, entityID, adjusted)
}

// applyPercentage computes value adjusted by a signed integer percentage in
// int64 arithmetic. Truncation toward zero keeps the result conservative.
func applyPercentage(value, percent int64) int64 {

	return value + value*percent/100
}
