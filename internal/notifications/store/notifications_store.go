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

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wso2/ads-automation-service/internal/notifications/model"
	mongodb "github.com/wso2/ads-automation-service/internal/system/database/mongo"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

const notificationsCollection = "notifications"

// AddNotification inserts one notification document.
func AddNotification(ctx context.Context, notification model.Notification) error {

	logger := log.GetLogger()
	database, err := mongodb.GetDatabase()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get mongo database for notification of rule: %s",
			notification.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_NOTIFICATION.Code,
			Message:     errors2.ADD_NOTIFICATION.Message,
			Description: errorMsg,
		}, err)
	}

	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = database.Collection(notificationsCollection).InsertOne(insertCtx, notification)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to insert notification for rule: %s", notification.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_NOTIFICATION.Code,
			Message:     errors2.ADD_NOTIFICATION.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetNotifications fetches the notifications of an account, newest first.
func GetNotifications(ctx context.Context, accountID string, limit int64) ([]model.Notification, error) {

	logger := log.GetLogger()
	database, err := mongodb.GetDatabase()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get mongo database for notifications of account: %s", accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_NOTIFICATIONS.Code,
			Message:     errors2.FETCH_NOTIFICATIONS.Message,
			Description: errorMsg,
		}, err)
	}

	findCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := database.Collection(notificationsCollection).Find(findCtx,
		bson.M{"account_id": accountID}, opts)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch notifications for account: %s", accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_NOTIFICATIONS.Code,
			Message:     errors2.FETCH_NOTIFICATIONS.Message,
			Description: errorMsg,
		}, err)
	}
	defer cursor.Close(findCtx)

	var notifications []model.Notification
	if err := cursor.All(findCtx, &notifications); err != nil {
		errorMsg := fmt.Sprintf("Failed to decode notifications for account: %s", accountID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_NOTIFICATIONS.Code,
			Message:     errors2.FETCH_NOTIFICATIONS.Message,
			Description: errorMsg,
		}, err)
	}
	return notifications, nil
}
