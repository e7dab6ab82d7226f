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

package handler

import (
	"net/http"
	"strconv"

	"github.com/wso2/ads-automation-service/internal/notifications/store"
	"github.com/wso2/ads-automation-service/internal/system/authn"
	"github.com/wso2/ads-automation-service/internal/system/constants"
	"github.com/wso2/ads-automation-service/internal/system/utils"
)

const defaultNotificationLimit = 50

// NotificationsHandler serves the notifications produced by NOTIFICATION
// rule actions.
type NotificationsHandler struct{}

func NewNotificationsHandler() *NotificationsHandler {

	return &NotificationsHandler{}
}

// GetNotifications handles listing the notifications of an ad account,
// newest first. The optional limit query parameter caps the page size.
func (nh *NotificationsHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {

	workspaceID := r.PathValue(constants.PathParamWorkspaceID)
	if err := authn.ValidateRequest(r, workspaceID); err != nil {
		utils.HandleError(w, err)
		return
	}

	limit := int64(defaultNotificationLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	accountID := r.PathValue(constants.PathParamAccountID)
	notifications, err := store.GetNotifications(r.Context(), accountID, limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, notifications)
}
