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
	"fmt"
	"time"

	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/database/provider"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// AssignEntityFolder moves an entity into a workspace folder. Folder
// membership lives only in this service; the ads platform has no notion
// of folders, which is why MOVE actions are restricted to local rules.
func AssignEntityFolder(accountID string, entityType model.EntityType, entityID, folderID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for assigning folder to entity: %s", entityID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FOLDER_ASSIGN.Code,
			Message:     errors2.FOLDER_ASSIGN.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := `INSERT INTO entity_folders (account_id, entity_type, entity_id, folder_id, assigned_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (account_id, entity_type, entity_id)
		DO UPDATE SET folder_id = EXCLUDED.folder_id, assigned_at = EXCLUDED.assigned_at`

	_, err = dbClient.ExecuteQuery(query, accountID, entityType, entityID, folderID, time.Now().UTC())
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to assign entity: %s to folder: %s.", entityID, folderID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FOLDER_ASSIGN.Code,
			Message:     errors2.FOLDER_ASSIGN.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}
