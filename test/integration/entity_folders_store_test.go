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
	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/rules/store"
)

func assignedFolder(t *testing.T, accountID string, entityType model.EntityType, entityID string) string {

	t.Helper()
	var folderID string
	err := pg.DB.QueryRow(
		`SELECT folder_id FROM entity_folders WHERE account_id=$1 AND entity_type=$2 AND entity_id=$3`,
		accountID, string(entityType), entityID).Scan(&folderID)
	require.NoError(t, err)
	return folderID
}

func TestEntityFolderAssignmentUpsert(t *testing.T) {

	accountID := "acct-folders"

	require.NoError(t, store.AssignEntityFolder(accountID, model.EntityTypeCampaign, "c-1", "folder-1"))
	assert.Equal(t, "folder-1", assignedFolder(t, accountID, model.EntityTypeCampaign, "c-1"))

	// Reassigning the same entity moves it; there is at most one folder per
	// entity within an account.
	require.NoError(t, store.AssignEntityFolder(accountID, model.EntityTypeCampaign, "c-1", "folder-2"))
	assert.Equal(t, "folder-2", assignedFolder(t, accountID, model.EntityTypeCampaign, "c-1"))

	// The same entity id under another entity type is a distinct assignment.
	require.NoError(t, store.AssignEntityFolder(accountID, model.EntityTypeAd, "c-1", "folder-3"))
	assert.Equal(t, "folder-2", assignedFolder(t, accountID, model.EntityTypeCampaign, "c-1"))
	assert.Equal(t, "folder-3", assignedFolder(t, accountID, model.EntityTypeAd, "c-1"))
}
