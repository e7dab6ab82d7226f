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

package model

import "time"

// Notification is one NOTIFICATION action outcome, written to the
// notifications collection for the dashboard to pick up. Delivery to users
// is out of scope of this service.
type Notification struct {
	NotificationID string    `json:"notification_id" bson:"notification_id"`
	AccountID      string    `json:"account_id" bson:"account_id"`
	RuleID         string    `json:"rule_id" bson:"rule_id"`
	RuleName       string    `json:"rule_name" bson:"rule_name"`
	EntityType     string    `json:"entity_type" bson:"entity_type"`
	EntityID       string    `json:"entity_id" bson:"entity_id"`
	EntityName     string    `json:"entity_name" bson:"entity_name"`
	Message        string    `json:"message" bson:"message"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}
