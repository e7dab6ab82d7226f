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

package errors

const errorPrefix = "ADS-"

var (
	// Server error codes

	ADD_AUTOMATION_RULE = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while adding automation rule.",
	}

	FETCH_AUTOMATION_RULES = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while fetching automation rule(s).",
	}

	UPDATE_AUTOMATION_RULE = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while updating automation rule.",
	}

	DELETE_AUTOMATION_RULE = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while deleting automation rule.",
	}

	ADD_EXECUTION_LOG = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while adding execution log entry.",
	}

	FETCH_EXECUTION_LOGS = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while fetching execution logs.",
	}

	UPDATE_RULE_BOOKKEEPING = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while updating rule execution bookkeeping.",
	}

	META_API_REQUEST = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Request to the ads platform failed.",
	}

	META_API_RESPONSE = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Unexpected response from the ads platform.",
	}

	RULE_SYNC = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Error while synchronizing automation rules.",
	}

	ENTITY_RESOLUTION = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Error while resolving target entities for evaluation.",
	}

	METRICS_FETCH = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error while fetching entity metrics.",
	}

	ACTION_EXECUTION = ErrorMessage{
		Code:    errorPrefix + "15013",
		Message: "Error while executing rule action.",
	}

	EXECUTION_LOG_WRITE = ErrorMessage{
		Code:    errorPrefix + "15014",
		Message: "Execution log write failed. Audit trail is incomplete.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15015",
		Message: "Advisory lock acquisition failed",
	}

	LOCK_RELEASE = ErrorMessage{
		Code:    errorPrefix + "15016",
		Message: "Error while releasing the lock.",
	}

	LOCK_KEY_GEN = ErrorMessage{
		Code:    errorPrefix + "15017",
		Message: "Error generating advisory lock key",
	}

	LOCK_RESULT_INVALID = ErrorMessage{
		Code:    errorPrefix + "15018",
		Message: "Invalid response from advisory lock query.",
	}

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15019",
		Message: "Unable to initialize database client.",
	}

	MARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15020",
		Message: "Error while marshalling JSON.",
	}

	UNMARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15021",
		Message: "Error while un-marshalling JSON.",
	}

	ADD_NOTIFICATION = ErrorMessage{
		Code:    errorPrefix + "15022",
		Message: "Error while recording notification.",
	}

	FOLDER_ASSIGN = ErrorMessage{
		Code:    errorPrefix + "15023",
		Message: "Error while assigning entity to folder.",
	}

	PARSING_ERROR = ErrorMessage{
		Code:    errorPrefix + "15024",
		Message: "Parsing token failed.",
	}

	FETCH_NOTIFICATIONS = ErrorMessage{
		Code:    errorPrefix + "15025",
		Message: "Error while fetching notifications.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "Invalid body format.",
	}

	UN_AUTHORIZED = ErrorMessage{
		Code:        errorPrefix + "11002",
		Message:     "Unauthorized",
		Description: "Authorization failure. Authorization information was invalid or missing from your request.",
	}

	RULE_NOT_FOUND = ErrorMessage{
		Code:        errorPrefix + "11003",
		Message:     "Automation rule not found.",
		Description: "No automation rule found for the provided rule_id.",
	}

	RULE_VALIDATION = ErrorMessage{
		Code:    errorPrefix + "11004",
		Message: "Automation rule validation failed.",
	}

	RULE_TYPE_MISMATCH = ErrorMessage{
		Code:        errorPrefix + "11005",
		Message:     "Rule type and meta_rule_id are inconsistent.",
		Description: "meta_rule_id must be set for EXTERNAL_NATIVE rules and absent for LOCAL rules.",
	}

	SYNC_IN_PROGRESS = ErrorMessage{
		Code:        errorPrefix + "11006",
		Message:     "A rule synchronization is already running for this account.",
		Description: "Retry once the current synchronization completes.",
	}

	RULE_NOT_TOGGLEABLE = ErrorMessage{
		Code:        errorPrefix + "11007",
		Message:     "Rule cannot be toggled.",
		Description: "Only ACTIVE or PAUSED rules can be toggled.",
	}

	RULE_ALREADY_PROMOTED = ErrorMessage{
		Code:        errorPrefix + "11008",
		Message:     "Rule is already mirrored on the ads platform.",
		Description: "Only LOCAL rules can be promoted.",
	}
)
