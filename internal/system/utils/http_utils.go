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

package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	customerrors "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// HandleError sends an HTTP error response based on the provided error.
// Client errors surface their coded message; server errors are logged and
// collapse into an opaque 500 so internals never leak to callers.
func HandleError(w http.ResponseWriter, err error) {

	w.Header().Set("Content-Type", "application/json")

	var clientError *customerrors.ClientError
	if errors.As(err, &clientError) {
		w.WriteHeader(clientError.StatusCode)
		_ = json.NewEncoder(w).Encode(clientError.ErrorMessage)
		return
	}

	var serverError *customerrors.ServerError
	if errors.As(err, &serverError) {
		log.GetLogger().Error(serverError.Error())
	} else {
		log.GetLogger().Error("Unhandled error in request handling.", log.Error(err))
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "Internal server error",
	})
}

// WriteJSONResponse writes a JSON body with the given status code.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, payload interface{}) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
