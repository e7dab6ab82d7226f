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

package authn

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wso2/ads-automation-service/internal/system/config"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

func unauthorizedError(description string) *errors2.ClientError {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.UN_AUTHORIZED.Code,
		Message:     errors2.UN_AUTHORIZED.Message,
		Description: description,
	}, http.StatusUnauthorized)
}

// ValidateRequest authenticates the Bearer token of an API request and
// checks that the token was issued for the workspace in the request path.
func ValidateRequest(r *http.Request, workspaceID string) error {

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorizedError("Missing or invalid Authorization header.")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := validateToken(token)
	if err != nil {
		return err
	}
	return validateWorkspaceClaim(claims, workspaceID)
}

// validateToken verifies the HMAC signature, expiry and audience of the JWT.
func validateToken(tokenString string) (jwt.MapClaims, error) {

	logger := log.GetLogger()
	authConfig := config.GetADSRuntime().Config.Auth

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(authConfig.JWTSecret), nil
	}, jwt.WithAudience(authConfig.Audience), jwt.WithExpirationRequired())
	if err != nil {
		logger.Debug("Token validation failed.", log.Error(err))
		return nil, unauthorizedError("Invalid or expired token.")
	}
	return claims, nil
}

func validateWorkspaceClaim(claims jwt.MapClaims, workspaceID string) error {

	logger := log.GetLogger()
	workspaceClaim, ok := claims["workspace_id"].(string)
	if !ok || workspaceClaim != workspaceID {
		logger.Debug("Token does not carry the expected workspace_id claim.",
			log.String("workspace_id", workspaceID))
		return unauthorizedError("Token is not valid for this workspace.")
	}
	return nil
}
