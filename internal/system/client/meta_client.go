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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wso2/ads-automation-service/internal/rules/model"
	"github.com/wso2/ads-automation-service/internal/system/config"
	errors2 "github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// MetaClientInterface is the contract the rule engine needs from the ads
// platform: read native rules, mutate them, resolve entities, fetch metrics
// and mutate entity status, budget and bid. Every call may fail transiently;
// failures surface as coded server errors and are never assumed away.
type MetaClientInterface interface {
	ListAdRules(ctx context.Context, accountID string) ([]MetaAdRule, error)
	CreateAdRule(ctx context.Context, accountID string, rule MetaAdRule) (string, error)
	UpdateAdRule(ctx context.Context, rule MetaAdRule) error
	DeleteAdRule(ctx context.Context, metaRuleID string) error

	ListEntities(ctx context.Context, accountID string, entityType model.EntityType) ([]Entity, error)
	GetInsights(ctx context.Context, accountID string, entityType model.EntityType,
		entityIDs []string, timePreset string) (map[string]Metrics, error)

	UpdateEntityStatus(ctx context.Context, entityType model.EntityType, entityID, status string) error
	GetEntityBudget(ctx context.Context, entityType model.EntityType, entityID string) (int64, error)
	UpdateEntityBudget(ctx context.Context, entityType model.EntityType, entityID string, budget int64) error
	GetEntityBid(ctx context.Context, entityType model.EntityType, entityID string) (int64, error)
	UpdateEntityBid(ctx context.Context, entityType model.EntityType, entityID string, bid int64) error
}

// MetaClient talks to the Meta Marketing API over HTTPS.
type MetaClient struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	HTTPClient  *http.Client
}

// NewMetaClient creates a MetaClient from the deployment configuration.
func NewMetaClient(cfg config.MetaAPIConfig) *MetaClient {

	log.GetLogger().Info("Creating MetaClient with base URL: " + cfg.BaseURL)

	return &MetaClient{
		BaseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		APIVersion:  cfg.APIVersion,
		AccessToken: cfg.AccessToken,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     60 * time.Second,
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
			},
			Timeout: 30 * time.Second,
		},
	}
}

func (c *MetaClient) endpoint(parts ...string) string {
	return c.BaseURL + "/" + c.APIVersion + "/" + strings.Join(parts, "/")
}

// doRequest issues one API call and decodes the JSON response into out.
// Non-2xx responses become coded server errors carrying the response body.
func (c *MetaClient) doRequest(ctx context.Context, method, endpoint string,
	query url.Values, body interface{}, out interface{}) error {

	logger := log.GetLogger()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.MARSHAL_JSON.Code,
				Message:     errors2.MARSHAL_JSON.Message,
				Description: fmt.Sprintf("Failed to marshal request body for %s %s", method, endpoint),
			}, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.AccessToken)

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+query.Encode(), reqBody)
	if err != nil {
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.META_API_REQUEST.Code,
			Message:     errors2.META_API_REQUEST.Message,
			Description: fmt.Sprintf("Failed to build request for %s %s", method, endpoint),
		}, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		errorMsg := fmt.Sprintf("Request to ads platform failed: %s %s", method, endpoint)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.META_API_REQUEST.Code,
			Message:     errors2.META_API_REQUEST.Message,
			Description: errorMsg,
		}, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.META_API_RESPONSE.Code,
			Message:     errors2.META_API_RESPONSE.Message,
			Description: fmt.Sprintf("Failed to read response body from %s", endpoint),
		}, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorMsg := fmt.Sprintf("Ads platform returned status %d for %s %s: %s",
			resp.StatusCode, method, endpoint, string(respBody))
		logger.Debug(errorMsg)
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.META_API_RESPONSE.Code,
			Message:     errors2.META_API_RESPONSE.Message,
			Description: errorMsg,
		}, nil)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.UNMARSHAL_JSON.Code,
				Message:     errors2.UNMARSHAL_JSON.Message,
				Description: fmt.Sprintf("Failed to decode response from %s", endpoint),
			}, err)
		}
	}
	return nil
}

// ListAdRules reads the platform's current native automation rules for the
// account. Read-only and best effort; callers treat failures as retryable.
func (c *MetaClient) ListAdRules(ctx context.Context, accountID string) ([]MetaAdRule, error) {

	var response struct {
		Data []MetaAdRule `json:"data"`
	}
	endpoint := c.endpoint("act_"+accountID, "adrules_library")
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// CreateAdRule creates a native rule on the platform and returns its id.
func (c *MetaClient) CreateAdRule(ctx context.Context, accountID string, rule MetaAdRule) (string, error) {

	var response struct {
		ID string `json:"id"`
	}
	endpoint := c.endpoint("act_"+accountID, "adrules_library")
	if err := c.doRequest(ctx, http.MethodPost, endpoint, nil, rule, &response); err != nil {
		return "", err
	}
	return response.ID, nil
}

// UpdateAdRule overwrites a native rule on the platform.
func (c *MetaClient) UpdateAdRule(ctx context.Context, rule MetaAdRule) error {

	endpoint := c.endpoint(rule.ID)
	return c.doRequest(ctx, http.MethodPost, endpoint, nil, rule, nil)
}

// DeleteAdRule removes a native rule from the platform.
func (c *MetaClient) DeleteAdRule(ctx context.Context, metaRuleID string) error {

	endpoint := c.endpoint(metaRuleID)
	return c.doRequest(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}

var entityEdges = map[model.EntityType]string{
	model.EntityTypeCampaign: "campaigns",
	model.EntityTypeAdset:    "adsets",
	model.EntityTypeAd:       "ads",
}

// ListEntities resolves the concrete entity set of the given type under the
// account.
func (c *MetaClient) ListEntities(ctx context.Context, accountID string,
	entityType model.EntityType) ([]Entity, error) {

	edge, ok := entityEdges[entityType]
	if !ok {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ENTITY_RESOLUTION.Code,
			Message:     errors2.ENTITY_RESOLUTION.Message,
			Description: fmt.Sprintf("Unknown entity type: %s", entityType),
		}, nil)
	}

	query := url.Values{}
	query.Set("fields", "id,name,effective_status")

	var response struct {
		Data []Entity `json:"data"`
	}
	endpoint := c.endpoint("act_"+accountID, edge)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetInsights fetches metrics for the given entities aggregated over the
// time preset window. Entities missing from the response are simply absent
// from the returned map; the evaluator tolerates gaps.
func (c *MetaClient) GetInsights(ctx context.Context, accountID string, entityType model.EntityType,
	entityIDs []string, timePreset string) (map[string]Metrics, error) {

	query := url.Values{}
	query.Set("level", strings.ToLower(string(entityType)))
	query.Set("date_preset", strings.ToLower(timePreset))
	query.Set("filtering", fmt.Sprintf(`[{"field":"%s.id","operator":"IN","value":[%s]}]`,
		strings.ToLower(string(entityType)), `"`+strings.Join(entityIDs, `","`)+`"`))

	var response struct {
		Data []struct {
			EntityID string  `json:"entity_id"`
			Metrics  Metrics `json:"metrics"`
		} `json:"data"`
	}
	endpoint := c.endpoint("act_"+accountID, "insights")
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, &response); err != nil {
		return nil, err
	}

	insights := make(map[string]Metrics, len(response.Data))
	for _, row := range response.Data {
		insights[row.EntityID] = row.Metrics
	}
	return insights, nil
}

// UpdateEntityStatus sets the entity's status. The platform treats setting
// an entity to its current status as a no-op, so the call is idempotent.
func (c *MetaClient) UpdateEntityStatus(ctx context.Context, entityType model.EntityType,
	entityID, status string) error {

	body := map[string]string{"status": status}
	return c.doRequest(ctx, http.MethodPost, c.endpoint(entityID), nil, body, nil)
}

// GetEntityBudget reads the entity's current daily budget in minor units.
func (c *MetaClient) GetEntityBudget(ctx context.Context, entityType model.EntityType,
	entityID string) (int64, error) {

	query := url.Values{}
	query.Set("fields", "daily_budget")

	var response struct {
		DailyBudget int64 `json:"daily_budget,string"`
	}
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(entityID), query, nil, &response); err != nil {
		return 0, err
	}
	return response.DailyBudget, nil
}

// UpdateEntityBudget writes a new absolute daily budget in minor units.
func (c *MetaClient) UpdateEntityBudget(ctx context.Context, entityType model.EntityType,
	entityID string, budget int64) error {

	body := map[string]string{"daily_budget": fmt.Sprintf("%d", budget)}
	return c.doRequest(ctx, http.MethodPost, c.endpoint(entityID), nil, body, nil)
}

// GetEntityBid reads the entity's current bid amount in minor units.
func (c *MetaClient) GetEntityBid(ctx context.Context, entityType model.EntityType,
	entityID string) (int64, error) {

	query := url.Values{}
	query.Set("fields", "bid_amount")

	var response struct {
		BidAmount int64 `json:"bid_amount"`
	}
	if err := c.doRequest(ctx, http.MethodGet, c.endpoint(entityID), query, nil, &response); err != nil {
		return 0, err
	}
	return response.BidAmount, nil
}

// UpdateEntityBid writes a new absolute bid amount in minor units.
func (c *MetaClient) UpdateEntityBid(ctx context.Context, entityType model.EntityType,
	entityID string, bid int64) error {

	body := map[string]int64{"bid_amount": bid}
	return c.doRequest(ctx, http.MethodPost, c.endpoint(entityID), nil, body, nil)
}
