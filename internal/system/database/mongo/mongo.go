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

package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wso2/ads-automation-service/internal/system/config"
)

var (
	database *mongo.Database
	initOnce sync.Once
	initErr  error
)

// GetDatabase returns the shared Mongo database handle used for the
// notifications collection. Connection is established lazily on first use.
func GetDatabase() (*mongo.Database, error) {

	initOnce.Do(func() {
		cfg := config.GetADSRuntime().Config.Mongo

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			initErr = fmt.Errorf("failed to connect to mongo: %w", err)
			return
		}
		if err := mongoClient.Ping(ctx, nil); err != nil {
			initErr = fmt.Errorf("failed to ping mongo: %w", err)
			return
		}
		database = mongoClient.Database(cfg.Database)
	})

	return database, initErr
}
