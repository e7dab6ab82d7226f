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

package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/wso2/ads-automation-service/internal/system/config"
	"github.com/wso2/ads-automation-service/internal/system/constants"
	"github.com/wso2/ads-automation-service/internal/system/log"
	"github.com/wso2/ads-automation-service/internal/system/managers"
	"github.com/wso2/ads-automation-service/internal/system/schedulers"
	"github.com/wso2/ads-automation-service/internal/system/workers"
)

func main() {

	adsHome := getADSHome()
	const configFile = "/repository/conf/deployment.yaml"

	envFiles, _ := filepath.Glob("config/*.env")
	_ = godotenv.Load(envFiles...)

	adsConfig, err := config.LoadConfig(adsHome, configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.InitializeADSRuntime(adsHome, adsConfig); err != nil {
		stdlog.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := log.Init(adsConfig.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	// Start the evaluation queue before anything can enqueue into it.
	workers.StartEvaluationWorker()

	if adsConfig.Scheduler.Enabled {
		if _, err := schedulers.StartRuleEvaluationScheduler(); err != nil {
			logger.Fatal("Failed to start rule evaluation scheduler.", log.Error(err))
		}
	} else {
		logger.Warn("Rule evaluation scheduler is disabled; SCHEDULE rules will not run.")
	}

	mux := initMultiplexer()
	serverAddr := fmt.Sprintf("%s:%d", adsConfig.Addr.Host, adsConfig.Addr.Port)

	listener, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener on "+serverAddr, log.Error(err))
	}
	logger.Info("WSO2 ads automation service started on: " + serverAddr)

	server := &http.Server{Handler: enableCORS(mux, adsConfig.Auth.CORSAllowedOrigins)}
	if err := server.Serve(listener); err != nil {
		logger.Fatal("Failed to serve requests.", log.Error(err))
	}
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)
	if err := serviceManager.RegisterServices(constants.APIBasePath); err != nil {
		log.GetLogger().Fatal("Failed to register the services.", log.Error(err))
	}
	return mux
}

func enableCORS(next http.Handler, allowedOrigins []string) http.Handler {

	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSuffix(origin, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getADSHome() string {

	projectHomeFlag := flag.String("adsHome", "", "Path to the ads automation service home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		return *projectHomeFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		stdlog.Fatalf("Failed to get current working directory: %v", err)
	}
	return dir
}
