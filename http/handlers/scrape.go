/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/comcast/ilohwmetrics/common"
	"github.com/comcast/ilohwmetrics/exporter"
	"github.com/comcast/ilohwmetrics/middleware/logging"
	"github.com/comcast/ilohwmetrics/redfish"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScrapeConfig holds configuration for scrape handlers
type ScrapeConfig struct {
	// DefaultTarget is used when the request carries no target, normally
	// the address discovered from the local BMC at startup.
	DefaultTarget string
	ChassisIDs    []string
	Creds         *common.ChassisCredentials
	// Proxy is used when the request carries no proxy_host
	Proxy string
}

// ScrapeHandler handles GET /scrape requests
func ScrapeHandler(cfg *ScrapeConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler(r.Context(), w, r, cfg)
	}
}

func handler(ctx context.Context, w http.ResponseWriter, r *http.Request, cfg *ScrapeConfig) {
	log := zap.L()
	query := r.URL.Query()

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	target := query.Get("target")
	if len(query["target"]) > 1 {
		log.Error("'target' parameter not set correctly", zap.Strings("target", query["target"]), zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
		http.Error(w, "'target' parameter not set correctly", http.StatusBadRequest)
		return
	}
	if target == "" {
		target = cfg.DefaultTarget
	}
	if target == "" {
		log.Error("'target' parameter not set and no address was discovered", zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
		http.Error(w, "'target' parameter not set correctly", http.StatusBadRequest)
		return
	}

	chassisIDs := query["chassis_id"]
	if len(chassisIDs) == 0 {
		chassisIDs = cfg.ChassisIDs
	}

	log.Info("started scrape",
		zap.String("target", target),
		zap.Strings("chassis_id", chassisIDs),
		zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))

	creds := cfg.Creds
	if creds == nil {
		creds = &common.ChassisCreds
	}

	credential, err := creds.Resolve(ctx, target)
	if err != nil {
		log.Error("issue retrieving credentials using target "+target, zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	proxyHost := query.Get("proxy_host")
	if proxyHost == "" {
		proxyHost = cfg.Proxy
	}
	if proxyHost != "" {
		if !strings.Contains(proxyHost, "://") {
			proxyHost = "http://" + proxyHost
		}
		if _, err := url.Parse(proxyHost); err != nil {
			log.Error("invalid proxy_host parameter", zap.Error(err), zap.String("proxy_host", proxyHost),
				zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
			http.Error(w, "invalid proxy_host parameter", http.StatusBadRequest)
			return
		}
		ctx = redfish.WithProxyURL(ctx, proxyHost)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(exporter.NewExporter(ctx, target, chassisIDs, credential))

	// Delegate http serving to Prometheus client library, which will call collector.Collect.
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h.ServeHTTP(w, r)
}
