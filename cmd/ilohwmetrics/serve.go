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

package main

import (
	"context"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/comcast/ilohwmetrics/buildinfo"
	"github.com/comcast/ilohwmetrics/common"
	"github.com/comcast/ilohwmetrics/config"
	"github.com/comcast/ilohwmetrics/http/handlers"
	"github.com/comcast/ilohwmetrics/ipmi"
	"github.com/comcast/ilohwmetrics/logger"
	"github.com/comcast/ilohwmetrics/middleware/logging"
	"github.com/comcast/ilohwmetrics/middleware/muxprom"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newMux wires every endpoint of the exporter
func newMux(scrapeConfig *handlers.ScrapeConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(buildinfo.Info)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /scrape", handlers.ScrapeHandler(scrapeConfig))

	tmplIndex := template.Must(template.New("index").Parse(indexTmpl))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIndex.Execute(w, indexAppData{
			Info:          buildinfo.Info,
			DefaultTarget: scrapeConfig.DefaultTarget,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /verbosity", logger.Verbosity)
	mux.HandleFunc("PUT /verbosity", logger.SetVerbosity)

	return mux
}

// serve runs the exporter until a termination signal arrives
func serve(ctx context.Context, runner ipmi.Runner, port, proxy string) {
	var wg sync.WaitGroup

	// a failed discovery only means every scrape must name its target
	defaultTarget, err := discoverTarget(ctx, runner)
	if err != nil {
		log.Warn("no default target, scrapes must set the 'target' parameter", zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
	}

	scrapeConfig := &handlers.ScrapeConfig{
		DefaultTarget: defaultTarget,
		ChassisIDs:    config.GetConfig().ChassisIDs,
		Creds:         &common.ChassisCreds,
		Proxy:         proxy,
	}

	instrumentation := muxprom.NewDefaultInstrumentation()
	wrappedmux := logging.LoggingHandler(instrumentation.Middleware(newMux(scrapeConfig)))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: wrappedmux,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	listener, err := net.Listen("tcp4", ":"+port)
	if err != nil {
		log.Error("starting "+app+" service failed", zap.Error(err))
		signals <- syscall.SIGTERM
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("http server received an error", zap.Error(err))
				signals <- syscall.SIGTERM
			}
		}()

		log.Info("started "+app+" service", zap.String("port", port), zap.String("default_target", defaultTarget))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-signals
		log.Info(s.String() + " signal caught, stopping app")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}
	}()

	wg.Wait()
}
