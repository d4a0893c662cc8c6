/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
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

package redfish

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comcast/ilohwmetrics/config"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewHTTPClient builds the client used for every call to the BMC. Requests
// are attempted exactly once. A proxy set with WithProxyURL takes precedence
// over the proxy environment variables.
func NewHTTPClient(ctx context.Context) *retryablehttp.Client {
	cfg := config.GetConfig()

	retryClient := retryablehttp.NewClient()
	retryClient.CheckRetry = noRetryPolicy
	retryClient.RetryMax = 0
	retryClient.HTTPClient.Transport = newTransport(cfg.SSLVerify, proxyURLFromContext(ctx))
	retryClient.HTTPClient.Timeout = cfg.BMCTimeout
	retryClient.Logger = leveledLogger()

	return retryClient
}

func newTransport(sslVerify bool, proxy *url.URL) *http.Transport {
	proxyFunc := http.ProxyFromEnvironment
	if proxy != nil {
		proxyFunc = http.ProxyURL(proxy)
	}

	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 3 * time.Second,
		}).DialContext,
		Proxy:                 proxyFunc,
		MaxIdleConns:          1,
		MaxConnsPerHost:       1,
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			// iLO ships with a self signed certificate, verification is opt-in
			InsecureSkipVerify: !sslVerify,
			Renegotiation:      tls.RenegotiateOnceAsClient,
		},
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// noRetryPolicy hands every response and error back to the caller as is.
func noRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

// leveledLogger routes retryablehttp's request logging into zap at debug.
func leveledLogger() retryablehttp.LeveledLogger {
	stdLog, err := zap.NewStdLogAt(zap.L().Named("retryablehttp"), zapcore.DebugLevel)
	if err != nil {
		return nil
	}
	return hclog.FromStandardLogger(stdLog, &hclog.LoggerOptions{
		Name:  "redfish",
		Level: hclog.Debug,
	})
}

// BaseURL returns target unchanged when it already carries a scheme,
// otherwise scheme://target.
func BaseURL(scheme, target string) string {
	u, err := url.ParseRequestURI(target)
	if err != nil || u.Host == "" {
		u = &url.URL{
			Scheme: scheme,
			Host:   target,
		}
	}
	return strings.TrimSuffix(u.String(), "/")
}
