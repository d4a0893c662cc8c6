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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/comcast/ilohwmetrics/buildinfo"
	"github.com/comcast/ilohwmetrics/common"
	"github.com/comcast/ilohwmetrics/oem"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	// SessionsPath is the Session Service collection we POST credentials to
	SessionsPath = "/redfish/v1/SessionService/Sessions/"
	// ChassisPath is the prefix of every chassis resource
	ChassisPath = "/redfish/v1/Chassis/"
	// TokenHeader carries the session token in both directions
	TokenHeader = "X-Auth-Token"
)

type loginRequest struct {
	UserName string `json:"UserName"`
	Password string `json:"Password"`
}

// Session is an authenticated Redfish session. It may be used for any
// number of reads; requests on one session are serialized so the token is
// never in flight twice at the same time.
type Session struct {
	mu       sync.Mutex
	baseURL  string
	token    string
	location string
	closed   bool
	client   *retryablehttp.Client
}

// CreateSession logs in to the Session Service at baseURL and returns the
// session holding the issued token.
func CreateSession(ctx context.Context, client *retryablehttp.Client, baseURL, user, password string) (*Session, error) {
	log := zap.L()
	uri := baseURL + SessionsPath

	payload, err := json.Marshal(loginRequest{UserName: user, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request - %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, uri, payload)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: uri, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	log.Debug("creating redfish session", zap.String("url", uri), zap.String("user", user), zap.Any("trace_id", ctx.Value("traceID")))

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: uri, Err: err}
	}
	defer common.EmptyAndCloseBody(resp)

	token, err := tokenFromHeader(resp.Header)
	if err != nil {
		log.Error("login to "+uri+" did not return a usable token", zap.Error(err), zap.Int("status", resp.StatusCode), zap.Any("trace_id", ctx.Value("traceID")))
		return nil, err
	}

	return &Session{
		baseURL:  baseURL,
		token:    token,
		location: resp.Header.Get("Location"),
		client:   client,
	}, nil
}

// tokenFromHeader enforces the same rule HTTP libraries apply when reading
// a header as text: visible ASCII, space and tab only.
func tokenFromHeader(h http.Header) (string, error) {
	values := h.Values(TokenHeader)
	if len(values) == 0 || values[0] == "" {
		return "", ErrMissingTokenHeader
	}

	token := values[0]
	for i := 0; i < len(token); i++ {
		b := token[i]
		if b != '\t' && (b < 0x20 || b > 0x7e) {
			return "", ErrMalformedToken
		}
	}
	return token, nil
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) BaseURL() string {
	return s.baseURL
}

// FetchChassisStatus reads /redfish/v1/Chassis/<chassisID>/ and decodes it.
func (s *Session) FetchChassisStatus(ctx context.Context, chassisID string) (*oem.ChassisStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	log := zap.L()
	uri := s.baseURL + ChassisPath + chassisID + "/"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: uri, Err: err}
	}
	req.Header.Set(TokenHeader, s.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	log.Debug("fetching chassis status", zap.String("url", uri), zap.Any("trace_id", ctx.Value("traceID")))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: uri, Err: err}
	}
	defer common.EmptyAndCloseBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: uri, Err: fmt.Errorf("error reading response body - %w", err)}
	}

	if !(resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Body: body}
	}

	chas, err := oem.DecodeChassisStatus(body)
	if err != nil {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Body: body, Err: err}
	}

	return chas, nil
}

// Logout deletes the session resource on the controller. Sessions created
// without a Location header cannot be removed and Logout is a no-op.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	log := zap.L()
	if s.location == "" {
		log.Debug("login response had no session location, skipping logout", zap.Any("trace_id", ctx.Value("traceID")))
		return nil
	}

	uri := s.location
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		uri = s.baseURL + uri
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, uri, nil)
	if err != nil {
		return &TransportError{Op: http.MethodDelete, URL: uri, Err: err}
	}
	req.Header.Set(TokenHeader, s.token)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{Op: http.MethodDelete, URL: uri, Err: err}
	}
	defer common.EmptyAndCloseBody(resp)

	if !(resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		return fmt.Errorf("logout of %s returned HTTP status %d", uri, resp.StatusCode)
	}

	s.closed = true
	s.token = ""
	log.Debug("logged out of redfish session", zap.String("url", uri), zap.Any("trace_id", ctx.Value("traceID")))

	return nil
}
