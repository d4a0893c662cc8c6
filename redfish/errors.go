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
	"errors"
	"fmt"
)

var (
	ErrMissingTokenHeader = errors.New("login response is missing the X-Auth-Token header")
	ErrMalformedToken     = errors.New("X-Auth-Token header is not valid text")
	ErrSessionClosed      = errors.New("redfish session has been logged out")
)

// TransportError is returned when a request never produced a usable
// response: DNS, connection, TLS handshake or timeout failures.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed - %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when the controller answered but not with a
// chassis document, either a non 2xx status or a body that does not match
// the schema. Body holds the raw response for diagnostics.
type DecodeError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to decode chassis response with HTTP status %d - %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP status %d - %s", e.StatusCode, snippet(e.Body))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func snippet(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
