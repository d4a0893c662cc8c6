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

package ipmi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// UnreadableOutput stands in for tool output we could not use. It never
// contains an address so extraction fails with ErrNotFound.
const UnreadableOutput = "Cannot get the IP address."

var (
	ErrNotFound       = errors.New("no IP Address field found in management interface output")
	ErrInvalidAddress = errors.New("invalid IPv4 address")

	// octets are intentionally not range checked here, see ValidateIPv4
	ipAddressRe = regexp.MustCompile(`.*(IP Address).*: (\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}).*`)
)

// NetworkAddress is the dotted-quad address of the management controller.
type NetworkAddress string

func (a NetworkAddress) String() string {
	return string(a)
}

// ExtractIPv4 returns the address from the first line of text carrying an
// "IP Address" label, e.g. the output of `ipmitool lan print`.
func ExtractIPv4(text string) (NetworkAddress, error) {
	for _, line := range strings.Split(text, "\n") {
		m := ipAddressRe.FindStringSubmatch(line)
		if m != nil {
			return NetworkAddress(m[2]), nil
		}
	}
	return "", ErrNotFound
}

// ValidateIPv4 rejects addresses with an octet above 255.
func ValidateIPv4(addr NetworkAddress) error {
	octets := strings.Split(string(addr), ".")
	if len(octets) != 4 {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	return nil
}

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s %s failed - %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// LanPrint runs the management interface tool and returns its output as
// text. Failures are logged and replaced by UnreadableOutput.
func LanPrint(ctx context.Context, runner Runner, command string, args ...string) string {
	log := zap.L()

	out, err := runner.Run(ctx, command, args...)
	if err != nil {
		log.Error("unable to query management interface", zap.Error(err), zap.String("command", command), zap.Any("trace_id", ctx.Value("traceID")))
		return UnreadableOutput
	}

	if !utf8.Valid(out) {
		log.Error("management interface output is not valid UTF-8", zap.String("command", command), zap.Int("bytes", len(out)), zap.Any("trace_id", ctx.Value("traceID")))
		return UnreadableOutput
	}

	return string(out)
}

// DiscoverAddress runs the management interface tool and extracts the
// controller address from its output.
func DiscoverAddress(ctx context.Context, runner Runner, strict bool, command string, args ...string) (NetworkAddress, error) {
	addr, err := ExtractIPv4(LanPrint(ctx, runner, command, args...))
	if err != nil {
		return "", err
	}
	if strict {
		if err := ValidateIPv4(addr); err != nil {
			return "", err
		}
	}
	return addr, nil
}
