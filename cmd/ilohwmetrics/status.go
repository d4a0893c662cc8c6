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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/comcast/ilohwmetrics/common"
	"github.com/comcast/ilohwmetrics/config"
	"github.com/comcast/ilohwmetrics/ipmi"
	"github.com/comcast/ilohwmetrics/middleware/logging"
	"github.com/comcast/ilohwmetrics/oem"
	"github.com/comcast/ilohwmetrics/pool"
	"github.com/comcast/ilohwmetrics/redfish"
	"go.uber.org/zap"
)

// stageError names the step of a status run that failed
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return e.stage + ": " + e.err.Error()
}

func (e *stageError) Unwrap() error {
	return e.err
}

// discoverTarget returns the configured target or, when none is set, the
// address reported by the local management interface.
func discoverTarget(ctx context.Context, runner ipmi.Runner) (string, error) {
	c := config.GetConfig()
	if c.Target != "" {
		return c.Target, nil
	}

	addr, err := ipmi.DiscoverAddress(ctx, runner, c.StrictAddress, c.IPMICommand, c.IPMIArgs...)
	if err != nil {
		return "", err
	}

	zap.L().Info("discovered BMC address", zap.String("target", addr.String()), zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
	return addr.String(), nil
}

// runStatus performs one discover, login and fetch cycle and writes the
// result to out. Nothing is written unless every chassis was read.
func runStatus(ctx context.Context, runner ipmi.Runner, out io.Writer, format string) error {
	c := config.GetConfig()

	target, err := discoverTarget(ctx, runner)
	if err != nil {
		return &stageError{stage: "discover", err: err}
	}

	cred, err := common.ChassisCreds.Resolve(ctx, target)
	if err != nil {
		return &stageError{stage: "credentials", err: err}
	}

	sess, err := redfish.CreateSession(ctx, redfish.NewHTTPClient(ctx), redfish.BaseURL(c.BMCScheme, target), cred.User, cred.Pass)
	if err != nil {
		return &stageError{stage: "login", err: err}
	}

	if c.SessionLogout {
		defer func() {
			if err := sess.Logout(ctx); err != nil {
				zap.L().Warn("unable to delete redfish session", zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey)))
			}
		}()
	}

	var tasks []*pool.Task
	for _, id := range c.ChassisIDs {
		tasks = append(tasks, pool.NewTask(id, func(chassisID string) (*oem.ChassisStatus, error) {
			return sess.FetchChassisStatus(ctx, chassisID)
		}))
	}

	p := pool.NewPool(tasks, 1)
	p.Run()

	statuses := make([]*oem.ChassisStatus, 0, len(p.Tasks))
	for _, task := range p.Tasks {
		if task.Err != nil {
			return &stageError{stage: "fetch chassis " + task.ChassisID, err: task.Err}
		}
		statuses = append(statuses, task.Status)
	}

	if format == "json" {
		return writeJSON(out, statuses)
	}
	return writeText(out, p.Tasks)
}

func writeJSON(out io.Writer, statuses []*oem.ChassisStatus) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(statuses)
}

func writeText(out io.Writer, tasks []*pool.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, task := range tasks {
		chas := task.Status
		fmt.Fprintf(w, "Chassis:\t%q\n", task.ChassisID)
		fmt.Fprintf(w, "Serial Number:\t%q\n", chas.SerialNumber)
		fmt.Fprintf(w, "Health:\t%q\n", chas.Status.Health)
		fmt.Fprintf(w, "State:\t%q\n", chas.Status.State)
		for i, b := range chas.BatteryModules() {
			index := b.Index
			if index == 0 {
				index = i
			}
			fmt.Fprintf(w, "Battery %d:\t%q model=%q health=%q state=%q\n", index, b.Name, b.Model, b.Status.Health, b.Status.State)
		}
	}
	return w.Flush()
}
