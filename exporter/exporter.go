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

package exporter

import (
	"context"
	"strconv"
	"sync"

	"github.com/comcast/ilohwmetrics/common"
	"github.com/comcast/ilohwmetrics/config"
	"github.com/comcast/ilohwmetrics/oem"
	"github.com/comcast/ilohwmetrics/pool"
	"github.com/comcast/ilohwmetrics/redfish"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// OK is a string representation of the float 1.0 for device status
	OK = 1.0
	// BAD is a string representation of the float 0.0 for device status
	BAD = 0.0
	// DISABLED is a string representation of the float -1.0 for device status
	DISABLED = -1.0
)

var (
	log *zap.Logger
)

// Exporter logs in to an iLO on every collection and exports the health of
// the configured chassis using the prometheus metrics package.
type Exporter struct {
	ctx           context.Context
	mutex         sync.RWMutex
	client        *retryablehttp.Client
	host          string
	chassisIDs    []string
	credential    *common.Credential
	logout        bool
	DeviceMetrics *map[string]*metrics
}

// NewExporter returns an initialized Exporter for the BMC at target.
func NewExporter(ctx context.Context, target string, chassisIDs []string, credential *common.Credential) *Exporter {
	log = zap.L()

	if len(chassisIDs) == 0 {
		chassisIDs = []string{config.DefaultChassisID}
	}

	return &Exporter{
		ctx:           ctx,
		client:        redfish.NewHTTPClient(ctx),
		host:          redfish.BaseURL(config.GetConfig().BMCScheme, target),
		chassisIDs:    chassisIDs,
		credential:    credential,
		logout:        config.GetConfig().SessionLogout,
		DeviceMetrics: NewDeviceMetrics(),
	}
}

// Describe describes all the metrics ever exported by the ilohwmetrics exporter. It
// implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range *e.DeviceMetrics {
		for _, n := range *m {
			n.Describe(ch)
		}
	}
}

// Collect fetches the chassis health from the BMC and delivers it
// as Prometheus metrics. It implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mutex.Lock() // one session per collection
	defer e.mutex.Unlock()

	e.resetMetrics()
	e.scrape()
	e.collectMetrics(ch)
}

func (e *Exporter) resetMetrics() {
	for _, m := range *e.DeviceMetrics {
		for _, n := range *m {
			n.Reset()
		}
	}
}

func (e *Exporter) collectMetrics(metrics chan<- prometheus.Metric) {
	for _, m := range *e.DeviceMetrics {
		for _, n := range *m {
			n.Collect(metrics)
		}
	}
}

func (e *Exporter) scrape() {
	var upMetric = (*e.DeviceMetrics)["up"]

	sess, err := redfish.CreateSession(e.ctx, e.client, e.host, e.credential.User, e.credential.Pass)
	if err != nil {
		log.Error("error creating redfish session on "+e.host, zap.Error(err), zap.Any("trace_id", e.ctx.Value("traceID")))
		(*upMetric)["up"].WithLabelValues().Set(float64(0))
		return
	}

	if e.logout {
		defer func() {
			if err := sess.Logout(e.ctx); err != nil {
				log.Error("error logging out of redfish session on "+e.host, zap.Error(err), zap.Any("trace_id", e.ctx.Value("traceID")))
			}
		}()
	}

	var tasks []*pool.Task
	for _, id := range e.chassisIDs {
		tasks = append(tasks, pool.NewTask(id, func(chassisID string) (*oem.ChassisStatus, error) {
			return sess.FetchChassisStatus(e.ctx, chassisID)
		}))
	}

	// every task shares the session, run them one at a time
	p := pool.NewPool(tasks, 1)
	p.Run()

	for _, task := range p.Tasks {
		if task.Err != nil {
			log.Error("error calling redfish api on "+e.host, zap.Error(task.Err), zap.String("chassis_id", task.ChassisID), zap.Any("trace_id", e.ctx.Value("traceID")))
			(*upMetric)["up"].WithLabelValues().Set(float64(0))
			return
		}
		e.exportChassisStatus(task.ChassisID, task.Status)
	}

	(*upMetric)["up"].WithLabelValues().Set(float64(1))
}

// exportChassisStatus sets the chassis and smart storage battery gauges
func (e *Exporter) exportChassisStatus(chassisID string, chas *oem.ChassisStatus) {
	var chassis = (*e.DeviceMetrics)["chassisMetrics"]
	var storBattery = (*e.DeviceMetrics)["storBatteryMetrics"]

	(*chassis)["chassisStatus"].WithLabelValues(chassisID, chas.SerialNumber, chas.Status.State).Set(healthValue(chas.Status))

	for i, bat := range chas.BatteryModules() {
		id := strconv.Itoa(bat.Index)
		if bat.Index == 0 {
			id = strconv.Itoa(i)
		}
		(*storBattery)["storageBatteryStatus"].WithLabelValues(chassisID, chas.SerialNumber, id, bat.Model, bat.Name, bat.Status.State).Set(healthValue(bat.Status))
	}
}

func healthValue(s oem.Status) float64 {
	if s.State != "" && s.State != "Enabled" {
		return DISABLED
	}
	if s.Health == "OK" {
		return OK
	}
	return BAD
}
