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
	"github.com/prometheus/client_golang/prometheus"
)

type metrics map[string]*prometheus.GaugeVec

func newServerMetric(metricName string, docString string, constLabels prometheus.Labels, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        metricName,
			Help:        docString,
			ConstLabels: constLabels,
		},
		labelNames,
	)
}

func NewDeviceMetrics() *map[string]*metrics {
	var (
		UpMetric = &metrics{
			"up": newServerMetric("up", "was the last scrape of ilohwmetrics successful.", nil, []string{}),
		}

		ChassisMetrics = &metrics{
			"chassisStatus": newServerMetric("ilo_chassis_status", "Current chassis health 1 = OK, 0 = BAD, -1 = DISABLED", nil, []string{"chassisId", "chassisSerialNumber", "state"}),
		}

		StorageBatteryMetrics = &metrics{
			"storageBatteryStatus": newServerMetric("ilo_storage_battery_status", "Current storage battery status 1 = OK, 0 = BAD, -1 = DISABLED", nil, []string{"chassisId", "chassisSerialNumber", "id", "model", "name", "state"}),
		}

		DeviceMetrics = &map[string]*metrics{
			"up":                 UpMetric,
			"chassisMetrics":     ChassisMetrics,
			"storBatteryMetrics": StorageBatteryMetrics,
		}
	)

	return DeviceMetrics
}
