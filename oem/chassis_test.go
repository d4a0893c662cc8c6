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

package oem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DecodeChassisStatus(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		health    string
		state     string
		batteries []SmartStorageBattery
		err       bool
	}{
		{
			name:      "Empty Battery Array",
			body:      `{"Status":{"Health":"OK","State":"Enabled"},"Oem":{"Hpe":{"SmartStorageBattery":[]}}}`,
			health:    "OK",
			state:     "Enabled",
			batteries: []SmartStorageBattery{},
		},
		{
			name:   "Hpe Batteries Keep Order",
			body:   `{"Status":{"Health":"Warning","State":"Enabled"},"Oem":{"Hpe":{"SmartStorageBattery":[{"Index":2,"Model":"727258-B21","ProductName":"HPE Smart Storage Battery","Status":{"Health":"Critical","State":"Enabled"}},{"Index":1,"Status":{"Health":"OK","State":"Enabled"}}]}}}`,
			health: "Warning",
			state:  "Enabled",
			batteries: []SmartStorageBattery{
				{Index: 2, Model: "727258-B21", Name: "HPE Smart Storage Battery", Status: Status{Health: "Critical", State: "Enabled"}},
				{Index: 1, Status: Status{Health: "OK", State: "Enabled"}},
			},
		},
		{
			name:   "Hp Namespace",
			body:   `{"Status":{"Health":"OK","State":"Enabled"},"Oem":{"Hp":{"SmartStorageBattery":[{"Status":{"State":"Absent"}}]}}}`,
			health: "OK",
			state:  "Enabled",
			batteries: []SmartStorageBattery{
				{Status: Status{State: "Absent"}},
			},
		},
		{
			name:      "Missing Vendor Block",
			body:      `{"Status":{"Health":"OK","State":"Enabled"}}`,
			health:    "OK",
			state:     "Enabled",
			batteries: []SmartStorageBattery{},
		},
		{
			name:      "Missing Status Fields",
			body:      `{"Status":{},"Oem":{"Hpe":{}}}`,
			batteries: []SmartStorageBattery{},
		},
		{
			name:      "Unknown Fields Ignored",
			body:      `{"@odata.id":"/redfish/v1/Chassis/1/","ChassisType":"RackMount","PowerState":"On","Status":{"Health":"OK","HealthRollup":"OK","State":"Enabled"},"Oem":{"Hpe":{"Firmware":{"PlatformDefinitionTable":{"Current":{"VersionString":"8.4.0 Build 11"}}},"MCTPEnabledOnServer":true}}}`,
			health:    "OK",
			state:     "Enabled",
			batteries: []SmartStorageBattery{},
		},
		{
			name: "Missing Status",
			body: `{"Oem":{"Hpe":{"SmartStorageBattery":[]}}}`,
			err:  true,
		},
		{
			name: "Null Status",
			body: `{"Status":null}`,
			err:  true,
		},
		{
			name: "Not JSON",
			body: `<html>502 Bad Gateway</html>`,
			err:  true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			chas, err := DecodeChassisStatus([]byte(test.body))
			if test.err {
				assert.NotNil(t, err)
				assert.Nil(t, chas)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, test.health, chas.Status.Health)
			assert.Equal(t, test.state, chas.Status.State)
			assert.Equal(t, test.batteries, chas.BatteryModules())
		})
	}
}

func Test_DecodeChassisStatus_MissingStatus(t *testing.T) {
	_, err := DecodeChassisStatus([]byte(`{"Id":"1"}`))
	assert.ErrorIs(t, err, ErrMissingStatus)
}

func Test_BatteryModules_PrefersHpe(t *testing.T) {
	chas := ChassisStatus{
		Oem: ChassisOem{
			Hpe: &ChassisOemHpe{SmartStorageBattery: []SmartStorageBattery{{Index: 1}}},
			Hp:  &ChassisOemHpe{SmartStorageBattery: []SmartStorageBattery{{Index: 9}}},
		},
	}
	assert.Equal(t, []SmartStorageBattery{{Index: 1}}, chas.BatteryModules())
}

func Test_ChassisStatus_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	orig := ChassisStatus{
		ID:           "1",
		Name:         "Computer System Chassis",
		SerialNumber: "SN98765",
		Status:       Status{Health: "OK", HealthRollup: "Warning", State: "Enabled"},
		Oem: ChassisOem{
			Hpe: &ChassisOemHpe{
				SmartStorageBattery: []SmartStorageBattery{
					{Index: 1, Model: "battery model", Name: "HPE Smart Storage Battery", Status: Status{Health: "OK", State: "Enabled"}},
					{Index: 2, Status: Status{State: "Absent"}},
				},
			},
		},
	}

	b, err := json.Marshal(orig)
	assert.Nil(err)

	decoded, err := DecodeChassisStatus(b)
	assert.Nil(err)
	assert.Equal(orig, *decoded)
}
