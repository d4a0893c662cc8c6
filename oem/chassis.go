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
	"errors"
)

var (
	ErrMissingStatus = errors.New("chassis document is missing the Status object")
)

// /redfish/v1/Chassis/XX/

// ChassisStatus is the health record of a chassis along with the HPE
// vendor block that carries the smart storage batteries
type ChassisStatus struct {
	ID           string     `json:"Id,omitempty"`
	Name         string     `json:"Name,omitempty"`
	Model        string     `json:"Model,omitempty"`
	SerialNumber string     `json:"SerialNumber,omitempty"`
	Status       Status     `json:"Status"`
	Oem          ChassisOem `json:"Oem"`
}

// Status contains metadata for the health of a particular component/module
type Status struct {
	Health       string `json:"Health,omitempty"`
	HealthRollup string `json:"HealthRollup,omitempty"`
	State        string `json:"State,omitempty"`
}

// ChassisOem holds the vendor namespaces, iLO 4 reports under Hp and
// iLO 5 and later under Hpe
type ChassisOem struct {
	Hpe *ChassisOemHpe `json:"Hpe,omitempty"`
	Hp  *ChassisOemHpe `json:"Hp,omitempty"`
}

type ChassisOemHpe struct {
	SmartStorageBattery []SmartStorageBattery `json:"SmartStorageBattery"`
}

type SmartStorageBattery struct {
	Index        int    `json:"Index,omitempty"`
	Model        string `json:"Model,omitempty"`
	Name         string `json:"ProductName,omitempty"`
	SerialNumber string `json:"SerialNumber,omitempty"`
	Status       Status `json:"Status"`
}

// BatteryModules returns the storage batteries in the order the controller
// listed them. The result is never nil.
func (c *ChassisStatus) BatteryModules() []SmartStorageBattery {
	var vendor *ChassisOemHpe
	if c.Oem.Hpe != nil {
		vendor = c.Oem.Hpe
	} else if c.Oem.Hp != nil {
		vendor = c.Oem.Hp
	}

	if vendor == nil || vendor.SmartStorageBattery == nil {
		return []SmartStorageBattery{}
	}
	return vendor.SmartStorageBattery
}

// DecodeChassisStatus maps a chassis document onto ChassisStatus. Unknown
// fields are ignored, only a missing Status object is rejected.
func DecodeChassisStatus(body []byte) (*ChassisStatus, error) {
	var probe struct {
		Status *json.RawMessage `json:"Status"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}
	if probe.Status == nil {
		return nil, ErrMissingStatus
	}

	var chas ChassisStatus
	if err := json.Unmarshal(body, &chas); err != nil {
		return nil, err
	}
	return &chas, nil
}
