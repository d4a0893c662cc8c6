/*
 * Copyright 2023 Comcast Cable Communications Management, LLC
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

package pool

import (
	"sync"

	"github.com/comcast/ilohwmetrics/oem"
)

// Task encapsulates a chassis read that should go in a work pool
type Task struct {
	// Err holds an error that occurred during a task. Its
	// result is only meaningful after Run has been called
	// for the pool that holds it.
	Err error

	ChassisID string
	Status    *oem.ChassisStatus

	f func(chassisID string) (*oem.ChassisStatus, error)
}

// NewTask initializes a new task reading chassisID with the
// given work function.
func NewTask(chassisID string, f func(chassisID string) (*oem.ChassisStatus, error)) *Task {
	return &Task{ChassisID: chassisID, f: f}
}

// Run runs a Task and does appropriate accounting via a
// given sync.WorkGroup.
func (t *Task) Run(wg *sync.WaitGroup) {
	t.Status, t.Err = t.f(t.ChassisID)
	wg.Done()
}
