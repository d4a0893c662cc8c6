package pool

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/comcast/ilohwmetrics/oem"
	"github.com/stretchr/testify/assert"
)

func Test_Pool_Run(t *testing.T) {
	assert := assert.New(t)

	var inFlight, maxInFlight int32
	errBoom := errors.New("boom")

	read := func(chassisID string) (*oem.ChassisStatus, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		if chassisID == "bad" {
			return nil, errBoom
		}
		return &oem.ChassisStatus{ID: chassisID, Status: oem.Status{Health: "OK"}}, nil
	}

	p := NewPool([]*Task{NewTask("1", read), NewTask("bad", read)}, 0)
	p.AddTask(NewTask("CMC", read))
	p.Run()

	assert.Len(p.Tasks, 3)
	assert.Equal("1", p.Tasks[0].Status.ID)
	assert.Nil(p.Tasks[0].Err)
	assert.ErrorIs(p.Tasks[1].Err, errBoom)
	assert.Nil(p.Tasks[1].Status)
	assert.Equal("CMC", p.Tasks[2].Status.ID)
	assert.Equal(int32(1), atomic.LoadInt32(&maxInFlight))
}
