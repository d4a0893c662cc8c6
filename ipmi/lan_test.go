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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const lanPrintOutput = `Set in Progress         : Set Complete
Auth Type Support       : 
IP Address Source       : Static Address
IP Address              : 10.20.30.40
Subnet Mask             : 255.255.255.0
MAC Address             : 94:57:a5:00:00:01
Default Gateway IP      : 10.20.30.1
`

func Test_ExtractIPv4(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected NetworkAddress
		err      error
	}{
		{
			name:     "Single Line",
			text:     "1 IP Address  : 10.0.0.5\n",
			expected: "10.0.0.5",
		},
		{
			name:     "Lan Print",
			text:     lanPrintOutput,
			expected: "10.20.30.40",
		},
		{
			name:     "Trailing Text",
			text:     "IP Address : 192.168.0.10 (static)",
			expected: "192.168.0.10",
		},
		{
			name:     "CRLF Line Endings",
			text:     "IP Address Source : DHCP\r\nIP Address : 172.16.0.2\r\n",
			expected: "172.16.0.2",
		},
		{
			name:     "First Match Wins",
			text:     "IP Address : 10.0.0.1\nIP Address : 10.0.0.2\n",
			expected: "10.0.0.1",
		},
		{
			name:     "Out Of Range Octets Accepted",
			text:     "IP Address : 999.1.1.1\n",
			expected: "999.1.1.1",
		},
		{
			name: "No Label",
			text: "Subnet Mask : 255.255.255.0\n",
			err:  ErrNotFound,
		},
		{
			name: "Label Without Address",
			text: "IP Address Source : Static Address\n",
			err:  ErrNotFound,
		},
		{
			name: "Unreadable Output",
			text: UnreadableOutput,
			err:  ErrNotFound,
		},
		{
			name: "Empty",
			text: "",
			err:  ErrNotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			addr, err := ExtractIPv4(test.text)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				assert.Empty(t, addr)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, test.expected, addr)
		})
	}
}

func Test_ValidateIPv4(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(ValidateIPv4("10.0.0.5"))
	assert.Nil(ValidateIPv4("255.255.255.255"))
	assert.ErrorIs(ValidateIPv4("999.1.1.1"), ErrInvalidAddress)
	assert.ErrorIs(ValidateIPv4("10.0.0"), ErrInvalidAddress)
}

func Test_LanPrint(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		out      []byte
		err      error
		expected string
	}{
		{
			name:     "Good Output",
			out:      []byte(lanPrintOutput),
			expected: lanPrintOutput,
		},
		{
			name:     "Invalid UTF-8",
			out:      []byte{0x49, 0x50, 0xff, 0xfe},
			expected: UnreadableOutput,
		},
		{
			name:     "Command Failure",
			err:      errors.New("exit status 1"),
			expected: UnreadableOutput,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var gotName string
			var gotArgs []string
			runner := RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, error) {
				gotName = name
				gotArgs = args
				return test.out, test.err
			})

			text := LanPrint(ctx, runner, "ipmitool", "lan", "print")
			assert.Equal(t, test.expected, text)
			assert.Equal(t, "ipmitool", gotName)
			assert.Equal(t, []string{"lan", "print"}, gotArgs)
		})
	}
}

func Test_DiscoverAddress(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	runner := RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("IP Address : 300.0.0.1\n"), nil
	})

	addr, err := DiscoverAddress(ctx, runner, false, "ipmitool", "lan", "print")
	assert.Nil(err)
	assert.Equal(NetworkAddress("300.0.0.1"), addr)

	_, err = DiscoverAddress(ctx, runner, true, "ipmitool", "lan", "print")
	assert.ErrorIs(err, ErrInvalidAddress)

	binary := RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte{0xc3, 0x28}, nil
	})
	_, err = DiscoverAddress(ctx, binary, false, "ipmitool", "lan", "print")
	assert.ErrorIs(err, ErrNotFound)
}
