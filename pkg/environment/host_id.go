//    Copyright 2023 Hatworks Authors
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package environment

import (
	"crypto/sha1"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// CreateHostID creates a stable host ID based on the machine ID,
// falling back to network hardware addresses.
func CreateHostID() (string, error) {
	if content, err := os.ReadFile("/etc/machine-id"); err == nil {
		content = []byte(strings.TrimSpace(string(content)))
		id := fmt.Sprintf("%x", sha1.Sum(content))
		return id[:10], nil
	}

	ifs, err := net.Interfaces()
	if err != nil {
		return "", errors.WithStack(err)
	}
	list := make([]string, 0, len(ifs))
	for _, v := range ifs {
		f := v.Flags
		if f&net.FlagUp != 0 && f&net.FlagLoopback == 0 {
			h := v.HardwareAddr.String()
			if len(h) > 0 {
				list = append(list, h)
			}
		}
	}
	if len(list) == 0 {
		return "", errors.New("no network hardware addresses found")
	}
	sort.Strings(list)
	id := fmt.Sprintf("%x", sha1.Sum([]byte(strings.Join(list, ","))))
	return id[:10], nil
}
