// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk gate configuration:
//
//	tools:
//	  place_shipping_order:
//	    threshold: 5
//	    size_arg: num_containers
//	    ttl: 72h
type File struct {
	Tools map[string]ToolSettings `yaml:"tools"`
}

// ToolSettings configures one gated tool.
type ToolSettings struct {
	Threshold int    `yaml:"threshold"`
	SizeArg   string `yaml:"size_arg"`
	TTL       string `yaml:"ttl"`
}

// ParseTTL parses the optional TTL. An empty TTL means approvals never
// expire.
func (s ToolSettings) ParseTTL() (time.Duration, error) {
	if s.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid ttl %q: %v", ErrConfiguration, s.TTL, err)
	}
	return ttl, nil
}

// LoadFile reads a gate configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %q: %v", ErrConfiguration, path, err)
	}
	return &f, nil
}
