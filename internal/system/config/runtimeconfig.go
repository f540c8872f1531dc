/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// KYCRuntime is the loaded deployment configuration together with the server home that
// relative paths in it are resolved against.
type KYCRuntime struct {
	ServerHome string `yaml:"server_home"`
	Config     Config `yaml:"config"`
}

var (
	runtimeMu sync.RWMutex
	current   *KYCRuntime
)

// InitializeKYCRuntime records the runtime used by the rest of the process. The first
// successful call wins; later calls are no-ops.
func InitializeKYCRuntime(serverHome string, cfg *Config) error {
	if cfg == nil {
		return errors.New("kyc runtime requires a configuration")
	}
	if strings.TrimSpace(serverHome) == "" {
		return errors.New("kyc runtime requires a server home")
	}

	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if current == nil {
		current = &KYCRuntime{ServerHome: filepath.Clean(serverHome), Config: *cfg}
	}
	return nil
}

// GetKYCRuntime returns the recorded runtime. It panics when called before
// InitializeKYCRuntime, since every caller depends on loaded configuration.
func GetKYCRuntime() *KYCRuntime {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if current == nil {
		panic("kyc runtime used before InitializeKYCRuntime")
	}
	return current
}

// ResetKYCRuntime forgets the recorded runtime. Tests use it between cases.
func ResetKYCRuntime() {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	current = nil
}

// ResolvePath anchors a relative path such as a sqlite file or a certificate at the server
// home. Absolute paths are returned cleaned.
func (r *KYCRuntime) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.ServerHome, p)
}
