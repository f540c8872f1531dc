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

package testutils

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BuildServer compiles the server into the server home.
func BuildServer(serverHome string) (string, error) {
	binary, err := filepath.Abs(filepath.Join(serverHome, ServerBinary))
	if err != nil {
		return "", err
	}

	log.Println("Building server...")
	cmd := exec.Command("go", "build", "-o", binary, "./cmd/server")
	cmd.Dir = ProjectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to build server: %w", err)
	}
	return binary, nil
}

// StartServer starts the server binary against the server home. extraEnv is appended to the
// current environment.
func StartServer(binary, serverHome string, extraEnv ...string) (*exec.Cmd, error) {
	absHome, err := filepath.Abs(serverHome)
	if err != nil {
		return nil, err
	}

	log.Println("Starting server...")
	cmd := exec.Command(binary, "-serverHome="+absHome)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extraEnv...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start server: %v", err)
	}
	return cmd, nil
}

// WaitForServer polls the liveness endpoint until the server answers or timeout passes.
func WaitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health/liveness")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("server at %s did not become live within %s", serverURL, timeout)
}

// StopServer stops the server process.
func StopServer(cmd *exec.Cmd) {
	log.Println("Stopping server...")
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}
