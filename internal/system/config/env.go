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
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rentroll/kyc/internal/system/log"
)

// Environment variables that override values read from deployment.yaml.
const (
	EnvDigiLockerClientID       = "DIGILOCKER_CLIENT_ID"
	EnvDigiLockerClientSecret   = "DIGILOCKER_CLIENT_SECRET"
	EnvDigiLockerRedirectURI    = "DIGILOCKER_REDIRECT_URI"
	EnvDigiLockerAuthURL        = "DIGILOCKER_AUTH_URL"
	EnvDigiLockerTokenURL       = "DIGILOCKER_TOKEN_URL"
	EnvDigiLockerProfileURL     = "DIGILOCKER_PROFILE_URL"
	EnvDigiLockerBaseURL        = "DIGILOCKER_BASE_URL"
	EnvDigiLockerScopes         = "DIGILOCKER_SCOPES"
	EnvDigiLockerTimeoutSeconds = "DIGILOCKER_TIMEOUT_SECONDS"
	EnvDigiLockerTestMode       = "DIGILOCKER_TEST_MODE"
	EnvKYCFlowTokenKey          = "KYC_FLOW_TOKEN_KEY"
	EnvDBType                   = "DB_TYPE"
	EnvDBHostname               = "DB_HOSTNAME"
	EnvDBPort                   = "DB_PORT"
	EnvDBName                   = "DB_NAME"
	EnvDBUsername               = "DB_USERNAME"
	EnvDBPassword               = "DB_PASSWORD"
	EnvDBPath                   = "DB_PATH"
)

// LoadEnvFile loads a dotenv file into the process environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.GetLogger().Debug("No env file found, using process environment", log.String("path", path))
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnvOverrides overlays environment variables onto the loaded configuration.
func ApplyEnvOverrides(cfg *Config) {
	dl := &cfg.DigiLocker
	overrideString(&dl.ClientID, EnvDigiLockerClientID)
	overrideString(&dl.ClientSecret, EnvDigiLockerClientSecret)
	overrideString(&dl.RedirectURI, EnvDigiLockerRedirectURI)
	overrideString(&dl.AuthorizationEndpoint, EnvDigiLockerAuthURL)
	overrideString(&dl.TokenEndpoint, EnvDigiLockerTokenURL)
	overrideString(&dl.ProfileEndpoint, EnvDigiLockerProfileURL)
	overrideString(&dl.BaseURL, EnvDigiLockerBaseURL)
	overrideInt(&dl.RequestTimeout, EnvDigiLockerTimeoutSeconds)
	overrideBool(&dl.TestMode, EnvDigiLockerTestMode)
	if v, ok := os.LookupEnv(EnvDigiLockerScopes); ok && strings.TrimSpace(v) != "" {
		dl.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	overrideString(&cfg.KYC.FlowTokenKey, EnvKYCFlowTokenKey)

	ds := &cfg.Database.KYC
	overrideString(&ds.Type, EnvDBType)
	overrideString(&ds.Hostname, EnvDBHostname)
	overrideInt(&ds.Port, EnvDBPort)
	overrideString(&ds.Name, EnvDBName)
	overrideString(&ds.Username, EnvDBUsername)
	overrideString(&ds.Password, EnvDBPassword)
	overrideString(&ds.Path, EnvDBPath)
}

func overrideString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

func overrideInt(target *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.GetLogger().Warn("Ignoring non-numeric environment override", log.String("key", key))
		return
	}
	*target = n
}

func overrideBool(target *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.GetLogger().Warn("Ignoring non-boolean environment override", log.String("key", key))
		return
	}
	*target = b
}
