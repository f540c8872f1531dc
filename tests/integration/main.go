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

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/tests/integration/testutils"
)

const (
	clientID     = "RRINTTEST"
	clientSecret = "integration-secret"
	flowTokenKey = "aW50ZWdyYXRpb24tZmxvdy10b2tlbi1rZXktMzJiISE="
)

// sampleAadhaarXML is a de-identified eKYC document issued by the mock provider.
const sampleAadhaarXML = `<?xml version="1.0" encoding="UTF-8"?>
<Certificate><CertificateData><KycRes><UidData uid="xxxxxxxx8347">` +
	`<Poi name="Rahul Kumar" dob="01-01-1995" gender="M"/>` +
	`<Poa co="S/O Anil Kumar" house="12" street="MG Road" vtc="Pune" dist="Pune" state="Maharashtra" pc="411001"/>` +
	`</UidData></KycRes></CertificateData></Certificate>`

func main() {
	// Step 1: Start the mock DigiLocker provider.
	digiLocker := testutils.NewMockDigiLockerServer(clientID, clientSecret, testutils.DigiLockerUser{
		DigiLockerID: "dl-int-0001",
		Name:         "Rahul Kumar",
		DOB:          "01011995",
		Gender:       "M",
		Mobile:       "9876543210",
		EAadhaar:     "Y",
		AadhaarXML:   sampleAadhaarXML,
	})
	digiLocker.Start()
	defer digiLocker.Stop()

	// Step 2: Prepare the server home with a deployment.yaml pointing at the mock provider.
	if err := testutils.PrepareServerHome(testutils.ServerHome, serverConfig(digiLocker.GetURL())); err != nil {
		fmt.Printf("Failed to prepare server home: %v\n", err)
		os.Exit(1)
	}
	certPath, err := filepath.Abs(filepath.Join(testutils.ServerHome, testutils.MockCertFile))
	if err == nil {
		err = digiLocker.WriteCertificate(certPath)
	}
	if err != nil {
		fmt.Printf("Failed to write mock provider certificate: %v\n", err)
		os.Exit(1)
	}

	// Step 3: Create the database and seed tenants.
	err = testutils.SeedTenants(testutils.ServerHome, []testutils.Tenant{
		{ID: "t-int-1", Name: "Rahul Kumar", Phone: "+91 98765 43210"},
		{ID: "t-int-2", Name: "Suresh Singh", Phone: "+91 91234 56789"},
		{ID: "t-int-3", Name: "R. Kumar", Phone: "09876543210", FirstName: "Rahul", LastName: "Kumar"},
	})
	if err != nil {
		fmt.Printf("Failed to seed database: %v\n", err)
		os.Exit(1)
	}

	// Step 4: Build and start the server.
	binary, err := testutils.BuildServer(testutils.ServerHome)
	if err != nil {
		fmt.Printf("Failed to build server: %v\n", err)
		os.Exit(1)
	}
	serverCmd, err := testutils.StartServer(binary, testutils.ServerHome, "SSL_CERT_FILE="+certPath,
		"LOG_LEVEL=debug")
	if err != nil {
		fmt.Printf("Failed to start server: %v\n", err)
		os.Exit(1)
	}
	defer testutils.StopServer(serverCmd)

	serverURL := fmt.Sprintf("http://localhost:%d", testutils.ServerPort)
	fmt.Println("Waiting for the server to start...")
	if err := testutils.WaitForServer(serverURL, 30*time.Second); err != nil {
		fmt.Printf("Server did not start: %v\n", err)
		testutils.StopServer(serverCmd)
		os.Exit(1)
	}

	// Step 5: Run all tests.
	if err := runTests(serverURL, digiLocker.GetURL()); err != nil {
		fmt.Printf("there are test failures: %v\n", err)
		testutils.StopServer(serverCmd)
		digiLocker.Stop()
		os.Exit(1)
	}
}

func serverConfig(providerURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Hostname: "localhost", Port: testutils.ServerPort, HTTPOnly: true},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://localhost:3000"}},
		Database: config.DatabaseConfig{KYC: config.DataSource{
			Type: "sqlite",
			Path: testutils.DatabaseFilePath,
		}},
		DigiLocker: config.DigiLockerConfig{
			ClientID:              clientID,
			ClientSecret:          clientSecret,
			RedirectURI:           "https://localhost:3000/kyc/callback",
			AuthorizationEndpoint: providerURL + "/public/oauth2/1/authorize",
			TokenEndpoint:         providerURL + "/public/oauth2/1/token",
			ProfileEndpoint:       providerURL + "/public/oauth2/1/user",
			BaseURL:               providerURL,
			Scopes:                []string{"openid", "issued_documents"},
			RequestTimeout:        5,
			StateTTL:              600,
		},
		KYC: config.KYCConfig{
			FlowTokenKey:     flowTokenKey,
			XMLEmbedLimit:    50000,
			VerifiedBy:       "digilocker",
			SimulateFailures: true,
		},
	}
}

func runTests(serverURL, digiLockerURL string) error {
	// Clean the test cache to avoid getting results from previous runs.
	cmd := exec.Command("go", "clean", "-testcache")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to clean test cache: %w", err)
	}

	_, err := exec.LookPath("gotestsum")
	if err == nil {
		fmt.Println("Running integration tests using gotestsum...")
		cmd = exec.Command("gotestsum", "--format", "testname", "--", "-p=1", "./...")
	} else {
		fmt.Println("Running integration tests using go test...")
		cmd = exec.Command("go", "test", "-p=1", "-v", "./...")
	}

	cmd.Env = append(os.Environ(),
		testutils.EnvServerURL+"="+serverURL,
		testutils.EnvDigiLockerURL+"="+digiLockerURL,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
