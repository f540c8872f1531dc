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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/verification/crossverify"
)

const sampleXML = `<Certificate><CertificateData><KycRes><UidData uid="xxxxxxxx8347">` +
	`<Poi name="Rahul Kumar" dob="01-01-1995" gender="M"/><Poa vtc="Pune" pc="411001"/>` +
	`</UidData></KycRes></CertificateData></Certificate>`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecodeXML(t *testing.T) {
	out, err := run(t, "", "decode-xml", sampleXML)
	require.NoError(t, err)

	var identity aadhaar.DecodedIdentity
	require.NoError(t, json.Unmarshal([]byte(out), &identity))
	assert.True(t, identity.Success)
	assert.Equal(t, "Rahul Kumar", identity.Name)
	assert.Equal(t, "411001", identity.Pincode)
}

func TestDecodeXMLFromFileAndStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ekyc.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleXML+"\n"), 0o600))

	out, err := run(t, "", "decode-xml", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Rahul Kumar"`)

	out, err = run(t, sampleXML, "decode-xml", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Rahul Kumar"`)
}

func TestDecodeRequiresInput(t *testing.T) {
	_, err := run(t, "", "decode-qr")
	assert.ErrorContains(t, err, "payload argument")
}

func TestDecodeQRDelegatesXML(t *testing.T) {
	out, err := run(t, "", "decode-qr", sampleXML)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Rahul Kumar"`)
}

func TestSimilarity(t *testing.T) {
	out, err := run(t, "", "similarity", "Mr. Rahul Kumar", "rahul kumar")
	require.NoError(t, err)

	var res similarityResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "rahul kumar", res.NormalizedA)
	assert.InDelta(t, 1.0, res.Score, 1e-9)
	assert.True(t, res.Match)

	_, err = run(t, "", "similarity", "only-one")
	assert.Error(t, err)
}

func TestCrossVerify(t *testing.T) {
	in := `{"qr":{"success":true,"name":"Rahul Kumar","aadhaarNumber":"8347"},` +
		`"ocr":{"name":"Rahul Kumar","aadhaarNumber":"XXXX XXXX 8347"},"typed":{"name":"Rahul Kumar"}}`
	out, err := run(t, in, "cross-verify", "-")
	require.NoError(t, err)

	var res crossverify.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, crossverify.CheckMatch, res.Checks.QRVsTypedName)
	assert.Equal(t, crossverify.CheckMatch, res.Checks.QRVsOCRName)

	_, err = run(t, `{"typed":{"name":"x"}}`, "cross-verify", "-")
	assert.ErrorContains(t, err, "qr identity")

	_, err = run(t, `not json`, "cross-verify", "-")
	assert.ErrorContains(t, err, "parse input")
}

func TestPKCE(t *testing.T) {
	out, err := run(t, "", "pkce")
	require.NoError(t, err)

	var res pkceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.CodeVerifier, 43)
	assert.Len(t, res.CodeChallenge, 43)
	assert.NotEmpty(t, res.State)
}

func TestDumpOutput(t *testing.T) {
	out, err := run(t, "", "--dump", "similarity", "a", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "main.similarityResult")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "kycctl "+Version+"\n", out)
}
