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
	"github.com/spf13/cobra"

	"github.com/rentroll/kyc/internal/aadhaar/ekyc"
	"github.com/rentroll/kyc/internal/aadhaar/secureqr"
)

func newDecodeQRCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "decode-qr [payload|-]",
		Short: "Decode an Aadhaar Secure QR payload",
		Long: "Decode the numeric string read from an Aadhaar Secure QR code. Legacy XML QR payloads are " +
			"accepted as well.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			identity, err := secureqr.NewDecoder().DecodeContext(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return opts.print(cmd, identity)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the payload from a file")
	return cmd
}

func newDecodeXMLCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "decode-xml [xml|-]",
		Short: "Decode an Aadhaar eKYC XML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			xml, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return opts.print(cmd, ekyc.Parse(xml))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the document from a file")
	return cmd
}
