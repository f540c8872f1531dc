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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

// Version is the CLI version reported by the version command.
var Version = "0.1.0"

type rootOptions struct {
	dump bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "kycctl",
		Short: "kycctl – offline tools for the tenant verification service",
		Long: "kycctl decodes Aadhaar Secure QR and eKYC XML payloads, scores name similarity and runs " +
			"cross verification without a running server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.dump, "dump", false, "Print results as a Go value dump instead of JSON")

	rootCmd.AddCommand(
		newDecodeQRCommand(opts),
		newDecodeXMLCommand(opts),
		newSimilarityCommand(opts),
		newCrossVerifyCommand(opts),
		newPKCECommand(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "kycctl %s\n", Version)
			},
		},
	)
	return rootCmd
}

// print writes v as indented JSON, or as a spew dump when --dump is set.
func (o *rootOptions) print(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	if o.dump {
		spew.Fdump(out, v)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the payload from the first argument, the file flag or stdin when the
// argument is "-".
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return strings.TrimSpace(string(b)), nil
	case len(args) == 1 && args[0] == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New("a payload argument, - for stdin, or --file is required")
	}
}
