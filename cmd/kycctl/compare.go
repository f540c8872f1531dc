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

	"github.com/spf13/cobra"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/digilocker/oauth"
	"github.com/rentroll/kyc/internal/verification/crossverify"
	"github.com/rentroll/kyc/internal/verification/fuzzy"
)

type similarityResult struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	NormalizedA string  `json:"normalizedA"`
	NormalizedB string  `json:"normalizedB"`
	Score       float64 `json:"score"`
	Match       bool    `json:"match"`
}

func newSimilarityCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "similarity <name> <name>",
		Short: "Score how similar two person names are",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score := fuzzy.Similarity(args[0], args[1])
			return opts.print(cmd, similarityResult{
				A:           args[0],
				B:           args[1],
				NormalizedA: fuzzy.NormalizeName(args[0]),
				NormalizedB: fuzzy.NormalizeName(args[1]),
				Score:       score,
				Match:       score >= fuzzy.MatchThreshold,
			})
		},
	}
}

type crossVerifyInput struct {
	QR    *aadhaar.DecodedIdentity `json:"qr"`
	OCR   crossverify.OCRData      `json:"ocr"`
	Typed crossverify.TypedData    `json:"typed"`
}

func newCrossVerifyCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "cross-verify [json|-]",
		Short: "Compare a decoded identity with OCR and typed data",
		Long:  `Input is a JSON object {"qr": {...}, "ocr": {...}, "typed": {...}}.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			var in crossVerifyInput
			if err := json.Unmarshal([]byte(raw), &in); err != nil {
				return fmt.Errorf("parse input: %w", err)
			}
			if in.QR == nil {
				return errors.New("input must include a qr identity")
			}
			return opts.print(cmd, crossverify.CrossVerify(in.QR, in.OCR, in.Typed))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the input from a file")
	return cmd
}

type pkceResult struct {
	State         string `json:"state"`
	CodeVerifier  string `json:"codeVerifier"`
	CodeChallenge string `json:"codeChallenge"`
}

func newPKCECommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pkce",
		Short: "Generate a state value and a PKCE verifier and challenge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := oauth.GenerateState()
			if err != nil {
				return fmt.Errorf("generate state: %w", err)
			}
			pkce := oauth.NewPKCEChallenge()
			return opts.print(cmd, pkceResult{
				State:         state,
				CodeVerifier:  pkce.CodeVerifier,
				CodeChallenge: pkce.CodeChallenge,
			})
		},
	}
}
