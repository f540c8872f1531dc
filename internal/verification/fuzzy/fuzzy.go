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

// Package fuzzy provides the approximate name and number matching used when comparing
// identity claims from different sources.
package fuzzy

import (
	"strings"
	"unicode"
)

// MatchThreshold is the similarity at or above which two names are treated as the same person.
const MatchThreshold = 0.8

// tokenThreshold is the per-token Levenshtein similarity that counts as a match.
const tokenThreshold = 0.8

const phoneDigits = 10

var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "shri": {}, "smt": {}, "dr": {}, "prof": {},
}

// NormalizeName lowercases s, collapses whitespace and drops leading honorifics.
func NormalizeName(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	for len(tokens) > 1 {
		if _, ok := honorifics[strings.TrimSuffix(tokens[0], ".")]; !ok {
			break
		}
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// Similarity scores two names in [0,1] by token overlap. A token of the shorter name matches
// when the other name holds an equal token or one with Levenshtein similarity above 0.8.
// The score is the matched count over the larger token count, so reordered names score 1.
func Similarity(a, b string) float64 {
	ta := strings.Fields(NormalizeName(a))
	tb := strings.Fields(NormalizeName(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	short, long := ta, tb
	if len(short) > len(long) {
		short, long = long, short
	}

	matched := 0
	for _, s := range short {
		for _, l := range long {
			if s == l || LevenshteinSimilarity(s, l) > tokenThreshold {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(max(len(ta), len(tb)))
}

// LevenshteinSimilarity returns 1 - distance/max(len(a), len(b)) over runes.
func LevenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// NormalizePhone keeps the last ten digits of s, dropping country codes and trunk prefixes.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}

// PhoneSuffixMatch reports whether two phone numbers share the same subscriber number.
func PhoneSuffixMatch(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	return na != "" && na == nb
}

// NormalizeAadhaarNumber strips whitespace and dashes, keeping every other character so that
// 4-digit suffixes and masked 12-digit numbers stay distinguishable.
func NormalizeAadhaarNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}
