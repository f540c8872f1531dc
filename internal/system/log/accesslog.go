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

package log

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

// redactedQueryParams never reach the access log. A provider redirect carries the one-time
// authorization code and the flow state in its query string.
var redactedQueryParams = []string{"code", "state", "access_token", "token"}

// AccessLogHandler writes one structured entry per request after next has responded.
// Server errors are logged at warn level.
func AccessLogHandler(logger *Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []Field{
			String("remoteAddr", clientHost(r.RemoteAddr)),
			String("method", r.Method),
			String("path", r.URL.Path),
		}
		if r.URL.RawQuery != "" {
			fields = append(fields, String("query", redactQuery(r.URL.Query())))
		}
		fields = append(fields,
			String("proto", r.Proto),
			Int("status", rec.status),
			Int("bytes", rec.bytes),
			Int64("durationMs", time.Since(start).Milliseconds()))

		if rec.status >= http.StatusInternalServerError {
			logger.Warn("Request failed", fields...)
			return
		}
		logger.Info("Request served", fields...)
	})
}

func clientHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
		return host
	}
	return remoteAddr
}

func redactQuery(q url.Values) string {
	for _, key := range redactedQueryParams {
		if _, ok := q[key]; ok {
			q.Set(key, "redacted")
		}
	}
	return q.Encode()
}

// statusRecorder remembers the first status written and counts body bytes.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
