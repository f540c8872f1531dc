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

package document

import (
	"errors"
	"fmt"
)

// Kind is how a fetched document body was interpreted.
type Kind string

const (
	// KindXML is an XML document kept as text.
	KindXML Kind = "xml"
	// KindJSON is a JSON document parsed into a generic value.
	KindJSON Kind = "json"
	// KindBinary is any other body, kept base64 encoded.
	KindBinary Kind = "binary"
)

// IssuedDocumentRef identifies a document issued to the account holder.
type IssuedDocumentRef struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	DocType     string `json:"doctype,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	IssuerID    string `json:"issuerid,omitempty"`
	IssueDate   string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// Document is a fetched document body.
type Document struct {
	Type        Kind        `json:"type"`
	ContentType string      `json:"contentType"`
	Text        string      `json:"text,omitempty"`
	JSON        interface{} `json:"json,omitempty"`
	Base64      string      `json:"base64,omitempty"`
	Size        int         `json:"size"`
}

// Content returns the body in its interpreted form.
func (d *Document) Content() interface{} {
	switch d.Type {
	case KindXML:
		return d.Text
	case KindJSON:
		return d.JSON
	default:
		return d.Base64
	}
}

// ErrNoDocumentURI is returned when a fetch is requested without a URI.
var ErrNoDocumentURI = errors.New("document uri is empty")

// DocumentListError is returned when every issued-documents endpoint failed.
type DocumentListError struct {
	Attempts int
	Err      error
}

func (e *DocumentListError) Error() string {
	return fmt.Sprintf("listing issued documents failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DocumentListError) Unwrap() error {
	return e.Err
}

// DocumentFetchError is returned when a document endpoint answers with a non-2xx status.
type DocumentFetchError struct {
	URL    string
	Status int
	Body   string
}

func (e *DocumentFetchError) Error() string {
	return fmt.Sprintf("document request to %s failed with status %d: %s", e.URL, e.Status, e.Body)
}
