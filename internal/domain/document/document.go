// Package document defines the store's request and response envelopes.
package document

import (
	"strings"
	"time"

	"github.com/kailas-cloud/medstore/internal/domain/field"
)

// Write is the body of a create or patch call.
type Write struct {
	Fields field.Fields `json:"fields"`
}

// NewWrite builds a write envelope from fields.
func NewWrite(fields field.Fields) Write {
	if fields == nil {
		fields = field.Fields{}
	}
	return Write{Fields: fields}
}

// Read is a document as returned by the store.
// Name is the slash-delimited resource name; its last segment is the
// store-generated identifier.
type Read struct {
	Name       string       `json:"name"`
	Fields     field.Fields `json:"fields"`
	CreateTime time.Time    `json:"createTime"`
	UpdateTime time.Time    `json:"updateTime"`
}

// ID returns the identifier carried by the resource name.
func (r *Read) ID() string { return IDFromName(r.Name) }

// List is a page of documents. Order is whatever the store returned.
type List struct {
	Documents     []Read `json:"documents"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// Match is one element of a query response. Elements without a Document
// only report progress (readTime) and do not count as matches.
type Match struct {
	Document *Read     `json:"document,omitempty"`
	ReadTime time.Time `json:"readTime"`
}

// Matched returns the documents carried by a query response, in order.
func Matched(ms []Match) []Read {
	out := make([]Read, 0, len(ms))
	for _, m := range ms {
		if m.Document != nil {
			out = append(out, *m.Document)
		}
	}
	return out
}

// IDFromName extracts the trailing path segment of a resource name.
// "collections/foo/documents/abc123" yields "abc123"; a trailing slash is ignored.
func IDFromName(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
