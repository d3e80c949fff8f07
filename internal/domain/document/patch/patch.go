// Package patch builds partial document updates: an update mask plus the
// fields it covers.
package patch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kailas-cloud/medstore/internal/domain/document"
	"github.com/kailas-cloud/medstore/internal/domain/field"
)

// MaskParam is the query parameter the store reads field paths from.
const MaskParam = "updateMask.fieldPaths"

// ExistsParam is the precondition parameter that makes a patch fail with
// NOT_FOUND instead of creating the document.
const ExistsParam = "currentDocument.exists"

// Mask is an ordered set of field paths a patch may modify.
type Mask struct {
	paths []string
}

// NewMask builds a mask from field names. Order is kept and duplicates
// after the first occurrence are dropped. Empty names are ignored.
func NewMask(fields ...string) Mask {
	seen := make(map[string]struct{}, len(fields))
	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		paths = append(paths, f)
	}
	return Mask{paths: paths}
}

// Fields returns a copy of the field paths.
func (m Mask) Fields() []string {
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Len returns the number of field paths.
func (m Mask) Len() int { return len(m.paths) }

// Contains reports whether path is in the mask.
func (m Mask) Contains(path string) bool {
	for _, p := range m.paths {
		if p == path {
			return true
		}
	}
	return false
}

// Query returns the mask as URL query values.
func (m Mask) Query() url.Values {
	q := url.Values{}
	for _, p := range m.paths {
		q.Add(MaskParam, p)
	}
	return q
}

// String renders the mask in its URL-encoded wire form.
func (m Mask) String() string {
	parts := make([]string, len(m.paths))
	for i, p := range m.paths {
		parts[i] = url.QueryEscape(MaskParam) + "=" + url.QueryEscape(p)
	}
	return strings.Join(parts, "&")
}

// Patch is a partial update: the mask and the values for the masked fields.
type Patch struct {
	mask      Mask
	fields    field.Fields
	mustExist bool
}

// New validates and creates a Patch. Every masked path must have a value;
// values outside the mask are rejected rather than silently sent.
func New(mask Mask, fields field.Fields) (Patch, error) {
	if mask.Len() == 0 {
		return Patch{}, fmt.Errorf("update mask is empty")
	}
	for _, p := range mask.paths {
		if _, ok := fields[p]; !ok {
			return Patch{}, fmt.Errorf("no value for masked field %q", p)
		}
	}
	for k := range fields {
		if !mask.Contains(k) {
			return Patch{}, fmt.Errorf("field %q is outside the update mask", k)
		}
	}
	return Patch{mask: mask, fields: fields.Clone()}, nil
}

// Single is a one-field patch.
func Single(name string, v field.Value) Patch {
	return Patch{mask: NewMask(name), fields: field.Fields{name: v}}
}

// Mask returns the update mask.
func (p Patch) Mask() Mask { return p.mask }

// MustExist returns a copy of p that only applies to an existing document.
func (p Patch) MustExist() Patch {
	p.mustExist = true
	return p
}

// RequiresExisting reports whether the patch carries the exists precondition.
func (p Patch) RequiresExisting() bool { return p.mustExist }

// Query returns the mask and precondition as URL query values.
func (p Patch) Query() url.Values {
	q := p.mask.Query()
	if p.mustExist {
		q.Set(ExistsParam, "true")
	}
	return q
}

// Write returns the request envelope for the patch.
func (p Patch) Write() document.Write { return document.NewWrite(p.fields.Clone()) }
