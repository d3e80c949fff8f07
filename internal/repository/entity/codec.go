package entity

import (
	"github.com/kailas-cloud/medstore/internal/domain/document"
	"github.com/kailas-cloud/medstore/internal/domain/field"
)

// IDField is the document field that mirrors the store-generated identifier.
const IDField = "id"

// Field maps one entity attribute to a document field.
type Field[T any] struct {
	name       string
	encode     func(*T) field.Value
	decode     func(field.Fields, *T)
	createOnly bool
}

// String declares a string attribute. at returns the address of the attribute.
func String[T any](name string, at func(*T) *string) Field[T] {
	return Field[T]{
		name:   name,
		encode: func(v *T) field.Value { return field.Str(*at(v)) },
		decode: func(fs field.Fields, v *T) { *at(v) = field.DecodeString(fs, name) },
	}
}

// Strings declares a string-array attribute.
func Strings[T any](name string, at func(*T) *[]string) Field[T] {
	return Field[T]{
		name:   name,
		encode: func(v *T) field.Value { return field.Strs(*at(v)) },
		decode: func(fs field.Fields, v *T) { *at(v) = field.DecodeStringArray(fs, name) },
	}
}

// CreateOnly excludes the field from update masks.
func (f Field[T]) CreateOnly() Field[T] {
	f.createOnly = true
	return f
}

// Name returns the document field name.
func (f Field[T]) Name() string { return f.name }

// Codec is the declarative mapping between an entity kind and its documents.
// ID and Fields are required. Asset and AssetField are set together for
// kinds that carry an uploaded binary.
type Codec[T any] struct {
	Kind       string
	Collection string
	// Folder is the asset folder; defaults to Collection.
	Folder     string
	AssetField string
	ID         func(*T) *string
	Asset      func(*T) *string
	Fields     []Field[T]
}

// HasAsset reports whether the kind carries an asset reference.
func (c *Codec[T]) HasAsset() bool {
	return c.AssetField != "" && c.Asset != nil
}

func (c *Codec[T]) folder() string {
	if c.Folder != "" {
		return c.Folder
	}
	return c.Collection
}

// Encode builds the fields sent on create: everything except the id and
// asset reference.
func (c *Codec[T]) Encode(v *T) field.Fields {
	out := make(field.Fields, len(c.Fields))
	for _, f := range c.Fields {
		out[f.name] = f.encode(v)
	}
	return out
}

// Mutable returns the update mask fields and their values.
func (c *Codec[T]) Mutable(v *T) ([]string, field.Fields) {
	names := make([]string, 0, len(c.Fields))
	out := make(field.Fields, len(c.Fields))
	for _, f := range c.Fields {
		if f.createOnly {
			continue
		}
		names = append(names, f.name)
		out[f.name] = f.encode(v)
	}
	return names, out
}

// Decode maps a document to an entity. Missing or mistyped fields decode to
// zero values. A document whose id field was never patched falls back to
// the identifier in its resource name.
func (c *Codec[T]) Decode(doc *document.Read) T {
	var v T
	for _, f := range c.Fields {
		f.decode(doc.Fields, &v)
	}
	id := field.DecodeString(doc.Fields, IDField)
	if id == "" {
		id = doc.ID()
	}
	*c.ID(&v) = id
	if c.HasAsset() {
		*c.Asset(&v) = field.DecodeString(doc.Fields, c.AssetField)
	}
	return v
}
