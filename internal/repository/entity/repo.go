// Package entity is the generic write orchestrator and read protocol for
// document-backed entity kinds.
package entity

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/medstore/internal/domain/asset"
	"github.com/kailas-cloud/medstore/internal/domain/document"
	"github.com/kailas-cloud/medstore/internal/domain/document/patch"
	"github.com/kailas-cloud/medstore/internal/domain/field"
	"github.com/kailas-cloud/medstore/internal/domain/query"
	"github.com/kailas-cloud/medstore/internal/metrics"
	"github.com/kailas-cloud/medstore/internal/result"
)

// Store is the consumer interface for the document store (ISP).
type Store interface {
	Create(ctx context.Context, collection string, w document.Write) result.Result[document.Read]
	Get(ctx context.Context, collection, id string) result.Result[document.Read]
	List(ctx context.Context, collection, pageToken string) result.Result[document.List]
	Patch(ctx context.Context, collection, id string, p patch.Patch) result.Result[document.Read]
	RunQuery(ctx context.Context, q query.Request) result.Result[[]document.Match]
	Delete(ctx context.Context, collection, id string) result.Result[struct{}]
}

// Repo runs the create, update, delete and read protocols for one kind.
// It keeps no per-call state; independent writes may run concurrently.
type Repo[T any] struct {
	store    Store
	uploader asset.Uploader
	codec    *Codec[T]
}

// New creates a repository. A nil uploader rejects every asset.
func New[T any](s Store, u asset.Uploader, c *Codec[T]) *Repo[T] {
	if u == nil {
		u = asset.Disabled{}
	}
	return &Repo[T]{store: s, uploader: u, codec: c}
}

// Codec returns the repository's codec.
func (r *Repo[T]) Codec() *Codec[T] { return r.codec }

// Create persists v as a new document. When data is non-empty and the kind
// carries an asset, the bytes are uploaded under the generated id and the
// asset reference is patched in. The returned entity is v enriched with the
// id and asset URL; it is not re-fetched.
//
// Steps are strictly sequential. A failure after the first step leaves a
// partial document behind; the returned *WriteError names the stage reached.
func (r *Repo[T]) Create(ctx context.Context, v T, data []byte) (T, error) {
	c := r.codec

	created := r.store.Create(ctx, c.Collection, document.NewWrite(c.Encode(&v)))
	if !created.IsOk() {
		return v, r.fail("", StageNone, serverFailure("create "+c.Collection, created.Failure()))
	}
	doc := created.Value()
	id := doc.ID()
	if id == "" {
		return v, r.fail("", StageCreated, serverFailure("create "+c.Collection,
			fmt.Errorf("empty resource name %q", doc.Name)))
	}

	if res := r.store.Patch(ctx, c.Collection, id, patch.Single(IDField, field.Str(id))); !res.IsOk() {
		return v, r.fail(id, StageCreated, serverFailure("patch "+c.Collection+"/"+id, res.Failure()))
	}
	*c.ID(&v) = id

	if !c.HasAsset() {
		return v, nil
	}
	if len(data) == 0 {
		// The asset field is never part of the create body.
		*c.Asset(&v) = ""
		return v, nil
	}
	return r.attach(ctx, v, id, data, StageIdentityPatched)
}

// Update patches the kind's mutable fields of an existing document, then
// replaces the asset when data is non-empty. Without data the asset
// reference is left untouched. An unknown id is a Server failure and
// creates nothing.
func (r *Repo[T]) Update(ctx context.Context, v T, data []byte) (T, error) {
	c := r.codec
	id := *c.ID(&v)
	if id == "" {
		return v, r.fail("", StageNone, result.NewFailure("update "+c.Collection, result.Unknown, ErrMissingID))
	}

	names, fields := c.Mutable(&v)
	p, err := patch.New(patch.NewMask(names...), fields)
	if err != nil {
		return v, r.fail(id, StageNone, result.NewFailure("update "+c.Collection, result.Unknown, err))
	}
	if res := r.store.Patch(ctx, c.Collection, id, p.MustExist()); !res.IsOk() {
		return v, r.fail(id, StageNone, serverFailure("patch "+c.Collection+"/"+id, res.Failure()))
	}

	if !c.HasAsset() || len(data) == 0 {
		return v, nil
	}
	return r.attach(ctx, v, id, data, StageFieldsPatched)
}

// attach uploads data under the entity id and patches the asset reference.
func (r *Repo[T]) attach(ctx context.Context, v T, id string, data []byte, reached Stage) (T, error) {
	c := r.codec

	url, err := r.uploader.Upload(ctx, data, c.folder(), id)
	if err != nil {
		return v, r.fail(id, reached, serverFailure("upload "+c.folder()+"/"+id, err))
	}

	res := r.store.Patch(ctx, c.Collection, id, patch.Single(c.AssetField, field.Str(url)).MustExist())
	if !res.IsOk() {
		return v, r.fail(id, StageAssetUploaded, serverFailure("patch "+c.Collection+"/"+id, res.Failure()))
	}
	*c.Asset(&v) = url
	return v, nil
}

func (r *Repo[T]) fail(id string, stage Stage, f *result.Failure) error {
	if stage.Partial() {
		metrics.PartialWritesTotal.WithLabelValues(r.codec.Kind, stage.String()).Inc()
	}
	return &WriteError{Kind: r.codec.Kind, ID: id, Stage: stage, Err: f}
}

// DeleteBy deletes the first document whose field name equals value.
// Zero matches is a Server failure and issues no delete.
func (r *Repo[T]) DeleteBy(ctx context.Context, name, value string) error {
	c := r.codec
	op := "delete " + c.Collection

	q, err := query.Equality(c.Collection, query.Conditions{name: value}, query.SingleMatch)
	if err != nil {
		return result.NewFailure(op, result.Unknown, err)
	}
	found := r.store.RunQuery(ctx, q)
	if !found.IsOk() {
		return serverFailure(op, found.Failure())
	}
	docs := document.Matched(found.Value())
	if len(docs) == 0 {
		return result.NewFailure(op, result.Server, fmt.Errorf("%s=%q: %w", name, value, ErrNoMatch))
	}
	id := docs[0].ID()
	if id == "" {
		return result.NewFailure(op, result.Server, fmt.Errorf("match without resource name: %w", ErrNoMatch))
	}
	return r.Delete(ctx, id)
}

// Delete removes the document with the given id.
func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	c := r.codec
	if id == "" {
		return result.NewFailure("delete "+c.Collection, result.Unknown, ErrMissingID)
	}
	if res := r.store.Delete(ctx, c.Collection, id); !res.IsOk() {
		return serverFailure("delete "+c.Collection+"/"+id, res.Failure())
	}
	return nil
}

// Get fetches one entity. Not-found is a Server failure.
func (r *Repo[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, result.NewFailure("get "+r.codec.Collection, result.Unknown, ErrMissingID)
	}
	doc, err := r.store.Get(ctx, r.codec.Collection, id).Unpack()
	if err != nil {
		return zero, err
	}
	return r.codec.Decode(&doc), nil
}

// GetAll fetches the whole collection in store order, following page tokens.
func (r *Repo[T]) GetAll(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	token := ""
	for {
		page, err := r.store.List(ctx, r.codec.Collection, token).Unpack()
		if err != nil {
			return nil, err
		}
		for i := range page.Documents {
			out = append(out, r.codec.Decode(&page.Documents[i]))
		}
		if page.NextPageToken == "" || page.NextPageToken == token {
			return out, nil
		}
		token = page.NextPageToken
	}
}

// FindBy returns every entity whose fields equal conds, in store order.
func (r *Repo[T]) FindBy(ctx context.Context, conds query.Conditions) ([]T, error) {
	q, err := query.Equality(r.codec.Collection, conds, query.Unbounded)
	if err != nil {
		return nil, result.NewFailure("find "+r.codec.Collection, result.Unknown, err)
	}
	matches, err := r.store.RunQuery(ctx, q).Unpack()
	if err != nil {
		return nil, err
	}
	docs := document.Matched(matches)
	out := make([]T, 0, len(docs))
	for i := range docs {
		out = append(out, r.codec.Decode(&docs[i]))
	}
	return out, nil
}
