package entity

import (
	"context"
	"fmt"
	"testing"

	"github.com/kailas-cloud/medstore/internal/domain/asset"
	"github.com/kailas-cloud/medstore/internal/domain/document"
	"github.com/kailas-cloud/medstore/internal/domain/document/patch"
	"github.com/kailas-cloud/medstore/internal/domain/query"
	"github.com/kailas-cloud/medstore/internal/result"
)

type widget struct {
	ID        string
	Name      string
	Tags      []string
	CreatedAt string
	ImageURL  string
}

func widgetCodec() *Codec[widget] {
	return &Codec[widget]{
		Kind:       "widget",
		Collection: "widgets",
		AssetField: "imageUrl",
		ID:         func(w *widget) *string { return &w.ID },
		Asset:      func(w *widget) *string { return &w.ImageURL },
		Fields: []Field[widget]{
			String("name", func(w *widget) *string { return &w.Name }),
			Strings("tags", func(w *widget) *[]string { return &w.Tags }),
			String("createdAt", func(w *widget) *string { return &w.CreatedAt }).CreateOnly(),
		},
	}
}

// mockStore implements Store and records every call in order.
type mockStore struct {
	calls []string

	createFn   func(ctx context.Context, collection string, w document.Write) result.Result[document.Read]
	getFn      func(ctx context.Context, collection, id string) result.Result[document.Read]
	listFn     func(ctx context.Context, collection, pageToken string) result.Result[document.List]
	patchFn    func(ctx context.Context, collection, id string, p patch.Patch) result.Result[document.Read]
	runQueryFn func(ctx context.Context, q query.Request) result.Result[[]document.Match]
	deleteFn   func(ctx context.Context, collection, id string) result.Result[struct{}]
}

func (m *mockStore) Create(ctx context.Context, collection string, w document.Write) result.Result[document.Read] {
	m.calls = append(m.calls, "create "+collection)
	if m.createFn != nil {
		return m.createFn(ctx, collection, w)
	}
	return result.Ok(document.Read{Name: "projects/p/databases/d/documents/" + collection + "/gen1"})
}

func (m *mockStore) Get(ctx context.Context, collection, id string) result.Result[document.Read] {
	m.calls = append(m.calls, "get "+collection+"/"+id)
	if m.getFn != nil {
		return m.getFn(ctx, collection, id)
	}
	return result.Fail[document.Read](result.NewFailure("get", result.Server, nil))
}

func (m *mockStore) List(ctx context.Context, collection, pageToken string) result.Result[document.List] {
	m.calls = append(m.calls, "list "+collection+"?"+pageToken)
	if m.listFn != nil {
		return m.listFn(ctx, collection, pageToken)
	}
	return result.Ok(document.List{})
}

func (m *mockStore) Patch(ctx context.Context, collection, id string, p patch.Patch) result.Result[document.Read] {
	m.calls = append(m.calls, fmt.Sprintf("patch %s/%s %v", collection, id, p.Mask().Fields()))
	if m.patchFn != nil {
		return m.patchFn(ctx, collection, id, p)
	}
	return result.Ok(document.Read{Name: collection + "/" + id})
}

func (m *mockStore) RunQuery(ctx context.Context, q query.Request) result.Result[[]document.Match] {
	m.calls = append(m.calls, "query "+q.Collection())
	if m.runQueryFn != nil {
		return m.runQueryFn(ctx, q)
	}
	return result.Ok([]document.Match{})
}

func (m *mockStore) Delete(ctx context.Context, collection, id string) result.Result[struct{}] {
	m.calls = append(m.calls, "delete "+collection+"/"+id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collection, id)
	}
	return result.Ok(struct{}{})
}

// recordingUploader is an asset.Uploader that appends to the store's call log
// so ordering across collaborators can be asserted.
func recordingUploader(ms *mockStore, url string, err error) asset.Uploader {
	return asset.UploaderFunc(func(_ context.Context, _ []byte, folder, name string) (string, error) {
		ms.calls = append(ms.calls, "upload "+folder+"/"+name)
		if err != nil {
			return "", err
		}
		return url, nil
	})
}

func newTestRepo(t *testing.T) (*Repo[widget], *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, recordingUploader(ms, "https://cdn.test/widgets/gen1", nil), widgetCodec()), ms
}

func serverFail[T any](status int) result.Result[T] {
	f := result.NewFailure("test", result.Server, fmt.Errorf("status %d", status))
	f.Status = status
	return result.Fail[T](f)
}
