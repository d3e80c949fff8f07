package medstore

import (
	"context"
	"time"
)

// catalogUseCase is the internal interface one Repository delegates to.
type catalogUseCase[T any] interface {
	Create(ctx context.Context, v T, asset []byte) (T, error)
	Update(ctx context.Context, id string, v T, asset []byte) (T, error)
	Delete(ctx context.Context, id string) error
	DeleteBy(ctx context.Context, name, value string) error
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Find(ctx context.Context, conds Conditions) ([]T, error)
}

// Repository reads and writes entities of one kind.
type Repository[T any] struct {
	kind string
	svc  catalogUseCase[T]
	obs  *observer
}

// Kind returns the collection the repository works on.
func (r *Repository[T]) Kind() string { return r.kind }

// Create validates v, stores it and, when asset is non-empty, uploads the
// asset and records its URL. The returned entity carries the new id.
//
// On failure after the document was created the error is a *WriteError whose
// ID and Stage describe what was left in the store. Retrying Create makes a
// second document.
func (r *Repository[T]) Create(ctx context.Context, v T, asset []byte) (out T, err error) {
	defer r.observe("create", time.Now(), &err)
	return r.svc.Create(ctx, v, asset)
}

// Update patches the mutable fields of the entity with the given id and,
// when asset is non-empty, replaces its asset.
func (r *Repository[T]) Update(ctx context.Context, id string, v T, asset []byte) (out T, err error) {
	defer r.observe("update", time.Now(), &err)
	return r.svc.Update(ctx, id, v, asset)
}

// Delete removes the entity with the given id. A missing entity is a Server
// failure wrapping ErrNoMatch.
func (r *Repository[T]) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)
	return r.svc.Delete(ctx, id)
}

// DeleteBy removes the first entity whose field name equals value.
func (r *Repository[T]) DeleteBy(ctx context.Context, name, value string) (err error) {
	defer r.observe("delete_by", time.Now(), &err)
	return r.svc.DeleteBy(ctx, name, value)
}

// Get returns the entity with the given id.
func (r *Repository[T]) Get(ctx context.Context, id string) (out T, err error) {
	defer r.observe("get", time.Now(), &err)
	return r.svc.Get(ctx, id)
}

// List returns every entity of the kind in store order.
func (r *Repository[T]) List(ctx context.Context) (out []T, err error) {
	defer r.observe("list", time.Now(), &err)
	return r.svc.List(ctx)
}

// FindBy returns the entities matching every condition. Empty conditions
// list everything.
func (r *Repository[T]) FindBy(ctx context.Context, conds Conditions) (out []T, err error) {
	defer r.observe("find", time.Now(), &err)
	return r.svc.Find(ctx, conds)
}

func (r *Repository[T]) observe(op string, start time.Time, err *error) {
	r.obs.observe(r.kind+"."+op, start, *err)
}
