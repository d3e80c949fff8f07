// Package catalog is the use case layer over the clinic entity repositories.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain"
	"github.com/kailas-cloud/medstore/internal/domain/clinic"
	"github.com/kailas-cloud/medstore/internal/domain/query"
	"github.com/kailas-cloud/medstore/internal/logger"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
	"github.com/kailas-cloud/medstore/internal/result"
)

// Service validates and stamps entities of one kind before handing them to
// the repository. PT is the pointer type carrying Validate and Stamp.
type Service[T any, PT interface {
	*T
	clinic.Entity
}] struct {
	kind string
	repo Repository[T]
	now  func() time.Time
}

// New creates a catalog service for one kind.
func New[T any, PT interface {
	*T
	clinic.Entity
}](kind string, repo Repository[T]) *Service[T, PT] {
	return &Service[T, PT]{kind: kind, repo: repo, now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Service[T, PT]) WithClock(now func() time.Time) *Service[T, PT] {
	s.now = now
	return s
}

// Kind returns the entity kind the service manages.
func (s *Service[T, PT]) Kind() string { return s.kind }

// Create validates v, stamps createdAt and updatedAt, and persists it with
// the optional asset bytes.
func (s *Service[T, PT]) Create(ctx context.Context, v T, asset []byte) (T, error) {
	if err := PT(&v).Validate(); err != nil {
		return v, err
	}
	PT(&v).Stamp(s.now(), true)

	out, err := s.repo.Create(ctx, v, asset)
	if err != nil {
		s.logWriteFailure(ctx, "create", err)
		return out, fmt.Errorf("create %s: %w", s.kind, err)
	}
	logger.FromContext(ctx).Info("entity created",
		zap.String("kind", s.kind),
		zap.Bool("asset", len(asset) > 0),
	)
	return out, nil
}

// Update validates v, stamps updatedAt and patches the mutable fields.
// v must carry the id of an existing entity.
func (s *Service[T, PT]) Update(ctx context.Context, id string, v T, asset []byte) (T, error) {
	if id == "" {
		return v, &domain.ValidationError{Kind: s.kind, Problems: []string{"id is required"}}
	}
	if err := PT(&v).Validate(); err != nil {
		return v, err
	}
	PT(&v).SetID(id)
	PT(&v).Stamp(s.now(), false)

	out, err := s.repo.Update(ctx, v, asset)
	if err != nil {
		s.logWriteFailure(ctx, "update", err)
		return out, fmt.Errorf("update %s %s: %w", s.kind, id, err)
	}
	return out, nil
}

// Delete removes the entity whose id field equals id.
func (s *Service[T, PT]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &domain.ValidationError{Kind: s.kind, Problems: []string{"id is required"}}
	}
	return s.DeleteBy(ctx, entity.IDField, id)
}

// DeleteBy removes the first entity whose field name equals value.
func (s *Service[T, PT]) DeleteBy(ctx context.Context, name, value string) error {
	if err := domain.NewValidator(s.kind).
		Require("field", name).
		Require("value", value).
		Err(); err != nil {
		return err
	}
	if err := s.repo.DeleteBy(ctx, name, value); err != nil {
		logger.FromContext(ctx).Warn("delete failed",
			zap.String("kind", s.kind),
			zap.String("field", name),
			zap.String("value", value),
			zap.Stringer("reason", result.ReasonOf(err)),
			zap.Error(err),
		)
		return fmt.Errorf("delete %s where %s=%s: %w", s.kind, name, value, err)
	}
	return nil
}

// Get returns one entity.
func (s *Service[T, PT]) Get(ctx context.Context, id string) (T, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return v, fmt.Errorf("get %s %s: %w", s.kind, id, err)
	}
	return v, nil
}

// List returns every entity of the kind.
func (s *Service[T, PT]) List(ctx context.Context) ([]T, error) {
	vs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return vs, nil
}

// Find returns entities whose fields equal conds.
func (s *Service[T, PT]) Find(ctx context.Context, conds query.Conditions) ([]T, error) {
	if len(conds) == 0 {
		return s.List(ctx)
	}
	vs, err := s.repo.FindBy(ctx, conds)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.kind, err)
	}
	return vs, nil
}

func (s *Service[T, PT]) logWriteFailure(ctx context.Context, op string, err error) {
	l := logger.FromContext(ctx).With(
		zap.String("kind", s.kind),
		zap.String("op", op),
		zap.Stringer("reason", result.ReasonOf(err)),
	)
	we, ok := entity.AsWriteError(err)
	if !ok {
		l.Warn("write failed", zap.Error(err))
		return
	}
	if we.Stage.Partial() {
		l.Error("partial write left in store",
			zap.String("id", we.ID),
			zap.Stringer("stage", we.Stage),
			zap.Error(err),
		)
		return
	}
	l.Warn("write failed", zap.Error(err))
}
