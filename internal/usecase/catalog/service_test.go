package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/medstore/internal/domain"
	"github.com/kailas-cloud/medstore/internal/domain/clinic"
	"github.com/kailas-cloud/medstore/internal/domain/query"
	"github.com/kailas-cloud/medstore/internal/logger"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
	"github.com/kailas-cloud/medstore/internal/result"
)

// --- Mocks ---

type mockRepo struct {
	created   *clinic.Doctor
	updated   *clinic.Doctor
	asset     []byte
	deleteBy  [2]string
	findConds query.Conditions

	createErr error
	updateErr error
	deleteErr error
	getResult clinic.Doctor
	getErr    error
	all       []clinic.Doctor
	allErr    error
	calls     int
}

func (m *mockRepo) Create(_ context.Context, v clinic.Doctor, asset []byte) (clinic.Doctor, error) {
	m.calls++
	m.created, m.asset = &v, asset
	if m.createErr != nil {
		return v, m.createErr
	}
	v.ID = "gen1"
	return v, nil
}

func (m *mockRepo) Update(_ context.Context, v clinic.Doctor, asset []byte) (clinic.Doctor, error) {
	m.calls++
	m.updated, m.asset = &v, asset
	return v, m.updateErr
}

func (m *mockRepo) DeleteBy(_ context.Context, name, value string) error {
	m.calls++
	m.deleteBy = [2]string{name, value}
	return m.deleteErr
}

func (m *mockRepo) Get(_ context.Context, _ string) (clinic.Doctor, error) {
	m.calls++
	return m.getResult, m.getErr
}

func (m *mockRepo) GetAll(_ context.Context) ([]clinic.Doctor, error) {
	m.calls++
	return m.all, m.allErr
}

func (m *mockRepo) FindBy(_ context.Context, conds query.Conditions) ([]clinic.Doctor, error) {
	m.calls++
	m.findConds = conds
	return m.all, m.allErr
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo) *Service[clinic.Doctor, *clinic.Doctor] {
	return New[clinic.Doctor](clinic.KindDoctor, repo).WithClock(func() time.Time { return fixedNow })
}

func validDoctor() clinic.Doctor {
	return clinic.Doctor{Name: "Alice", Specialization: "cardiology"}
}

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.ContextWithLogger(context.Background(), zap.New(core)), logs
}

// --- Create ---

func TestCreate_StampsAndDelegates(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	got, err := svc.Create(context.Background(), validDoctor(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "gen1" {
		t.Errorf("ID = %q", got.ID)
	}
	if repo.created.CreatedAt != "2024-05-01T10:00:00Z" || repo.created.UpdatedAt != "2024-05-01T10:00:00Z" {
		t.Errorf("timestamps = %+v", repo.created.Timestamps)
	}
	if string(repo.asset) != "img" {
		t.Errorf("asset = %q", repo.asset)
	}
}

func TestCreate_InvalidSkipsRepository(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), clinic.Doctor{Name: "Alice"}, nil)
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if repo.calls != 0 {
		t.Errorf("repository called %d times", repo.calls)
	}
}

func TestCreate_PartialWriteLogged(t *testing.T) {
	repo := &mockRepo{createErr: &entity.WriteError{
		Kind: "doctor", ID: "gen1", Stage: entity.StageCreated,
		Err: result.NewFailure("patch doctors/gen1", result.Server, errors.New("boom")),
	}}
	svc := newTestService(repo)
	ctx, logs := observedContext()

	_, err := svc.Create(ctx, validDoctor(), nil)
	if result.ReasonOf(err) != result.Server {
		t.Errorf("reason = %v, want server", result.ReasonOf(err))
	}

	entries := logs.FilterMessage("partial write left in store").All()
	if len(entries) != 1 {
		t.Fatalf("expected one partial write log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["stage"] != "created" || fields["id"] != "gen1" || fields["kind"] != clinic.KindDoctor {
		t.Errorf("log fields = %v", fields)
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v, want error", entries[0].Level)
	}
}

func TestCreate_FailureBeforeAnyWriteIsWarn(t *testing.T) {
	repo := &mockRepo{createErr: &entity.WriteError{
		Kind: "doctor", Stage: entity.StageNone,
		Err: result.NewFailure("create doctors", result.Server, errors.New("500")),
	}}
	svc := newTestService(repo)
	ctx, logs := observedContext()

	if _, err := svc.Create(ctx, validDoctor(), nil); err == nil {
		t.Fatal("expected error")
	}
	if logs.FilterMessage("write failed").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}
}

// --- Update ---

func TestUpdate_SetsIDAndUpdatedAtOnly(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	in := validDoctor()
	in.CreatedAt = "2020-01-01T00:00:00Z"
	if _, err := svc.Update(context.Background(), "d1", in, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updated.ID != "d1" {
		t.Errorf("ID = %q", repo.updated.ID)
	}
	if repo.updated.CreatedAt != "2020-01-01T00:00:00Z" {
		t.Errorf("CreatedAt changed: %q", repo.updated.CreatedAt)
	}
	if repo.updated.UpdatedAt != "2024-05-01T10:00:00Z" {
		t.Errorf("UpdatedAt = %q", repo.updated.UpdatedAt)
	}
}

func TestUpdate_MissingID(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	if _, err := svc.Update(context.Background(), "", validDoctor(), nil); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if repo.calls != 0 {
		t.Error("repository should not be called")
	}
}

// --- Delete / reads ---

func TestDelete_ByIDField(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), "d9"); err != nil {
		t.Fatal(err)
	}
	if repo.deleteBy != [2]string{"id", "d9"} {
		t.Errorf("deleteBy = %v", repo.deleteBy)
	}
}

func TestDelete_WrapsFailure(t *testing.T) {
	repo := &mockRepo{deleteErr: result.NewFailure("delete doctors", result.Server, entity.ErrNoMatch)}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), "d9")
	if !errors.Is(err, entity.ErrNoMatch) || !errors.Is(err, result.ErrServer) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteBy_OtherField(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	if err := svc.DeleteBy(context.Background(), "email", "a@b.test"); err != nil {
		t.Fatal(err)
	}
	if repo.deleteBy != [2]string{"email", "a@b.test"} {
		t.Errorf("deleteBy = %v", repo.deleteBy)
	}

	if err := svc.DeleteBy(context.Background(), "email", " "); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("blank value err = %v", err)
	}
	if err := svc.Delete(context.Background(), ""); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("missing id err = %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("repository called %d times", repo.calls)
	}
}

func TestFind_EmptyConditionsLists(t *testing.T) {
	repo := &mockRepo{all: []clinic.Doctor{{ID: "a"}}}
	svc := newTestService(repo)

	got, err := svc.Find(context.Background(), nil)
	if err != nil || len(got) != 1 {
		t.Fatalf("got %v, %v", got, err)
	}
	if repo.findConds != nil {
		t.Error("FindBy should not be called without conditions")
	}

	if _, err := svc.Find(context.Background(), query.Conditions{"hospitalId": "h1"}); err != nil {
		t.Fatal(err)
	}
	if repo.findConds["hospitalId"] != "h1" {
		t.Errorf("conds = %v", repo.findConds)
	}
}

func TestGet_WrapsFailure(t *testing.T) {
	repo := &mockRepo{getErr: result.NewFailure("get", result.Network, errors.New("reset"))}
	svc := newTestService(repo)

	if _, err := svc.Get(context.Background(), "d1"); result.ReasonOf(err) != result.Network {
		t.Errorf("reason = %v, want network", result.ReasonOf(err))
	}
}
