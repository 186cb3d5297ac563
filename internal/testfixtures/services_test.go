package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
)

type capturingUserRepo struct {
	created application.User
	hash    string
}

func (c *capturingUserRepo) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	c.created = user
	c.hash = passwordHash
	return user, nil
}

func (c *capturingUserRepo) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (c *capturingUserRepo) UpdateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	return user, nil
}

func (c *capturingUserRepo) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func (c *capturingUserRepo) ListUsers(ctx context.Context) ([]application.User, error) {
	return nil, nil
}

type capturingEventRepo struct {
	appended []application.AttendanceRecord
}

func (c *capturingEventRepo) AppendEvent(ctx context.Context, record application.AttendanceRecord) (application.AttendanceRecord, error) {
	c.appended = append(c.appended, record)
	return record, nil
}

func (c *capturingEventRepo) ListEvents(ctx context.Context, filter application.AttendanceFilter) ([]application.AttendanceRecord, error) {
	return nil, nil
}

func TestServiceFactoryUserDefaults(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	repo := &capturingUserRepo{}
	service := factory.NewUserService(UserServiceDeps{
		Users: repo,
		Hasher: func(password string) (string, error) {
			return "hashed:" + password, nil
		},
	})

	admin := NewUserFixture(WithUserAdmin(true))
	_, err := service.CreateUser(context.Background(), application.CreateUserParams{
		Principal: admin.Principal(),
		Input: application.UserInput{
			Email:       "employee@example.com",
			DisplayName: "Employee",
			Password:    "password123",
		},
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if repo.created.ID != "id-1" {
		t.Fatalf("expected deterministic id id-1, got %q", repo.created.ID)
	}
	if !repo.created.CreatedAt.Equal(ReferenceTime()) {
		t.Fatalf("expected created at %v, got %v", ReferenceTime(), repo.created.CreatedAt)
	}
	if repo.hash != "hashed:password123" {
		t.Fatalf("expected hashed password to reach the repository, got %q", repo.hash)
	}
}

func TestServiceFactoryAttendanceUsesClock(t *testing.T) {
	t.Parallel()

	clock := NewClock(ReferenceTime())
	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(NewIDGenerator("evt")))
	repo := &capturingEventRepo{}
	service := factory.NewAttendanceService(AttendanceServiceDeps{Events: repo})

	principal := application.Principal{UserID: "user-001"}
	record, err := service.CheckIn(context.Background(), principal)
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}

	if record.ID != "evt-1" {
		t.Fatalf("expected id evt-1, got %q", record.ID)
	}
	if record.CheckIn == nil || !record.CheckIn.Equal(ReferenceTime()) {
		t.Fatalf("expected check-in at %v, got %v", ReferenceTime(), record.CheckIn)
	}
	if len(repo.appended) != 1 {
		t.Fatalf("expected one appended row, got %d", len(repo.appended))
	}

	clock.Advance(3 * time.Hour)
	out, err := service.CheckOut(context.Background(), principal)
	if err == nil {
		t.Fatalf("expected checkout to fail without stored rows, got %+v", out)
	}
}

func TestServiceFactoryNilOverridesFallBack(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory(WithClock(nil), WithIDGenerator(nil))
	if factory.Clock == nil {
		t.Fatal("expected factory to restore a default clock")
	}
	if factory.IDGenerator == nil {
		t.Fatal("expected factory to restore a default id generator")
	}
	if got := factory.Clock.Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("expected default clock at %v, got %v", ReferenceTime(), got)
	}
}
