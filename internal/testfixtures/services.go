package testfixtures

import (
	"log/slog"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// AttendanceServiceDeps captures dependencies for constructing an attendance service.
type AttendanceServiceDeps struct {
	Events      application.AttendanceRepository
	BusyLevels  application.BusyLevelStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAttendanceService builds an attendance service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewAttendanceService(deps AttendanceServiceDeps) *application.AttendanceService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAttendanceService(
		deps.Events,
		deps.BusyLevels,
		idGen,
		now,
		deps.Logger,
	)
}

// ReportServiceDeps captures dependencies for constructing a report service.
type ReportServiceDeps struct {
	Events            application.AttendanceRepository
	BusyLevels        application.BusyLevelStore
	LongWorkThreshold int
	Now               func() time.Time
	Logger            *slog.Logger
}

// NewReportService builds a report service using the supplied dependencies.
func (f *ServiceFactory) NewReportService(deps ReportServiceDeps) *application.ReportService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewReportService(
		deps.Events,
		deps.BusyLevels,
		deps.LongWorkThreshold,
		now,
		deps.Logger,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       application.UserRepository
	Hasher      application.PasswordHasher
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewUserService(
		deps.Users,
		deps.Hasher,
		idGen,
		now,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	IsAdmin        application.AdminMatcher
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthService(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		deps.IsAdmin,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
