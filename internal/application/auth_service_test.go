package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type credentialStoreStub struct {
	credentials UserCredentials
	err         error
	userErr     error
}

func (c *credentialStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	if c.err != nil {
		return UserCredentials{}, c.err
	}
	if c.credentials.User.ID == "" {
		return UserCredentials{}, ErrNotFound
	}
	return c.credentials, nil
}

func (c *credentialStoreStub) GetUser(ctx context.Context, id string) (User, error) {
	if c.userErr != nil {
		return User{}, c.userErr
	}
	if c.credentials.User.ID != id {
		return User{}, ErrNotFound
	}
	return c.credentials.User, nil
}

type sessionRepositoryStub struct {
	sessions    map[string]Session
	createErr   error
	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]Session)}
}

func (r *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if r.createErr != nil {
		return Session{}, r.createErr
	}
	r.sessions[session.Token] = session
	return session, nil
}

func (r *sessionRepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (r *sessionRepositoryStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	for token, existing := range r.sessions {
		if existing.ID == session.ID {
			delete(r.sessions, token)
		}
	}
	r.sessions[session.Token] = session
	return session, nil
}

func (r *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	session.RevokedAt = &revokedAt
	r.sessions[token] = session
	return session, nil
}

func (r *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	r.deleteCalls = append(r.deleteCalls, reference)
	return nil
}

func plaintextVerifier(hashedPassword, password string) error {
	if hashedPassword == password {
		return nil
	}
	return errors.New("password mismatch")
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("issues sessions for valid credentials", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		creds := &credentialStoreStub{
			credentials: UserCredentials{
				User:         User{ID: "user-1", Email: "user@example.com"},
				PasswordHash: "secret",
			},
		}

		repo := newSessionRepositoryStub()
		tokenSeq := []string{"session-id", "session-token"}
		svc := NewAuthService(creds, repo, plaintextVerifier, nil, func() string {
			if len(tokenSeq) == 0 {
				return "fallback"
			}
			token := tokenSeq[0]
			tokenSeq = tokenSeq[1:]
			return token
		}, func() time.Time { return now }, time.Hour, nil)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "User@example.com", Password: "secret", Fingerprint: " device "})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		if result.Session.Token != "session-token" {
			t.Fatalf("expected issued token, got %s", result.Session.Token)
		}
		if result.Session.Fingerprint != "device" {
			t.Fatalf("expected fingerprint to be trimmed, got %q", result.Session.Fingerprint)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected expiry one hour out, got %s", result.Session.ExpiresAt)
		}
		if len(repo.deleteCalls) != 1 || !repo.deleteCalls[0].Equal(now) {
			t.Fatalf("expected DeleteExpiredSessions to be called with now, got %#v", repo.deleteCalls)
		}
	})

	t.Run("elevates allowlisted emails to admin", func(t *testing.T) {
		t.Parallel()

		creds := &credentialStoreStub{
			credentials: UserCredentials{
				User:         User{ID: "user-1", Email: "boss@example.com"},
				PasswordHash: "secret",
			},
		}
		isAdmin := func(email string) bool { return email == "boss@example.com" }
		svc := NewAuthService(creds, newSessionRepositoryStub(), plaintextVerifier, isAdmin, func() string { return "t" }, time.Now, time.Hour, nil)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "boss@example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if !result.User.IsAdmin {
			t.Fatalf("expected allowlisted user to be admin")
		}
	})

	t.Run("rejects disabled accounts", func(t *testing.T) {
		t.Parallel()

		creds := &credentialStoreStub{credentials: UserCredentials{User: User{ID: "user"}, Disabled: true}}
		svc := NewAuthService(creds, nil, plaintextVerifier, nil, nil, time.Now, time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})

	t.Run("rejects invalid credentials with sentinel error", func(t *testing.T) {
		t.Parallel()

		creds := &credentialStoreStub{
			credentials: UserCredentials{User: User{ID: "user"}, PasswordHash: "expected"},
		}
		svc := NewAuthService(creds, nil, plaintextVerifier, nil, nil, time.Now, time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("maps unknown emails to invalid credentials", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{}, nil, plaintextVerifier, nil, nil, time.Now, time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "ghost@example.com", Password: "secret"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		creds := &credentialStoreStub{
			credentials: UserCredentials{User: User{ID: "user"}, PasswordHash: "secret"},
		}
		repo := newSessionRepositoryStub()
		repo.createErr = expected

		svc := NewAuthService(creds, repo, plaintextVerifier, nil, func() string { return "token" }, time.Now, time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if !errors.Is(err, expected) {
			t.Fatalf("expected repository error, got %v", err)
		}
	})
}

func TestAuthService_RefreshSession(t *testing.T) {
	t.Parallel()

	t.Run("rotates the token and extends the window", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newSessionRepositoryStub()
		repo.sessions["old"] = Session{ID: "s-1", UserID: "user-1", Token: "old", ExpiresAt: now.Add(time.Minute)}

		svc := NewAuthService(&credentialStoreStub{}, repo, plaintextVerifier, nil, func() string { return "new" }, func() time.Time { return now }, time.Hour, nil)

		result, err := svc.RefreshSession(context.Background(), RefreshSessionParams{Token: "old"})
		if err != nil {
			t.Fatalf("RefreshSession failed: %v", err)
		}
		if result.Session.Token != "new" {
			t.Fatalf("expected rotated token, got %s", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected extended expiry, got %s", result.Session.ExpiresAt)
		}
		if _, ok := repo.sessions["old"]; ok {
			t.Fatalf("expected the old token to be unusable")
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		revoked := now.Add(-time.Minute)
		repo := newSessionRepositoryStub()
		repo.sessions["tok"] = Session{ID: "s-1", Token: "tok", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}

		svc := NewAuthService(&credentialStoreStub{}, repo, plaintextVerifier, nil, nil, func() time.Time { return now }, time.Hour, nil)

		_, err := svc.RefreshSession(context.Background(), RefreshSessionParams{Token: "tok"})
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newSessionRepositoryStub()
		repo.sessions["tok"] = Session{ID: "s-1", Token: "tok", ExpiresAt: now.Add(-time.Second)}

		svc := NewAuthService(&credentialStoreStub{}, repo, plaintextVerifier, nil, nil, func() time.Time { return now }, time.Hour, nil)

		_, err := svc.RefreshSession(context.Background(), RefreshSessionParams{Token: "tok"})
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("maps unknown tokens to invalid credentials", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{}, newSessionRepositoryStub(), plaintextVerifier, nil, nil, time.Now, time.Hour, nil)

		_, err := svc.RefreshSession(context.Background(), RefreshSessionParams{Token: "missing"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	t.Run("marks the session revoked", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newSessionRepositoryStub()
		repo.sessions["tok"] = Session{ID: "s-1", Token: "tok", ExpiresAt: now.Add(time.Hour)}

		svc := NewAuthService(&credentialStoreStub{}, repo, plaintextVerifier, nil, nil, func() time.Time { return now }, time.Hour, nil)

		if err := svc.RevokeSession(context.Background(), "tok"); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if repo.sessions["tok"].RevokedAt == nil {
			t.Fatalf("expected RevokedAt to be set")
		}
	})

	t.Run("maps unknown tokens to invalid credentials", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{}, newSessionRepositoryStub(), plaintextVerifier, nil, nil, time.Now, time.Hour, nil)

		if err := svc.RevokeSession(context.Background(), "missing"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("returns the principal for an active session", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		creds := &credentialStoreStub{credentials: UserCredentials{User: User{ID: "user-1", Email: "user@example.com"}}}
		repo := newSessionRepositoryStub()
		repo.sessions["tok"] = Session{ID: "s-1", UserID: "user-1", Token: "tok", ExpiresAt: now.Add(time.Hour)}

		svc := NewAuthService(creds, repo, plaintextVerifier, nil, nil, func() time.Time { return now }, time.Hour, nil)

		principal, err := svc.ValidateSession(context.Background(), "tok")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.UserID != "user-1" || principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("applies the admin allowlist to the principal", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		creds := &credentialStoreStub{credentials: UserCredentials{User: User{ID: "user-1", Email: "boss@example.com"}}}
		repo := newSessionRepositoryStub()
		repo.sessions["tok"] = Session{ID: "s-1", UserID: "user-1", Token: "tok", ExpiresAt: now.Add(time.Hour)}

		isAdmin := func(email string) bool { return email == "boss@example.com" }
		svc := NewAuthService(creds, repo, plaintextVerifier, isAdmin, nil, func() time.Time { return now }, time.Hour, nil)

		principal, err := svc.ValidateSession(context.Background(), "tok")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if !principal.IsAdmin {
			t.Fatalf("expected an admin principal")
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newSessionRepositoryStub()
		repo.sessions["tok"] = Session{ID: "s-1", UserID: "user-1", Token: "tok", ExpiresAt: now.Add(-time.Second)}

		svc := NewAuthService(&credentialStoreStub{}, repo, plaintextVerifier, nil, nil, func() time.Time { return now }, time.Hour, nil)

		if _, err := svc.ValidateSession(context.Background(), "tok"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("maps unknown tokens to unauthorized", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{}, newSessionRepositoryStub(), plaintextVerifier, nil, nil, time.Now, time.Hour, nil)

		if _, err := svc.ValidateSession(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
