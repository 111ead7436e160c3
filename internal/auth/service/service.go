package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"cardtrack/internal/auth/models"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
	"cardtrack/pkg/platform/sentinel"
)

// UserStore is the operator account persistence surface.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.User, error)
}

// SessionStore tracks live sessions.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

// TokenIssuer signs access tokens bound to a session.
type TokenIssuer interface {
	Generate(username string, level int, sessionID string, expiresAt time.Time) (string, error)
}

// Service resolves actors: it authenticates credentials, issues tokens, and
// manages the operator accounts behind them. The transition engine only
// ever sees the resulting domain.Actor.
type Service struct {
	users      UserStore
	sessions   SessionStore
	tokens     TokenIssuer
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewService(users UserStore, sessions SessionStore, tokens TokenIssuer, sessionTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies credentials and opens a session. The User-Agent header is
// reduced to a short device description stamped on the session record.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, userAgent string) (models.LoginResult, error) {
	if req.Username == "" || req.Password == "" {
		return models.LoginResult{}, dErrors.New(dErrors.CodeValidation, "username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return models.LoginResult{}, dErrors.Wrap(dErrors.CodeStorage, "find user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return models.LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	session := models.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Level:     user.Level,
		Device:    deviceDescription(userAgent),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return models.LoginResult{}, dErrors.Wrap(dErrors.CodeStorage, "save session", err)
	}

	token, err := s.tokens.Generate(user.Username, user.Level, session.ID, session.ExpiresAt)
	if err != nil {
		return models.LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "issue token", err)
	}

	s.logger.InfoContext(ctx, "login", "username", user.Username, "device", session.Device)
	return models.LoginResult{
		Token:     token,
		Username:  user.Username,
		Level:     user.Level,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout closes a session; the token bound to it stops validating.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(dErrors.CodeStorage, "delete session", err)
	}
	return nil
}

// CreateUser registers an operator account.
func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	if req.Username == "" || req.Password == "" {
		return models.User{}, dErrors.New(dErrors.CodeValidation, "username and password are required")
	}
	if req.Level < 0 {
		return models.User{}, dErrors.New(dErrors.CodeValidation, "level must not be negative")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, dErrors.Wrap(dErrors.CodeInternal, "hash password", err)
	}
	user, err := s.users.Create(ctx, models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Level:        req.Level,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.User{}, dErrors.New(dErrors.CodeValidation, "username already exists: "+req.Username)
		}
		return models.User{}, dErrors.Wrap(dErrors.CodeStorage, "create user", err)
	}
	return user, nil
}

// UpdateUser changes a user's level and optionally the password.
func (s *Service) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (models.User, error) {
	if req.Level < 0 {
		return models.User{}, dErrors.New(dErrors.CodeValidation, "level must not be negative")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return models.User{}, dErrors.Wrap(dErrors.CodeStorage, "find user", err)
	}
	user.Level = req.Level
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, dErrors.Wrap(dErrors.CodeInternal, "hash password", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return models.User{}, dErrors.Wrap(dErrors.CodeStorage, "update user", err)
	}
	return user, nil
}

// DeleteUser removes an operator account. Ledger history keeps the actor
// name as text; nothing cascades.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(dErrors.CodeStorage, "delete user", err)
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list users", err)
	}
	return users, nil
}

// SeedAdmin creates the bootstrap admin account when it does not exist, so
// a fresh deployment is reachable.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(dErrors.CodeStorage, "find admin user", err)
	}
	_, err = s.CreateUser(ctx, models.CreateUserRequest{
		Username: username,
		Password: password,
		Level:    domain.LevelAdmin,
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "seeded admin user", "username", username)
	return nil
}

func deviceDescription(rawUserAgent string) string {
	if rawUserAgent == "" {
		return ""
	}
	ua := useragent.New(rawUserAgent)
	name, version := ua.Browser()
	if name == "" {
		return rawUserAgent
	}
	desc := name
	if version != "" {
		desc += " " + version
	}
	if os := ua.OS(); os != "" {
		desc += " on " + os
	}
	return desc
}
