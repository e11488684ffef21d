package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// RegisterInput is the self-service registration request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService implements registration, login and logout.
type AuthService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	codec  *auth.TokenCodec
	ledger *auth.Ledger
	events *eventEmitter
	now    func() time.Time
}

func NewAuthService(
	users UserRepository,
	hasher *auth.PasswordHasher,
	codec *auth.TokenCodec,
	ledger *auth.Ledger,
	publisher EventPublisher,
	logger logging.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		codec:  codec,
		ledger: ledger,
		events: newEventEmitter(publisher, logger),
		now:    time.Now,
	}
}

// Register creates an active account with the user role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	user, err := s.createUser(ctx, in, types.RoleUser)
	if err != nil {
		return types.User{}, err
	}
	s.events.emit(ctx, types.EventUserRegistered, user, user.ID)
	return user, nil
}

// CreateAdmin creates an active administrator account. It is reachable
// only from the command line.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (types.User, error) {
	user, err := s.createUser(ctx, in, types.RoleAdmin)
	if err != nil {
		return types.User{}, err
	}
	s.events.emit(ctx, types.EventUserRegistered, user, 0)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role types.Role) (types.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	errs := fieldErrors{}
	validateEmail(errs, in.Email)
	validateName(errs, in.Name)
	validatePassword(errs, in.Password)
	if err := errs.err(); err != nil {
		return types.User{}, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, types.User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         role,
		IsActive:     true,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, fmt.Errorf("email already registered: %w", store.ErrConflict)
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable. The active flag is checked only
// after the password matched.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.hasher.VerifyDummy(password)
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return Session{}, ErrAccountInactive
	}

	now := s.now()
	token, err := s.codec.Issue(user.ID, user.Email, now)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	s.events.emit(ctx, types.EventUserLoggedIn, user, user.ID)
	return Session{AccessToken: token, ExpiresAt: s.codec.ExpiryFor(now)}, nil
}

// Logout revokes the token the identity was resolved from. Revoking an
// already revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, identity auth.Identity) error {
	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.codec.ExpiryFor(s.now())
	}
	err := s.ledger.Revoke(ctx, identity.Token, identity.UserID, expiresAt)
	if err != nil && !errors.Is(err, auth.ErrAlreadyRevoked) {
		return err
	}
	s.events.emit(ctx, types.EventUserLoggedOut, types.User{ID: identity.UserID, Email: identity.Email}, identity.UserID)
	return nil
}
