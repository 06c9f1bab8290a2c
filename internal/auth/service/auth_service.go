package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	authdomain "github.com/AlibekovAA/nexus-admin/backend/internal/auth/domain"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/nexus-admin/backend/internal/common/errors"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/resilience"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/validation"
	userdomain "github.com/AlibekovAA/nexus-admin/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/nexus-admin/backend/internal/user/repository"
)

type UserRepository interface {
	Create(ctx context.Context, user userdomain.User) error
	FindByEmail(ctx context.Context, email string) (userdomain.User, error)
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

// SessionStore holds the hashed refresh tokens of every live session.
type SessionStore interface {
	Persist(ctx context.Context, userID, rawToken string, ttl time.Duration) (authdomain.RefreshToken, error)
	FindMatch(ctx context.Context, userID, rawToken string) (string, bool, error)
	Consume(ctx context.Context, id string) error
	DeleteAllMatching(ctx context.Context, userID, rawToken string) (int, error)
}

type AuthServiceDeps struct {
	Users       UserRepository
	Store       SessionStore
	Issuer      *TokenIssuer
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Breaker     resilience.Breaker
	Log         *logger.Logger
}

type AuthService struct {
	users       UserRepository
	store       SessionStore
	issuer      *TokenIssuer
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	breaker     resilience.Breaker
	log         *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	return &AuthService{
		users:       deps.Users,
		store:       deps.Store,
		issuer:      deps.Issuer,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		breaker:     deps.Breaker,
		log:         deps.Log,
	}
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,maxbytes=72"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (authdomain.TokenPair, error) {
	input.Email = userdomain.NormalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "register_attempt",
	}).Info("register attempt")

	if err := validation.Struct(input); err != nil {
		recordRegistration("invalid")
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return authdomain.TokenPair{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		recordRegistration("error")
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return authdomain.TokenPair{}, newInternalError("HASH_ERROR", "failed to hash password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		recordRegistration("error")
		return authdomain.TokenPair{}, newInternalError("ID_GENERATION_ERROR", "failed to generate user id", err)
	}

	now := s.clock.Now()
	user := userdomain.User{
		ID:           userdomain.ID(id),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         userdomain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.call(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
			recordRegistration("conflict")
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "register_email_exists",
			}).Warn("register failed: email already exists")
			return authdomain.TokenPair{}, ErrEmailTaken
		}
		recordRegistration("error")
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		return authdomain.TokenPair{}, newInternalError("DB_ERROR", "failed to create user", err)
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		recordRegistration("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return authdomain.TokenPair{}, err
	}

	recordRegistration("success")
	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "register_success",
	}).Info("register success")

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (authdomain.TokenPair, error) {
	input.Email = userdomain.NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "login_attempt",
	}).Info("login attempt")

	if err := validation.Struct(input); err != nil {
		recordLogin("invalid")
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "login_validation_failed",
		}).Warnf("login validation failed: %v", err)
		return authdomain.TokenPair{}, err
	}

	var user userdomain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.FindByEmail(ctx, input.Email)
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.hasher.Verify(input.Password, s.dummy())
			recordLogin("invalid_credentials")
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "login_user_not_found",
			}).Warn("login failed: invalid credentials")
			return authdomain.TokenPair{}, ErrInvalidCredentials
		}
		recordLogin("error")
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return authdomain.TokenPair{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		recordLogin("invalid_credentials")
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid credentials")
		return authdomain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		recordLogin("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return authdomain.TokenPair{}, err
	}

	recordLogin("success")
	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")

	return pair, nil
}

// Logout drops the session matching rawRefreshToken. It never fails: an
// unknown token is a no-op and store errors are only logged.
func (s *AuthService) Logout(ctx context.Context, userID, rawRefreshToken string) {
	if rawRefreshToken == "" {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "logout_without_refresh_token",
		}).Info("logout without refresh token")
		return
	}

	removed, err := s.store.DeleteAllMatching(ctx, userID, rawRefreshToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "logout_revoke_failed",
		}).Errorf("logout: revoke refresh token failed: %v", err)
		return
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"revoked": removed,
		"action":  "logout_success",
	}).Info("logout success")
}

// Refresh spends rawRefreshToken and opens a new session in its place.
// Any failure leaves the caller without a usable refresh token.
func (s *AuthService) Refresh(ctx context.Context, userID, rawRefreshToken string) (authdomain.TokenPair, error) {
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "refresh_token_attempt",
	}).Info("refresh token attempt")

	var user userdomain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.FindByID(ctx, userdomain.ID(userID))
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return authdomain.TokenPair{}, s.denyRefresh(ctx, userID, "refresh_token_user_not_found")
		}
		recordRefresh("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_token_user_lookup_failed",
		}).Errorf("refresh token failed: user lookup error: %v", err)
		return authdomain.TokenPair{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	tokenID, ok, err := s.store.FindMatch(ctx, userID, rawRefreshToken)
	if err != nil {
		recordRefresh("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_token_lookup_failed",
		}).Errorf("refresh token lookup failed: %v", err)
		return authdomain.TokenPair{}, newInternalError("DB_ERROR", "failed to look up refresh token", err)
	}
	if !ok {
		return authdomain.TokenPair{}, s.denyRefresh(ctx, userID, "refresh_token_not_found")
	}

	if err := s.store.Consume(ctx, tokenID); err != nil {
		if errors.Is(err, ErrRefreshTokenConsumed) {
			return authdomain.TokenPair{}, s.denyRefresh(ctx, userID, "refresh_token_replayed")
		}
		recordRefresh("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_token_delete_old_failed",
		}).Errorf("refresh token failed to delete old token: %v", err)
		return authdomain.TokenPair{}, newInternalError("DB_ERROR", "failed to consume refresh token", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "refresh_token_used",
	}).Info("refresh token used")

	pair, err := s.openSession(ctx, user)
	if err != nil {
		recordRefresh("error")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_token_issue_failed",
		}).Errorf("refresh token failed to issue new tokens: %v", err)
		return authdomain.TokenPair{}, err
	}

	recordRefresh("success")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "refresh_token_success",
	}).Info("refresh token success")

	return pair, nil
}

// Me returns the account behind an access token. A user deleted after the
// token was minted reads as an invalid token.
func (s *AuthService) Me(ctx context.Context, userID string) (userdomain.Summary, error) {
	var user userdomain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.FindByID(ctx, userdomain.ID(userID))
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.Summary{}, commonerrors.ErrInvalidToken
		}
		return userdomain.Summary{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}
	return user.Summary(), nil
}

// openSession mints a pair for user and stores its refresh token. The pair
// is not returned until the refresh token is persisted.
func (s *AuthService) openSession(ctx context.Context, user userdomain.User) (authdomain.TokenPair, error) {
	pair, err := s.issuer.Issue(string(user.ID), user.Email, user.Role)
	if err != nil {
		return authdomain.TokenPair{}, newInternalError("TOKEN_ERROR", "failed to issue tokens", err)
	}

	if _, err := s.store.Persist(ctx, string(user.ID), pair.RefreshToken, s.issuer.RefreshTTL()); err != nil {
		return authdomain.TokenPair{}, newInternalError("DB_ERROR", "failed to store refresh token", err)
	}
	return pair, nil
}

func (s *AuthService) denyRefresh(ctx context.Context, userID, action string) error {
	recordRefresh("denied")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  action,
	}).Warn("refresh token rejected")
	return ErrAccessDenied
}

// dummy is a real hash of a throwaway secret, verified against when the
// email is unknown so both login failures cost one hash comparison.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("nexus-admin-dummy-password")
		if err != nil {
			s.log.Errorf("dummy hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) call(ctx context.Context, fn func(context.Context) error) error {
	if s.breaker == nil {
		return fn(ctx)
	}
	return handleCircuitBreakerError(s.breaker.Call(ctx, fn))
}
