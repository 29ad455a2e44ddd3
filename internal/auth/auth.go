// Package auth registers accounts and manages bearer sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stocksim/internal/repository"
	"stocksim/types"
)

const (
	MinUsernameLen = 4
	MaxUsernameLen = 15
	MinPasswordLen = 4
	MaxPasswordLen = 20
)

var (
	ErrInvalidUsername    = fmt.Errorf("username must be %d-%d characters", MinUsernameLen, MaxUsernameLen)
	ErrInvalidPassword    = fmt.Errorf("password must be %d-%d characters", MinPasswordLen, MaxPasswordLen)
	ErrUsernameTaken      = repository.ErrUsernameTaken
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("missing or expired session")
)

type accountStore interface {
	CreateAccount(ctx context.Context, acct types.Account) (types.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (types.Account, error)
}

type Config struct {
	StartingCash decimal.Decimal
	Currency     string
	SessionTTL   time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	accounts accountStore
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

func NewService(accounts accountStore, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Currency == "" {
		cfg.Currency = types.DefaultCurrency
	}
	return &Service{
		accounts: accounts,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Register creates an account funded with the starting cash and opens a session.
func (s *Service) Register(ctx context.Context, username, password string) (types.Account, Session, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return types.Account{}, Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return types.Account{}, Session{}, fmt.Errorf("hash password: %w", err)
	}

	acct, err := s.accounts.CreateAccount(ctx, types.Account{
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.cfg.StartingCash,
		Currency:     s.cfg.Currency,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return types.Account{}, Session{}, err
	}

	s.logger.Info("account registered", zap.Int64("account_id", acct.ID), zap.String("username", username))
	return acct, s.open(acct.ID), nil
}

func (s *Service) Login(ctx context.Context, username, password string) (types.Account, Session, error) {
	acct, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return types.Account{}, Session{}, err
	}
	return acct, s.open(acct.ID), nil
}

// Authenticate checks a username and password without opening a session.
func (s *Service) Authenticate(ctx context.Context, username, password string) (types.Account, error) {
	acct, err := s.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.Account{}, ErrInvalidCredentials
		}
		return types.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login", zap.String("username", username))
		return types.Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Resolve returns the account a live token belongs to.
func (s *Service) Resolve(token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, ErrUnauthorized
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return 0, ErrUnauthorized
	}
	return sess.AccountID, nil
}

func (s *Service) open(accountID int64) Session {
	sess := Session{
		Token:     uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.sessions[sess.Token] = sess
	return sess
}

// sweep drops expired sessions. Callers hold mu.
func (s *Service) sweep() {
	now := s.now()
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func ValidateCredentials(username, password string) error {
	if n := len(username); n < MinUsernameLen || n > MaxUsernameLen {
		return ErrInvalidUsername
	}
	if n := len(password); n < MinPasswordLen || n > MaxPasswordLen {
		return ErrInvalidPassword
	}
	return nil
}
