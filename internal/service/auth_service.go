// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"txledger/internal/domain"
	"txledger/internal/repository"
	"txledger/internal/security"
	"txledger/internal/util"
	"txledger/pkg/db"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// TokenIssuer issues and decodes bearer tokens.
type TokenIssuer interface {
	IssueAccessToken(subject string) (string, error)
	IssueRefreshToken(subject string) (string, error)
	DecodeTokenOfType(token, tokenType string) (*security.Claims, error)
}

// AuthService defines registration, login and token resolution.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// authService implements the AuthService interface.
type authService struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo   repository.UserRepository
	hasher     PasswordHasher
	tokens     TokenIssuer
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AuthService {
	return &authService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		hasher:     hasher,
		tokens:     tokens,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Register creates an account. The uniqueness check and the insert share
// one database transaction; the unique constraint catches any race.
func (s *authService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	verr := util.NewValidationError()
	if msg := domain.ValidateEmail(email); msg != "" {
		verr.Add("email", msg)
	}
	if msg := domain.ValidatePasswordLength(password); msg != "" {
		verr.Add("password", msg)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("register: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("register: transaction controller does not implement DBExecutor")
	}

	exists, err := s.userRepo.EmailExists(ctx, txExecutor, email)
	if err != nil {
		return nil, fmt.Errorf("register: failed to check existing user: %w", err)
	}
	if exists {
		return nil, util.ErrConflict
	}

	if !security.CheckPasswordStrength(password) {
		return nil, util.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := domain.NewUser(email, hash)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		if errors.Is(err, util.ErrConflict) {
			return nil, util.ErrConflict
		}
		return nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("register: failed to commit transaction: %w", err)
	}

	return user, nil
}

// Login exchanges credentials for a token pair. An unknown email and a
// wrong password produce the same ErrUnauthorized.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if !errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("login: failed to get user: %w", err)
		}
		// Burn the same bcrypt work as a real comparison.
		_, _ = s.hasher.Verify(password, s.dummy())
		return nil, util.ErrUnauthorized
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, util.ErrUnauthorized
	}

	return s.issuePair(user.ID)
}

// Refresh trades a valid refresh token for a new pair, provided the user
// still exists.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	user, err := s.resolve(ctx, refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return s.issuePair(user.ID)
}

// Authenticate resolves an access token to its user.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.resolve(ctx, accessToken, security.TokenTypeAccess)
}

func (s *authService) resolve(ctx context.Context, token, tokenType string) (*domain.User, error) {
	claims, err := s.tokens.DecodeTokenOfType(token, tokenType)
	if err != nil {
		return nil, util.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, util.ErrUnauthorized
	}
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: failed to get user %s: %w", id, err)
	}
	return user, nil
}

func (s *authService) issuePair(id uuid.UUID) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(id.String())
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(id.String())
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}
