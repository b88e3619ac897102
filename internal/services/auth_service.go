package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/auth"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/kafka"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/redis"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	"github.com/Chrissie21/GrowSafeWebApp/internal/repository"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair is what every successful authentication hands back.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	IsAdmin      bool   `json:"is_admin"`
}

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*TokenPair, error)
	Login(ctx context.Context, login, password string) (*TokenPair, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	CreateUser(ctx context.Context, staff *models.TokenClaims, req CreateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, staff *models.TokenClaims, userID int64) error
	ListUsers(ctx context.Context, staff *models.TokenClaims) ([]models.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	txm         repository.TxManager
	tokens      *auth.TokenService
	redisClient redis.RedisClient
	producer    kafka.LedgerProducer
}

func NewAuthService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	txm repository.TxManager,
	tokens *auth.TokenService,
	redisClient redis.RedisClient,
	producer kafka.LedgerProducer,
) *authService {
	return &authService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		txm:         txm,
		tokens:      tokens,
		redisClient: redisClient,
		producer:    producer,
	}
}

// issueTokens signs a pair and caches the access token so the middleware can
// treat a missing cache entry as a revoked session.
func (s *authService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.redisClient.StoreAccessToken(ctx, user.ID, access, s.tokens.AccessTTL()); err != nil {
		slog.Error("failed to cache access token", "user_id", user.ID, "error", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		IsAdmin:      user.IsAdmin(),
	}, nil
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*TokenPair, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, pkgerrors.ErrFieldsRequired
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.ErrPasswordMismatch
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.ErrUsernameExists
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.profileRepo.Create(ctx, &models.UserProfile{UserID: user.ID})
	})
	if err != nil {
		slog.Error("signup failed", "username", req.Username, "error", err)
		return nil, err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.producer.Publish(ctx, kafka.LedgerEvent{
			Event:  kafka.EventUserRegistered,
			UserID: user.ID,
		}); err != nil {
			slog.Error("failed to publish ledger event", "event", kafka.EventUserRegistered, "user_id", user.ID, "error", err)
		}
	}()

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.issueTokens(ctx, user)
}

// Login accepts either a username or an email as the login.
func (s *authService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, login)
	if err != nil {
		slog.Warn("login failed", "login", login, "error", err)
		return nil, pkgerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "login", login)
		return nil, pkgerrors.ErrInvalidCredentials
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return s.issueTokens(ctx, user)
}

// Logout ends the session on both sides: the cached access token is dropped
// and the refresh token's id goes on the deny list for its remaining
// lifetime, so the pair issued at login cannot revive the session.
func (s *authService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != userID {
		return pkgerrors.ErrInvalidToken
	}
	if err := s.redisClient.DenyRefreshToken(ctx, claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		slog.Error("failed to deny refresh token", "user_id", userID, "error", err)
		return err
	}
	if err := s.redisClient.RevokeAccessToken(ctx, userID); err != nil {
		slog.Error("failed to revoke access token", "user_id", userID, "error", err)
		return err
	}
	slog.Info("user logged out", "user_id", userID)
	return nil
}

// Refresh mints a fresh access token off a valid, non-denied refresh token
// and re-caches it.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	denied, err := s.redisClient.IsRefreshTokenDenied(ctx, claims.TokenID)
	if err != nil {
		return "", err
	}
	if denied {
		return "", pkgerrors.ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", pkgerrors.ErrInvalidToken
	}
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", err
	}
	if err := s.redisClient.StoreAccessToken(ctx, user.ID, access, s.tokens.AccessTTL()); err != nil {
		slog.Error("failed to cache access token", "user_id", user.ID, "error", err)
	}
	return access, nil
}

func (s *authService) CreateUser(ctx context.Context, staff *models.TokenClaims, req CreateUserRequest) (*models.User, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, pkgerrors.ErrFieldsRequired
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.ErrUsernameExists
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsStaff:      req.IsStaff,
		IsSuperuser:  req.IsSuperuser,
	}
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.profileRepo.Create(ctx, &models.UserProfile{UserID: user.ID})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user created by staff", "user_id", user.ID, "username", user.Username, "staff_id", staff.UserID)
	return user, nil
}

func (s *authService) DeleteUser(ctx context.Context, staff *models.TokenClaims, userID int64) error {
	if err := requireStaff(staff); err != nil {
		return err
	}
	if staff.UserID == userID {
		return pkgerrors.ErrForbidden
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.redisClient.RevokeAccessToken(ctx, userID); err != nil {
		slog.Error("failed to revoke access token", "user_id", userID, "error", err)
	}
	slog.Info("user deleted", "user_id", userID, "staff_id", staff.UserID)
	return nil
}

func (s *authService) ListUsers(ctx context.Context, staff *models.TokenClaims) ([]models.User, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}
