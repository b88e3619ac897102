package auth

import (
	"fmt"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) GenerateAccessToken(user *models.User) (string, error) {
	if user == nil {
		return "", pkgerrors.ErrNilUser
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":      user.ID,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
		"iat":          now.Unix(),
		"exp":          now.Add(s.accessTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) GenerateRefreshToken(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.refreshTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, pkgerrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, pkgerrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) ParseAccessToken(tokenStr string) (*models.TokenClaims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, pkgerrors.ErrInvalidToken
	}
	isStaff, _ := claims["is_staff"].(bool)
	isSuperuser, _ := claims["is_superuser"].(bool)
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)
	return &models.TokenClaims{
		UserID:      int64(userID),
		IsStaff:     isStaff,
		IsSuperuser: isSuperuser,
		ExpiresAt:   time.Unix(int64(exp), 0),
		IssuedAt:    time.Unix(int64(iat), 0),
	}, nil
}

func (s *TokenService) ParseRefreshToken(tokenStr string) (*models.RefreshTokenClaims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, pkgerrors.ErrInvalidToken
	}
	tokenID, ok := claims["jti"].(string)
	if !ok {
		return nil, pkgerrors.ErrInvalidToken
	}
	exp, _ := claims["exp"].(float64)
	return &models.RefreshTokenClaims{
		UserID:    int64(userID),
		TokenID:   tokenID,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
