package service

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

// JwtCustomClaim - участник процесса: роль и staff_id. Токены выпускает внешний сервис входа.
type JwtCustomClaim struct {
	Role    string `json:"role"`
	StaffID uint64 `json:"staff_id"`
	jwt.RegisteredClaims
}

// Actor переводит claims в участника для контекста запроса.
func (c *JwtCustomClaim) Actor() (types.Actor, error) {
	role := constants.Role(c.Role)
	if !role.IsValid() || c.StaffID == 0 {
		return types.Actor{}, apperrors.ErrInvalidToken
	}
	return types.Actor{Role: role, StaffID: c.StaffID}, nil
}

type JWTService interface {
	GenerateToken(actor types.Actor, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
}

type jwtService struct {
	SecretKey string
}

func NewJWTService(secretKey string) JWTService {
	return &jwtService{SecretKey: secretKey}
}

// GenerateToken используется сидером и тестами для выпуска токенов разработчика.
func (service *jwtService) GenerateToken(actor types.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaim{
		Role:    actor.Role.String(),
		StaffID: actor.StaffID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

func (service *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(service.SecretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
