package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// TokenService はクレームセットを署名付きJWT（HS256）として発行・検証する。
// トークンはセッションレコードに保存され、リクエストごとにパースして
// Principalを復元する。クレームの変更はセッション再発行によってのみ反映される。
type TokenService struct {
	secret []byte
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// claimsTokenPayload はJWTに埋め込むクレームのワイヤ形式。
type claimsTokenPayload struct {
	Email        string   `json:"email"`
	TenantID     string   `json:"tenant_id,omitempty"`
	TenantAccess string   `json:"tenant_access"`
	Permissions  []string `json:"perms"`
	jwt.RegisteredClaims
}

// Mint はユーザーとクレームセットから署名付きトークンを発行する。
func (s *TokenService) Mint(userID, email string, claims *authz.ClaimSet, ttl time.Duration) (string, error) {
	now := time.Now()
	payload := claimsTokenPayload{
		Email:        email,
		TenantID:     claims.TenantID,
		TenantAccess: string(claims.TenantAccess),
		Permissions:  claims.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign claims token: %w", err)
	}
	return signed, nil
}

// Parse はトークンを検証し、Principalを復元する。
// 署名不正・期限切れの場合はエラーを返す。
func (s *TokenService) Parse(tokenString string) (*authz.Principal, error) {
	payload := &claimsTokenPayload{}
	token, err := jwt.ParseWithClaims(tokenString, payload,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse claims token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("claims token is invalid")
	}

	return &authz.Principal{
		UserID: payload.Subject,
		Email:  payload.Email,
		Claims: authz.ClaimSet{
			TenantID:     payload.TenantID,
			TenantAccess: model.TenantAccess(payload.TenantAccess),
			Permissions:  payload.Permissions,
		},
	}, nil
}
