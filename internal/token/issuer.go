// Package token はセッショントークンの署名と検証を提供する。
// セッションはサーバー側に保持せず、署名と有効期限のみで有効性を判定する
// （ステートレスセッション）。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/gauth/internal/model"
)

const (
	// AccessTokenTTL はアクセストークンの有効期間。
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL はリフレッシュトークンの有効期間。
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrTokenExpired はトークンの有効期限切れを表す。
var ErrTokenExpired = errors.New("token expired")

// Claims はセッショントークンのクレームセット。
// subにユーザーID、アクセストークンのみemailを含む。
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer はアクセストークンとリフレッシュトークンの署名・検証を提供する。
// トークン種別ごとに別のシークレットで署名し、相互流用を防ぐ。
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte

	// テスト用にオーバーライド可能な時刻関数
	now func() time.Time
}

// NewIssuer はIssuerを生成する。
// いずれかのシークレットが空、または両者が同一の場合はエラーを返す。
// 空のキーで暗黙に署名することは許可しない。
func NewIssuer(accessSecret, refreshSecret string) (*Issuer, error) {
	if accessSecret == "" {
		return nil, model.NewConfigurationError("access token secret is not set")
	}
	if refreshSecret == "" {
		return nil, model.NewConfigurationError("refresh token secret is not set")
	}
	if accessSecret == refreshSecret {
		return nil, model.NewConfigurationError("access and refresh token secrets must differ")
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}, nil
}

// IssueAccessToken はユーザーのアクセストークンを発行する。
// クレームは {sub: ユーザーID, email} に発行時刻と有効期限（15分）を加えたもの。
func (i *Issuer) IssueAccessToken(user *model.User) (string, error) {
	now := i.now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken はユーザーのリフレッシュトークンを発行する。
// クレームは {sub: ユーザーID} に発行時刻と有効期限（7日）を加えたもの。
func (i *Issuer) IssueRefreshToken(user *model.User) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken はアクセストークンの署名と有効期限を検証し、クレームを返す。
func (i *Issuer) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return verify(tokenStr, i.accessSecret)
}

// VerifyRefreshToken はリフレッシュトークンの署名と有効期限を検証し、クレームを返す。
func (i *Issuer) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return verify(tokenStr, i.refreshSecret)
}

// verify はトークンを検証する。
// HS256以外の署名方式は拒否する（アルゴリズム混同攻撃の防止）。
func verify(tokenStr string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}
