// Package auth はGoogle OAuth認証フローとセッショントークン発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/gauth/internal/model"
)

// Profile はOAuthプロバイダーから取得したユーザー情報を表す。
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// Provider はOAuth認証プロバイダーのインターフェース。
type Provider interface {
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
}

// Reconciler はプロバイダーのプロファイルをローカルユーザーに対応付ける
// インターフェース。createdは新規作成された場合にtrueとなる。
type Reconciler interface {
	FindOrCreate(ctx context.Context, profile *Profile) (user *model.User, created bool, err error)
}

// TokenIssuer はセッショントークンの発行インターフェース。
type TokenIssuer interface {
	IssueAccessToken(user *model.User) (string, error)
	IssueRefreshToken(user *model.User) (string, error)
}

// Metrics はログイン処理のメトリクス記録インターフェース。
type Metrics interface {
	RecordLoginSuccess()
	RecordLoginFailure(stage string)
	RecordUserCreated()
	RecordExchangeLatency(d time.Duration)
}

// TokenPair はアクセストークンとリフレッシュトークンの組。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service はログインに関するビジネスロジックを提供する。
// 認可コード交換 → ユーザー照合 → トークン発行を順番に実行する。
type Service struct {
	provider Provider
	users    Reconciler
	issuer   TokenIssuer
	metrics  Metrics
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(provider Provider, users Reconciler, issuer TokenIssuer, metrics Metrics) *Service {
	return &Service{
		provider: provider,
		users:    users,
		issuer:   issuer,
		metrics:  metrics,
	}
}

// Login は認可コードからログイン処理を実行し、ユーザーとトークンの組を返す。
// 途中で失敗した場合のロールバックは行わない。ユーザー作成後にトークン発行が
// 失敗しても作成済みユーザーはそのまま残り、次回ログインで照合される。
func (s *Service) Login(ctx context.Context, code string) (*model.User, *TokenPair, error) {
	if code == "" {
		return nil, nil, model.NewMissingCodeError()
	}

	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	start := time.Now()
	profile, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		s.recordFailure("exchange")
		return nil, nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordExchangeLatency(time.Since(start))
	}

	// 2. メールアドレスでローカルユーザーを照合（なければ作成）
	user, created, err := s.users.FindOrCreate(ctx, profile)
	if err != nil {
		s.recordFailure("reconcile")
		return nil, nil, fmt.Errorf("failed to reconcile user: %w", err)
	}
	if created {
		if s.metrics != nil {
			s.metrics.RecordUserCreated()
		}
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	} else {
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
		)
	}

	// 3. セッショントークンを発行
	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		s.recordFailure("issue")
		return nil, nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		s.recordFailure("issue")
		return nil, nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}

	return user, &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// recordFailure はログイン失敗メトリクスを記録する。
func (s *Service) recordFailure(stage string) {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure(stage)
	}
}
