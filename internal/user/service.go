// Package user はユーザー照合のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/gauth/internal/auth"
	"github.com/hitoshi/gauth/internal/model"
	"github.com/hitoshi/gauth/internal/repository"
)

// Service はプロバイダープロファイルとローカルユーザーの照合を提供する。
type Service struct {
	repo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// FindOrCreate はメールアドレスでユーザーを検索し、なければ作成する。
// 既存ユーザーはそのまま返し、プロバイダー側のname/picture/googleIdの
// 変更は同期しない（再ログイン時の鮮度よりレコードの安定を優先する）。
// 同時初回ログインで一意制約違反になった場合は検索を1回だけやり直す。
func (s *Service) FindOrCreate(ctx context.Context, profile *auth.Profile) (*model.User, bool, error) {
	if profile == nil || profile.Email == "" {
		return nil, false, fmt.Errorf("profile email is required")
	}

	existing, err := s.repo.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	newUser := &model.User{
		ID:        uuid.New().String(),
		Email:     profile.Email,
		GoogleID:  profile.GoogleID,
		Name:      profile.Name,
		Picture:   profile.Picture,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			// 別リクエストが先に同じメールアドレスで作成した
			won, findErr := s.repo.FindByEmail(ctx, profile.Email)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to re-find user after unique violation: %w", findErr)
			}
			if won != nil {
				return won, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, true, nil
}

// compile-time interface check
var _ auth.Reconciler = (*Service)(nil)
