// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/gauth/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// このサブシステムはユーザーの読み取りと挿入のみを行い、更新・削除は行わない。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// email重複時はストアの一意制約違反エラーを返す（IsUniqueViolationで判定可能）。
	Create(ctx context.Context, user *model.User) error
}
