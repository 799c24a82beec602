// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// メールアドレスをキーとして一意であり、OAuth初回ログイン時に作成される。
// OAuth経由で作成されたアカウントはPasswordを持たない。
type User struct {
	ID        string
	Email     string
	Password  string // bcryptハッシュ。OAuthアカウントでは空。平文は保存しない。
	GoogleID  string // Googleの安定したユーザーID
	Name      string
	Picture   string
	CreatedAt time.Time
}
