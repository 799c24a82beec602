// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// エラーの原因カテゴリを含み、ハンドラーでのステータスコード判定に使用する。
// クライアントへ返すメッセージは常に汎用的なものとし、詳細はログにのみ記録する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（サーバー内部向け）
	Category string // カテゴリ: validation, exchange, persistence, configuration
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryValidation    = "validation"
	CategoryExchange      = "exchange"
	CategoryPersistence   = "persistence"
	CategoryConfiguration = "configuration"
)

// 定義済みエラーコード
const (
	ErrCodeMissingCode   = "MISSING_CODE"
	ErrCodeExchangeFail  = "EXCHANGE_FAILED"
	ErrCodePersistence   = "PERSISTENCE_FAILED"
	ErrCodeConfiguration = "CONFIGURATION_INVALID"
)

// NewMissingCodeError は認可コード未指定エラーを生成する。
func NewMissingCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingCode,
		Message:  "認可コードが指定されていません。",
		Category: CategoryValidation,
	}
}

// NewExchangeError はプロバイダーとのコード交換失敗エラーを生成する。
func NewExchangeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeExchangeFail,
		Message:  fmt.Sprintf("認可コードの交換に失敗しました: %s", reason),
		Category: CategoryExchange,
	}
}

// NewPersistenceError は永続化層の障害エラーを生成する。
func NewPersistenceError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodePersistence,
		Message:  fmt.Sprintf("ユーザーデータの永続化に失敗しました: %s", reason),
		Category: CategoryPersistence,
	}
}

// NewConfigurationError は設定不備エラーを生成する。
// 署名シークレット欠落などはリクエスト単位ではなく起動時に検出すべき障害。
func NewConfigurationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeConfiguration,
		Message:  fmt.Sprintf("設定が不正です: %s", detail),
		Category: CategoryConfiguration,
	}
}
