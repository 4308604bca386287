// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// 永続化エラーはユーザーには表示せずログのみに記録する方針のため、
// Messageはオペレーター向けの内容に留める。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, data, system
	Action   string // 対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTenantNotFound  = "TENANT_NOT_FOUND"
	ErrCodeRoleNotFound    = "ROLE_NOT_FOUND"
	ErrCodeProfileNotFound = "PROFILE_NOT_FOUND"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeInvalidField    = "INVALID_FIELD"
	ErrCodeDataAccess      = "DATA_ACCESS_ERROR"
	ErrCodeAvatarBlocked   = "AVATAR_BLOCKED"
)

// NewUnauthorizedError は認証エラーを生成する。
// テキストとしてユーザーに表示せず、リダイレクトで処理する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(permission string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この操作に必要な権限がありません: %s", permission),
		Category: "auth",
		Action:   "管理者にロールの割り当てを依頼してください。",
	}
}

// NewTenantNotFoundError はテナント未検出エラーを生成する。
func NewTenantNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeTenantNotFound,
		Message:  fmt.Sprintf("指定されたテナントが見つかりません: %s", id),
		Category: "data",
		Action:   "テナントIDを確認してください。",
	}
}

// NewRoleNotFoundError はロール未検出エラーを生成する。
func NewRoleNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeRoleNotFound,
		Message:  fmt.Sprintf("指定されたロールが見つかりません: %s", id),
		Category: "data",
		Action:   "ロールIDを確認してください。",
	}
}

// NewProfileNotFoundError はプロフィール未検出エラーを生成する。
func NewProfileNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  fmt.Sprintf("指定されたユーザープロフィールが見つかりません: %s", id),
		Category: "data",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須フィールドが入力されていません: %s", field),
		Category: "validation",
		Action:   fmt.Sprintf("%s を入力してください。", field),
	}
}

// NewInvalidFieldError はフィールド値不正エラーを生成する。
func NewInvalidFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidField,
		Message:  fmt.Sprintf("フィールドの値が不正です: %s", field),
		Category: "validation",
		Action:   fmt.Sprintf("%s の値を確認してください。", field),
	}
}

// NewDataAccessError は永続化エラーを生成する。
// 詳細はログに記録し、操作は中断する。リトライは行わない。
func NewDataAccessError() *APIError {
	return &APIError{
		Code:     ErrCodeDataAccess,
		Message:  "データアクセスに失敗しました。",
		Category: "data",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewAvatarBlockedError はアバター取得ブロックエラーを生成する。
func NewAvatarBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeAvatarBlocked,
		Message:  "セキュリティポリシーにより、アバターURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "http(s)の公開URLをアバターに設定してください。",
	}
}
