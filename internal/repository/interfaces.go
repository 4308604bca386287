// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// Payload は部分更新・挿入のペイロードを表す。
// フォーム送信値から空値フィールドを省いて構築され、
// 値はstringまたは[]stringのいずれかを取る。
type Payload map[string]any

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザー、identity、空のプロフィールを
	// 同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TenantRepository はテナントレコードの永続化インターフェース。
type TenantRepository interface {
	// List は全テナントを作成日時順で取得する。
	List(ctx context.Context) ([]model.Tenant, error)
	// FindByID は指定IDのテナントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	// Insert はテナントを作成する。
	Insert(ctx context.Context, tenant *model.Tenant) error
	// Update は指定IDのテナントをペイロードの項目だけ部分更新する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, id string, payload Payload) error
	// Delete は指定IDのテナントを削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error
}

// RoleRepository はロールレコードの永続化インターフェース。
type RoleRepository interface {
	// List は全ロールを作成日時順で取得する。
	List(ctx context.Context) ([]model.Role, error)
	// FindByID は指定IDのロールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Role, error)
	// ListByUserID は指定ユーザーに割り当てられた全ロールを取得する。
	ListByUserID(ctx context.Context, userID string) ([]model.Role, error)
	// Insert はロールを作成する。
	Insert(ctx context.Context, role *model.Role) error
	// Update は指定IDのロールをペイロードの項目だけ部分更新する。
	Update(ctx context.Context, id string, payload Payload) error
	// Delete は指定IDのロールを削除する。
	Delete(ctx context.Context, id string) error
}

// ProfileRepository はユーザープロフィールの永続化インターフェース。
type ProfileRepository interface {
	// List は全プロフィールをID順で取得する。
	List(ctx context.Context) ([]model.UserProfile, error)
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.UserProfile, error)
	// Update は指定IDのプロフィールをペイロードの項目だけ部分更新する。
	Update(ctx context.Context, id string, payload Payload) error
}

// Membership はユーザーのテナント所属を表す。
type Membership struct {
	UserID   string
	TenantID string
	Access   model.TenantAccess
}

// MembershipRepository はテナント所属の永続化インターフェース。
type MembershipRepository interface {
	// FindByUserID は指定ユーザーの所属を取得する。無所属の場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*Membership, error)
	// Assign はユーザーをテナントに所属させる。既存の所属は上書きする。
	Assign(ctx context.Context, m *Membership) error
}
