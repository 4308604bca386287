// Package model はドメインモデルを定義する。
package model

import "time"

// TenantAccess はテナント管理に対する粗粒度のアクセスレベルを表す。
// 細粒度のパーミッション文字列とは独立した軸として評価される。
type TenantAccess string

const (
	// TenantAccessNone はテナント管理権限なしを示す。
	TenantAccessNone TenantAccess = "none"
	// TenantAccessRead はテナントの参照のみ可能であることを示す。
	TenantAccessRead TenantAccess = "read"
	// TenantAccessWrite はテナントの作成・編集・削除が可能であることを示す。
	TenantAccessWrite TenantAccess = "write"
)

// Tenant はユーザーとデータを分離する境界を表す。
type Tenant struct {
	ID                string
	Name              string
	Notes             string
	MembersEmailRegex string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Role はテナント内のロール定義を表す。
// Permissionsは細粒度パーミッション文字列の集合を保持する。
type Role struct {
	ID          string
	TenantID    string
	Name        string
	Notes       string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserProfile はユーザーの公開プロフィールを表す。
// 外部ストアと属性をそのまま往復するレコードで、
// 作成・編集フォームでの必須チェック以外のバリデーションは行わない。
type UserProfile struct {
	ID           string
	FirstName    string
	LastName     string
	DisplayName  string
	Salutation   string
	Title        string
	AvatarURL    string
	WebsiteURL   string
	Phone        string
	BirthdayDate string
	TimeZone     string
	Language     string
	UpdatedAt    time.Time
}

// User はサービス利用ユーザーを表す。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// 複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// ClaimsTokenにはサインイン時に解決されたクレームセットが署名付きで埋め込まれる。
// クレームはセッション再発行でのみ更新され、クライアントからは変更できない。
type Session struct {
	ID          string
	UserID      string
	ClaimsToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
