// Package authz はクレームセットに基づく認可判定を提供する。
//
// 判定には独立した2つの軸がある:
//  1. 細粒度パーミッション文字列のメンバーシップ判定（roles, profiles）
//  2. 粗粒度テナントアクセスレベルの比較（tenant_access == "write"）
//
// どちらも同じクレームセットを読み取るが、個別に検証可能な述語として公開する。
package authz

import (
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// ClaimSet は外部プロバイダーがセッション発行時にIdentityへ付与する
// 認可メタデータを表す。クライアント側からは不変であり、
// セッションの再発行によってのみ更新される。
type ClaimSet struct {
	// TenantID は所属テナントのID。スーパー管理者は空。
	TenantID string `json:"tenant_id,omitempty"`
	// TenantAccess はテナント管理の粗粒度アクセスレベル。
	TenantAccess model.TenantAccess `json:"tenant_access"`
	// Permissions は細粒度パーミッション文字列の集合。
	// 例: roles.edit, profiles.edit, roles.assign, tenant_members.assign, all
	Permissions []string `json:"perms"`
}

// Principal は認証済みのリクエスト主体を表す。
// nilのPrincipalは匿名（未認証）セッションを意味する。
type Principal struct {
	UserID string
	Email  string
	Claims ClaimSet
}

// HasPermission はPrincipalが指定パーミッションを保持するかを判定する。
// 匿名セッション（nil）は常にfalse。
// 判定は厳密なメンバーシップテストであり、"all" トークンの
// ワイルドカード展開は行わない。
func HasPermission(p *Principal, permission string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Claims.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}

// CanWriteTenants はテナント管理の書き込み権限を判定する。
// パーミッション文字列とは別の粗粒度軸（tenant_access）を参照する。
func CanWriteTenants(p *Principal) bool {
	if p == nil {
		return false
	}
	return p.Claims.TenantAccess == model.TenantAccessWrite
}

// CanEditProfile はプロフィール編集の可否を判定する。
// profiles.editパーミッション保持者、または本人（viewer.id == record.id）が編集できる。
func CanEditProfile(p *Principal, profileID string) bool {
	if p == nil {
		return false
	}
	if HasPermission(p, PermProfilesEdit) {
		return true
	}
	return p.UserID == profileID
}

// 定義済みパーミッション文字列。
// ロールエディタの選択肢と一致する。
const (
	PermAll                 = "all"
	PermTenantMembersAssign = "tenant_members.assign"
	PermRolesEdit           = "roles.edit"
	PermRolesAssign         = "roles.assign"
	PermProfilesEdit        = "profiles.edit"
)

// KnownPermissions はロールエディタが提示する全パーミッションを返す。
func KnownPermissions() []string {
	return []string{
		PermAll,
		PermTenantMembersAssign,
		PermRolesEdit,
		PermRolesAssign,
		PermProfilesEdit,
	}
}
