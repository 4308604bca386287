package authz

import (
	"testing"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

func principalWith(perms ...string) *Principal {
	return &Principal{
		UserID: "user-1",
		Email:  "user@example.com",
		Claims: ClaimSet{
			TenantID:     "tenant-1",
			TenantAccess: model.TenantAccessNone,
			Permissions:  perms,
		},
	}
}

// --- HasPermission ---

func TestHasPermission_Anonymous_AlwaysFalse(t *testing.T) {
	perms := []string{"", "roles.edit", "profiles.edit", "all", "anything"}
	for _, perm := range perms {
		if HasPermission(nil, perm) {
			t.Errorf("HasPermission(nil, %q) = true, want false", perm)
		}
	}
}

func TestHasPermission_MembershipTest(t *testing.T) {
	tests := []struct {
		name       string
		held       []string
		permission string
		want       bool
	}{
		{"保持しているパーミッションはtrue", []string{"roles.edit"}, "roles.edit", true},
		{"保持していないパーミッションはfalse", []string{"roles.edit"}, "profiles.edit", false},
		{"空集合は常にfalse", []string{}, "roles.edit", false},
		{"複数保持から一致", []string{"roles.assign", "profiles.edit", "roles.edit"}, "profiles.edit", true},
		{"部分文字列一致はしない", []string{"roles.edit"}, "roles", false},
		{"大文字小文字は区別する", []string{"roles.edit"}, "Roles.Edit", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasPermission(principalWith(tt.held...), tt.permission)
			if got != tt.want {
				t.Errorf("HasPermission(%v, %q) = %v, want %v", tt.held, tt.permission, got, tt.want)
			}
		})
	}
}

// allトークンはワイルドカード展開されず、単なるメンバーシップ判定のみ行われることを検証
func TestHasPermission_AllToken_NoWildcardExpansion(t *testing.T) {
	p := principalWith("all")

	if !HasPermission(p, "all") {
		t.Error(`HasPermission(["all"], "all") = false, want true`)
	}
	if HasPermission(p, "roles.edit") {
		t.Error(`HasPermission(["all"], "roles.edit") = true, want false (no wildcard expansion)`)
	}
}

// --- テナントアクセス軸 ---

func TestCanWriteTenants(t *testing.T) {
	tests := []struct {
		name   string
		access model.TenantAccess
		want   bool
	}{
		{"write", model.TenantAccessWrite, true},
		{"read", model.TenantAccessRead, false},
		{"none", model.TenantAccessNone, false},
		{"空", model.TenantAccess(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Principal{UserID: "u", Claims: ClaimSet{TenantAccess: tt.access}}
			if got := CanWriteTenants(p); got != tt.want {
				t.Errorf("CanWriteTenants(access=%q) = %v, want %v", tt.access, got, tt.want)
			}
		})
	}
}

func TestCanWriteTenants_Anonymous_False(t *testing.T) {
	if CanWriteTenants(nil) {
		t.Error("CanWriteTenants(nil) = true, want false")
	}
}

// パーミッション軸とテナントアクセス軸が独立であることを検証
func TestTwoAxes_Independent(t *testing.T) {
	// tenant_access=write でもパーミッションは付与されない
	writer := &Principal{UserID: "u", Claims: ClaimSet{TenantAccess: model.TenantAccessWrite}}
	if HasPermission(writer, "roles.edit") {
		t.Error("tenant_access=write must not imply roles.edit")
	}

	// roles.edit 保持でもテナント書き込みは許可されない
	editor := principalWith("roles.edit")
	if CanWriteTenants(editor) {
		t.Error("roles.edit must not imply tenant write access")
	}
}

// --- プロフィール編集 ---

func TestCanEditProfile(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		profileID string
		want      bool
	}{
		{"匿名は編集不可", nil, "user-1", false},
		{"profiles.edit保持者は他人も編集可", principalWith("profiles.edit"), "user-9", true},
		{"本人は権限なしでも編集可", principalWith(), "user-1", true},
		{"他人は権限なしでは編集不可", principalWith(), "user-9", false},
		{"roles.editでは編集不可", principalWith("roles.edit"), "user-9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEditProfile(tt.principal, tt.profileID); got != tt.want {
				t.Errorf("CanEditProfile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKnownPermissions_MatchesRoleEditorOptions(t *testing.T) {
	want := []string{"all", "tenant_members.assign", "roles.edit", "roles.assign", "profiles.edit"}
	got := KnownPermissions()

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("KnownPermissions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
