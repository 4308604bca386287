package auth

import (
	"testing"
	"time"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// claimsFixture はテスト共通のクレームセット。
var claimsFixture = authz.ClaimSet{
	TenantID:     "tenant-1",
	TenantAccess: model.TenantAccessWrite,
	Permissions:  []string{"roles.edit", "profiles.edit"},
}

func TestTokenService_MintAndParse_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret-key")

	token, err := svc.Mint("user-1", "user@example.com", &claimsFixture, time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	principal, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if principal.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", principal.UserID, "user-1")
	}
	if principal.Email != "user@example.com" {
		t.Errorf("Email = %q, want %q", principal.Email, "user@example.com")
	}
	if principal.Claims.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want %q", principal.Claims.TenantID, "tenant-1")
	}
	if principal.Claims.TenantAccess != model.TenantAccessWrite {
		t.Errorf("TenantAccess = %q, want %q", principal.Claims.TenantAccess, model.TenantAccessWrite)
	}
	if len(principal.Claims.Permissions) != 2 || principal.Claims.Permissions[0] != "roles.edit" {
		t.Errorf("Permissions = %v, want [roles.edit profiles.edit]", principal.Claims.Permissions)
	}
}

func TestTokenService_Parse_WrongSecret_Fails(t *testing.T) {
	token, err := NewTokenService("secret-a").Mint("user-1", "user@example.com", &claimsFixture, time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := NewTokenService("secret-b").Parse(token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestTokenService_Parse_ExpiredToken_Fails(t *testing.T) {
	svc := NewTokenService("secret-key")
	token, err := svc.Mint("user-1", "user@example.com", &claimsFixture, -time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := svc.Parse(token); err == nil {
		t.Fatal("expected parse failure for expired token")
	}
}

func TestTokenService_Parse_Garbage_Fails(t *testing.T) {
	svc := NewTokenService("secret-key")
	if _, err := svc.Parse("garbage.token.value"); err == nil {
		t.Fatal("expected parse failure for malformed token")
	}
}

// スーパー管理者（テナント未所属）のtenant_idはトークンから省略される
func TestTokenService_Mint_EmptyTenantID_OmittedFromClaims(t *testing.T) {
	svc := NewTokenService("secret-key")
	claims := &authz.ClaimSet{
		TenantAccess: model.TenantAccessNone,
		Permissions:  []string{"all"},
	}

	token, err := svc.Mint("admin-1", "admin@example.com", claims, time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	principal, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if principal.Claims.TenantID != "" {
		t.Errorf("TenantID = %q, want empty", principal.Claims.TenantID)
	}
}
