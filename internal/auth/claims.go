package auth

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
)

// ClaimsResolver はサインイン時にユーザーのクレームセットを解決する。
// パーミッションは割り当てロールのpermissions配列の和集合、
// テナント所属はtenant_membersレコードから取得する。
type ClaimsResolver struct {
	roleRepo       repository.RoleRepository
	membershipRepo repository.MembershipRepository
	tenantRepo     repository.TenantRepository
}

// NewClaimsResolver はClaimsResolverを生成する。
func NewClaimsResolver(
	roleRepo repository.RoleRepository,
	membershipRepo repository.MembershipRepository,
	tenantRepo repository.TenantRepository,
) *ClaimsResolver {
	return &ClaimsResolver{
		roleRepo:       roleRepo,
		membershipRepo: membershipRepo,
		tenantRepo:     tenantRepo,
	}
}

// Resolve はユーザーの現在のクレームセットを構築する。
// テナント未所属の場合はmembers_email_regexによる自動割り当てを試みる。
func (r *ClaimsResolver) Resolve(ctx context.Context, userID, email string) (*authz.ClaimSet, error) {
	membership, err := r.membershipRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant membership: %w", err)
	}

	if membership == nil {
		membership, err = r.autoAssignTenant(ctx, userID, email)
		if err != nil {
			return nil, err
		}
	}

	roles, err := r.roleRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}

	claims := &authz.ClaimSet{
		TenantAccess: model.TenantAccessNone,
		Permissions:  unionPermissions(roles),
	}
	if membership != nil {
		claims.TenantID = membership.TenantID
		claims.TenantAccess = membership.Access
	}

	return claims, nil
}

// autoAssignTenant はmembers_email_regexがメールアドレスに一致する
// 最初のテナントへユーザーを自動割り当てする。
// 一致するテナントがない場合はnilを返す（エラーではない）。
// 自動割り当てされたメンバーのアクセスレベルはreadとする。
func (r *ClaimsResolver) autoAssignTenant(ctx context.Context, userID, email string) (*repository.Membership, error) {
	tenants, err := r.tenantRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants for auto-assignment: %w", err)
	}

	for _, tenant := range tenants {
		if tenant.MembersEmailRegex == "" {
			continue
		}
		re, err := regexp.Compile(tenant.MembersEmailRegex)
		if err != nil {
			// 不正な正規表現は管理者の設定ミス。割り当てをスキップしてログに残す。
			slog.Warn("invalid members_email_regex, skipping tenant",
				slog.String("tenant_id", tenant.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !re.MatchString(email) {
			continue
		}

		membership := &repository.Membership{
			UserID:   userID,
			TenantID: tenant.ID,
			Access:   model.TenantAccessRead,
		}
		if err := r.membershipRepo.Assign(ctx, membership); err != nil {
			return nil, fmt.Errorf("failed to auto-assign tenant: %w", err)
		}

		slog.Info("user auto-assigned to tenant",
			slog.String("user_id", userID),
			slog.String("tenant_id", tenant.ID),
		)
		return membership, nil
	}

	return nil, nil
}

// unionPermissions は全ロールのpermissions配列の和集合を返す。
// 重複は除去し、順序はロールの出現順を保つ。
func unionPermissions(roles []model.Role) []string {
	seen := make(map[string]bool)
	perms := []string{}
	for _, role := range roles {
		for _, perm := range role.Permissions {
			if seen[perm] {
				continue
			}
			seen[perm] = true
			perms = append(perms, perm)
		}
	}
	return perms
}
