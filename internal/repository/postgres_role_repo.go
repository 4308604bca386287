package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// roleColumns は部分更新を許可するrolesテーブルのカラム。
// tenant_idは作成時にクレームから付与され、以後変更できない。
var roleColumns = map[string]bool{
	"name":        true,
	"notes":       true,
	"permissions": true,
}

// PostgresRoleRepo はPostgreSQLを使用したロールリポジトリ。
type PostgresRoleRepo struct {
	db *sql.DB
}

// NewPostgresRoleRepo はPostgresRoleRepoを生成する。
func NewPostgresRoleRepo(db *sql.DB) *PostgresRoleRepo {
	return &PostgresRoleRepo{db: db}
}

// scanRoles は結果セットからロールのスライスを構築する。
func scanRoles(rows *sql.Rows) ([]model.Role, error) {
	roles := []model.Role{}
	for rows.Next() {
		var role model.Role
		var tenantID sql.NullString
		if err := rows.Scan(&role.ID, &tenantID, &role.Name, &role.Notes,
			pq.Array(&role.Permissions), &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		role.TenantID = tenantID.String
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return roles, nil
}

// List は全ロールを作成日時順で取得する。
func (r *PostgresRoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, notes, permissions, created_at, updated_at
		 FROM roles
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

// FindByID は指定IDのロールを取得する。見つからない場合はnilを返す。
func (r *PostgresRoleRepo) FindByID(ctx context.Context, id string) (*model.Role, error) {
	role := &model.Role{}
	var tenantID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, notes, permissions, created_at, updated_at
		 FROM roles
		 WHERE id = $1`,
		id,
	).Scan(&role.ID, &tenantID, &role.Name, &role.Notes,
		pq.Array(&role.Permissions), &role.CreatedAt, &role.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	role.TenantID = tenantID.String
	return role, nil
}

// ListByUserID は指定ユーザーに割り当てられた全ロールを取得する。
// クレーム解決時のパーミッション合成に使用する。
func (r *PostgresRoleRepo) ListByUserID(ctx context.Context, userID string) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.tenant_id, r.name, r.notes, r.permissions, r.created_at, r.updated_at
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

// Insert はロールを作成する。
func (r *PostgresRoleRepo) Insert(ctx context.Context, role *model.Role) error {
	var tenantID any
	if role.TenantID != "" {
		tenantID = role.TenantID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, tenant_id, name, notes, permissions, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		role.ID, tenantID, role.Name, role.Notes, pq.Array(role.Permissions),
		role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

// Update は指定IDのロールをペイロードの項目だけ部分更新する。
func (r *PostgresRoleRepo) Update(ctx context.Context, id string, payload Payload) error {
	set, args := buildUpdateSet(payload, roleColumns, 2)
	if set == "" {
		return ErrNoFields
	}

	query := fmt.Sprintf(`UPDATE roles SET %s, updated_at = now() WHERE id = $1`, set)
	result, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete は指定IDのロールを削除する。割り当て（user_roles）はCASCADE削除される。
func (r *PostgresRoleRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM roles WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ RoleRepository = (*PostgresRoleRepo)(nil)
