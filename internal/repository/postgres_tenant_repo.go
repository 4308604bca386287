package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// tenantColumns は部分更新を許可するtenantsテーブルのカラム。
var tenantColumns = map[string]bool{
	"name":                true,
	"notes":               true,
	"members_email_regex": true,
}

// PostgresTenantRepo はPostgreSQLを使用したテナントリポジトリ。
type PostgresTenantRepo struct {
	db *sql.DB
}

// NewPostgresTenantRepo はPostgresTenantRepoを生成する。
func NewPostgresTenantRepo(db *sql.DB) *PostgresTenantRepo {
	return &PostgresTenantRepo{db: db}
}

// List は全テナントを作成日時順で取得する。
func (r *PostgresTenantRepo) List(ctx context.Context) ([]model.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, notes, members_email_regex, created_at, updated_at
		 FROM tenants
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Notes, &t.MembersEmailRegex, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}

	return tenants, nil
}

// FindByID は指定IDのテナントを取得する。見つからない場合はnilを返す。
func (r *PostgresTenantRepo) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	t := &model.Tenant{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, notes, members_email_regex, created_at, updated_at
		 FROM tenants
		 WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.Notes, &t.MembersEmailRegex, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}

	return t, nil
}

// Insert はテナントを作成する。
func (r *PostgresTenantRepo) Insert(ctx context.Context, tenant *model.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, notes, members_email_regex, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tenant.ID, tenant.Name, tenant.Notes, tenant.MembersEmailRegex, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

// Update は指定IDのテナントをペイロードの項目だけ部分更新する。
func (r *PostgresTenantRepo) Update(ctx context.Context, id string, payload Payload) error {
	set, args := buildUpdateSet(payload, tenantColumns, 2)
	if set == "" {
		return ErrNoFields
	}

	query := fmt.Sprintf(`UPDATE tenants SET %s, updated_at = now() WHERE id = $1`, set)
	result, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
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

// Delete は指定IDのテナントを削除する。
// 所属メンバーとロールはCASCADE削除される。
func (r *PostgresTenantRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tenants WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
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
var _ TenantRepository = (*PostgresTenantRepo)(nil)
