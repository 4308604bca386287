package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresMembershipRepo はPostgreSQLを使用したテナント所属リポジトリ。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

// FindByUserID は指定ユーザーの所属を取得する。無所属の場合はnilを返す。
func (r *PostgresMembershipRepo) FindByUserID(ctx context.Context, userID string) (*Membership, error) {
	m := &Membership{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, tenant_id, access
		 FROM tenant_members
		 WHERE user_id = $1`,
		userID,
	).Scan(&m.UserID, &m.TenantID, &m.Access)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	return m, nil
}

// Assign はユーザーをテナントに所属させる。既存の所属は上書きする。
func (r *PostgresMembershipRepo) Assign(ctx context.Context, m *Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenant_members (user_id, tenant_id, access)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET tenant_id = $2, access = $3`,
		m.UserID, m.TenantID, m.Access,
	)
	if err != nil {
		return fmt.Errorf("failed to assign membership: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MembershipRepository = (*PostgresMembershipRepo)(nil)
