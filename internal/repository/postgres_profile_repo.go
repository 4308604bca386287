package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
)

// profileColumns は部分更新を許可するuser_profilesテーブルのカラム。
// idはhiddenフィールドとして送信されるがスキーマ外として無視される。
var profileColumns = map[string]bool{
	"first_name":    true,
	"last_name":     true,
	"display_name":  true,
	"salutation":    true,
	"title":         true,
	"avatar_url":    true,
	"website_url":   true,
	"phone":         true,
	"birthday_date": true,
	"time_zone":     true,
	"language":      true,
}

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

const profileSelectColumns = `id, first_name, last_name, display_name, salutation, title,
	avatar_url, website_url, phone, birthday_date, time_zone, language, updated_at`

// scanProfile は1行をUserProfileへ読み込む。
func scanProfile(row interface{ Scan(...any) error }) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DisplayName, &p.Salutation,
		&p.Title, &p.AvatarURL, &p.WebsiteURL, &p.Phone, &p.BirthdayDate,
		&p.TimeZone, &p.Language, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List は全プロフィールをID順で取得する。
func (r *PostgresProfileRepo) List(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileSelectColumns+` FROM user_profiles ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByID(ctx context.Context, id string) (*model.UserProfile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileSelectColumns+` FROM user_profiles WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return p, nil
}

// Update は指定IDのプロフィールをペイロードの項目だけ部分更新する。
func (r *PostgresProfileRepo) Update(ctx context.Context, id string, payload Payload) error {
	set, args := buildUpdateSet(payload, profileColumns, 2)
	if set == "" {
		return ErrNoFields
	}

	query := fmt.Sprintf(`UPDATE user_profiles SET %s, updated_at = now() WHERE id = $1`, set)
	result, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
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
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
