package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studyflow/internal/model"
)

type UserRepository interface {
	// CreateUser inserts u if no profile with the same id exists and returns the stored row.
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	IncrementDocumentsProcessed(ctx context.Context, id string) error
	// ApplySubscriptionUpdate overwrites the non-nil subscription fields. Returns ErrNotFound for unknown users.
	ApplySubscriptionUpdate(ctx context.Context, id string, upd model.SubscriptionUpdate) error
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, is_premium, stories_generated, documents_processed,
	subscription_status, subscription_id, subscription_end_date, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.IsPremium,
		&u.StoriesGenerated,
		&u.DocumentsProcessed,
		&u.SubscriptionStatus,
		&u.SubscriptionID,
		&u.SubscriptionEndDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	query := `
		WITH inserted AS (
			INSERT INTO user_profiles (id, email, name, is_premium, stories_generated, documents_processed, subscription_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
			RETURNING ` + userColumns + `
		)
		SELECT ` + userColumns + ` FROM inserted
		UNION ALL
		SELECT ` + userColumns + ` FROM user_profiles WHERE id = $1
		LIMIT 1`
	stored, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Name, u.IsPremium, u.StoriesGenerated, u.DocumentsProcessed, u.SubscriptionStatus))
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.ID, err)
	}
	return stored, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) IncrementDocumentsProcessed(ctx context.Context, id string) error {
	query := `UPDATE user_profiles SET documents_processed = documents_processed + 1, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment documents_processed for user %s: %w", id, err)
	}
	return requireRow(res)
}

func (r *userRepo) ApplySubscriptionUpdate(ctx context.Context, id string, upd model.SubscriptionUpdate) error {
	query := `
		UPDATE user_profiles
		SET is_premium = COALESCE($2, is_premium),
			subscription_status = COALESCE($3, subscription_status),
			subscription_id = COALESCE($4, subscription_id),
			subscription_end_date = COALESCE($5, subscription_end_date),
			updated_at = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, upd.IsPremium, upd.Status, upd.SubscriptionID, upd.EndDate)
	if err != nil {
		return fmt.Errorf("apply subscription update for user %s: %w", id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
