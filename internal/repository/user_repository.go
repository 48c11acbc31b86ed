package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/database"
	"jobboard/internal/domain/user"
	"jobboard/internal/pkg/apifilter"
)

const userColumns = `id, name, email, role, created_at, password_hash, coalesce(reset_password_token, ''), reset_password_expire`

type PostgresUserRepository struct {
	db database.Querier
}

func NewPostgresUserRepository(db database.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var _ user.Repository = (*PostgresUserRepository)(nil)

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash,
	))
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3 WHERE id = $1 RETURNING `+userColumns,
		id, name, email,
	))
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.execOne(ctx,
		`UPDATE users SET password_hash = $2, reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`,
		id, hash,
	)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error {
	return r.execOne(ctx,
		`UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1`,
		id, hash, expires,
	)
}

func (r *PostgresUserRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx,
		`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`,
		id,
	)
}

func (r *PostgresUserRepository) GetByResetToken(ctx context.Context, hash string, now time.Time) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_password_token = $1 AND reset_password_expire > $2`,
		hash, now,
	))
}

func (r *PostgresUserRepository) ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET password_hash = $3, reset_password_token = NULL, reset_password_expire = NULL
		 WHERE reset_password_token = $1 AND reset_password_expire > $2
		 RETURNING `+userColumns,
		hash, now, passwordHash,
	))
}

func (r *PostgresUserRepository) SweepExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL
		 WHERE reset_password_token IS NOT NULL AND reset_password_expire <= $1`,
		now,
	)
}

func (r *PostgresUserRepository) JobsPublished(ctx context.Context, id uuid.UUID) ([]user.PublishedJob, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, posting_date FROM jobs WHERE user_id = $1 ORDER BY posting_date DESC, id DESC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.PublishedJob, 0)
	for rows.Next() {
		var p user.PublishedJob
		if err := rows.Scan(&p.ID, &p.Title, &p.PostingDate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserRepository) Query() apifilter.Query {
	return apifilter.New(UserSchema)
}

func (r *PostgresUserRepository) Find(ctx context.Context, q apifilter.Query) ([]json.RawMessage, error) {
	return find(ctx, r.db, q)
}

func (r *PostgresUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	n, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.PasswordHash, &u.ResetPasswordToken, &u.ResetPasswordExpire)
	if err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
