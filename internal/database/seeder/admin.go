package seeder

import (
	"context"
	"errors"
	"strings"

	"jobboard/internal/database"
	"jobboard/internal/domain/user"
	"jobboard/internal/pkg/credential"
)

// AdminSeeder creates the admin account, or promotes and re-keys the account that already
// owns the e-mail. Registration never hands out the admin role, so this is the only way in.
type AdminSeeder struct {
	DisplayName string
	Email       string
	Password    string
}

func (AdminSeeder) Name() string { return "admin" }

func (s AdminSeeder) Run(ctx context.Context, db database.DB) error {
	u := user.User{
		Name:  strings.TrimSpace(s.DisplayName),
		Email: strings.ToLower(strings.TrimSpace(s.Email)),
		Role:  user.RoleAdmin,
	}
	if err := u.Validate(); err != nil {
		return err
	}
	if err := user.ValidatePassword(s.Password); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "users", "name", "email", "role", "password_hash"); err != nil {
		return err
	}

	hash, err := credential.HashPassword(s.Password)
	if err != nil {
		return err
	}

	n, err := db.Exec(ctx,
		`INSERT INTO users (name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE
		 SET role = EXCLUDED.role, password_hash = EXCLUDED.password_hash, name = EXCLUDED.name`,
		u.Name, u.Email, u.Role, hash,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("admin seed wrote no rows")
	}
	return nil
}
