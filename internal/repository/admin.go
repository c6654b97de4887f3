package repository

import (
	"context"

	"github.com/childbooklet/booklet-server-go/internal/database"
	"github.com/childbooklet/booklet-server-go/internal/model"
)

type AdminUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	// Seed inserts the admin user unless the username is already taken.
	// Returns true when a row was created.
	Seed(ctx context.Context, params model.CreateAdminUserParams) (bool, error)
}

type adminUserRepo struct {
	db database.DBTX
}

func NewAdminUserRepository(db database.DBTX) AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM admin_users WHERE username = $1
	`, username)
	return HandleNotFound(&user, err)
}

func (r *adminUserRepo) Seed(ctx context.Context, params model.CreateAdminUserParams) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_users (username, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`, params.Username, params.PasswordHash, params.Role)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
