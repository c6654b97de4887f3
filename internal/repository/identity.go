package repository

import (
	"context"

	"github.com/childbooklet/booklet-server-go/internal/database"
	"github.com/childbooklet/booklet-server-go/internal/model"
)

// IdentityRepository reads the external mock identity store. The table
// belongs to the identity provider; this side never writes to it.
type IdentityRepository interface {
	List(ctx context.Context, limit, offset int) ([]model.IdentityRow, error)
	FindByIndividualID(ctx context.Context, individualID string) (*model.IdentityRow, error)
}

type identityRepo struct {
	db database.DBTX
}

func NewIdentityRepository(db database.DBTX) IdentityRepository {
	return &identityRepo{db: db}
}

func (r *identityRepo) List(ctx context.Context, limit, offset int) ([]model.IdentityRow, error) {
	rows := []model.IdentityRow{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT individual_id, identity_json
		FROM mockidentitysystem.mock_identity
		ORDER BY individual_id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *identityRepo) FindByIndividualID(ctx context.Context, individualID string) (*model.IdentityRow, error) {
	var row model.IdentityRow
	err := r.db.GetContext(ctx, &row, `
		SELECT individual_id, identity_json
		FROM mockidentitysystem.mock_identity
		WHERE individual_id = $1
	`, individualID)
	return HandleNotFound(&row, err)
}
