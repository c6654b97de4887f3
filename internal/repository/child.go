package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/childbooklet/booklet-server-go/internal/database"
	"github.com/childbooklet/booklet-server-go/internal/model"
)

type ChildRecordRepository interface {
	// InsertIfAbsent inserts the record unless one with the same healthId
	// already exists. Returns false without error when the row was already
	// present.
	InsertIfAbsent(ctx context.Context, record *model.ChildRecord) (bool, error)
	FindByHealthID(ctx context.Context, healthID string) (*model.ChildRecord, error)
	FindByNamePrefix(ctx context.Context, prefix string) (*model.ChildRecord, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.ChildRecord, error)
	FindByUploader(ctx context.Context, query model.UploaderQuery) ([]model.ChildRecord, error)
	Update(ctx context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error)
	Delete(ctx context.Context, healthID string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.RecentUpload, error)
}

type childRecordRepo struct {
	db database.DBTX
}

func NewChildRecordRepository(db database.DBTX) ChildRecordRepository {
	return &childRecordRepo{db: db}
}

func (r *childRecordRepo) InsertIfAbsent(ctx context.Context, record *model.ChildRecord) (bool, error) {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO child_records (
			health_id, name, gender, date_of_birth, age_months,
			weight_kg, height_cm, malnutrition_status,
			guardian_name, guardian_phone, relation, id_reference,
			location, representative, photo_data,
			uploader_name, uploader_email, uploader_location,
			uploaded_by, status, uploaded_at
		) VALUES (
			:health_id, :name, :gender, :date_of_birth, :age_months,
			:weight_kg, :height_cm, :malnutrition_status,
			:guardian_name, :guardian_phone, :relation, :id_reference,
			:location, :representative, :photo_data,
			:uploader_name, :uploader_email, :uploader_location,
			:uploaded_by, :status, :uploaded_at
		)
		ON CONFLICT (health_id) DO NOTHING
	`, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *childRecordRepo) FindByHealthID(ctx context.Context, healthID string) (*model.ChildRecord, error) {
	var record model.ChildRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT * FROM child_records WHERE health_id = $1
	`, healthID)
	return HandleNotFound(&record, err)
}

func (r *childRecordRepo) FindByNamePrefix(ctx context.Context, prefix string) (*model.ChildRecord, error) {
	var record model.ChildRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT * FROM child_records
		WHERE name ILIKE $1 || '%'
		ORDER BY uploaded_at DESC
		LIMIT 1
	`, prefix)
	return HandleNotFound(&record, err)
}

func (r *childRecordRepo) FindAll(ctx context.Context, limit, offset int) ([]model.ChildRecord, error) {
	records := []model.ChildRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM child_records
		ORDER BY uploaded_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *childRecordRepo) FindByUploader(ctx context.Context, query model.UploaderQuery) ([]model.ChildRecord, error) {
	conditions := []string{}
	args := []any{}

	add := func(clause, value string) {
		if value != "" {
			args = append(args, value)
			conditions = append(conditions, fmt.Sprintf(clause, len(args)))
		}
	}
	add("(uploader_email = $%[1]d OR uploaded_by = $%[1]d)", query.Email)
	add("(uploader_name = $%[1]d OR representative = $%[1]d OR uploaded_by = $%[1]d)", query.Name)
	add("uploaded_by = $%d", query.Phone)
	add("uploaded_by = $%d", query.IndividualID)

	if len(conditions) == 0 {
		return []model.ChildRecord{}, nil
	}

	records := []model.ChildRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM child_records
		WHERE `+strings.Join(conditions, " OR ")+`
		ORDER BY uploaded_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// updateColumns maps RecordUpdate fields to their columns in declaration
// order so the generated SET clause is deterministic.
func updateColumns(update model.RecordUpdate) ([]string, []any) {
	columns := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		columns = append(columns, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Gender != nil {
		add("gender", *update.Gender)
	}
	if update.DateOfBirth != nil {
		add("date_of_birth", *update.DateOfBirth)
	}
	if update.WeightKg != nil {
		add("weight_kg", *update.WeightKg)
	}
	if update.HeightCm != nil {
		add("height_cm", *update.HeightCm)
	}
	if update.MalnutritionStatus != nil {
		add("malnutrition_status", *update.MalnutritionStatus)
	}
	if update.GuardianName != nil {
		add("guardian_name", *update.GuardianName)
	}
	if update.GuardianPhone != nil {
		add("guardian_phone", *update.GuardianPhone)
	}
	if update.Relation != nil {
		add("relation", *update.Relation)
	}
	if update.IDReference != nil {
		add("id_reference", *update.IDReference)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.Representative != nil {
		add("representative", *update.Representative)
	}
	if update.PhotoData != nil {
		add("photo_data", *update.PhotoData)
	}
	return columns, args
}

func (r *childRecordRepo) Update(ctx context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error) {
	columns, args := updateColumns(update)
	if len(columns) == 0 {
		return r.FindByHealthID(ctx, healthID)
	}

	columns = append(columns, "updated_at = NOW()")
	args = append(args, healthID)

	var record model.ChildRecord
	err := r.db.GetContext(ctx, &record, fmt.Sprintf(`
		UPDATE child_records
		SET %s
		WHERE health_id = $%d
		RETURNING *
	`, strings.Join(columns, ", "), len(args)), args...)
	return HandleNotFound(&record, err)
}

func (r *childRecordRepo) Delete(ctx context.Context, healthID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM child_records WHERE health_id = $1
	`, healthID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *childRecordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM child_records`)
	return count, err
}

func (r *childRecordRepo) Recent(ctx context.Context, limit int) ([]model.RecentUpload, error) {
	uploads := []model.RecentUpload{}
	err := r.db.SelectContext(ctx, &uploads, `
		SELECT health_id, name, uploaded_at FROM child_records
		ORDER BY uploaded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return uploads, nil
}
