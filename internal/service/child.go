package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/repository"
)

const recentUploadsLimit = 5

type ChildService struct {
	childRepo repository.ChildRecordRepository
}

func NewChildService(childRepo repository.ChildRecordRepository) *ChildService {
	return &ChildService{childRepo: childRepo}
}

// Search tries an exact healthId match first, then a case-insensitive
// name-prefix match. A miss is not an error; found reports the outcome.
func (s *ChildService) Search(ctx context.Context, query string) (*model.ChildRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.MissingRequired("q")
	}

	record, err := s.childRepo.FindByHealthID(ctx, query)
	if err != nil {
		return nil, errors.Database(err)
	}
	if record != nil {
		return record, nil
	}

	record, err = s.childRepo.FindByNamePrefix(ctx, query)
	if err != nil {
		return nil, errors.Database(err)
	}
	return record, nil
}

func (s *ChildService) List(ctx context.Context, limit, offset int) ([]model.ChildRecord, error) {
	records, err := s.childRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, errors.Database(err)
	}
	return records, nil
}

// RecordsForUploader returns the records matching any of the given
// uploader identifiers. At least one identifier is required.
func (s *ChildService) RecordsForUploader(ctx context.Context, query model.UploaderQuery) ([]model.ChildRecord, error) {
	if query.Empty() {
		return nil, errors.ValidationError("At least one of email, name, phone or individualId is required")
	}

	records, err := s.childRepo.FindByUploader(ctx, query)
	if err != nil {
		return nil, errors.Database(err)
	}
	return records, nil
}

func (s *ChildService) Update(ctx context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error) {
	record, err := s.childRepo.Update(ctx, healthID, update)
	if err != nil {
		return nil, errors.Database(err)
	}
	if record == nil {
		return nil, errors.NotFound("Record")
	}
	return record, nil
}

func (s *ChildService) Delete(ctx context.Context, healthID string) error {
	deleted, err := s.childRepo.Delete(ctx, healthID)
	if err != nil {
		return errors.Database(err)
	}
	if !deleted {
		return errors.NotFound("Record")
	}
	return nil
}

type Stats struct {
	TotalChildRecords int64                `json:"totalChildRecords"`
	RecentUploads     []model.RecentUpload `json:"recentUploads"`
	Warning           string               `json:"warning,omitempty"`
}

// GetStats reports record totals and the latest uploads. A database
// failure degrades to zeroed stats with a warning instead of an error so
// the admin dashboard stays up while the store is down.
func (s *ChildService) GetStats(ctx context.Context) *Stats {
	stats := &Stats{RecentUploads: []model.RecentUpload{}}

	count, err := s.childRepo.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("stats count failed, reporting degraded stats")
		stats.Warning = "store_disabled"
		return stats
	}
	stats.TotalChildRecords = count

	recent, err := s.childRepo.Recent(ctx, recentUploadsLimit)
	if err != nil {
		log.Warn().Err(err).Msg("recent uploads query failed, reporting degraded stats")
		stats.Warning = "store_disabled"
		return stats
	}
	stats.RecentUploads = recent

	return stats
}
