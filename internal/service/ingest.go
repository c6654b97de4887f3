package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/repository"
)

// defaultRepresentative labels records whose batch carried no uploader
// name at all.
const defaultRepresentative = "Field Agent"

// IngestService stores batches of collected records. Idempotence is
// per-record on healthId: re-sending a batch can never overwrite an
// existing record or fail the request as a whole.
type IngestService struct {
	childRepo repository.ChildRecordRepository
}

func NewIngestService(childRepo repository.ChildRecordRepository) *IngestService {
	return &IngestService{childRepo: childRepo}
}

func (s *IngestService) Ingest(ctx context.Context, records []model.ChildRecord, uploader model.Uploader) *model.BatchReport {
	report := &model.BatchReport{
		Results: make([]model.RecordResult, 0, len(records)),
	}
	report.Summary.Total = len(records)

	now := time.Now().UTC()
	uploadedBy := uploader.Attribution()

	for i := range records {
		record := records[i]

		if record.HealthID == "" {
			report.Results = append(report.Results, model.RecordResult{
				Status: model.IngestOutcomeSkipped,
				Reason: "missing healthId",
			})
			report.Summary.Skipped++
			continue
		}

		stampRecord(&record, uploader, uploadedBy, now)

		inserted, err := s.childRepo.InsertIfAbsent(ctx, &record)
		switch {
		case err != nil:
			log.Error().Err(err).Str("health_id", record.HealthID).Msg("record insert failed")
			report.Results = append(report.Results, model.RecordResult{
				HealthID: record.HealthID,
				Status:   model.IngestOutcomeFailed,
				Reason:   "storage error",
			})
			report.Summary.Failed++
		case !inserted:
			report.Results = append(report.Results, model.RecordResult{
				HealthID: record.HealthID,
				Status:   model.IngestOutcomeDuplicate,
			})
			report.Summary.Duplicates++
		default:
			report.Results = append(report.Results, model.RecordResult{
				HealthID: record.HealthID,
				Status:   model.IngestOutcomeUploaded,
			})
			report.Summary.Uploaded++
		}
	}

	log.Info().
		Int("total", report.Summary.Total).
		Int("uploaded", report.Summary.Uploaded).
		Int("duplicates", report.Summary.Duplicates).
		Int("failed", report.Summary.Failed).
		Int("skipped", report.Summary.Skipped).
		Str("uploaded_by", uploadedBy).
		Msg("batch ingested")

	return report
}

func stampRecord(record *model.ChildRecord, uploader model.Uploader, uploadedBy string, now time.Time) {
	record.UploadedBy = uploadedBy
	record.Status = model.RecordStatusUploaded
	record.UploadedAt = now
	record.CreatedAt = now

	if uploader.Name != "" {
		record.UploaderName = &uploader.Name
	}
	if uploader.Email != "" {
		record.UploaderEmail = &uploader.Email
	}
	if uploader.Location != "" {
		record.UploaderLocation = &uploader.Location
	}

	if record.Representative == nil {
		representative := uploader.Name
		if representative == "" {
			representative = defaultRepresentative
		}
		record.Representative = &representative
	}
}
