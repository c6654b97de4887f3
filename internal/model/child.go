package model

import (
	"time"
)

// Record upload status values
const (
	RecordStatusPending  = "pending"
	RecordStatusUploaded = "uploaded"
	RecordStatusFailed   = "failed"
)

// ChildRecord is a single collected health record, keyed by the
// application-level healthId rather than a database identifier.
type ChildRecord struct {
	HealthID           string     `db:"health_id" json:"healthId"`
	Name               string     `db:"name" json:"name"`
	Gender             *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth        *string    `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	AgeMonths          *int       `db:"age_months" json:"ageMonths,omitempty"`
	WeightKg           *float64   `db:"weight_kg" json:"weightKg,omitempty"`
	HeightCm           *float64   `db:"height_cm" json:"heightCm,omitempty"`
	MalnutritionStatus *string    `db:"malnutrition_status" json:"malnutritionStatus,omitempty"`
	GuardianName       *string    `db:"guardian_name" json:"guardianName,omitempty"`
	GuardianPhone      *string    `db:"guardian_phone" json:"guardianPhone,omitempty"`
	Relation           *string    `db:"relation" json:"relation,omitempty"`
	IDReference        *string    `db:"id_reference" json:"idReference,omitempty"`
	Location           *string    `db:"location" json:"location,omitempty"`
	Representative     *string    `db:"representative" json:"representative,omitempty"`
	PhotoData          *string    `db:"photo_data" json:"photoData,omitempty"`
	UploaderName       *string    `db:"uploader_name" json:"uploaderName,omitempty"`
	UploaderEmail      *string    `db:"uploader_email" json:"uploaderEmail,omitempty"`
	UploaderLocation   *string    `db:"uploader_location" json:"uploaderLocation,omitempty"`
	UploadedBy         string     `db:"uploaded_by" json:"uploadedBy"`
	Status             string     `db:"status" json:"status"`
	UploadedAt         time.Time  `db:"uploaded_at" json:"uploadedAt"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Uploader identifies who submitted a batch; the fields are stamped onto
// every record inserted from that batch.
type Uploader struct {
	Name     string `json:"uploaderName,omitempty"`
	Email    string `json:"uploaderEmail,omitempty"`
	Location string `json:"uploaderLocation,omitempty"`
}

// Attribution returns the value recorded as uploadedBy, preferring email
// over name, falling back to "anonymous".
func (u Uploader) Attribution() string {
	if u.Email != "" {
		return u.Email
	}
	if u.Name != "" {
		return u.Name
	}
	return "anonymous"
}

// Per-record ingestion outcomes
const (
	IngestOutcomeUploaded  = "uploaded"
	IngestOutcomeDuplicate = "duplicate"
	IngestOutcomeFailed    = "failed"
	IngestOutcomeSkipped   = "skipped"
)

type RecordResult struct {
	HealthID string `json:"healthId"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

type BatchSummary struct {
	Total      int `json:"total"`
	Uploaded   int `json:"uploaded"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

type BatchReport struct {
	Results []RecordResult `json:"results"`
	Summary BatchSummary   `json:"summary"`
}

// RecordUpdate carries the whitelisted fields an admin may change.
type RecordUpdate struct {
	Name               *string  `json:"name"`
	Gender             *string  `json:"gender"`
	DateOfBirth        *string  `json:"dateOfBirth"`
	WeightKg           *float64 `json:"weightKg"`
	HeightCm           *float64 `json:"heightCm"`
	MalnutritionStatus *string  `json:"malnutritionStatus"`
	GuardianName       *string  `json:"guardianName"`
	GuardianPhone      *string  `json:"guardianPhone"`
	Relation           *string  `json:"relation"`
	IDReference        *string  `json:"idReference"`
	Location           *string  `json:"location"`
	Representative     *string  `json:"representative"`
	PhotoData          *string  `json:"photoData"`
}

// UploaderQuery filters records by who uploaded them; at least one field
// must be set.
type UploaderQuery struct {
	Email        string
	Name         string
	Phone        string
	IndividualID string
}

func (q UploaderQuery) Empty() bool {
	return q.Email == "" && q.Name == "" && q.Phone == "" && q.IndividualID == ""
}

// RecentUpload is the stats projection of a record.
type RecentUpload struct {
	HealthID   string    `db:"health_id" json:"healthId"`
	Name       string    `db:"name" json:"name"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
}
