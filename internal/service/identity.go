package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/repository"
)

// IdentityService projects the external mock identity store into flat,
// display-oriented summaries. The store is owned by the identity provider;
// everything here is read-only.
type IdentityService struct {
	identityRepo repository.IdentityRepository
}

func NewIdentityService(identityRepo repository.IdentityRepository) *IdentityService {
	return &IdentityService{identityRepo: identityRepo}
}

type IdentityList struct {
	Items   []model.IdentitySummary `json:"items"`
	Total   int                     `json:"total"`
	Warning string                  `json:"warning,omitempty"`
}

// List returns summaries for a page of identities. A store failure
// degrades to an empty list with a warning; rows whose JSON does not parse
// are skipped.
func (s *IdentityService) List(ctx context.Context, limit, offset int) *IdentityList {
	rows, err := s.identityRepo.List(ctx, limit, offset)
	if err != nil {
		log.Warn().Err(err).Msg("identity store unreachable, returning degraded list")
		return &IdentityList{Items: []model.IdentitySummary{}, Warning: "identity_store_unavailable"}
	}

	items := make([]model.IdentitySummary, 0, len(rows))
	for _, row := range rows {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(row.IdentityJSON), &parsed); err != nil {
			log.Warn().Str("individual_id", row.IndividualID).Msg("skipping identity with unparseable JSON")
			continue
		}
		items = append(items, summarizeIdentity(row.IndividualID, parsed))
	}

	return &IdentityList{Items: items, Total: len(items)}
}

type IdentityDetail struct {
	IndividualID string                `json:"individualId"`
	Summary      model.IdentitySummary `json:"summary"`
	Identity     map[string]any        `json:"identity"`
}

// Get returns one identity's summary plus its sanitized raw document.
func (s *IdentityService) Get(ctx context.Context, individualID string) (*IdentityDetail, error) {
	row, err := s.identityRepo.FindByIndividualID(ctx, individualID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreDisabled, "Identity store is unavailable", err)
	}
	if row == nil {
		return nil, errors.NotFound("Identity")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(row.IdentityJSON), &parsed); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "Identity document is not valid JSON", err)
	}

	return &IdentityDetail{
		IndividualID: row.IndividualID,
		Summary:      summarizeIdentity(row.IndividualID, parsed),
		Identity:     sanitizeIdentity(parsed),
	}, nil
}

// sanitizeIdentity strips credential and biometric fields before the
// document leaves the server.
func sanitizeIdentity(full map[string]any) map[string]any {
	clean := make(map[string]any, len(full))
	for k, v := range full {
		switch k {
		case "password", "pin", "encodedPhoto":
			continue
		}
		clean[k] = v
	}
	return clean
}

// summarizeIdentity flattens an eSignet identity document. Language-tagged
// value arrays collapse to the English entry, falling back to the first.
func summarizeIdentity(individualID string, doc map[string]any) model.IdentitySummary {
	name := pickLanguage(doc["fullName"], "eng")
	if name == nil {
		name = pickLanguage(doc["givenName"], "eng")
	}

	summary := model.IdentitySummary{
		IndividualID: individualID,
		Name:         individualID,
		Email:        stringField(doc, "email"),
		Phone:        stringField(doc, "phone"),
		DateOfBirth:  stringField(doc, "dateOfBirth"),
		Country:      pickLanguage(doc["country"], "eng"),
		Region:       pickLanguage(doc["region"], "eng"),
		Gender:       pickLanguage(doc["gender"], "eng"),
		CreatedAt:    stringField(doc, "createdAt"),
	}
	if id, ok := doc["individualId"].(string); ok && id != "" {
		summary.IndividualID = id
	}
	if name != nil {
		summary.Name = *name
	}
	return summary
}

// pickLanguage resolves a language-tagged array like
// [{"language":"eng","value":"Asha"}, ...] to the value for the wanted
// language, falling back to the first entry. Plain strings in the array
// are accepted as-is.
func pickLanguage(field any, language string) *string {
	entries, ok := field.([]any)
	if !ok || len(entries) == 0 {
		return nil
	}

	var first *string
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			if first == nil {
				value := v
				first = &value
			}
		case map[string]any:
			value, _ := v["value"].(string)
			if value == "" {
				continue
			}
			if lang, _ := v["language"].(string); lang == language {
				return &value
			}
			if first == nil {
				first = &value
			}
		}
	}
	return first
}

func stringField(doc map[string]any, key string) *string {
	if value, ok := doc[key].(string); ok && value != "" {
		return &value
	}
	return nil
}
