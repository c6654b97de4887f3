package model

// IdentityRow is the raw projection of the external mock identity store.
type IdentityRow struct {
	IndividualID string `db:"individual_id"`
	IdentityJSON string `db:"identity_json"`
}

// IdentitySummary is the flattened, display-oriented view of an identity.
// Multi-language value arrays in the source JSON are collapsed to a single
// value, preferring English.
type IdentitySummary struct {
	IndividualID string  `json:"individualId"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	DateOfBirth  *string `json:"dateOfBirth"`
	Country      *string `json:"country"`
	Region       *string `json:"region"`
	Gender       *string `json:"gender"`
	CreatedAt    *string `json:"createdAt"`
}
