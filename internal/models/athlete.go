package models

// Gender values accepted on athlete records.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Athlete represents a registered athlete. The record is platform-scoped:
// PlatformID tags the scoring station that owns the registration, and may be
// empty for athletes registered centrally.
type Athlete struct {
	ID            UUID   `db:"id" json:"id"`
	CompetitionID UUID   `db:"competition_id" json:"competition_id"`
	PlatformID    UUID   `db:"platform_id" json:"platform_id,omitempty"`
	FirstName     string `db:"first_name" json:"first_name"`
	LastName      string `db:"last_name" json:"last_name"`
	Gender        string `db:"gender" json:"gender"`
	WeightClass   string `db:"weight_class" json:"weight_class"`
	Division      string `db:"division" json:"division"`
	AgeCategory   string `db:"age_category" json:"age_category"`
	LotNumber     int    `db:"lot_number" json:"lot_number,omitempty"`
	Bodyweight    float64 `db:"bodyweight" json:"bodyweight,omitempty"`
	CreatedAt     int64  `db:"created_at" json:"created_at"`
	UpdatedAt     int64  `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for Athlete.
func (Athlete) TableName() string {
	return "athletes"
}

// FullName returns the display name used on merged results.
func (a *Athlete) FullName() string {
	return a.FirstName + " " + a.LastName
}

// VersionTimestamp returns the timestamp conflict resolution compares,
// falling back to creation time for never-edited records.
func (a *Athlete) VersionTimestamp() int64 {
	if a.UpdatedAt != 0 {
		return a.UpdatedAt
	}
	return a.CreatedAt
}
