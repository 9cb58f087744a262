package model

import "time"

// CertificationLevel is an official's judging qualification.
type CertificationLevel string

// Certification levels.
const (
	CertificationRegional      CertificationLevel = "regional"
	CertificationNational      CertificationLevel = "national"
	CertificationInternational CertificationLevel = "international"
)

// Official is a judge or referee. CompetitorID is set when the official is
// also a competitor in the club.
type Official struct {
	ID            int64
	Name          string
	Certification CertificationLevel
	Active        bool
	CompetitorID  *int64
}

// OfficiatingAssignment records that an official sits on a bout panel.
type OfficiatingAssignment struct {
	BoutID     int64
	OfficialID int64
	AssignedAt time.Time
}
