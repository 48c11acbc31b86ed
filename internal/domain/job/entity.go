package job

import (
	"time"

	"github.com/google/uuid"
)

const (
	IndustryBusiness          = "Business"
	IndustryInformationTech   = "Information Technology"
	IndustryBanking           = "Banking"
	IndustryEducation         = "Education"
	IndustryTelecommunication = "Telecommunication"
	IndustryOthers            = "Others"

	TypePermanent  = "Permanent"
	TypeTemporary  = "Temporary"
	TypeInternship = "Internship"

	EducationBachelors = "Bachelors"
	EducationMasters   = "Masters"
	EducationPhd       = "Phd"

	ExperienceNone      = "No Experience"
	ExperienceOneToTwo  = "1 Year - 2 Years"
	ExperienceTwoToFive = "2 Years - 5 Years"
	ExperienceFivePlus  = "5 Years+"
)

var (
	Industries  = []string{IndustryBusiness, IndustryInformationTech, IndustryBanking, IndustryEducation, IndustryTelecommunication, IndustryOthers}
	JobTypes    = []string{TypePermanent, TypeTemporary, TypeInternship}
	Educations  = []string{EducationBachelors, EducationMasters, EducationPhd}
	Experiences = []string{ExperienceNone, ExperienceOneToTwo, ExperienceTwoToFive, ExperienceFivePlus}
)

// DefaultApplicationWindow is how long a posting accepts applications when no last date is given.
const DefaultApplicationWindow = 7 * 24 * time.Hour

// Location is a GeoJSON-style point plus the address components the geocoder resolved.
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"`
	FormattedAddress string    `json:"formattedAddress"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

type Application struct {
	UserID    uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"-"`
	Resume    string    `json:"resume"`
	AppliedAt time.Time `json:"appliedAt"`
}

type Job struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title" validate:"required,max=100"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description" validate:"required,max=1000"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Address      string    `json:"address" validate:"required"`
	Location     *Location `json:"location,omitempty"`
	Company      string    `json:"company" validate:"required"`
	Industry     []string  `json:"industry" validate:"required,min=1,dive,industry"`
	JobType      string    `json:"jobType" validate:"required,jobtype"`
	MinEducation string    `json:"minEducation" validate:"required,education"`
	Positions    int       `json:"positions" validate:"min=1"`
	Experience   string    `json:"experience" validate:"required,experience"`
	Salary       int64     `json:"salary" validate:"required,min=0,max=9999999999"`
	PostingDate  time.Time `json:"postingDate"`
	LastDate     time.Time `json:"lastDate"`
	UserID       uuid.UUID `json:"user"`

	ApplicantsApplied []Application `json:"applicantsApplied,omitempty"`
}

// ApplyDefaults fills the values a new posting gets when the employer leaves them out.
func (j *Job) ApplyDefaults(now time.Time) {
	if j.Positions == 0 {
		j.Positions = 1
	}
	if j.PostingDate.IsZero() {
		j.PostingDate = now
	}
	if j.LastDate.IsZero() {
		j.LastDate = now.Add(DefaultApplicationWindow)
	}
}

func (j Job) AcceptsApplications(now time.Time) bool {
	return !now.After(j.LastDate)
}

// Stat is one experience band of the per-topic statistics.
type Stat struct {
	Experience  string  `json:"experience"`
	TotalJobs   int     `json:"totalJobs"`
	AvgPosition float64 `json:"avgPosition"`
	AvgSalary   float64 `json:"avgSalary"`
	MinSalary   int64   `json:"minSalary"`
	MaxSalary   int64   `json:"maxSalary"`
}
