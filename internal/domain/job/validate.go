package job

import "jobboard/internal/pkg/validate"

var validator = validate.New(validate.Messages{
	"Title.required":         "Please enter Job title",
	"Title.max":              "Job title cannot exceed 100 characters",
	"Description.required":   "Please enter Job description",
	"Description.max":        "Job description cannot exceed 1000 characters",
	"Email":                  "Please enter valid email address",
	"Address":                "Please enter Job address",
	"Company":                "Please enter Job company name",
	"Industry.required":      "Please select industry for this job",
	"Industry.min":           "Please select industry for this job",
	"Industry.industry":      "Please select correct options for industry",
	"JobType.required":       "Please select job type for this job",
	"JobType.jobtype":        "Please select correct options for job type",
	"MinEducation.required":  "Please select min education for this job",
	"MinEducation.education": "Please select correct options for education",
	"Positions":              "Positions must be at least 1",
	"Experience.required":    "Please select experience level for this job",
	"Experience.experience":  "Please select correct options for experience",
	"Salary.required":        "Please enter expected salary for this job",
	"Salary":                 "Salary cannot exceed 10 characters",
}, map[string][]string{
	"industry":   Industries,
	"jobtype":    JobTypes,
	"education":  Educations,
	"experience": Experiences,
})

// Validate checks a posting before it is written. Failures are apperror.ValidationErrors.
func (j Job) Validate() error {
	return validator.Struct(j)
}
