package repository

import "jobboard/internal/pkg/apifilter"

const jobLocationExpr = `CASE WHEN jobs.longitude IS NULL OR jobs.latitude IS NULL THEN NULL ELSE jsonb_build_object(
	'type', 'Point',
	'coordinates', jsonb_build_array(jobs.longitude, jobs.latitude),
	'formattedAddress', jobs.formatted_address,
	'city', jobs.city,
	'state', jobs.state,
	'zipcode', jobs.zipcode,
	'country', jobs.country) END`

const jobApplicantsExpr = `(SELECT coalesce(jsonb_agg(jsonb_build_object(
	'id', a.user_id, 'resume', a.resume, 'appliedAt', a.applied_at) ORDER BY a.applied_at), '[]'::jsonb)
	FROM job_applications a WHERE a.job_id = jobs.id)`

// JobSchema is the public shape of a job for list endpoints.
var JobSchema = apifilter.NewSchema(apifilter.Schema{
	Table:   "jobs",
	IDField: "id",
	Fields: []apifilter.Field{
		{Name: "id", Expr: "jobs.id", Kind: apifilter.KindUUID, Filterable: true, Sortable: true},
		{Name: "title", Expr: "jobs.title", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "slug", Expr: "jobs.slug", Kind: apifilter.KindText, Filterable: true},
		{Name: "description", Expr: "jobs.description", Kind: apifilter.KindText},
		{Name: "email", Expr: "jobs.email", Kind: apifilter.KindText, Filterable: true},
		{Name: "address", Expr: "jobs.address", Kind: apifilter.KindText, Filterable: true},
		{Name: "location", Expr: jobLocationExpr, Kind: apifilter.KindJSON},
		{Name: "company", Expr: "jobs.company", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "industry", Expr: "jobs.industry", Kind: apifilter.KindTextArray, Filterable: true},
		{Name: "jobType", Expr: "jobs.job_type", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "minEducation", Expr: "jobs.min_education", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "positions", Expr: "jobs.positions", Kind: apifilter.KindNumber, Filterable: true, Sortable: true},
		{Name: "experience", Expr: "jobs.experience", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "salary", Expr: "jobs.salary", Kind: apifilter.KindNumber, Filterable: true, Sortable: true},
		{Name: "postingDate", Expr: "jobs.posting_date", Kind: apifilter.KindTime, Filterable: true, Sortable: true},
		{Name: "lastDate", Expr: "jobs.last_date", Kind: apifilter.KindTime, Filterable: true, Sortable: true},
		{Name: "user", Expr: "jobs.user_id", Kind: apifilter.KindUUID, Filterable: true},

		{Name: "location.city", Expr: "jobs.city", Kind: apifilter.KindText, Filterable: true, Hidden: true},
		{Name: "location.state", Expr: "jobs.state", Kind: apifilter.KindText, Filterable: true, Hidden: true},
		{Name: "location.zipcode", Expr: "jobs.zipcode", Kind: apifilter.KindText, Filterable: true, Hidden: true},
		{Name: "location.country", Expr: "jobs.country", Kind: apifilter.KindText, Filterable: true, Hidden: true},
		{Name: "applicantsApplied", Expr: jobApplicantsExpr, Kind: apifilter.KindJSON, Hidden: true},
	},
	DefaultSort:  "-postingDate",
	SearchVector: "jobs.search",
	SearchConfig: "english",
	DefaultLimit: 10,
	MaxLimit:     100,
})

var UserSchema = apifilter.NewSchema(apifilter.Schema{
	Table:   "users",
	IDField: "id",
	Fields: []apifilter.Field{
		{Name: "id", Expr: "users.id", Kind: apifilter.KindUUID, Filterable: true, Sortable: true},
		{Name: "name", Expr: "users.name", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "email", Expr: "users.email", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "role", Expr: "users.role", Kind: apifilter.KindText, Filterable: true, Sortable: true},
		{Name: "createdAt", Expr: "users.created_at", Kind: apifilter.KindTime, Filterable: true, Sortable: true},
	},
	DefaultSort:  "-createdAt",
	SearchVector: "to_tsvector('simple', users.name || ' ' || users.email)",
	SearchConfig: "simple",
	DefaultLimit: 10,
	MaxLimit:     100,
})
