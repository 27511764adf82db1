package domain

import (
	"fmt"
	"strings"
)

// Placeholder fills any cell whose source field is missing.
const Placeholder = "N/A"

// UnknownYears is the years_experience value when no year count is found.
const UnknownYears = "Unknown"

const (
	ColTitle            = "title"
	ColEmployer         = "employer"
	ColDescription      = "description"
	ColPostedAt         = "posted_at"
	ColEmploymentType   = "employment_type"
	ColIsRemote         = "is_remote"
	ColCity             = "city"
	ColState            = "state"
	ColCountry          = "country"
	ColSkills           = "skills"
	ColResponsibilities = "responsibilities"
	ColExperience       = "experience"
	ColYearsExperience  = "years_experience"
	ColFullTime         = "full_time"
	ColContractor       = "contractor"
	ColOnSite           = "on_site"
	ColApplyURL         = "apply_url"
)

// Columns is an ordered header row.
type Columns []string

var (
	CoreColumns = Columns{
		ColTitle, ColEmployer, ColDescription, ColPostedAt, ColEmploymentType, ColIsRemote,
	}
	ExtendedColumns = Columns{
		ColTitle, ColEmployer, ColDescription, ColPostedAt, ColEmploymentType, ColIsRemote,
		ColCity, ColState, ColCountry,
		ColSkills, ColResponsibilities, ColExperience, ColYearsExperience,
		ColFullTime, ColContractor, ColOnSite, ColApplyURL,
	}
)

// ColumnSet resolves a configured column set name ("core" or "extended").
func ColumnSet(name string) (Columns, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "core":
		return CoreColumns, nil
	case "extended":
		return ExtendedColumns, nil
	default:
		return nil, fmt.Errorf("unknown column set %q", name)
	}
}

// Equal compares two header rows exactly.
func (c Columns) Equal(other []string) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// JobRow is the flattened form of one Listing. Every field holds its final
// cell text.
type JobRow struct {
	Title          string
	Employer       string
	Description    string
	PostedAt       string
	EmploymentType string
	IsRemote       string

	City             string
	State            string
	Country          string
	Skills           string
	Responsibilities string
	Experience       string
	YearsExperience  string
	FullTime         string
	Contractor       string
	OnSite           string
	ApplyURL         string
}

// Get returns the cell for a column name.
func (r JobRow) Get(col string) string {
	switch col {
	case ColTitle:
		return r.Title
	case ColEmployer:
		return r.Employer
	case ColDescription:
		return r.Description
	case ColPostedAt:
		return r.PostedAt
	case ColEmploymentType:
		return r.EmploymentType
	case ColIsRemote:
		return r.IsRemote
	case ColCity:
		return r.City
	case ColState:
		return r.State
	case ColCountry:
		return r.Country
	case ColSkills:
		return r.Skills
	case ColResponsibilities:
		return r.Responsibilities
	case ColExperience:
		return r.Experience
	case ColYearsExperience:
		return r.YearsExperience
	case ColFullTime:
		return r.FullTime
	case ColContractor:
		return r.Contractor
	case ColOnSite:
		return r.OnSite
	case ColApplyURL:
		return r.ApplyURL
	default:
		return ""
	}
}

// Record renders the row in column order.
func (r JobRow) Record(cols Columns) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r.Get(c)
	}
	return out
}

// JobTable keeps rows in API response order.
type JobTable struct {
	Columns Columns
	Rows    []JobRow
}

func NewJobTable(cols Columns, capacity int) *JobTable {
	return &JobTable{Columns: cols, Rows: make([]JobRow, 0, capacity)}
}

func (t *JobTable) Append(r JobRow) {
	t.Rows = append(t.Rows, r)
}

func (t *JobTable) Len() int { return len(t.Rows) }

// Records returns every data row, header excluded.
func (t *JobTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r.Record(t.Columns))
	}
	return out
}
