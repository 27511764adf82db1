// Package extract flattens raw search listings into JobRows.
package extract

import (
	"strconv"
	"strings"
	"time"

	"jobexport/internal/domain"
	"jobexport/internal/scrape/util"
)

// Options tune extraction. The zero value is the plain field copy.
type Options struct {
	// CleanText strips everything except letters, digits and whitespace from
	// the free-text columns. The description is left untouched.
	CleanText bool
}

// Extract builds one JobRow from a listing. It never fails: any missing
// field becomes domain.Placeholder.
func Extract(l domain.Listing, opts Options) domain.JobRow {
	description := ""
	if d, ok := l.String("job_description"); ok {
		description = util.HTMLToText(util.NormalizeNewlines(d))
	}

	row := domain.JobRow{
		Title:          text(l, "job_title"),
		Employer:       text(l, "employer_name"),
		Description:    orPlaceholder(description),
		PostedAt:       PostedDate(l),
		EmploymentType: text(l, "job_employment_type"),
		IsRemote:       boolCell(l, "job_is_remote"),

		City:     text(l, "job_city"),
		State:    text(l, "job_state"),
		Country:  text(l, "job_country"),
		ApplyURL: text(l, "job_apply_link"),

		Skills:           Skills(l, description),
		Responsibilities: Responsibilities(l, description),
		Experience:       Experience(l, description),

		FullTime:   statusCell(l, description, []string{"job_is_full_time"}, "full-time"),
		Contractor: statusCell(l, description, []string{"job_is_contract", "job_is_contractor"}, "contractor"),
		OnSite:     statusCell(l, description, []string{"job_is_on_site"}, "on-site"),
	}
	row.YearsExperience = YearsOfExperience(row.Experience)

	if opts.CleanText {
		for _, f := range []*string{
			&row.Title, &row.Employer, &row.City, &row.State, &row.Country,
			&row.Skills, &row.Responsibilities, &row.Experience,
		} {
			if *f == domain.Placeholder {
				continue
			}
			*f = orPlaceholder(util.StripNonAlnum(*f))
		}
	}
	return row
}

// Table extracts every listing, preserving order.
func Table(listings []domain.Listing, cols domain.Columns, opts Options) *domain.JobTable {
	t := domain.NewJobTable(cols, len(listings))
	for _, l := range listings {
		t.Append(Extract(l, opts))
	}
	return t
}

// PostedDate renders the posting date as YYYY-MM-DD in UTC. The datetime
// string wins over the unix timestamp.
func PostedDate(l domain.Listing) string {
	if s, ok := l.String("job_posted_at_datetime_utc"); ok {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format("2006-01-02")
			}
		}
	}
	if ts, ok := l.Int64("job_posted_at_timestamp"); ok && ts > 0 {
		return time.Unix(ts, 0).UTC().Format("2006-01-02")
	}
	return domain.Placeholder
}

func text(l domain.Listing, key string) string {
	s, ok := l.String(key)
	if !ok {
		return domain.Placeholder
	}
	return orPlaceholder(util.CleanText(s))
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.Placeholder
	}
	return s
}

func boolCell(l domain.Listing, key string) string {
	b, ok := l.Bool(key)
	if !ok {
		return domain.Placeholder
	}
	return strconv.FormatBool(b)
}
