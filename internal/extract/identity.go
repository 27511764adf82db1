package extract

import (
	"jobexport/internal/domain"
	"jobexport/internal/scrape/util"
)

// SourceID identifies a listing across runs: the API job id when present,
// otherwise a hash of the canonical apply link. Empty when neither exists.
func SourceID(l domain.Listing) string {
	if id, ok := l.String("job_id"); ok {
		return id
	}
	if link, ok := l.String("job_apply_link"); ok {
		return util.HashString("url:" + util.CanonicalURL(link))
	}
	return ""
}
