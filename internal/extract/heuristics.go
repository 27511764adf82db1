package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"jobexport/internal/domain"
	"jobexport/internal/scrape/util"
)

var (
	skillKeys      = []string{"job_required_skills", "skills", "certifications", "qualifications", "job_description"}
	skillNeedles   = []string{"skill", "qualification", "certification"}
	yearsRe        = regexp.MustCompile(`(\d+)\s*years`)
	sentenceSplits = regexp.MustCompile(`[.\n]`)
)

// Skills collects skill and qualification mentions. List fields are taken
// whole, object fields contribute their string values, and string fields
// contribute the sentences that mention a skill keyword. Order of first
// appearance is kept and duplicates dropped.
func Skills(l domain.Listing, description string) string {
	var set orderedSet

	for _, key := range skillKeys {
		if key == "job_description" {
			set.addSentences(description)
			continue
		}
		if xs, ok := l.Strings(key); ok {
			set.add(xs...)
			continue
		}
		if obj, ok := l.Object(key); ok {
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if s, ok := obj.String(k); ok {
					set.add(s)
				}
			}
			continue
		}
		if s, ok := l.String(key); ok {
			set.addSentences(s)
		}
	}

	if hl, ok := l.Object("job_highlights"); ok {
		if xs, ok := hl.Strings("Qualifications"); ok {
			set.add(xs...)
		}
	}

	if len(set.items) == 0 {
		return domain.Placeholder
	}
	return strings.Join(set.items, ", ")
}

// Responsibilities prefers the API's highlight list and falls back to the
// description section that starts at a duties/responsibilities line and
// stops before the first requirements line.
func Responsibilities(l domain.Listing, description string) string {
	if hl, ok := l.Object("job_highlights"); ok {
		if xs, ok := hl.Strings("Responsibilities"); ok && len(xs) > 0 {
			return strings.Join(xs, " ")
		}
	}

	var lines []string
	capture := false
	for _, line := range strings.Split(description, "\n") {
		low := strings.ToLower(line)
		if strings.Contains(low, "duties") || strings.Contains(low, "responsibilities") {
			capture = true
		}
		if !capture {
			continue
		}
		if strings.Contains(low, "requirements") {
			break
		}
		if line = util.CleanText(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return domain.Placeholder
	}
	return strings.Join(lines, " ")
}

// Experience reads job_required_experience and falls back to description
// lines that mention experience.
func Experience(l domain.Listing, description string) string {
	if s, ok := l.String("job_required_experience"); ok {
		return s
	}
	if exp, ok := l.Object("job_required_experience"); ok {
		years, hasYears := exp.String("years")
		desc, hasDesc := exp.String("description")
		switch {
		case hasYears && hasDesc:
			return years + " years - " + desc
		case hasYears:
			return years + " years"
		case hasDesc:
			return desc
		}
		if months, ok := exp.Int64("required_experience_in_months"); ok && months > 0 {
			if months%12 == 0 {
				return strconv.FormatInt(months/12, 10) + " years"
			}
			return strconv.FormatInt(months, 10) + " months"
		}
		if s, ok := exp.String("experience"); ok {
			return s
		}
	}

	var lines []string
	for _, line := range strings.Split(description, "\n") {
		if strings.Contains(strings.ToLower(line), "experience") {
			if line = util.CleanText(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return domain.Placeholder
	}
	return strings.Join(lines, " ")
}

// YearsOfExperience pulls the first "<n> years" count out of an experience
// cell.
func YearsOfExperience(experience string) string {
	m := yearsRe.FindStringSubmatch(strings.ToLower(experience))
	if m == nil {
		return domain.UnknownYears
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.UnknownYears
	}
	return strconv.Itoa(n)
}

// statusCell is true when any flag is set, otherwise true when the
// description mentions the keyword.
func statusCell(l domain.Listing, description string, flags []string, keyword string) string {
	for _, f := range flags {
		if b, ok := l.Bool(f); ok && b {
			return "true"
		}
	}
	return strconv.FormatBool(util.ContainsAny(description, keyword))
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func (s *orderedSet) add(xs ...string) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	for _, x := range xs {
		x = util.CleanText(x)
		if x == "" || s.seen[x] {
			continue
		}
		s.seen[x] = true
		s.items = append(s.items, x)
	}
}

func (s *orderedSet) addSentences(text string) {
	for _, sentence := range sentenceSplits.Split(text, -1) {
		if util.ContainsAny(sentence, skillNeedles...) {
			s.add(sentence)
		}
	}
}
