package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg together with the
// hard errors from Validate and a list of soft warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToUpper(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.API.BaseURL = strings.TrimRight(strings.TrimSpace(out.API.BaseURL), "/")
	out.API.Host = strings.TrimSpace(out.API.Host)
	out.API.Key = strings.TrimSpace(out.API.Key)
	out.Search.Query = strings.TrimSpace(out.Search.Query)
	out.Search.Country = strings.ToLower(strings.TrimSpace(out.Search.Country))
	out.Search.DatePosted = strings.ToLower(strings.TrimSpace(out.Search.DatePosted))
	out.Search.EmploymentTypes = trimList(out.Search.EmploymentTypes)
	out.Output.Path = strings.TrimSpace(out.Output.Path)
	out.Output.Format = strings.ToLower(strings.TrimSpace(out.Output.Format))
	out.Output.Mode = strings.ToLower(strings.TrimSpace(out.Output.Mode))
	out.Output.Columns = strings.ToLower(strings.TrimSpace(out.Output.Columns))

	if err := Validate(out); err != nil {
		for _, line := range strings.Split(err.Error(), "\n- ")[1:] {
			res.addErr("%s", line)
		}
	}

	if out.API.Key == "" {
		res.addWarn("api.key is empty; the OS keychain will be consulted")
	}
	if out.Search.Pages > 20 {
		res.addWarn("search.pages is %d; each page costs one API request", out.Search.Pages)
	}
	if out.Search.MaxParallel > 1 && out.API.RequestsPerSecond <= 1 {
		res.addWarn("search.max_parallel=%d has little effect at %.1f requests/second", out.Search.MaxParallel, out.API.RequestsPerSecond)
	}
	if out.Output.Format == "xlsx" && !strings.HasSuffix(strings.ToLower(out.Output.Path), ".xlsx") {
		res.addWarn("output.format is xlsx but output.path %q has no .xlsx extension", out.Output.Path)
	}

	return out, res
}
