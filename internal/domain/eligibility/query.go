package eligibility

import (
	"regexp"
	"strconv"
	"strings"
)

// ArgQuery carries the user's own words when the caller has no structured
// answers yet.
const ArgQuery = "query"

const minIncomeMention = 100

var (
	ageRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,3})[\s-]*(?:years?|yrs?)[\s-]*old\b`),
		regexp.MustCompile(`(?i)\b(?:i am|i'm|im|aged?|age is|age:)\s*(\d{1,3})\b`),
	}
	incomeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:income|earn|earns|earning|make|makes|making)\b[^\d$]{0,20}\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`),
		regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`),
	}
	householdRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:household|family)(?:\s+size)?\s*(?:of|is|:)?\s*(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:people|persons|members)\b`),
	}
	flagWords = []struct {
		flag string
		re   *regexp.Regexp
	}{
		{"blind_or_disabled", regexp.MustCompile(`(?i)\b(?:blind|disabled|disability)\b`)},
		{"pregnant", regexp.MustCompile(`(?i)\bpregnan(?:t|cy)\b`)},
		{"nursing_home", regexp.MustCompile(`(?i)\b(?:nursing home|skilled nursing|nursing facility)\b`)},
		{"refugee", regexp.MustCompile(`(?i)\brefugee\b`)},
		{"cancer_screening_recipient", regexp.MustCompile(`(?i)\b(?:cervical|breast) cancer screening\b`)},
	}
)

// ParseQuery picks eligibility answers out of free text such as
// "I'm 34, pregnant, household of 3 making $30k". Only what is found is
// returned.
func ParseQuery(text string) map[string]any {
	args := map[string]any{}
	if m := firstMatch(ageRes, text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			args[ArgAge] = age
		}
	}
	if m := firstMatch(incomeRes, text); m != nil {
		if income, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			if strings.EqualFold(m[2], "k") {
				income *= 1000
			}
			// Small bare numbers after "make" are counts, not money.
			if income >= minIncomeMention {
				args[ArgAnnualIncome] = income
			}
		}
	}
	if m := firstMatch(householdRes, text); m != nil {
		if size, err := strconv.Atoi(m[1]); err == nil {
			args[ArgHouseholdSize] = size
		}
	}
	for _, f := range flagWords {
		if f.re.MatchString(text) {
			args[f.flag] = true
		}
	}
	return args
}

// WithQuery fills the arguments missing from args with what ParseQuery
// finds in args["query"]. Explicit arguments win.
func WithQuery(args map[string]any) map[string]any {
	query, _ := args[ArgQuery].(string)
	merged := make(map[string]any, len(args))
	for k, v := range args {
		if k != ArgQuery {
			merged[k] = v
		}
	}
	if query == "" {
		return merged
	}
	for k, v := range ParseQuery(query) {
		if _, ok := present(merged, k); !ok {
			merged[k] = v
		}
	}
	return merged
}

func firstMatch(res []*regexp.Regexp, text string) []string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}
