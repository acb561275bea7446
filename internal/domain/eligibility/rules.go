// Package eligibility evaluates Medi-Cal eligibility from categorical flags
// and the annual income limits for a household.
package eligibility

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Status string

const (
	StatusMissing     Status = "MISSING"
	StatusEligible    Status = "ELIGIBLE"
	StatusNotEligible Status = "NOT ELIGIBLE"
	StatusInvalid     Status = "INVALID"
)

// Verdict is the outcome of an evaluation. Message is the human readable
// line relayed to the model as-is.
type Verdict struct {
	Status   Status
	Eligible bool
	Message  string
}

const (
	ArgAge           = "age"
	ArgAnnualIncome  = "annual_income"
	ArgHouseholdSize = "household_size"
)

// Flags are checked in this order and reported with the paired reason.
var Flags = []struct {
	Name   string
	Reason string
}{
	{"blind_or_disabled", "Blind or disabled"},
	{"pregnant", "Pregnant"},
	{"nursing_home", "Nursing or skilled nursing facility resident"},
	{"under_21", "Under 21"},
	{"refugee", "Temporary refugee in U.S."},
	{"cancer_screening_recipient", "Recipient of cervical or breast cancer screening"},
}

var limitsBySize = map[int]float64{
	1: 20783,
	2: 28208,
	3: 35632,
	4: 43056,
	5: 50481,
}

const perExtraMember = 7425.0

// IncomeLimit returns the annual income limit for a household of the given size.
func IncomeLimit(householdSize int) float64 {
	if householdSize <= 5 {
		return limitsBySize[householdSize]
	}
	return limitsBySize[5] + float64(householdSize-5)*perExtraMember
}

// Evaluate checks args (decoded JSON or CLI values) against the rule table.
// Validation runs age, then annual_income, then household_size, then flags.
func Evaluate(args map[string]any) Verdict {
	rawAge, hasAge := present(args, ArgAge)
	rawIncome, hasIncome := present(args, ArgAnnualIncome)
	rawSize, hasSize := present(args, ArgHouseholdSize)

	var missing []string
	if !hasAge {
		missing = append(missing, ArgAge)
	}
	if !hasIncome && !hasSize {
		missing = append(missing, ArgAnnualIncome, ArgHouseholdSize)
	}
	if len(missing) > 0 {
		return Verdict{
			Status:  StatusMissing,
			Message: fmt.Sprintf("MISSING: %s -> Please provide these parameters to evaluate eligibility.", strings.Join(missing, ", ")),
		}
	}

	age, ok := toInt(rawAge)
	if !ok {
		return invalid("age must be an integer")
	}
	if age < 0 || age > 130 {
		return invalid("age must be between 0 and 130")
	}

	var income float64
	if hasIncome {
		if income, ok = toFloat(rawIncome); !ok {
			return invalid("annual_income must be a number")
		}
		if income < 0 {
			return invalid("annual_income must be non-negative")
		}
	}

	var size int
	if hasSize {
		if size, ok = toInt(rawSize); !ok {
			return invalid("household_size must be an integer")
		}
		if size <= 0 {
			return invalid("household_size must be a positive integer")
		}
	}

	flags := make(map[string]bool, len(Flags))
	for _, f := range Flags {
		v, ok := toBool(args[f.Name])
		if !ok {
			return invalid(fmt.Sprintf("%s must be boolean-like (true/false, yes/no) or omitted", f.Name))
		}
		flags[f.Name] = v
	}

	var reasons []string
	if age > 65 {
		reasons = append(reasons, "Over 65")
	}
	for _, f := range Flags {
		if f.Name == "under_21" {
			if flags[f.Name] || age < 21 {
				reasons = append(reasons, f.Reason)
			}
			continue
		}
		if flags[f.Name] {
			reasons = append(reasons, f.Reason)
		}
	}
	if len(reasons) > 0 {
		return Verdict{
			Status:   StatusEligible,
			Eligible: true,
			Message:  fmt.Sprintf("ELIGIBLE: categorical match -> %s (age=%d)", strings.Join(reasons, "; "), age),
		}
	}

	if !hasIncome || !hasSize {
		return Verdict{
			Status:  StatusMissing,
			Message: "MISSING: annual_income and household_size required to evaluate income-based eligibility",
		}
	}

	limit := IncomeLimit(size)
	if income <= limit {
		return Verdict{
			Status:   StatusEligible,
			Eligible: true,
			Message:  fmt.Sprintf("ELIGIBLE: income-based -> household_size=%d, income=$%.2f <= limit=$%.2f", size, income, limit),
		}
	}
	return Verdict{
		Status:  StatusNotEligible,
		Message: fmt.Sprintf("NOT ELIGIBLE: no categorical match and income $%.2f > limit $%.2f for household_size=%d", income, limit, size),
	}
}

func invalid(reason string) Verdict {
	return Verdict{Status: StatusInvalid, Message: "Invalid input: " + reason}
}

func present(args map[string]any, key string) (any, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toBool accepts booleans and yes/no style strings; nil means false.
func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case nil:
		return false, true
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "y", "yes", "true", "1":
			return true, true
		case "n", "no", "false", "0", "":
			return false, true
		}
	}
	return false, false
}
