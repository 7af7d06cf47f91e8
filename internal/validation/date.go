package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ndewijer/Conversions-Report-Backend/internal/apperrors"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
)

// Bounds accepted for the components of a date parameter.
const (
	MinYear = 2000
	MaxYear = 2100
)

// DefaultMaxRangeDays is the longest inclusive span accepted for a range query.
const DefaultMaxRangeDays = 366

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const malformedDateMessage = "invalid date format, expected YYYY-MM-DD."

// ValidateDate checks a raw query parameter and converts it to a DateKey.
//
// Surrounding whitespace is ignored. An empty value fails with ErrMissingParameter
// when required; otherwise it yields the zero DateKey and no error.
// Only the YYYY-MM-DD shape and the digit ranges are checked: days that do
// not exist in their month (2024-02-31) are accepted.
func ValidateDate(param, raw string, required bool) (model.DateKey, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		if required {
			return model.DateKey{}, apperrors.NewValidationError(
				apperrors.ErrMissingParameter,
				fmt.Sprintf("parameter %s is required.", param),
			)
		}
		return model.DateKey{}, nil
	}

	if !datePattern.MatchString(value) {
		return model.DateKey{}, malformedDate()
	}

	// The pattern guarantees three all-digit components.
	parts := strings.Split(value, "-")
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	if year < MinYear || year > MaxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return model.DateKey{}, malformedDate()
	}

	return model.NewDateKey(year, month, day), nil
}

// ValidateDateRange checks that from..to is a walkable inclusive range of at most maxDays days.
//
// Both keys must be real calendar dates, since every day in between is fetched.
func ValidateDateRange(from, to model.DateKey, maxDays int) (model.DateRange, error) {
	start, err := from.Time()
	if err != nil {
		return model.DateRange{}, malformedDate()
	}
	end, err := to.Time()
	if err != nil {
		return model.DateRange{}, malformedDate()
	}

	if start.After(end) {
		return model.DateRange{}, apperrors.NewValidationError(
			apperrors.ErrRangeInverted,
			"date Od must be on or before date Do.",
		)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxDays {
		return model.DateRange{}, apperrors.NewValidationError(
			apperrors.ErrRangeTooLong,
			fmt.Sprintf("the range can span at most %d days.", maxDays),
		)
	}

	return model.NewDateRange(start, days), nil
}

func malformedDate() error {
	return apperrors.NewValidationError(apperrors.ErrMalformedDate, malformedDateMessage)
}
