package hearing

import "time"

const maxDurationMinutes = 24 * 60

// Draft is the raw shape of a hearing about to be written. Times stay strings so
// malformed input is reported as a validation error.
type Draft struct {
	StartAt  string
	EndAt    string
	Status   Status
	Duration *int
	// MatchSpan requires Duration to equal the minutes between StartAt and EndAt.
	MatchSpan bool
}

type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateHearingData checks a draft against now and collects every problem found.
func ValidateHearingData(d Draft, now time.Time) ValidationResult {
	errs := []string{}

	if d.StartAt == "" {
		errs = append(errs, "startAt is required")
	}
	if d.EndAt == "" {
		errs = append(errs, "endAt is required")
	}

	var start, end time.Time
	startOK, endOK := false, false
	if d.StartAt != "" {
		var err error
		if start, err = parseInstant(d.StartAt); err != nil {
			errs = append(errs, "Invalid startAt date")
		} else {
			startOK = true
		}
	}
	if d.EndAt != "" {
		var err error
		if end, err = parseInstant(d.EndAt); err != nil {
			errs = append(errs, "Invalid endAt date")
		} else {
			endOK = true
		}
	}

	if startOK && endOK {
		span := end.Sub(start)
		switch {
		case span <= 0:
			errs = append(errs, "endAt must be after startAt")
		case span%time.Minute != 0:
			errs = append(errs, "endAt must be a whole number of minutes after startAt")
		case d.MatchSpan && d.Duration != nil && *d.Duration != int(span/time.Minute):
			errs = append(errs, "Duration must match the interval between startAt and endAt")
		}
	}
	if startOK && d.Status == StatusScheduled && start.Before(now) {
		errs = append(errs, "Hearing date cannot be in the past while status is scheduled")
	}

	if d.Duration != nil && (*d.Duration < 1 || *d.Duration > maxDurationMinutes) {
		errs = append(errs, "Duration must be between 1 and 1440 minutes")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Err converts a failed result into a *ValidationError, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}
