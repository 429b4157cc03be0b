// Package rules decides whether a proposed visit is internally consistent.
// Everything here is pure: no I/O and no wall clock, so identical input
// always yields identical errors.
package rules

import (
	"visitreg/internal/visit/models"
	dErrors "visitreg/pkg/domain-errors"
)

const (
	msgDepartureDateBeforeArrival = "The departure date must not be before the arrival date."
	msgDepartureTimeBeforeArrival = "The departure time must not be before the arrival time."
	msgOvernightRequired          = "This must be checked to stay for more than one consecutive day."
	msgInductionRequired          = "You must have read the site induction."
	msgHouseRulesRequired         = "You must agree to the house rules."
	msgOnlyWithOvernight          = "You cannot check this field if you are not staying overnight."
)

// ValidateSchedule checks the arrival/departure window and the
// overnight, induction and house-rules flags. Every applicable error is
// returned, not only the first.
func ValidateSchedule(f models.VisitFields) dErrors.FieldErrors {
	var errs dErrors.FieldErrors

	byDay := f.ArrivalDate.Compare(f.DepartureDate)
	switch {
	case byDay > 0:
		errs.Add(models.FieldDepartureDate, msgDepartureDateBeforeArrival)
	case byDay == 0 && f.ArrivalTime.Compare(f.DepartureTime) > 0:
		errs.Add(models.FieldDepartureTime, msgDepartureTimeBeforeArrival)
	}

	if byDay < 0 && !f.Overnight {
		errs.Add(models.FieldOvernight, msgOvernightRequired)
	}

	if f.Overnight {
		if !f.Induction {
			errs.Add(models.FieldInduction, msgInductionRequired)
		}
		if !f.HouseRules {
			errs.Add(models.FieldHouseRules, msgHouseRulesRequired)
		}
	} else {
		if f.Induction {
			errs.Add(models.FieldInduction, msgOnlyWithOvernight)
		}
		if f.HouseRules {
			errs.Add(models.FieldHouseRules, msgOnlyWithOvernight)
		}
	}
	return errs
}

// Validate runs the schedule rules followed by the site rule set. A non-nil
// error means the caller routed to a site with no rule set.
func Validate(site models.SiteKind, f models.VisitFields) (dErrors.FieldErrors, error) {
	errs := ValidateSchedule(f)
	siteErrs, err := ValidateSite(site, f.Overnight, f.Extra)
	if err != nil {
		return nil, err
	}
	return append(errs, siteErrs...), nil
}
