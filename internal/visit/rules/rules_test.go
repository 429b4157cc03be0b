package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/visit/models"
	dErrors "visitreg/pkg/domain-errors"
)

func day(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func clock(s string) models.Clock {
	c, err := models.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func fieldsOf(errs dErrors.FieldErrors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func sameDayVisit() models.VisitFields {
	return models.VisitFields{
		ArrivalDate:   day("2022-12-23"),
		ArrivalTime:   clock("22:00"),
		DepartureDate: day("2022-12-23"),
		DepartureTime: clock("22:30"),
	}
}

func overnightVisit(paddock string) models.VisitFields {
	return models.VisitFields{
		ArrivalDate:   day("2022-12-27"),
		ArrivalTime:   clock("09:00"),
		DepartureDate: day("2022-12-28"),
		DepartureTime: clock("17:00"),
		Overnight:     true,
		Induction:     true,
		HouseRules:    true,
		Extra:         models.FarmFields{Paddock: paddock},
	}
}

func TestValidateSchedule_Window(t *testing.T) {
	t.Run("same day short visit is valid", func(t *testing.T) {
		assert.Empty(t, ValidateSchedule(sameDayVisit()))
	})

	t.Run("departure date before arrival date", func(t *testing.T) {
		for _, dep := range []string{"2022-12-22", "2022-11-30", "2021-12-23"} {
			f := sameDayVisit()
			f.DepartureDate = day(dep)
			errs := ValidateSchedule(f)
			assert.True(t, errs.Has(models.FieldDepartureDate), dep)
			assert.False(t, errs.Has(models.FieldDepartureTime), "time is only compared on the same day")
		}
	})

	t.Run("same day departure time before arrival time", func(t *testing.T) {
		f := sameDayVisit()
		f.DepartureTime = clock("21:59")
		assert.Equal(t, []string{models.FieldDepartureTime}, fieldsOf(ValidateSchedule(f)))
	})

	t.Run("equal arrival and departure instant is valid", func(t *testing.T) {
		f := sameDayVisit()
		f.DepartureTime = f.ArrivalTime
		assert.Empty(t, ValidateSchedule(f))
	})

	t.Run("multi-day stay requires overnight", func(t *testing.T) {
		f := overnightVisit("")
		f.Overnight, f.Induction, f.HouseRules = false, false, false
		assert.Equal(t, []string{models.FieldOvernight}, fieldsOf(ValidateSchedule(f)))
	})

	t.Run("later departure time on an earlier day is still a date error", func(t *testing.T) {
		f := sameDayVisit()
		f.DepartureDate = day("2022-12-22")
		f.DepartureTime = clock("23:59")
		assert.Equal(t, []string{models.FieldDepartureDate}, fieldsOf(ValidateSchedule(f)))
	})
}

func TestValidateSchedule_Flags(t *testing.T) {
	t.Run("without overnight each acknowledgement is its own error", func(t *testing.T) {
		f := sameDayVisit()
		f.Induction = true
		assert.Equal(t, []string{models.FieldInduction}, fieldsOf(ValidateSchedule(f)))

		f = sameDayVisit()
		f.HouseRules = true
		assert.Equal(t, []string{models.FieldHouseRules}, fieldsOf(ValidateSchedule(f)))

		f = sameDayVisit()
		f.Induction, f.HouseRules = true, true
		assert.ElementsMatch(t, []string{models.FieldInduction, models.FieldHouseRules}, fieldsOf(ValidateSchedule(f)))
	})

	t.Run("overnight requires both acknowledgements independently", func(t *testing.T) {
		f := overnightVisit("x")
		f.Induction = false
		assert.Equal(t, []string{models.FieldInduction}, fieldsOf(ValidateSchedule(f)))

		f = overnightVisit("x")
		f.HouseRules = false
		assert.Equal(t, []string{models.FieldHouseRules}, fieldsOf(ValidateSchedule(f)))

		f = overnightVisit("x")
		f.Induction, f.HouseRules = false, false
		assert.ElementsMatch(t, []string{models.FieldInduction, models.FieldHouseRules}, fieldsOf(ValidateSchedule(f)))
	})

	t.Run("overnight on a single day is allowed", func(t *testing.T) {
		f := sameDayVisit()
		f.Overnight, f.Induction, f.HouseRules = true, true, true
		assert.Empty(t, ValidateSchedule(f))
	})

	t.Run("errors accumulate across rules", func(t *testing.T) {
		f := sameDayVisit()
		f.DepartureDate = day("2022-12-01")
		f.Overnight = true
		errs := ValidateSchedule(f)
		assert.ElementsMatch(t,
			[]string{models.FieldDepartureDate, models.FieldInduction, models.FieldHouseRules},
			fieldsOf(errs))
	})
}

func TestValidateSchedule_Deterministic(t *testing.T) {
	inputs := []models.VisitFields{sameDayVisit(), overnightVisit(""), {}}
	bad := sameDayVisit()
	bad.DepartureDate = day("2022-01-01")
	bad.Induction = true
	inputs = append(inputs, bad)

	for _, f := range inputs {
		assert.Equal(t, ValidateSchedule(f), ValidateSchedule(f))
	}
}

func TestValidate_FarmPaddock(t *testing.T) {
	t.Run("overnight with paddock is valid", func(t *testing.T) {
		errs, err := Validate(models.SiteRidgefield, overnightVisit("Mating Pots 0.71"))
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("overnight without paddock", func(t *testing.T) {
		errs, err := Validate(models.SiteRidgefield, overnightVisit(""))
		require.NoError(t, err)
		assert.Equal(t, []string{models.FieldPaddock}, fieldsOf(errs))
	})

	t.Run("overnight with no site fields at all", func(t *testing.T) {
		f := overnightVisit("")
		f.Extra = nil
		errs, err := Validate(models.SiteRidgefield, f)
		require.NoError(t, err)
		assert.Equal(t, []string{models.FieldPaddock}, fieldsOf(errs))
	})

	t.Run("whitespace paddock counts as blank", func(t *testing.T) {
		errs, err := Validate(models.SiteRidgefield, overnightVisit("   "))
		require.NoError(t, err)
		assert.True(t, errs.Has(models.FieldPaddock))
	})

	t.Run("paddock without overnight", func(t *testing.T) {
		f := sameDayVisit()
		f.Extra = models.FarmFields{Paddock: "Mating Pots 0.71"}
		errs, err := Validate(models.SiteRidgefield, f)
		require.NoError(t, err)
		assert.Equal(t, []string{models.FieldPaddock}, fieldsOf(errs))
	})

	t.Run("same day visit without paddock is valid", func(t *testing.T) {
		errs, err := Validate(models.SiteRidgefield, sameDayVisit())
		require.NoError(t, err)
		assert.Empty(t, errs)
	})
}

func TestValidate_Gingin(t *testing.T) {
	t.Run("overnight needs no paddock", func(t *testing.T) {
		f := overnightVisit("")
		f.Extra = nil
		errs, err := Validate(models.SiteGingin, f)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("supplied paddock is rejected", func(t *testing.T) {
		errs, err := Validate(models.SiteGingin, overnightVisit("Mating Pots 0.71"))
		require.NoError(t, err)
		assert.Equal(t, []string{models.FieldPaddock}, fieldsOf(errs))
	})
}

func TestValidate_UnknownSite(t *testing.T) {
	errs, err := Validate(models.SiteKind("mars"), sameDayVisit())
	require.Error(t, err)
	assert.Nil(t, errs)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
	assert.False(t, Known("mars"))
	assert.True(t, Known(models.SiteGingin))
}

func TestVisitFieldsInstants(t *testing.T) {
	perth := time.FixedZone("AWST", 8*60*60)
	f := overnightVisit("x")

	assert.Equal(t, time.Date(2022, 12, 27, 9, 0, 0, 0, perth), f.Arrival(perth))
	assert.Equal(t, time.Date(2022, 12, 28, 17, 0, 0, 0, perth), f.Departure(perth))
}
