package rules

import (
	"visitreg/internal/visit/models"
	dErrors "visitreg/pkg/domain-errors"
)

const (
	msgPaddockRequired  = "You must specify a paddock."
	msgPaddockForbidden = "You cannot specify a paddock if you are not staying overnight."
	msgNoExtraFields    = "This site does not record a paddock."
)

type siteRule func(overnight bool, extra models.SiteFields) dErrors.FieldErrors

var siteRules = map[models.SiteKind]siteRule{
	models.SiteRidgefield: paddockWhenOvernight,
	models.SiteGingin:     noExtraFields,
}

// Known reports whether site has a rule set.
func Known(site models.SiteKind) bool {
	_, ok := siteRules[site]
	return ok
}

// ValidateSite applies the rule set registered for site.
func ValidateSite(site models.SiteKind, overnight bool, extra models.SiteFields) (dErrors.FieldErrors, error) {
	rule, ok := siteRules[site]
	if !ok {
		return nil, dErrors.New(dErrors.CodeConfiguration, "no rule set registered for site "+string(site))
	}
	return rule(overnight, extra), nil
}

func paddockWhenOvernight(overnight bool, extra models.SiteFields) dErrors.FieldErrors {
	var errs dErrors.FieldErrors
	_, given := models.PaddockOf(extra)
	switch {
	case overnight && !given:
		errs.Add(models.FieldPaddock, msgPaddockRequired)
	case !overnight && given:
		errs.Add(models.FieldPaddock, msgPaddockForbidden)
	}
	return errs
}

func noExtraFields(_ bool, extra models.SiteFields) dErrors.FieldErrors {
	var errs dErrors.FieldErrors
	if _, ok := models.PaddockOf(extra); ok {
		errs.Add(models.FieldPaddock, msgNoExtraFields)
	}
	return errs
}
