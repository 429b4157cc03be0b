package service

import (
	"context"

	"visitreg/internal/visit/models"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/requestcontext"
)

// RosterEntry is one visit as shown to site managers.
type RosterEntry struct {
	Visit   *models.Visit
	Profile *vmodels.Profile
}

// ListRoster returns a site's visits ordered by arrival. With current set,
// only visitors on site right now are listed.
func (s *Service) ListRoster(ctx context.Context, site models.SiteKind, current bool) ([]RosterEntry, error) {
	if _, ok := models.LookupSite(site); !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown site")
	}
	filter := models.Filter{Site: site}
	if current {
		now := requestcontext.Now(ctx)
		filter.OnSiteAt = &now
	}
	visits, err := s.visits.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visits")
	}

	profiles := make(map[id.VisitorID]*vmodels.Profile)
	out := make([]RosterEntry, 0, len(visits))
	for _, v := range visits {
		p, ok := profiles[v.VisitorID]
		if !ok {
			p, err = s.visitors.Describe(ctx, v.VisitorID)
			if err != nil {
				return nil, err
			}
			profiles[v.VisitorID] = p
		}
		out = append(out, RosterEntry{Visit: v, Profile: p})
	}
	return out, nil
}

// History lists the visits of the visitor linked to identityID.
func (s *Service) History(ctx context.Context, identityID id.IdentityID) ([]*models.Visit, error) {
	profile, err := s.visitors.ProfileByIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.ListByVisitor(ctx, profile.Visitor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visits")
	}
	return visits, nil
}
