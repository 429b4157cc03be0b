package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"visitreg/internal/visit/models"
	"visitreg/internal/visit/rules"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/requestcontext"
)

// Leader is the authenticated submitter of a registration.
type Leader struct {
	IdentityID id.IdentityID
	Username   string
	Staff      bool
}

// TeamRequest registers the leader and every member for the same visit.
type TeamRequest struct {
	Site    models.SiteKind
	Fields  models.VisitFields
	Members []vmodels.Candidate
	Leader  Leader
}

// Registered pairs a persisted visit with the visitor it belongs to.
type Registered struct {
	Visit   *models.Visit
	Profile *vmodels.Profile
}

type TeamResult struct {
	TeamID *id.TeamID
	// Visits lists the members in input order followed by the leader.
	Visits []Registered
	// NotificationFailures counts visits whose manager notification could
	// not be queued. The visits are persisted regardless.
	NotificationFailures int
}

// RegisterTeam validates the shared visit fields once, resolves every member
// and persists one visit per roster entry under a shared team ID. Nothing is
// written unless every check passes.
func (s *Service) RegisterTeam(ctx context.Context, req TeamRequest) (*TeamResult, error) {
	ctx, span := s.tracer.Start(ctx, "visit.RegisterTeam", trace.WithAttributes(
		attribute.String("visit.site", string(req.Site)),
		attribute.Int("visit.members", len(req.Members)),
	))
	defer span.End()

	if err := validateFields(req.Site, req.Fields); err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}
	leader, err := s.loadLeader(ctx, req.Leader)
	if err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}
	if len(req.Members) == 0 {
		err := dErrors.New(dErrors.CodeBadRequest, "a team needs at least one member besides the leader")
		s.fail(ctx, span, err)
		return nil, err
	}
	roster, err := s.resolveMembers(ctx, req.Members, req.Leader, leader)
	if err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}

	teamID := id.TeamID(uuid.New())
	result, err := s.persist(ctx, req.Site, req.Fields, roster, &teamID)
	if err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("visit.team_id", teamID.String()))

	if s.metrics != nil {
		s.metrics.IncrementVisits(string(req.Site), len(result.Visits))
		s.metrics.ObserveTeam(string(req.Site), len(result.Visits))
	}
	s.emit(ctx, audit.Event{
		IdentityID: req.Leader.IdentityID,
		Subject:    teamID.String(),
		Action:     string(audit.EventTeamRegistered),
		Site:       string(req.Site),
	})
	s.logger.InfoContext(ctx, "team registered",
		"site", string(req.Site),
		"team_id", teamID.String(),
		"roster_size", len(result.Visits),
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

// RegisterVisit registers the authenticated visitor alone.
func (s *Service) RegisterVisit(ctx context.Context, site models.SiteKind, fields models.VisitFields, leader Leader) (*Registered, error) {
	ctx, span := s.tracer.Start(ctx, "visit.RegisterVisit", trace.WithAttributes(
		attribute.String("visit.site", string(site)),
	))
	defer span.End()

	if err := validateFields(site, fields); err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}
	profile, err := s.loadLeader(ctx, leader)
	if err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}
	result, err := s.persist(ctx, site, fields, []*vmodels.Resolution{{Profile: *profile}}, nil)
	if err != nil {
		s.fail(ctx, span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementVisits(string(site), 1)
	}
	registered := result.Visits[0]
	s.emit(ctx, audit.Event{
		IdentityID: leader.IdentityID,
		Subject:    registered.Visit.ID.String(),
		Action:     string(audit.EventVisitRegistered),
		Site:       string(site),
	})
	return &registered, nil
}

// validateFields runs the schedule and site rules. An unknown site is a
// configuration error rather than a user error.
func validateFields(site models.SiteKind, fields models.VisitFields) error {
	fe, err := rules.Validate(site, fields)
	if err != nil {
		return err
	}
	if !fe.Empty() {
		return dErrors.WithFields(dErrors.CodeInvalidVisit, "visit details are invalid", fe)
	}
	return nil
}

func (s *Service) loadLeader(ctx context.Context, leader Leader) (*vmodels.Profile, error) {
	if leader.Staff {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff accounts cannot register visits")
	}
	profile, err := s.visitors.ProfileByIdentity(ctx, leader.IdentityID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "only visitors can register visits")
		}
		return nil, err
	}
	return profile, nil
}

// resolveMembers prepares every member in input order and appends the
// leader. It performs no writes.
func (s *Service) resolveMembers(ctx context.Context, members []vmodels.Candidate, leader Leader, leaderProfile *vmodels.Profile) ([]*vmodels.Resolution, error) {
	roster := make([]*vmodels.Resolution, 0, len(members)+1)
	seen := map[id.VisitorID]struct{}{leaderProfile.Visitor.ID: {}}

	for i, c := range members {
		prefix := fmt.Sprintf("members[%d].", i)
		r, err := s.visitors.Prepare(ctx, c)
		if err != nil {
			return nil, prefixFields(err, prefix)
		}
		if r.Visitor.ID == leaderProfile.Visitor.ID {
			return nil, selfReference(prefix)
		}
		if _, dup := seen[r.Visitor.ID]; dup {
			return nil, dErrors.WithFields(dErrors.CodeDuplicateMember, "a visitor is listed more than once",
				dErrors.FieldErrors{{Field: prefix + vmodels.FieldUsername, Message: vmodels.MsgDuplicateVisitor}})
		}
		seen[r.Visitor.ID] = struct{}{}
		roster = append(roster, r)
	}
	return append(roster, &vmodels.Resolution{Profile: *leaderProfile}), nil
}

// persist commits new visitors and saves one visit per roster entry in a
// single unit of work, then queues notifications.
func (s *Service) persist(ctx context.Context, site models.SiteKind, fields models.VisitFields,
	roster []*vmodels.Resolution, teamID *id.TeamID) (*TeamResult, error) {
	now := requestcontext.Now(ctx)
	result := &TeamResult{TeamID: teamID, Visits: make([]Registered, 0, len(roster))}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, r := range roster {
			if err := s.visitors.Commit(ctx, r); err != nil {
				return err
			}
			visit := models.NewVisit(id.VisitID(uuid.New()), r.Visitor.ID, site, fields, s.loc, now)
			visit.TeamID = teamID
			if err := s.visits.Save(ctx, visit); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visit")
			}
			profile := r.Profile
			result.Visits = append(result.Visits, Registered{Visit: visit, Profile: &profile})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, reg := range result.Visits {
		if !s.notify(ctx, reg) {
			result.NotificationFailures++
		}
	}
	return result, nil
}

// notify queues a manager notification. Failures are logged, counted and
// audited; the visit stays registered.
func (s *Service) notify(ctx context.Context, reg Registered) bool {
	if s.notifier == nil {
		return true
	}
	err := s.notifier.Notify(ctx, reg.Visit, reg.Profile)
	if err == nil {
		return true
	}
	s.logger.ErrorContext(ctx, "failed to queue visit notification",
		"visit_id", reg.Visit.ID.String(),
		"site", string(reg.Visit.Site),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementNotificationFailed("enqueue")
	}
	s.emit(ctx, audit.Event{
		Subject: reg.Visit.ID.String(),
		Action:  string(audit.EventNotificationFailed),
		Site:    string(reg.Visit.Site),
		Reason:  err.Error(),
	})
	return false
}

func selfReference(prefix string) error {
	return dErrors.WithFields(dErrors.CodeSelfReference, "the team leader cannot also be listed as a member",
		dErrors.FieldErrors{{Field: prefix + vmodels.FieldUsername, Message: vmodels.MsgSelfReference}})
}

// prefixFields scopes a member's resolution field errors to its position.
func prefixFields(err error, prefix string) error {
	de, ok := dErrors.As(err)
	if !ok || de.Fields.Empty() {
		return err
	}
	return &dErrors.Error{Code: de.Code, Message: de.Message, Fields: de.Fields.Prefixed(prefix), Err: de.Err}
}
