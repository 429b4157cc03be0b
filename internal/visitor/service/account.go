package service

import (
	"context"
	"errors"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"

	authservice "visitreg/internal/auth/service"
	"visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	"visitreg/pkg/email"
	"visitreg/pkg/platform/audit"
	"visitreg/pkg/platform/sentinel"
	pstrings "visitreg/pkg/platform/strings"
	"visitreg/pkg/requestcontext"
)

type RegisterRequest struct {
	Username   string
	Password   string
	Attributes models.VisitorAttributes
}

// RegisterAccount creates a login together with its emergency contact and
// visitor profile.
func (s *Service) RegisterAccount(ctx context.Context, req RegisterRequest) (*models.Profile, error) {
	if pstrings.IsBlank(req.Username) {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "username is required",
			dErrors.FieldErrors{{Field: models.FieldUsername, Message: models.MsgRequired}})
	}
	if err := models.CheckAttributes(req.Attributes); err != nil {
		return nil, err
	}
	r, err := s.prepareNew(ctx, req.Attributes)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		identity, err := s.accounts.CreateIdentity(ctx, authservice.CreateIdentityRequest{
			Username:  req.Username,
			Password:  req.Password,
			Email:     r.Visitor.Email,
			FirstName: r.Visitor.FirstName,
			LastName:  r.Visitor.LastName,
		})
		if err != nil {
			return err
		}
		r.Visitor.IdentityID = &identity.ID
		return s.Commit(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "visitor registered account",
		"visitor_id", r.Visitor.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &r.Profile, nil
}

// DetailsUpdate carries a partial profile edit. Blank fields are left as they are.
type DetailsUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// UpdateDetails applies the non-blank fields of u to the visitor linked to
// identityID and mirrors name and email onto the login.
func (s *Service) UpdateDetails(ctx context.Context, identityID id.IdentityID, u DetailsUpdate) (*models.Profile, error) {
	var fe dErrors.FieldErrors
	if !pstrings.IsBlank(u.Email) && checkmail.ValidateFormat(strings.TrimSpace(u.Email)) != nil {
		fe.Add(models.FieldEmail, models.MsgInvalidEmail)
	}
	if !pstrings.IsBlank(u.Phone) && !pstrings.IsPhone(u.Phone) {
		fe.Add(models.FieldPhone, models.MsgInvalidPhone)
	}
	if !fe.Empty() {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "profile details are invalid", fe)
	}

	profile, err := s.ProfileByIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}
	visitor := profile.Visitor
	if !pstrings.IsBlank(u.Role) {
		role, err := s.roles.FindByName(ctx, strings.TrimSpace(u.Role))
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.WithFields(dErrors.CodeValidation, "profile details are invalid",
					dErrors.FieldErrors{{Field: models.FieldRole, Message: models.MsgUnknownRole}})
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
		}
		visitor.RoleID = role.ID
		profile.Role = role
	}
	if v := strings.TrimSpace(u.FirstName); v != "" {
		visitor.FirstName = v
	}
	if v := strings.TrimSpace(u.LastName); v != "" {
		visitor.LastName = v
	}
	if v := strings.TrimSpace(u.Email); v != "" {
		visitor.Email = email.Normalize(v)
	}
	if v := strings.TrimSpace(u.Phone); v != "" {
		visitor.Phone = v
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.visitors.Update(ctx, visitor); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update visitor")
		}
		return s.accounts.UpdateProfile(ctx, identityID, visitor.Email, visitor.FirstName, visitor.LastName)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

type ContactDetails struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// ReplaceEmergencyContact swaps the visitor's emergency contact. The old
// contact is deleted before the new one is linked.
func (s *Service) ReplaceEmergencyContact(ctx context.Context, identityID id.IdentityID, d ContactDetails) (*models.Profile, error) {
	var fe dErrors.FieldErrors
	if pstrings.IsBlank(d.Name) {
		fe.Add(models.FieldContactName, models.MsgRequired)
	} else if pstrings.IsNumeric(d.Name) {
		fe.Add(models.FieldContactName, models.MsgNumericName)
	}
	if pstrings.IsBlank(d.Phone) {
		fe.Add(models.FieldContactPhone, models.MsgRequired)
	} else if !pstrings.IsPhone(d.Phone) {
		fe.Add(models.FieldContactPhone, models.MsgInvalidPhone)
	}
	if pstrings.IsBlank(d.Relationship) {
		fe.Add(models.FieldContactRelationship, models.MsgRequired)
	}
	if !fe.Empty() {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "emergency contact is invalid", fe)
	}

	profile, err := s.ProfileByIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}
	contact := &models.EmergencyContact{
		ID:           id.ContactID(uuid.New()),
		Name:         strings.TrimSpace(d.Name),
		Phone:        strings.TrimSpace(d.Phone),
		Relationship: strings.TrimSpace(d.Relationship),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if old := profile.Visitor.EmergencyContactID; old != nil {
			if err := s.contacts.Delete(ctx, *old); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete emergency contact")
			}
		}
		if err := s.contacts.Save(ctx, contact); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save emergency contact")
		}
		profile.Visitor.EmergencyContactID = &contact.ID
		if err := s.visitors.Update(ctx, profile.Visitor); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update visitor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	profile.Contact = contact
	s.emit(ctx, audit.Event{
		IdentityID: identityID,
		Subject:    profile.Visitor.ID.String(),
		Action:     string(audit.EventEmergencyContactChanged),
	})
	return profile, nil
}

// Delete removes the visitor linked to identityID along with its visits,
// emergency contact and login.
func (s *Service) Delete(ctx context.Context, identityID id.IdentityID) error {
	profile, err := s.ProfileByIdentity(ctx, identityID)
	if err != nil {
		return err
	}
	visitor := profile.Visitor

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		removed, err := s.visits.DeleteByVisitor(ctx, visitor.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete visits")
		}
		if err := s.visitors.Delete(ctx, visitor.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete visitor")
		}
		if visitor.EmergencyContactID != nil {
			if err := s.contacts.Delete(ctx, *visitor.EmergencyContactID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete emergency contact")
			}
		}
		if err := s.accounts.DeleteIdentity(ctx, identityID); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "visitor deleted",
			"visitor_id", visitor.ID.String(),
			"visits_removed", removed,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	})
}

// Roles lists the role catalogue.
func (s *Service) Roles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list roles")
	}
	return roles, nil
}

// EnsureRoles seeds the named roles, skipping any that exist.
func (s *Service) EnsureRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := s.roles.FindByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
		}
		err := s.roles.Save(ctx, &models.Role{ID: id.RoleID(uuid.New()), Name: name})
		if err != nil && !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save role")
		}
	}
	return nil
}
