// Package invites implements the group invite lifecycle: pending -> accepted or
// pending -> declined, once, with the matching notification and membership writes.
package invites

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/apperr"
	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/models"
)

type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// Notifier delivers notifications created by the lifecycle.
type Notifier interface {
	PushNotification(note *models.Notification)
	NotifyUser(ctx context.Context, userID uint, message, kind string, inviteID *uint) (*models.Notification, error)
}

type Service struct {
	db       *database.Database
	notifier Notifier
	log      *zap.Logger
}

func NewService(db *database.Database, notifier Notifier, log *zap.Logger) *Service {
	return &Service{db: db, notifier: notifier, log: log.Named("invites")}
}

// Send invites the user matching identifier (email or full name) to the group.
// The invite and its notification commit together; the live push happens after.
func (s *Service) Send(ctx context.Context, inviterID, groupID uint, identifier string) (*models.GroupInvite, error) {
	identifier = strings.TrimSpace(identifier)
	if groupID == 0 || identifier == "" {
		return nil, fmt.Errorf("%w: group_id and identifier required", apperr.ErrInvalid)
	}

	var (
		invite *models.GroupInvite
		note   *models.Notification
	)
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}

		member, err := tx.IsMember(ctx, inviterID, groupID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("%w: not a member of group %d", apperr.ErrForbidden, groupID)
		}

		invitee, err := tx.FindUserByIdentifier(ctx, identifier)
		if err != nil {
			return err
		}

		pending, err := tx.HasPendingInvite(ctx, invitee.ID, groupID)
		if err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("%w: invite already sent", apperr.ErrConflict)
		}

		invite = &models.GroupInvite{
			InviterID: inviterID,
			InviteeID: invitee.ID,
			GroupID:   groupID,
			Status:    models.InvitePending,
		}
		if err := tx.CreateInvite(ctx, invite); err != nil {
			return err
		}

		inviterName := "a user"
		if inviter, err := tx.GetUser(ctx, inviterID); err == nil {
			inviterName = inviter.FullName
		}

		note = &models.Notification{
			UserID:   invitee.ID,
			Message:  fmt.Sprintf("You were invited to join '%s' by %s", group.Name, inviterName),
			Type:     models.NotificationInvite,
			InviteID: &invite.ID,
		}
		return tx.CreateNotification(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invite sent",
		zap.Uint("invite_id", invite.ID),
		zap.Uint("group_id", groupID),
		zap.Uint("invitee_id", invite.InviteeID),
	)
	s.notifier.PushNotification(note)

	return invite, nil
}

// Respond accepts or declines a pending invite on behalf of its invitee.
func (s *Service) Respond(ctx context.Context, inviteID, actingUserID uint, action Action) (*models.GroupInvite, error) {
	var status models.InviteStatus
	switch action {
	case ActionAccept:
		status = models.InviteAccepted
	case ActionDecline:
		status = models.InviteDeclined
	default:
		return nil, fmt.Errorf("%w: action must be accept or decline", apperr.ErrInvalid)
	}

	var invite *models.GroupInvite
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		invite, err = tx.GetInvite(ctx, inviteID)
		if err != nil {
			return err
		}
		if invite.InviteeID != actingUserID {
			return fmt.Errorf("%w: not the invitee", apperr.ErrForbidden)
		}
		if invite.Status != models.InvitePending {
			return fmt.Errorf("%w: invite already %s", apperr.ErrConflict, invite.Status)
		}

		// compare-and-swap on status: a concurrent responder that got here first wins
		ok, err := tx.ResolveInvite(ctx, invite.ID, status)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: invite already resolved", apperr.ErrConflict)
		}
		invite.Status = status

		if status == models.InviteAccepted {
			return tx.UpsertMembership(ctx, invite.InviteeID, invite.GroupID, models.RoleMember)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invite resolved", zap.Uint("invite_id", invite.ID), zap.String("status", string(status)))
	s.notifyInviter(ctx, invite)

	return invite, nil
}

// Pending lists the invites waiting on userID.
func (s *Service) Pending(ctx context.Context, userID uint) ([]models.GroupInvite, error) {
	return s.db.PendingInvites(ctx, userID)
}

func (s *Service) notifyInviter(ctx context.Context, invite *models.GroupInvite) {
	name := fmt.Sprintf("User #%d", invite.InviteeID)
	if invitee, err := s.db.GetUser(ctx, invite.InviteeID); err == nil {
		name = invitee.FullName
	}

	msg := fmt.Sprintf("%s %s your invite", name, invite.Status)
	if _, err := s.notifier.NotifyUser(ctx, invite.InviterID, msg, models.NotificationInfo, nil); err != nil {
		s.log.Warn("failed to notify inviter", zap.Uint("invite_id", invite.ID), zap.Error(err))
	}
}
