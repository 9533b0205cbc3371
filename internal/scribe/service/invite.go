package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/cryptox"
	"github.com/aussiebroadwan/scribe/pkg/idx"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// InviteResult carries the raw invitation token, which exists nowhere else
// once this call returns.
type InviteResult struct {
	Member    domain.Member
	Token     string
	EmailSent bool
}

// Invite adds or re-issues a pending membership for email in a team
// workspace and mails the invitation link.
func (s *WorkspaceService) Invite(ctx context.Context, userID, workspaceID, email string, role domain.Role) (InviteResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("workspace_id", workspaceID))
	now := s.Clock.now()

	w, access, err := s.load(ctx, userID, workspaceID)
	if err != nil {
		return InviteResult{}, err
	}
	if !access.CanManage() || w.Type != domain.WorkspaceTeam {
		return InviteResult{}, ErrForbidden
	}

	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return InviteResult{}, err
	}
	if role, err = domain.ParseRole(string(role)); err != nil {
		return InviteResult{}, err
	}

	var invitee *domain.User
	if u, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		invitee = &u
	} else if !errors.Is(err, store.ErrNotFound) {
		return InviteResult{}, fmt.Errorf("lookup invitee: %w", err)
	}

	if invitee != nil && invitee.ID == w.OwnerID {
		return InviteResult{}, ErrAlreadyMember
	}
	for _, m := range w.Members {
		if m.Pending() {
			continue
		}
		if m.Email == email || (invitee != nil && m.UserID == invitee.ID) {
			return InviteResult{}, ErrAlreadyMember
		}
	}

	code, err := s.Tokens.IssueOneTimeCode(jwtx.PurposeInvite)
	if err != nil {
		return InviteResult{}, fmt.Errorf("invite token: %w", err)
	}

	member, pending := pendingFor(w, email)
	if pending {
		member.Role = role
		member.InviteDigest = code.Digest
		member.InviteExpiresAt = &code.ExpiresAt
		member.InvitedBy = userID
		member.UpdatedAt = now
		if invitee != nil && member.UserID == "" {
			member.UserID = invitee.ID
		}
		err = s.Store.Members().ReissueInvite(ctx, member)
	} else {
		member = domain.Member{
			ID:              idx.NewAt(now).String(),
			WorkspaceID:     w.ID,
			Email:           email,
			Role:            role,
			InviteDigest:    code.Digest,
			InviteExpiresAt: &code.ExpiresAt,
			InvitedBy:       userID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if invitee != nil {
			member.UserID = invitee.ID
		}
		err = s.Store.Members().AddMember(ctx, member)
	}
	if err != nil {
		log.Error("failed to store invitation", slog.Any("error", err))
		return InviteResult{}, fmt.Errorf("store invitation: %w", err)
	}

	inviter := "A teammate"
	if u, err := s.Store.Users().GetUserByID(ctx, userID); err == nil && u.FullName() != "" {
		inviter = u.FullName()
	}

	sent := deliver(ctx, s.Mail, mail.Message{
		Kind: mail.KindWorkspaceInvite,
		To:   email,
		Data: mail.WorkspaceInvite{
			InviterName:   inviter,
			WorkspaceName: w.Name,
			Role:          string(role),
			Link:          frontendLink(s.FrontendURL, "invitations", code.Code),
			ExpiresIn:     domain.InviteTTL,
		},
	})

	log.Info("member invited",
		slog.String("member_id", member.ID),
		slog.String("role", string(role)),
		slog.Bool("reissued", pending),
		slog.Bool("email_sent", sent),
	)
	return InviteResult{Member: member, Token: code.Code, EmailSent: sent}, nil
}

// pendingFor returns the outstanding invitation for email. Callers have
// already rejected emails with an accepted entry.
func pendingFor(w domain.Workspace, email string) (domain.Member, bool) {
	m, ok := w.MemberByEmail(email)
	return m, ok && m.Pending()
}

// AcceptInvitation redeems an invitation token. callerID may be empty for an
// anonymous caller; otherwise it is bound to an entry that has no user yet.
// The token is cleared in the same statement, so a second call fails.
func (s *WorkspaceService) AcceptInvitation(ctx context.Context, token, callerID string) (domain.Member, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Member{}, ErrInvalidOrExpiredInvite
	}

	m, err := s.Store.Members().AcceptInvite(ctx, cryptox.FingerprintToken(token), callerID, now)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Info("invitation token rejected")
			return domain.Member{}, ErrInvalidOrExpiredInvite
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Member{}, ErrAlreadyMember
		}
		return domain.Member{}, fmt.Errorf("accept invitation: %w", err)
	}

	log.Info("invitation accepted",
		slog.String("workspace_id", m.WorkspaceID),
		slog.String("member_id", m.ID),
		slog.String("user_id", m.UserID),
	)
	return m, nil
}
