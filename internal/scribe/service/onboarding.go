package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/pkg/idx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// OnboardingService moves a user through the onboarding steps and records
// their answers. Each answer is written on its own.
type OnboardingService struct {
	Store store.Store
	Clock Clock
}

// Status returns the user with current step, status and answers.
func (s *OnboardingService) Status(ctx context.Context, userID string) (domain.User, error) {
	return s.user(ctx, userID)
}

// UpdateStep jumps to any step in range; going back is allowed.
func (s *OnboardingService) UpdateStep(ctx context.Context, userID string, step int) (domain.User, error) {
	if err := domain.ValidateStep(step); err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().UpdateOnboardingStep(ctx, userID, step, s.Clock.now()); err != nil {
		return domain.User{}, mapUserErr(err, "update onboarding step")
	}
	return s.user(ctx, userID)
}

func (s *OnboardingService) SetWorkspaceType(ctx context.Context, userID, value string) (domain.User, error) {
	typ, err := domain.ParseWorkspaceType(value)
	if err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldWorkspaceType, typ)
}

func (s *OnboardingService) SetTheme(ctx context.Context, userID, value string) (domain.User, error) {
	theme, err := domain.ParseTheme(value)
	if err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldTheme, theme)
}

func (s *OnboardingService) SetPostStyle(ctx context.Context, userID, value string) (domain.User, error) {
	style, err := domain.ParsePostStyle(value)
	if err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldPostStyle, style)
}

func (s *OnboardingService) SetPostFrequency(ctx context.Context, userID string, perMonth int) (domain.User, error) {
	if err := domain.ValidatePostFrequency(perMonth); err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldPostFrequency, perMonth)
}

func (s *OnboardingService) SetLanguage(ctx context.Context, userID, value string) (domain.User, error) {
	lang, err := domain.ParseLanguage(value)
	if err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldLanguage, lang)
}

func (s *OnboardingService) SetWebsiteLink(ctx context.Context, userID, link string) (domain.User, error) {
	link, err := domain.ValidateWebsiteLink(link)
	if err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldWebsiteLink, link)
}

func (s *OnboardingService) SetInspirationProfiles(ctx context.Context, userID string, profiles []string) (domain.User, error) {
	profiles, err := domain.ValidateInspirationProfiles(profiles)
	if err != nil {
		return domain.User{}, err
	}
	return s.set(ctx, userID, store.FieldInspirationProfiles, profiles)
}

// SetUserInfo records the name and mobile number step on the user itself.
func (s *OnboardingService) SetUserInfo(ctx context.Context, userID, firstName, lastName, mobile string) (domain.User, error) {
	first, err := domain.ValidateName("firstName", firstName)
	if err != nil {
		return domain.User{}, err
	}
	last, err := domain.ValidateName("lastName", lastName)
	if err != nil {
		return domain.User{}, err
	}
	mobile, err = domain.ValidateMobileNumber(mobile)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, first, last, mobile, s.Clock.now()); err != nil {
		return domain.User{}, mapUserErr(err, "update user info")
	}
	return s.user(ctx, userID)
}

// Complete creates the user's workspace from the recorded answers and marks
// onboarding completed. Both happen in one transaction; a second call is
// ErrOnboardingCompleted and creates nothing.
func (s *OnboardingService) Complete(ctx context.Context, userID, workspaceName string) (domain.User, domain.Workspace, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.now()

	user, err := s.user(ctx, userID)
	if err != nil {
		return domain.User{}, domain.Workspace{}, err
	}
	if user.OnboardingStatus == domain.OnboardingCompleted {
		return domain.User{}, domain.Workspace{}, ErrOnboardingCompleted
	}
	if user.Onboarding.WorkspaceType == "" {
		return domain.User{}, domain.Workspace{}, domain.Invalid("workspaceType", "must be chosen before completing onboarding")
	}

	w, err := domain.NewWorkspace(
		idx.NewAt(now).String(),
		idx.NewAt(now).String(),
		workspaceName,
		user.Onboarding.WorkspaceType,
		user,
		user.Onboarding.WorkspaceSettings(),
		now,
	)
	if err != nil {
		return domain.User{}, domain.Workspace{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CompleteOnboarding(ctx, user.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOnboardingCompleted
			}
			return err
		}
		return tx.Workspaces().CreateWorkspace(ctx, w)
	})
	if err != nil {
		if errors.Is(err, ErrOnboardingCompleted) {
			return domain.User{}, domain.Workspace{}, err
		}
		log.Error("failed to complete onboarding", slog.Any("error", err))
		return domain.User{}, domain.Workspace{}, fmt.Errorf("complete onboarding: %w", err)
	}

	user.OnboardingStatus = domain.OnboardingCompleted
	user.UpdatedAt = now

	log.Info("onboarding completed",
		slog.String("user_id", user.ID),
		slog.String("workspace_id", w.ID),
	)
	return user, w, nil
}

func (s *OnboardingService) set(ctx context.Context, userID string, field store.OnboardingField, value any) (domain.User, error) {
	if err := s.Store.Users().SetOnboardingField(ctx, userID, field, value, s.Clock.now()); err != nil {
		return domain.User{}, mapUserErr(err, "set "+string(field))
	}
	return s.user(ctx, userID)
}

func (s *OnboardingService) user(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, mapUserErr(err, "load user")
	}
	return user, nil
}

func mapUserErr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
