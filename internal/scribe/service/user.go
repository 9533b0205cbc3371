package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
)

const maxPreferenceKeys = 50

type UserService struct {
	Store store.Store
	Clock Clock
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// UpdateProfile replaces the name and mobile number of a user.
func (s *UserService) UpdateProfile(ctx context.Context, userID, firstName, lastName, mobile string) (domain.User, error) {
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
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return s.GetUserByID(ctx, userID)
}

// UpdatePreferences replaces the free-form preferences map.
func (s *UserService) UpdatePreferences(ctx context.Context, userID string, prefs map[string]any) (domain.User, error) {
	if len(prefs) > maxPreferenceKeys {
		return domain.User{}, domain.Invalid("preferences", "too many keys")
	}

	if err := s.Store.Users().UpdatePreferences(ctx, userID, prefs, s.Clock.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update preferences: %w", err)
	}
	return s.GetUserByID(ctx, userID)
}
