package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `
	id, email, first_name, last_name, mobile_number, password_hash, email_verified,
	verification_digest, verification_expires_at, reset_digest, reset_expires_at,
	onboarding_status, onboarding_step, onboarding_data, preferences,
	last_login_at, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	data, err := encodeJSON(u.Onboarding)
	if err != nil {
		return fmt.Errorf("encode onboarding data: %w", err)
	}
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	prefsJSON, err := encodeJSON(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		u.MobileNumber,
		nullString(u.PasswordHash),
		u.EmailVerified,
		nullString(u.VerificationDigest),
		nullMillis(u.VerificationExpiresAt),
		nullString(u.ResetDigest),
		nullMillis(u.ResetExpiresAt),
		string(u.OnboardingStatus),
		u.OnboardingStep,
		data,
		prefsJSON,
		nullMillis(u.LastLoginAt),
		millis(u.CreatedAt),
		millis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, firstName, lastName, mobile string, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, mobile_number = ?, updated_at = ?
		WHERE id = ?`,
		firstName, lastName, mobile, millis(now), userID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, millis(now), userID,
	))
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = ? WHERE id = ?`,
		millis(at), userID,
	))
}

func (r *usersRepo) UpdatePreferences(ctx context.Context, userID string, prefs map[string]any, now time.Time) error {
	if prefs == nil {
		prefs = map[string]any{}
	}
	encoded, err := encodeJSON(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET preferences = ?, updated_at = ? WHERE id = ?`,
		encoded, millis(now), userID,
	))
}

func (r *usersRepo) SetVerificationCode(ctx context.Context, userID, digest string, expiresAt, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET verification_digest = ?, verification_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		digest, millis(expiresAt), millis(now), userID,
	))
}

func (r *usersRepo) ConsumeVerificationCode(ctx context.Context, userID, digest string, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET email_verified = 1,
		    verification_digest = NULL,
		    verification_expires_at = NULL,
		    updated_at = ?
		WHERE id = ?
		  AND verification_digest = ?
		  AND verification_expires_at > ?`,
		millis(now), userID, digest, millis(now),
	))
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET email_verified = 1, verification_digest = NULL, verification_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		millis(now), userID,
	))
}

func (r *usersRepo) ClearPassword(ctx context.Context, userID string, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = NULL, reset_digest = NULL, reset_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		millis(now), userID,
	))
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, digest string, expiresAt, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET reset_digest = ?, reset_expires_at = ?, updated_at = ? WHERE id = ?`,
		digest, millis(expiresAt), millis(now), userID,
	))
}

func (r *usersRepo) ConsumeResetToken(ctx context.Context, digest, newHash string, now time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET password_hash = ?, reset_digest = NULL, reset_expires_at = NULL, updated_at = ?
		WHERE reset_digest = ? AND reset_expires_at > ?
		RETURNING id`,
		newHash, millis(now), digest, millis(now),
	).Scan(&id)
	if err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}

func (r *usersRepo) UpdateOnboardingStep(ctx context.Context, userID string, step int, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET onboarding_step = ?, updated_at = ? WHERE id = ?`,
		step, millis(now), userID,
	))
}

func (r *usersRepo) SetOnboardingField(ctx context.Context, userID string, field store.OnboardingField, value any, now time.Time) error {
	if !field.Valid() {
		return fmt.Errorf("sqlite: unknown onboarding field %q", field)
	}
	encoded, err := encodeJSON(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}

	// json_set touches a single key so concurrent setters never clobber
	// each other's answers.
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET onboarding_data = json_set(onboarding_data, '$.' || ?, json(?)), updated_at = ?
		WHERE id = ?`,
		string(field), encoded, millis(now), userID,
	))
}

func (r *usersRepo) CompleteOnboarding(ctx context.Context, userID string, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET onboarding_status = 'completed', updated_at = ?
		WHERE id = ? AND onboarding_status = 'incomplete'`,
		millis(now), userID,
	))
}

func (r *usersRepo) ClearExpiredSecrets(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET verification_digest = NULL, verification_expires_at = NULL
		WHERE verification_expires_at IS NOT NULL AND verification_expires_at <= ?`,
		millis(now),
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	total += n

	res, err = r.db.ExecContext(ctx, `
		UPDATE users SET reset_digest = NULL, reset_expires_at = NULL
		WHERE reset_expires_at IS NOT NULL AND reset_expires_at <= ?`,
		millis(now),
	)
	if err != nil {
		return total, err
	}
	n, _ = res.RowsAffected()
	return total + n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                     domain.User
		passwordHash          sql.NullString
		verificationDigest    sql.NullString
		verificationExpiresAt sql.NullInt64
		resetDigest           sql.NullString
		resetExpiresAt        sql.NullInt64
		status                string
		onboardingData, prefs string
		lastLoginAt           sql.NullInt64
		createdAt, updatedAt  int64
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.MobileNumber,
		&passwordHash,
		&u.EmailVerified,
		&verificationDigest,
		&verificationExpiresAt,
		&resetDigest,
		&resetExpiresAt,
		&status,
		&u.OnboardingStep,
		&onboardingData,
		&prefs,
		&lastLoginAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if err := json.Unmarshal([]byte(onboardingData), &u.Onboarding); err != nil {
		return domain.User{}, fmt.Errorf("decode onboarding data: %w", err)
	}
	if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
		return domain.User{}, fmt.Errorf("decode preferences: %w", err)
	}
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}

	u.PasswordHash = stringOf(passwordHash)
	u.VerificationDigest = stringOf(verificationDigest)
	u.VerificationExpiresAt = timePtr(verificationExpiresAt)
	u.ResetDigest = stringOf(resetDigest)
	u.ResetExpiresAt = timePtr(resetExpiresAt)
	u.OnboardingStatus = domain.OnboardingStatus(status)
	u.LastLoginAt = timePtr(lastLoginAt)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}
