package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
)

type membersRepo struct {
	db dbtx
}

const memberColumns = `
	id, workspace_id, user_id, email, role, accepted, invite_digest,
	invite_expires_at, invited_by, created_at, updated_at`

func (r *membersRepo) AddMember(ctx context.Context, m domain.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspace_members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.WorkspaceID,
		nullString(m.UserID),
		m.Email,
		string(m.Role),
		m.Accepted,
		nullString(m.InviteDigest),
		nullMillis(m.InviteExpiresAt),
		m.InvitedBy,
		millis(m.CreatedAt),
		millis(m.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *membersRepo) ReissueInvite(ctx context.Context, m domain.Member) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE workspace_members
		SET role = ?,
		    invite_digest = ?,
		    invite_expires_at = ?,
		    invited_by = ?,
		    user_id = COALESCE(user_id, NULLIF(?, '')),
		    updated_at = ?
		WHERE id = ? AND accepted = 0`,
		string(m.Role),
		nullString(m.InviteDigest),
		nullMillis(m.InviteExpiresAt),
		m.InvitedBy,
		m.UserID,
		millis(m.UpdatedAt),
		m.ID,
	)
	return requireAffected(res, mapConstraint(err))
}

func (r *membersRepo) AcceptInvite(ctx context.Context, digest, userID string, now time.Time) (domain.Member, error) {
	// Accepting, clearing the digest and binding the caller happen in a
	// single statement so two concurrent accepts cannot both succeed.
	row := r.db.QueryRowContext(ctx, `
		UPDATE workspace_members
		SET accepted = 1,
		    invite_digest = NULL,
		    invite_expires_at = NULL,
		    user_id = COALESCE(user_id, NULLIF(?, '')),
		    updated_at = ?
		WHERE invite_digest = ?
		  AND accepted = 0
		  AND invite_expires_at > ?
		RETURNING `+memberColumns,
		userID, millis(now), digest, millis(now),
	)

	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Member{}, err
		}
		return domain.Member{}, mapConstraint(err)
	}
	return m, nil
}

func (r *membersRepo) BindEmail(ctx context.Context, email, userID string, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE workspace_members SET user_id = ?, updated_at = ?
		WHERE email = ? AND user_id IS NULL`,
		userID, millis(now), email,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.RowsAffected()
}

func (r *membersRepo) RemoveMember(ctx context.Context, workspaceID, memberID string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		DELETE FROM workspace_members WHERE workspace_id = ? AND id = ?`,
		workspaceID, memberID,
	))
}

func (r *membersRepo) ListMembers(ctx context.Context, workspaceID string) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM workspace_members
		WHERE workspace_id = ? ORDER BY created_at, id`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membersRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM workspace_members
		WHERE accepted = 0 AND invite_expires_at IS NOT NULL AND invite_expires_at <= ?`,
		millis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMember(row rowScanner) (domain.Member, error) {
	var (
		m                    domain.Member
		userID, digest       sql.NullString
		role                 string
		expiresAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&m.ID,
		&m.WorkspaceID,
		&userID,
		&m.Email,
		&role,
		&m.Accepted,
		&digest,
		&expiresAt,
		&m.InvitedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}

	m.UserID = stringOf(userID)
	m.Role = domain.Role(role)
	m.InviteDigest = stringOf(digest)
	m.InviteExpiresAt = timePtr(expiresAt)
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	return m, nil
}
