package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
)

type workspacesRepo struct {
	db dbtx
}

const workspaceColumns = `id, name, type, owner_id, theme, post_style, language, created_at, updated_at`

func (r *workspacesRepo) CreateWorkspace(ctx context.Context, w domain.Workspace) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspaces (`+workspaceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID,
		w.Name,
		string(w.Type),
		w.OwnerID,
		string(w.Settings.Theme),
		string(w.Settings.PostStyle),
		string(w.Settings.Language),
		millis(w.CreatedAt),
		millis(w.UpdatedAt),
	)
	if err != nil {
		return mapConstraint(err)
	}

	members := &membersRepo{db: r.db}
	for _, m := range w.Members {
		if err := members.AddMember(ctx, m); err != nil {
			return fmt.Errorf("insert member %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *workspacesRepo) GetWorkspace(ctx context.Context, id string) (domain.Workspace, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = ?`, id)
	w, err := scanWorkspace(row)
	if err != nil {
		return domain.Workspace{}, err
	}

	w.Members, err = (&membersRepo{db: r.db}).ListMembers(ctx, w.ID)
	if err != nil {
		return domain.Workspace{}, err
	}
	return w, nil
}

func (r *workspacesRepo) ListWorkspacesForUser(ctx context.Context, userID string) ([]domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+workspaceColumns+` FROM workspaces w
		WHERE w.owner_id = ?
		   OR (w.type = 'team' AND EXISTS (
		        SELECT 1 FROM workspace_members m
		        WHERE m.workspace_id = w.id AND m.user_id = ? AND m.accepted = 1))
		ORDER BY w.created_at, w.id`,
		userID, userID,
	)
	if err != nil {
		return nil, err
	}

	var out []domain.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Members are loaded after the cursor is closed; the connection may be
	// shared with it.
	members := &membersRepo{db: r.db}
	for i := range out {
		out[i].Members, err = members.ListMembers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *workspacesRepo) UpdateWorkspace(ctx context.Context, id, name string, settings domain.WorkspaceSettings, now time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE workspaces
		SET name = ?, theme = ?, post_style = ?, language = ?, updated_at = ?
		WHERE id = ?`,
		name,
		string(settings.Theme),
		string(settings.PostStyle),
		string(settings.Language),
		millis(now),
		id,
	))
}

func (r *workspacesRepo) DeleteWorkspace(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id))
}

func scanWorkspace(row rowScanner) (domain.Workspace, error) {
	var (
		w                       domain.Workspace
		typ, theme, style, lang string
		createdAt, updatedAt    int64
	)
	err := row.Scan(&w.ID, &w.Name, &typ, &w.OwnerID, &theme, &style, &lang, &createdAt, &updatedAt)
	if err != nil {
		return domain.Workspace{}, mapNotFound(err)
	}

	w.Type = domain.WorkspaceType(typ)
	w.Settings = domain.WorkspaceSettings{
		Theme:     domain.Theme(theme),
		PostStyle: domain.PostStyle(style),
		Language:  domain.Language(lang),
	}
	w.CreatedAt = fromMillis(createdAt)
	w.UpdatedAt = fromMillis(updatedAt)
	return w, nil
}
