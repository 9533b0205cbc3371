package sqlite

import (
	"context"

	"github.com/aussiebroadwan/scribe/internal/scribe/domain"
)

type identitiesRepo struct {
	db dbtx
}

func (r *identitiesRepo) LinkIdentity(ctx context.Context, ident domain.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_identities (provider, provider_id, user_id, created_at)
		VALUES (?, ?, ?, ?)`,
		string(ident.Provider), ident.ProviderID, ident.UserID, millis(ident.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentity(ctx context.Context, provider domain.Provider, providerID string) (domain.Identity, error) {
	var (
		ident     domain.Identity
		p         string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT provider, provider_id, user_id, created_at
		FROM user_identities WHERE provider = ? AND provider_id = ?`,
		string(provider), providerID,
	).Scan(&p, &ident.ProviderID, &ident.UserID, &createdAt)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	ident.Provider = domain.Provider(p)
	ident.CreatedAt = fromMillis(createdAt)
	return ident, nil
}

func (r *identitiesRepo) ListIdentitiesForUser(ctx context.Context, userID string) ([]domain.Identity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT provider, provider_id, user_id, created_at
		FROM user_identities WHERE user_id = ? ORDER BY provider`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Identity
	for rows.Next() {
		var (
			ident     domain.Identity
			p         string
			createdAt int64
		)
		if err := rows.Scan(&p, &ident.ProviderID, &ident.UserID, &createdAt); err != nil {
			return nil, err
		}
		ident.Provider = domain.Provider(p)
		ident.CreatedAt = fromMillis(createdAt)
		out = append(out, ident)
	}
	return out, rows.Err()
}
