package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/db"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

type PreferencesRepository struct {
	DB *db.Postgres
}

func (r PreferencesRepository) GetPreferences(ctx context.Context, name string) (domain.Preferences, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT line_ending, last_import, last_export, rule_dir, updated_at
		FROM editor_preferences
		WHERE catalog=$1
	`, name)
	var p domain.Preferences
	if err := row.Scan(&p.LineEnding, &p.LastImport, &p.LastExport, &p.RuleDir, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("preferences %q: %w", name, domain.ErrNotFound)
		}
		return p, err
	}
	return p, nil
}

func (r PreferencesRepository) SavePreferences(ctx context.Context, name string, p domain.Preferences) (domain.Preferences, error) {
	if p.LineEnding == "" {
		p.LineEnding = "lf"
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO editor_preferences (catalog, line_ending, last_import, last_export, rule_dir, updated_at)
		VALUES ($1,$2,$3,$4,$5, now())
		ON CONFLICT (catalog) DO UPDATE SET
			line_ending=EXCLUDED.line_ending,
			last_import=EXCLUDED.last_import,
			last_export=EXCLUDED.last_export,
			rule_dir=EXCLUDED.rule_dir,
			updated_at=now()
		RETURNING line_ending, last_import, last_export, rule_dir, updated_at
	`, name, p.LineEnding, p.LastImport, p.LastExport, p.RuleDir).Scan(
		&p.LineEnding, &p.LastImport, &p.LastExport, &p.RuleDir, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Preferences{}, err
	}
	return p, nil
}
