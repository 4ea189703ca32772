package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

const autoMigrateTimeout = 2 * time.Minute

// AutoRun applies pending migrations on startup when the feature flag is set.
// Dev convenience only; production deploys run the migrate binary explicitly.
func AutoRun(ctx context.Context, db *sql.DB, logg *logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, autoMigrateTimeout)
	defer cancel()

	before, err := Version(ctx, db)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := Up(ctx, db); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	after, err := Version(ctx, db)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if after != before {
		logg.Info(ctx, fmt.Sprintf("auto-migrate applied schema version %d -> %d", before, after))
	}
	return nil
}
