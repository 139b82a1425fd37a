package ledger

import (
	"context"
	"log/slog"

	"github.com/steffise60/Suivi-de-chantier/internal/attachment"

	"github.com/uptrace/bun"
)

// CascadeDeleter removes a project's entire dependent subtree as one unit.
// Row deletions run children-before-parents inside a single transaction;
// attachment files are deleted before their owning Cost rows so a crash can
// orphan a file but never a row that points at a missing one it created.
type CascadeDeleter struct {
	db     *bun.DB
	store  attachment.Store
	logger *slog.Logger
}

func NewCascadeDeleter(db *bun.DB, store attachment.Store, logger *slog.Logger) *CascadeDeleter {
	return &CascadeDeleter{
		db:     db,
		store:  store,
		logger: logger,
	}
}

func (d *CascadeDeleter) DeleteProjectTree(ctx context.Context, projectID int) error {
	return d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*TimeLog)(nil)).
			Where("project_id = ?", projectID).
			Exec(ctx); err != nil {
			return err
		}

		var costs []Cost
		if err := tx.NewSelect().
			Model(&costs).
			Where("project_id = ?", projectID).
			Order("id").
			Scan(ctx); err != nil {
			return err
		}
		for _, cost := range costs {
			if cost.AttachmentFilename == "" {
				continue
			}
			// An already-missing file is a no-op inside the store. Anything
			// else (permissions, I/O) must not abort the cascade: losing a
			// stray file beats leaving the ledger half-deleted.
			if err := d.store.Delete(cost.AttachmentFilename); err != nil {
				d.logger.WarnContext(ctx, "failed to delete attachment during cascade",
					"filename", cost.AttachmentFilename,
					"cost_id", cost.ID,
					"error", err,
				)
			}
		}
		if _, err := tx.NewDelete().
			Model((*Cost)(nil)).
			Where("project_id = ?", projectID).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*Task)(nil)).
			Where("project_id = ?", projectID).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*Project)(nil)).
			Where("id = ?", projectID).
			Exec(ctx)
		return err
	})
}
