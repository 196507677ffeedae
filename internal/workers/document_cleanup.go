package workers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/config"
	"github.com/atrium-dev/atrium/internal/models"
)

// HandleDocumentCleanup deletes failed documents older than the configured
// retention window along with their stored files
func HandleDocumentCleanup(ctx context.Context, t *asynq.Task, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	cutoff := time.Now().Add(-cfg.Uploads.FailedRetention)

	var stale []models.Document
	if err := db.Where("status = ? AND updated_at < ?", models.DocumentStatusFailed, cutoff).Find(&stale).Error; err != nil {
		return fmt.Errorf("failed to query stale documents: %w", err)
	}

	if len(stale) == 0 {
		logger.Debug().Msg("No stale failed documents to clean up")
		return nil
	}

	logger.Info().
		Int("count", len(stale)).
		Time("cutoff", cutoff).
		Msg("Cleaning up stale failed documents")

	for _, doc := range stale {
		if err := ctx.Err(); err != nil {
			return err
		}

		if doc.StoragePath != "" {
			if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
				logger.Warn().
					Err(err).
					Str("document_id", doc.ID).
					Str("storage_path", doc.StoragePath).
					Msg("Failed to remove stored file (continuing anyway)")
			}
		}

		if err := db.Delete(&doc).Error; err != nil {
			logger.Error().
				Err(err).
				Str("document_id", doc.ID).
				Msg("Failed to delete document record")
			// Continue with the rest even if one fails
			continue
		}

		logger.Info().
			Str("document_id", doc.ID).
			Str("filename", doc.Filename).
			Msg("Deleted stale failed document")
	}

	return nil
}
