package workers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/models"
	"github.com/atrium-dev/atrium/internal/tasks"
)

// chunkSizeBytes is the target size of a single indexed chunk
const chunkSizeBytes = 4096

// HandleDocumentProcess chunks an uploaded document and records the result.
// Failures are written to the document record so clients can surface them
// and retry; the asynq retry machinery is not used for processing errors.
func HandleDocumentProcess(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	var doc models.Document
	if err := models.FindByID(db, payload.DocumentID, &doc); err != nil {
		if err == gorm.ErrRecordNotFound {
			// Document was deleted while queued, nothing to do
			logger.Warn().
				Str("document_id", payload.DocumentID).
				Msg("Document not found, skipping processing")
			return nil
		}
		return fmt.Errorf("failed to load document: %w", err)
	}

	if doc.Status == models.DocumentStatusCompleted {
		logger.Debug().
			Str("document_id", doc.ID).
			Msg("Document already processed, skipping")
		return nil
	}

	logger.Info().
		Str("document_id", doc.ID).
		Str("filename", doc.Filename).
		Int64("size_bytes", doc.SizeBytes).
		Msg("Processing document")

	if err := db.Model(&doc).Updates(map[string]interface{}{
		"status": models.DocumentStatusProcessing,
		"error":  "",
	}).Error; err != nil {
		return fmt.Errorf("failed to mark document as processing: %w", err)
	}

	chunks, err := chunkFile(ctx, doc.StoragePath)
	if err != nil {
		logger.Error().
			Err(err).
			Str("document_id", doc.ID).
			Str("storage_path", doc.StoragePath).
			Msg("Document processing failed")

		if dbErr := db.Model(&doc).Updates(map[string]interface{}{
			"status": models.DocumentStatusFailed,
			"error":  err.Error(),
		}).Error; dbErr != nil {
			return fmt.Errorf("failed to record processing failure: %w", dbErr)
		}
		// The failure is recorded on the document, do not let asynq retry
		return nil
	}

	now := time.Now()
	if err := db.Model(&doc).Updates(map[string]interface{}{
		"status":       models.DocumentStatusCompleted,
		"chunk_count":  chunks,
		"processed_at": &now,
		"error":        "",
	}).Error; err != nil {
		return fmt.Errorf("failed to mark document as completed: %w", err)
	}

	logger.Info().
		Str("document_id", doc.ID).
		Int("chunk_count", chunks).
		Msg("Document processed successfully")

	return nil
}

// chunkFile splits the stored file into paragraph-aligned chunks of roughly
// chunkSizeBytes each and returns the chunk count
func chunkFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open stored file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	chunks := 0
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks++
			currentLen = 0
		}
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			// Paragraph boundary
			if currentLen >= chunkSizeBytes/2 {
				flush()
			}
			continue
		}

		currentLen += len(line) + 1
		if currentLen >= chunkSizeBytes {
			flush()
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read stored file: %w", err)
	}

	if chunks == 0 {
		return 0, fmt.Errorf("document is empty")
	}

	return chunks, nil
}
