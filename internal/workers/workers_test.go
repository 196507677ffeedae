package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atrium-dev/atrium/internal/config"
	"github.com/atrium-dev/atrium/internal/models"
	"github.com/atrium-dev/atrium/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createDocument(t *testing.T, db *gorm.DB, storagePath, status string) *models.Document {
	t.Helper()

	var user models.User
	if err := db.Where("email = ?", "alice@example.com").First(&user).Error; err != nil {
		user = models.User{Email: "alice@example.com", PasswordHash: "x", IsActive: true}
		require.NoError(t, db.Create(&user).Error)
	}

	project := models.Project{Name: "Research", OwnerID: user.ID}
	require.NoError(t, db.Create(&project).Error)

	doc := models.Document{
		ProjectID:   project.ID,
		Filename:    filepath.Base(storagePath),
		SizeBytes:   1,
		StoragePath: storagePath,
		Status:      status,
	}
	require.NoError(t, db.Create(&doc).Error)
	return &doc
}

func TestHandleDocumentProcessCompletes(t *testing.T) {
	db := newTestDB(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "First paragraph with some text.\n\nSecond paragraph with more text.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	doc := createDocument(t, db, path, models.DocumentStatusPending)

	task, err := tasks.NewDocumentProcessTask(doc.ID)
	require.NoError(t, err)

	require.NoError(t, HandleDocumentProcess(context.Background(), task, db, zerolog.Nop()))

	var updated models.Document
	require.NoError(t, models.FindByID(db, doc.ID, &updated))
	require.Equal(t, models.DocumentStatusCompleted, updated.Status)
	require.Greater(t, updated.ChunkCount, 0)
	require.NotNil(t, updated.ProcessedAt)
	require.Empty(t, updated.Error)
}

func TestHandleDocumentProcessRecordsFailure(t *testing.T) {
	db := newTestDB(t)

	doc := createDocument(t, db, filepath.Join(t.TempDir(), "missing.txt"), models.DocumentStatusPending)

	task, err := tasks.NewDocumentProcessTask(doc.ID)
	require.NoError(t, err)

	// The failure is recorded on the record, not surfaced to asynq
	require.NoError(t, HandleDocumentProcess(context.Background(), task, db, zerolog.Nop()))

	var updated models.Document
	require.NoError(t, models.FindByID(db, doc.ID, &updated))
	require.Equal(t, models.DocumentStatusFailed, updated.Status)
	require.NotEmpty(t, updated.Error)
}

func TestHandleDocumentProcessSkipsDeleted(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewDocumentProcessTask("01GONE")
	require.NoError(t, err)

	require.NoError(t, HandleDocumentProcess(context.Background(), task, db, zerolog.Nop()))
}

func TestHandleDocumentCleanupRemovesStaleFailures(t *testing.T) {
	db := newTestDB(t)

	dir := t.TempDir()
	stalePath := filepath.Join(dir, "stale.txt")
	require.NoError(t, os.WriteFile(stalePath, []byte("x"), 0644))

	stale := createDocument(t, db, stalePath, models.DocumentStatusFailed)
	fresh := createDocument(t, db, filepath.Join(dir, "fresh.txt"), models.DocumentStatusFailed)
	completed := createDocument(t, db, filepath.Join(dir, "done.txt"), models.DocumentStatusCompleted)

	// Age the stale document past the retention window
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.Document{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", old).Error)
	require.NoError(t, db.Model(&models.Document{}).Where("id = ?", completed.ID).
		UpdateColumn("updated_at", old).Error)

	cfg := &config.Config{
		Uploads: config.UploadConfig{FailedRetention: 24 * time.Hour},
	}

	task, err := tasks.NewDocumentCleanupTask()
	require.NoError(t, err)

	require.NoError(t, HandleDocumentCleanup(context.Background(), task, db, cfg, zerolog.Nop()))

	var count int64
	require.NoError(t, db.Model(&models.Document{}).Where("id = ?", stale.ID).Count(&count).Error)
	require.Equal(t, int64(0), count, "stale failed document should be deleted")

	_, err = os.Stat(stalePath)
	require.True(t, os.IsNotExist(err), "stored file should be removed")

	// A recent failure and an old completed document both survive
	require.NoError(t, db.Model(&models.Document{}).Where("id = ?", fresh.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Document{}).Where("id = ?", completed.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestChunkFileSplitsParagraphs(t *testing.T) {
	dir := t.TempDir()

	// Two large paragraphs, each big enough to stand alone
	var content []byte
	for i := 0; i < 200; i++ {
		content = append(content, []byte("Some sentence that repeats to fill the paragraph out.\n")...)
	}
	content = append(content, '\n')
	for i := 0; i < 200; i++ {
		content = append(content, []byte("Another sentence that repeats to fill the paragraph.\n")...)
	}

	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, content, 0644))

	chunks, err := chunkFile(context.Background(), path)
	require.NoError(t, err)
	require.Greater(t, chunks, 1)
}

func TestChunkFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := chunkFile(context.Background(), path)
	require.Error(t, err)
}

func TestParseCleanupSchedule(t *testing.T) {
	require.NotNil(t, parseCleanupSchedule("0 * * * *"))
	require.Nil(t, parseCleanupSchedule(""))
	require.Nil(t, parseCleanupSchedule("not a cron line"))
}
