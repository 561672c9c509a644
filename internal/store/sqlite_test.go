package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ot-assessment-server/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewSQLiteStore(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	return store
}

func sampleAssessment(id string) *domain.StoredAssessment {
	return &domain.StoredAssessment{
		ID: id,
		Record: domain.AssessmentRecord{
			"demographics": map[string]any{
				"firstName": "Sam",
				"lastName":  "Carter",
			},
			"functionalAssessment": map[string]any{
				"transfers": map[string]any{
					"bedMobility": "moderate_assist",
				},
			},
		},
	}
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
}

func TestSQLiteStore_SaveAndGetAssessment(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	assessment := sampleAssessment("a-1")

	require.NoError(t, store.SaveAssessment(ctx, assessment))
	assert.False(t, assessment.CreatedAt.IsZero(), "CreatedAt should be set")
	assert.False(t, assessment.UpdatedAt.IsZero(), "UpdatedAt should be set")

	got, err := store.GetAssessment(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a-1", got.ID)
	assert.Equal(t, "Sam", got.Record["demographics"].(map[string]any)["firstName"])
}

func TestSQLiteStore_SaveAssessment_Update(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	assessment := sampleAssessment("a-1")
	require.NoError(t, store.SaveAssessment(ctx, assessment))
	created := assessment.CreatedAt

	time.Sleep(10 * time.Millisecond)

	assessment.Record["equipment"] = map[string]any{"current": []any{"walker"}}
	require.NoError(t, store.SaveAssessment(ctx, assessment))

	got, err := store.GetAssessment(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Contains(t, got.Record, "equipment")
	assert.Equal(t, created.Unix(), got.CreatedAt.Unix(), "CreatedAt survives updates")

	count, err := store.CountAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteStore_GetAssessment_Missing(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	got, err := store.GetAssessment(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListAndDeleteAssessments(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveAssessment(ctx, sampleAssessment("a-1")))
	require.NoError(t, store.SaveAssessment(ctx, sampleAssessment("a-2")))

	all, err := store.ListAssessments(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.DeleteAssessment(ctx, "a-1"))

	count, err := store.CountAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteStore_Reports(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	report := &domain.GeneratedReport{
		ID:           "r-1",
		AssessmentID: "a-1",
		TemplateName: "ot-medico-legal",
		ClientName:   "Sam Carter",
		Content:      "# Occupational Therapy Assessment Report",
	}

	require.NoError(t, store.SaveReport(ctx, report))
	assert.False(t, report.CreatedAt.IsZero())

	got, err := store.GetReport(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sam Carter", got.ClientName)
	assert.Equal(t, report.Content, got.Content)

	missing, err := store.GetReport(ctx, "r-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byAssessment, err := store.ListReports(ctx, "a-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, byAssessment, 1)

	other, err := store.ListReports(ctx, "a-other", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, other)

	all, err := store.ListReports(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStore_ExportImportJSON(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveAssessment(ctx, sampleAssessment("a-1")))
	require.NoError(t, store.SaveAssessment(ctx, sampleAssessment("a-2")))

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))
	assert.Contains(t, buf.String(), "\"a-1\"")

	// Import into a fresh store; one entry pre-exists and is skipped.
	target := createTestStore(t)
	defer target.Close()
	require.NoError(t, target.SaveAssessment(ctx, sampleAssessment("a-2")))

	imported, skipped, err := target.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)

	count, err := target.CountAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
