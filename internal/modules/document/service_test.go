package document

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docvault/internal/database"
	"docvault/internal/domain"
	"docvault/internal/repository"
	"docvault/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	svc     *Service
	db      *gorm.DB
	blobDir string
	userID  int64
	depID   int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	blobDir := t.TempDir()
	blobs, err := storage.NewLocalStore(blobDir)
	require.NoError(t, err)

	dep := domain.Department{Name: "Finance"}
	require.NoError(t, db.Create(&dep).Error)

	userRepo := repository.NewUserRepository(db)
	user := domain.User{
		Username:     "alice",
		PasswordHash: "irrelevant",
		Role:         "employee",
		DepartmentID: &dep.ID,
	}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	docRepo := repository.NewDocumentRepository(db)
	return &testEnv{
		svc:     NewService(docRepo, userRepo, blobs),
		db:      db,
		blobDir: blobDir,
		userID:  user.ID,
		depID:   dep.ID,
	}
}

func (e *testEnv) upload(t *testing.T, title, tags, fileName, content string) *domain.Document {
	t.Helper()
	doc, err := e.svc.Upload(context.Background(), e.userID,
		UploadForm{Title: title, Tags: tags}, fileName, strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func tagNames(doc *domain.Document) []string {
	var names []string
	for _, tag := range doc.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func TestUpload_CreatesDocumentWithTagsAndFirstVersion(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Q1 Report", "finance, quarterly", "q1.txt", "numbers")

	assert.Equal(t, "Q1 Report", doc.Title)
	assert.ElementsMatch(t, []string{"finance", "quarterly"}, tagNames(doc))

	require.Len(t, doc.Versions, 1)
	v := doc.Versions[0]
	assert.Equal(t, 1, v.VersionNumber)
	assert.Equal(t, env.userID, v.UploadedBy)
	assert.Equal(t, "q1.txt", v.FileName)
	require.NotNil(t, doc.CurrentVersionID)
	assert.Equal(t, v.ID, *doc.CurrentVersionID)
}

func TestUpload_GrantsUploaderDepartmentAccess(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Q1 Report", "", "q1.txt", "numbers")

	perms := repository.NewPermissionRepository(env.db)
	ok, err := perms.Exists(context.Background(), doc.ID, env.depID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpload_DuplicateTagNamesCollapse(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Tagged", "a, a ,b,", "f.txt", "x")

	assert.ElementsMatch(t, []string{"a", "b"}, tagNames(doc))
}

func TestUpload_TagGetOrCreateIsIdempotentAcrossDocuments(t *testing.T) {
	env := newTestEnv(t)

	env.upload(t, "First", "shared", "a.txt", "x")
	env.upload(t, "Second", "shared", "b.txt", "y")

	var count int64
	require.NoError(t, env.db.Model(&domain.Tag{}).Where("name = ?", "shared").Count(&count).Error)
	assert.Equal(t, int64(1), count, "same trimmed name must map to one tag row")
}

func TestAttachVersion_AssignsNextNumberAndMovesPointer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.upload(t, "Handbook", "", "v1.txt", "first")
	firstVersionID := *doc.CurrentVersionID

	v2, err := env.svc.AttachVersion(ctx, doc.ID, env.userID, "v2.txt", strings.NewReader("second"))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)

	reloaded, err := env.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CurrentVersionID)
	assert.Equal(t, v2.ID, *reloaded.CurrentVersionID)

	versions, err := env.svc.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, firstVersionID, versions[0].ID, "old version row stays retrievable")
	assert.Equal(t, []int{1, 2}, []int{versions[0].VersionNumber, versions[1].VersionNumber})
}

func TestAttachVersion_UnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.AttachVersion(context.Background(), 9999, env.userID, "v.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	entries, readErr := os.ReadDir(env.blobDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no blob may be left behind for a rejected upload")
}

func TestGet_Missing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSearchByTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.upload(t, "Q1 Report", "finance", "q1.txt", "numbers")
	env.upload(t, "Meeting Notes", "", "notes.txt", "text")

	docs, err := env.svc.SearchByTitle(ctx, "Report")
	require.NoError(t, err)
	require.Len(t, docs, 1, "matching document appears exactly once")
	assert.Equal(t, doc.ID, docs[0].ID)

	docs, err = env.svc.SearchByTitle(ctx, "zzz-no-match")
	require.NoError(t, err)
	assert.Empty(t, docs, "no match is an empty list, not an error")
}

func TestListVersions_UnknownDocumentYieldsEmptyList(t *testing.T) {
	env := newTestEnv(t)

	versions, err := env.svc.ListVersions(context.Background(), 4242)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestDownload_Success(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Handbook", "", "handbook.txt", "the content")

	version, rc, err := env.svc.Download(context.Background(), doc.ID)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "handbook.txt", version.FileName)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "the content", string(data))
}

func TestDownload_MissingBlobIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Handbook", "", "handbook.txt", "the content")
	require.NoError(t, os.Remove(filepath.Join(env.blobDir, doc.Versions[0].FileKey)))

	_, _, err := env.svc.Download(context.Background(), doc.ID)
	assert.ErrorIs(t, err, ErrFileMissing)
}

func TestDownload_UnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Download(context.Background(), 777)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestPreview_TextFile(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Notes", "", "notes.txt", "plain text")

	version, mimeType, rc, err := env.svc.Preview(context.Background(), doc.ID, doc.Versions[0].ID)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "text/plain", mimeType)
	assert.Equal(t, doc.Versions[0].ID, version.ID)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(data))
}

func TestPreview_UnsupportedType(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Firmware", "", "payload.bin", "\x00\x01\x02")

	_, _, _, err := env.svc.Preview(context.Background(), doc.ID, doc.Versions[0].ID)
	assert.ErrorIs(t, err, ErrUnsupportedPreview)
}

func TestPreview_UnknownVersion(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "Notes", "", "notes.txt", "text")

	_, _, _, err := env.svc.Preview(context.Background(), doc.ID, 9999)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestPreview_VersionMustBelongToDocument(t *testing.T) {
	env := newTestEnv(t)

	first := env.upload(t, "First", "", "a.txt", "a")
	second := env.upload(t, "Second", "", "b.txt", "b")

	_, _, _, err := env.svc.Preview(context.Background(), first.ID, second.Versions[0].ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestAttachVersionThenGet_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.upload(t, "Handbook", "", "v1.txt", "first")
	v2, err := env.svc.AttachVersion(ctx, doc.ID, env.userID, "v2.txt", strings.NewReader("second"))
	require.NoError(t, err)

	reloaded, err := env.svc.Get(ctx, doc.ID)
	require.NoError(t, err)

	var ids []int64
	for _, v := range reloaded.Versions {
		ids = append(ids, v.ID)
	}
	assert.Contains(t, ids, v2.ID)
	require.NotNil(t, reloaded.CurrentVersionID)
	assert.Equal(t, v2.ID, *reloaded.CurrentVersionID)
}
