package gallery

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rahabenico/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GalleryImageModel{}))
	return db
}

// fakeStore keeps objects in a map so service paths can run without a
// bucket.
type fakeStore struct {
	objects map[string]bool
}

func newFakeStore(keys ...string) *fakeStore {
	fs := &fakeStore{objects: make(map[string]bool)}
	for _, k := range keys {
		fs.objects[k] = true
	}
	return fs
}

func (f *fakeStore) Put(_ context.Context, key string, _ io.Reader, _ string) error {
	f.objects[key] = true
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) bool { return f.objects[key] }

func (f *fakeStore) URL(_ context.Context, key string) (string, error) {
	if !f.objects[key] {
		return "", errors.New("no such object")
	}
	return "https://bucket.test/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func newTestService(t *testing.T, store objectStore) *Service {
	t.Helper()
	return NewService(newTestDB(t), store, zap.NewNop())
}

func TestAddRejectsDuplicateKey(t *testing.T) {
	svc := newTestService(t, newFakeStore("gallery/a.jpg"))
	ctx := context.Background()

	_, err := svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	assert.ErrorIs(t, err, ErrImageExists)
}

func TestAddRejectsMissingObject(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.Add(context.Background(), &AddImageDTO{StorageKey: "gallery/ghost.jpg"})
	assert.ErrorIs(t, err, ErrObjectMissing)
}

func TestAddWithoutStorage(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Add(context.Background(), &AddImageDTO{StorageKey: "gallery/a.jpg"})
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestRemoveThenReAdd(t *testing.T) {
	store := newFakeStore("gallery/a.jpg")
	svc := newTestService(t, store)
	ctx := context.Background()

	img, err := svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, img.ID))
	assert.False(t, store.objects["gallery/a.jpg"], "object removed from bucket")

	// The key must be free again: the delete has to drop the physical
	// row, not leave it soft-deleted under the unique index.
	store.objects["gallery/a.jpg"] = true
	again, err := svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	require.NoError(t, err)
	assert.NotEqual(t, img.ID, again.ID)
}

func TestBulkAddSkipsAndCollects(t *testing.T) {
	svc := newTestService(t, newFakeStore("gallery/a.jpg", "gallery/b.jpg"))
	ctx := context.Background()

	_, err := svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	require.NoError(t, err)

	res, err := svc.BulkAdd(ctx, []AddImageDTO{
		{StorageKey: "gallery/a.jpg"},
		{StorageKey: "gallery/b.jpg"},
		{StorageKey: "gallery/ghost.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gallery/b.jpg"}, res.Added)
	assert.Equal(t, []string{"gallery/a.jpg"}, res.Skipped)
	assert.Contains(t, res.Errors, "gallery/ghost.jpg")
}

func TestListOrdering(t *testing.T) {
	store := newFakeStore("gallery/a.jpg", "gallery/b.jpg", "gallery/c.jpg")
	svc := newTestService(t, store)
	ctx := context.Background()

	two := 2
	one := 1
	_, err := svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/b.jpg", Order: &two})
	require.NoError(t, err)
	_, err = svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/c.jpg", Order: &one})
	require.NoError(t, err)

	images, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "gallery/c.jpg", images[0].StorageKey)
	assert.Equal(t, "gallery/b.jpg", images[1].StorageKey)
	assert.Equal(t, "gallery/a.jpg", images[2].StorageKey)
}

func TestListDropsVanishedObjects(t *testing.T) {
	store := newFakeStore("gallery/a.jpg", "gallery/b.jpg")
	svc := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/a.jpg"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, &AddImageDTO{StorageKey: "gallery/b.jpg"})
	require.NoError(t, err)

	delete(store.objects, "gallery/b.jpg")

	images, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "gallery/a.jpg", images[0].StorageKey)
}
