// Package repotest holds behaviour checks shared by every repository backend.
package repotest

import (
	"context"
	"sort"
	"testing"
	"time"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

// Gallery returns a valid gallery created at the given time
func Gallery(code string, createdAt time.Time) *models.Gallery {
	g := models.NewGallery(code, "Test Client", createdAt, 90*24*time.Hour)
	g.PasswordHash = "$2a$10$abcdefghijklmnopqrstuu"
	g.Email = "client@example.com"
	return g
}

// Run exercises a fresh repository manager returned by newManager
func Run(t *testing.T, newManager func(t *testing.T) repositories.RepositoryManager) {
	t.Run("Galleries", func(t *testing.T) { galleries(t, newManager(t)) })
	t.Run("GalleryCutoff", func(t *testing.T) { cutoff(t, newManager(t)) })
	t.Run("Images", func(t *testing.T) { images(t, newManager(t)) })
	t.Run("Contacts", func(t *testing.T) { contacts(t, newManager(t)) })
	t.Run("Curation", func(t *testing.T) { curation(t, newManager(t)) })
	t.Run("Health", func(t *testing.T) {
		assert.NoError(t, newManager(t).Health(context.Background()))
	})
}

func galleries(t *testing.T, m repositories.RepositoryManager) {
	ctx := context.Background()
	repo := m.Galleries()

	g := Gallery("SMITH2025A", base)
	g.Phone = "555-0100"
	g.BookingDate = "2025-02-01"
	require.NoError(t, repo.Create(ctx, g))

	err := repo.Create(ctx, Gallery("SMITH2025A", base))
	assert.True(t, repositories.IsDuplicate(err), "expected duplicate error, got %v", err)

	got, err := repo.GetByCode(ctx, "SMITH2025A")
	require.NoError(t, err)
	assert.Equal(t, g.ClientName, got.ClientName)
	assert.Equal(t, g.PasswordHash, got.PasswordHash)
	assert.Equal(t, g.Phone, got.Phone)
	assert.Equal(t, g.BookingDate, got.BookingDate)
	assert.Equal(t, models.GalleryStatusPending, got.Status)
	assert.True(t, g.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", g.CreatedAt, got.CreatedAt)
	assert.True(t, g.ExpiresAt.Equal(got.ExpiresAt), "expiresAt %v != %v", g.ExpiresAt, got.ExpiresAt)

	require.NoError(t, repo.AddImages(ctx, "SMITH2025A", 3))
	got, err = repo.GetByCode(ctx, "SMITH2025A")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ImageCount)

	assert.True(t, repositories.IsNotFound(repo.AddImages(ctx, "NOPE2025A", 1)))

	_, err = repo.GetByCode(ctx, "NOPE2025A")
	assert.True(t, repositories.IsNotFound(err), "expected not found, got %v", err)

	invalid := Gallery("", base)
	assert.True(t, repositories.IsValidation(repo.Create(ctx, invalid)))

	require.NoError(t, repo.Delete(ctx, "SMITH2025A"))
	_, err = repo.GetByCode(ctx, "SMITH2025A")
	assert.True(t, repositories.IsNotFound(err))
}

func cutoff(t *testing.T, m repositories.RepositoryManager) {
	ctx := context.Background()
	repo := m.Galleries()

	require.NoError(t, repo.Create(ctx, Gallery("OLD2024A", base.Add(-100*24*time.Hour))))
	require.NoError(t, repo.Create(ctx, Gallery("EDGE2024A", base.Add(-90*24*time.Hour))))
	require.NoError(t, repo.Create(ctx, Gallery("NEW2025A", base.Add(-time.Hour))))

	old, err := repo.ListCreatedBefore(ctx, base.Add(-90*24*time.Hour))
	require.NoError(t, err)

	var codes []string
	for _, g := range old {
		codes = append(codes, g.GalleryCode)
	}
	assert.Equal(t, []string{"OLD2024A"}, codes)
}

func images(t *testing.T, m repositories.RepositoryManager) {
	ctx := context.Background()
	repo := m.Images()

	up := base
	require.NoError(t, repo.Create(ctx, models.NewImage("SMITH2025A", "IMG-00000001", "a.jpg", "galleries/SMITH2025A/IMG-00000001.jpg", 10, up)))
	require.NoError(t, repo.Create(ctx, &models.Image{GalleryCode: "SMITH2025A", ImageID: "IMG-00000002", S3URL: "https://cdn.example.com/b.jpg"}))
	require.NoError(t, repo.Create(ctx, models.NewImage("OTHER2025A", "IMG-00000003", "c.jpg", "k", 1, up)))

	list, err := repo.ListByGallery(ctx, "SMITH2025A")
	require.NoError(t, err)
	require.Len(t, list, 2)
	sort.Slice(list, func(i, j int) bool { return list[i].ImageID < list[j].ImageID })

	assert.Equal(t, "a.jpg", list[0].FileName)
	assert.Equal(t, int64(10), list[0].Size)
	assert.False(t, list[0].Selected)
	require.NotNil(t, list[0].UploadDate)
	assert.True(t, up.Equal(*list[0].UploadDate))
	assert.Nil(t, list[1].UploadDate)
	assert.Equal(t, "https://cdn.example.com/b.jpg", list[1].S3URL)

	n, err := repo.DeleteByGallery(ctx, "SMITH2025A")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err = repo.ListByGallery(ctx, "SMITH2025A")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.ListByGallery(ctx, "OTHER2025A")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func contacts(t *testing.T, m repositories.RepositoryManager) {
	ctx := context.Background()
	repo := m.Contacts()

	c := models.NewContact("Jane", "jane@example.com", "555", "Wedding", "Hi there", base)
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, *c, *got)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, repositories.IsNotFound(err))
}

func curation(t *testing.T, m repositories.RepositoryManager) {
	ctx := context.Background()
	repo := m.Curation()

	first := models.NewCurationRecord("g1", "restore", 100)
	first.AssetIDs = []string{"a", "b", "a"}
	require.NoError(t, repo.Record(ctx, first))

	second := models.NewCurationRecord("g1", "trash", 200)
	second.AssetIDs = []string{"c"}
	second.SetTrashTTL(7)
	require.NoError(t, repo.Record(ctx, second))

	assert.True(t, repositories.IsValidation(repo.Record(ctx, models.NewCurationRecord("g1", "trash", 300))))

	records, err := repo.ListByGallery(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	sort.Slice(records, func(i, j int) bool { return records[i].At < records[j].At })

	assert.Equal(t, []string{"a", "b", "a"}, records[0].AssetIDs)
	assert.Equal(t, "trash", records[1].Operation)
	assert.Equal(t, 7, records[1].TTLDays)
	assert.Equal(t, second.ExpiresAt, records[1].ExpiresAt)

	records, err = repo.ListByGallery(ctx, "g2")
	require.NoError(t, err)
	assert.Empty(t, records)
}
