package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-delivery-api/internal/models"
)

func TestUploadImages(t *testing.T) {
	f := newFixture(t, ImageOptions{Bucket: "photos"})
	ctx := context.Background()

	gallery := models.NewGallery("ROSE2025B", "Rose", fixedNow, time.Hour)
	gallery.PasswordHash = "x"
	require.NoError(t, f.repos.Galleries().Create(ctx, gallery))

	result, err := f.images.Upload(ctx, &UploadImagesRequest{
		GalleryCode: "ROSE2025B",
		Images: []ImageUpload{
			{FileName: "first.jpg", Content: "data:image/jpeg;base64," + encoded("jpeg-bytes")},
			{Content: "%%% not base64"},
			{Content: encoded("raw")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Uploaded)
	require.Len(t, result.Images, 3)

	first := result.Images[0]
	assert.True(t, first.Success)
	assert.Equal(t, "first.jpg", first.FileName)
	assert.Regexp(t, `^IMG-[0-9A-F]{8}$`, first.ImageID)
	assert.Equal(t, "galleries/ROSE2025B/"+first.ImageID+".jpg", first.S3Key)

	data, err := f.objects.Get(ctx, first.S3Key)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "first.jpg", f.objects.Metadata(first.S3Key)["original_name"])
	assert.Equal(t, "ROSE2025B", f.objects.Metadata(first.S3Key)["gallery"])

	assert.False(t, result.Images[1].Success)
	assert.Equal(t, "image_1.jpg", result.Images[1].FileName)
	assert.Contains(t, result.Images[1].Error, "base64")

	assert.Equal(t, "image_2.jpg", result.Images[2].FileName)

	stored, err := f.repos.Galleries().GetByCode(ctx, "ROSE2025B")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ImageCount)
}

func TestUploadImagesRejectsBadRequests(t *testing.T) {
	f := newFixture(t, ImageOptions{})

	_, err := f.images.Upload(context.Background(), &UploadImagesRequest{Images: []ImageUpload{{Content: encoded("a")}}})
	assert.ErrorIs(t, err, ErrGalleryCodeRequired)

	_, err = f.images.Upload(context.Background(), &UploadImagesRequest{GalleryCode: "A"})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestUploadImagesStorageFailure(t *testing.T) {
	f := newFixture(t, ImageOptions{})
	f.objects.FailOn("Put", errors.New("bucket gone"))

	result, err := f.images.Upload(context.Background(), &UploadImagesRequest{
		GalleryCode: "ROSE2025B",
		Images:      []ImageUpload{{Content: encoded("a")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Uploaded)
	assert.Contains(t, result.Images[0].Error, "failed to store image")

	views, err := f.images.List(context.Background(), "ROSE2025B")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func seedImage(t *testing.T, f *fixture, img *models.Image) {
	t.Helper()
	require.NoError(t, f.repos.Images().Create(context.Background(), img))
}

func TestListImagesOrderingAndURLs(t *testing.T) {
	f := newFixture(t, ImageOptions{Bucket: "photos", PresignExpiry: time.Minute})
	ctx := context.Background()

	early := fixedNow.Add(-time.Hour)
	seedImage(t, f, models.NewImage("G1", "IMG-B", "b.jpg", "galleries/G1/IMG-B.jpg", 1, fixedNow))
	seedImage(t, f, models.NewImage("G1", "IMG-C", "c.jpg", "galleries/G1/IMG-C.jpg", 1, early))
	seedImage(t, f, &models.Image{GalleryCode: "G1", ImageID: "IMG-A", S3URL: "https://cdn.example.com/a.jpg"})
	seedImage(t, f, &models.Image{GalleryCode: "G1", ImageID: "IMG-D"})

	views, err := f.images.List(ctx, "G1")
	require.NoError(t, err)
	require.Len(t, views, 4)

	ids := []string{views[0].ImageID, views[1].ImageID, views[2].ImageID, views[3].ImageID}
	assert.Equal(t, []string{"IMG-C", "IMG-B", "IMG-A", "IMG-D"}, ids)

	require.NotNil(t, views[0].URL)
	assert.Equal(t, "mock://storage/galleries/G1/IMG-C.jpg?expires=60", *views[0].URL)
	require.NotNil(t, views[0].UploadedAt)
	assert.Equal(t, "2025-06-01T11:00:00Z", *views[0].UploadedAt)

	require.NotNil(t, views[2].URL)
	assert.Equal(t, "https://cdn.example.com/a.jpg", *views[2].URL)
	assert.Nil(t, views[2].UploadedAt)

	require.NotNil(t, views[3].URL)
	assert.Equal(t, "mock://storage/images/G1/IMG-D.jpg?expires=60", *views[3].URL)
}

func TestListImagesPublicAndMissingURLs(t *testing.T) {
	public := newFixture(t, ImageOptions{Bucket: "photos"})
	seedImage(t, public, &models.Image{GalleryCode: "G2", ImageID: "IMG-A", S3Key: "galleries/G2/IMG-A.jpg"})

	views, err := public.images.List(context.Background(), "G2")
	require.NoError(t, err)
	require.NotNil(t, views[0].URL)
	assert.Equal(t, "https://photos.s3.amazonaws.com/galleries/G2/IMG-A.jpg", *views[0].URL)

	noBucket := newFixture(t, ImageOptions{PresignExpiry: time.Minute})
	seedImage(t, noBucket, &models.Image{GalleryCode: "G2", ImageID: "IMG-A", S3Key: "galleries/G2/IMG-A.jpg"})

	views, err = noBucket.images.List(context.Background(), "G2")
	require.NoError(t, err)
	assert.Nil(t, views[0].URL)
}

func TestListImagesPresignFailure(t *testing.T) {
	f := newFixture(t, ImageOptions{Bucket: "photos", PresignExpiry: time.Minute})
	seedImage(t, f, &models.Image{GalleryCode: "G3", ImageID: "IMG-A", S3Key: "galleries/G3/IMG-A.jpg"})
	f.objects.FailOn("SignURL", errors.New("no credentials"))

	views, err := f.images.List(context.Background(), "G3")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].URL)
}

func TestListImagesRequiresCode(t *testing.T) {
	f := newFixture(t, ImageOptions{})
	_, err := f.images.List(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrGalleryCodeRequired)
}

func TestDecodeImageContent(t *testing.T) {
	data, err := decodeImageContent("data:image/png;base64," + encoded("png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = decodeImageContent("data:image/png;base64,")
	assert.Error(t, err)

	_, err = decodeImageContent(strings.Repeat("!", 8))
	assert.Error(t, err)
}
