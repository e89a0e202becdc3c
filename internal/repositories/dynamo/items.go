package dynamo

import (
	"time"

	"gallery-delivery-api/internal/models"
)

// Timestamps are stored as fixed-width RFC3339 UTC strings so that string
// comparison in filter expressions orders them chronologically.
const timeLayout = time.RFC3339

// Layouts accepted when reading timestamps written by other tools
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type galleryItem struct {
	GalleryCode  string `dynamodbav:"galleryCode"`
	PasswordHash string `dynamodbav:"passwordHash"`
	ClientName   string `dynamodbav:"clientName"`
	Email        string `dynamodbav:"email,omitempty"`
	Phone        string `dynamodbav:"phone,omitempty"`
	SessionType  string `dynamodbav:"sessionType"`
	BookingDate  string `dynamodbav:"bookingDate,omitempty"`
	BookingTime  string `dynamodbav:"bookingTime,omitempty"`
	CreatedAt    string `dynamodbav:"createdAt"`
	ExpiresAt    string `dynamodbav:"expiresAt"`
	ImageCount   int    `dynamodbav:"imageCount"`
	Status       string `dynamodbav:"status"`
}

func newGalleryItem(g *models.Gallery) galleryItem {
	return galleryItem{
		GalleryCode:  g.GalleryCode,
		PasswordHash: g.PasswordHash,
		ClientName:   g.ClientName,
		Email:        g.Email,
		Phone:        g.Phone,
		SessionType:  g.SessionType,
		BookingDate:  g.BookingDate,
		BookingTime:  g.BookingTime,
		CreatedAt:    formatTime(g.CreatedAt),
		ExpiresAt:    formatTime(g.ExpiresAt),
		ImageCount:   g.ImageCount,
		Status:       string(g.Status),
	}
}

func (i galleryItem) model() *models.Gallery {
	g := &models.Gallery{
		GalleryCode:  i.GalleryCode,
		PasswordHash: i.PasswordHash,
		ClientName:   i.ClientName,
		Email:        i.Email,
		Phone:        i.Phone,
		SessionType:  i.SessionType,
		BookingDate:  i.BookingDate,
		BookingTime:  i.BookingTime,
		ImageCount:   i.ImageCount,
		Status:       models.GalleryStatus(i.Status),
	}
	g.CreatedAt, _ = parseTime(i.CreatedAt)
	g.ExpiresAt, _ = parseTime(i.ExpiresAt)
	return g
}

type imageItem struct {
	GalleryCode string `dynamodbav:"galleryCode"`
	ImageID     string `dynamodbav:"imageId"`
	FileName    string `dynamodbav:"fileName,omitempty"`
	S3Key       string `dynamodbav:"s3Key,omitempty"`
	S3URL       string `dynamodbav:"s3Url,omitempty"`
	UploadDate  string `dynamodbav:"uploadDate,omitempty"`
	// UploadedAt is read for records written under the older attribute name
	UploadedAt string `dynamodbav:"uploadedAt,omitempty"`
	Selected   bool   `dynamodbav:"selected"`
	Size       int64  `dynamodbav:"size"`
}

func newImageItem(img *models.Image) imageItem {
	item := imageItem{
		GalleryCode: img.GalleryCode,
		ImageID:     img.ImageID,
		FileName:    img.FileName,
		S3Key:       img.S3Key,
		S3URL:       img.S3URL,
		Selected:    img.Selected,
		Size:        img.Size,
	}
	if img.UploadDate != nil {
		item.UploadDate = formatTime(*img.UploadDate)
	}
	return item
}

func (i imageItem) model() *models.Image {
	img := &models.Image{
		GalleryCode: i.GalleryCode,
		ImageID:     i.ImageID,
		FileName:    i.FileName,
		S3Key:       i.S3Key,
		S3URL:       i.S3URL,
		Selected:    i.Selected,
		Size:        i.Size,
	}

	raw := i.UploadDate
	if raw == "" {
		raw = i.UploadedAt
	}
	if t, ok := parseTime(raw); ok {
		img.UploadDate = &t
	}
	return img
}

type contactItem struct {
	ID        string `dynamodbav:"id"`
	Timestamp int64  `dynamodbav:"timestamp"`
	Name      string `dynamodbav:"name"`
	Email     string `dynamodbav:"email"`
	Phone     string `dynamodbav:"phone"`
	Service   string `dynamodbav:"service"`
	Message   string `dynamodbav:"message"`
	Date      string `dynamodbav:"date"`
}

type curationItem struct {
	GalleryID string   `dynamodbav:"galleryId"`
	RecordID  string   `dynamodbav:"recordId"`
	Operation string   `dynamodbav:"operation"`
	FolderID  string   `dynamodbav:"folderId,omitempty"`
	AssetIDs  []string `dynamodbav:"assetIds"`
	TTLDays   int      `dynamodbav:"ttlDays,omitempty"`
	At        int64    `dynamodbav:"at"`
	// ExpiresAt is the table's TTL attribute
	ExpiresAt int64 `dynamodbav:"expiresAt,omitempty"`
}
