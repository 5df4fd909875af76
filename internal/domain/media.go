package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Media kinds derived from the MIME type.
const (
	MediaKindImage = "image"
	MediaKindAudio = "audio"
	MediaKindVideo = "video"
)

const mb = 1024 * 1024

// AllowedMediaTypes lists the accepted MIME types per kind.
var AllowedMediaTypes = map[string][]string{
	MediaKindImage: {"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
	MediaKindAudio: {"audio/mpeg", "audio/mp3", "audio/wav", "audio/ogg", "audio/m4a", "audio/aac"},
	MediaKindVideo: {"video/mp4", "video/webm", "video/avi", "video/quicktime", "video/x-msvideo"},
}

// MaxMediaSize is the largest accepted file size in bytes per kind.
var MaxMediaSize = map[string]int64{
	MediaKindImage: 10 * mb,
	MediaKindAudio: 50 * mb,
	MediaKindVideo: 100 * mb,
}

// MediaKind returns the kind whose allow-list contains contentType, or "" when none does.
func MediaKind(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for kind, types := range AllowedMediaTypes {
		if slices.Contains(types, contentType) {
			return kind
		}
	}
	return ""
}

// Media is the metadata of a file stored by an external provider.
// swagger:model Media
type Media struct {
	ID           int64      `json:"id"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name"`
	ContentType  string     `json:"content_type"`
	FileSize     int64      `json:"file_size"`
	FileURL      string     `json:"file_url"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	UserID       int64      `json:"-"`
	Owner        *PostOwner `json:"owner,omitempty"`
}

// Kind returns the media kind of m.
func (m *Media) Kind() string {
	return MediaKind(m.ContentType)
}

// MediaInput carries the metadata of an uploaded file.
type MediaInput struct {
	Filename     string
	OriginalName string
	ContentType  string
	FileSize     int64
	FileURL      string
}

// MediaRepository defines the interface for media metadata storage
type MediaRepository interface {
	Create(ctx context.Context, m *Media) error
	GetByID(ctx context.Context, id int64) (*Media, error)
	ListByUser(ctx context.Context, userID int64, p PaginationParams) ([]*Media, error)
	// CountReferences returns how many posts point at the media row.
	CountReferences(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
	// DeleteOrphans removes media no post references and returns how many rows went.
	DeleteOrphans(ctx context.Context) (int64, error)
}

// MediaService defines the business logic for media metadata.
type MediaService interface {
	Register(ctx context.Context, actor *User, in MediaInput) (*Media, error)
	GetInfo(ctx context.Context, id int64) (*Media, error)
	ListMine(ctx context.Context, actor *User, p PaginationParams) ([]*Media, error)
	Delete(ctx context.Context, actor *User, id int64) error
	CleanupOrphans(ctx context.Context) (int64, error)
}
