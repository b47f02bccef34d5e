package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/recipebook/apiserver/internal/storage"
	"github.com/recipebook/apiserver/types"
)

const (
	// MaxAvatarBytes caps a single avatar upload.
	MaxAvatarBytes = 5 << 20

	avatarPrefix = "avatars/"
	mediaPath    = "/media/"
)

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarService stores profile images and points users at them.
type AvatarService struct {
	users         UserRepository
	storage       storage.ObjectStorage
	publicBaseURL string
	newID         func() string
}

func NewAvatarService(users UserRepository, objects storage.ObjectStorage, publicBaseURL string) *AvatarService {
	return &AvatarService{
		users:         users,
		storage:       objects,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		newID:         uuid.NewString,
	}
}

// Upload stores data as userID's avatar and updates the user's image_url.
func (s *AvatarService) Upload(ctx context.Context, userID int, data []byte) (types.User, error) {
	if len(data) == 0 {
		return types.User{}, NewValidationError(MsgImageRequired)
	}

	mtype := mimetype.Detect(data)
	contentType := mtype.String()
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return types.User{}, NewValidationError(MsgImageType)
	}

	key := fmt.Sprintf("%s%d/%s%s", avatarPrefix, userID, s.newID(), ext)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.User{}, fmt.Errorf("store avatar: %w", err)
	}

	user, err := s.users.UpdateImageURL(ctx, userID, s.publicBaseURL+mediaPath+key)
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return types.User{}, fmt.Errorf("update image url: %w", err)
	}
	return user, nil
}

// Open streams a stored avatar. Keys outside the avatar prefix are
// reported as missing.
func (s *AvatarService) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !strings.HasPrefix(key, avatarPrefix) || strings.Contains(key, "..") {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return s.storage.Get(ctx, key)
}
