package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxImageBytes caps decoded uploads.
const MaxImageBytes = 5 << 20

// ObjectStore is the blob storage the images end up in.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// ImageService decodes data URI uploads and stores them in an ObjectStore.
type ImageService struct {
	store ObjectStore
}

var _ ImageStore = (*ImageService)(nil)

func NewImageService(store ObjectStore) *ImageService {
	return &ImageService{store: store}
}

// Save stores the image under folder and returns its public URL.
func (s *ImageService) Save(ctx context.Context, folder, dataURI string) (string, error) {
	data, contentType, ext, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", folder, uuid.NewString(), ext)
	url, err := s.store.PutObject(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}

	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("image stored")
	return url, nil
}

// Remove deletes a previously saved image. URLs that do not belong to the
// store are ignored.
func (s *ImageService) Remove(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return nil
	}
	return s.store.DeleteObject(ctx, key)
}

// removeQuietly is used for cleanup paths where failure only warrants a log line.
func removeQuietly(ctx context.Context, images ImageStore, url string) {
	if err := images.Remove(ctx, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to remove stored image")
	}
}

func isDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// decodeDataURI parses "data:image/<type>;base64,<payload>".
func decodeDataURI(uri string) ([]byte, string, string, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, "", "", ErrInvalidImage
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return nil, "", "", ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", "", ErrInvalidImage
	}
	if len(data) > MaxImageBytes {
		return nil, "", "", ErrImageTooLarge
	}

	// trust the bytes, not the declared type
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", "", ErrInvalidImage
	}

	ext := strings.TrimPrefix(contentType, "image/")
	if ext == "jpeg" {
		ext = "jpg"
	}
	return data, contentType, ext, nil
}
