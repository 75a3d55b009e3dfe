package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestImageSave(t *testing.T) {
	store := &testhelpers.MockObjectStore{}
	store.On("PutObject", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "recipes/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, "image/png").Return("http://media.test/recipes/x.png", nil)

	url, err := service.NewImageService(store).Save(context.Background(), "recipes", testhelpers.PNGDataURI)
	require.NoError(t, err)
	assert.Equal(t, "http://media.test/recipes/x.png", url)
	store.AssertExpectations(t)
}

func TestImageSaveRejectsBadInput(t *testing.T) {
	images := service.NewImageService(&testhelpers.MockObjectStore{})

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "plain url", input: "http://example.com/a.png", want: service.ErrInvalidImage},
		{name: "not base64", input: "data:image/png;base64,!!!", want: service.ErrInvalidImage},
		{name: "text payload", input: "data:image/png;base64,aGVsbG8gd29ybGQ=", want: service.ErrInvalidImage},
		{name: "wrong media type", input: "data:text/plain;base64,aGVsbG8=", want: service.ErrInvalidImage},
		{name: "too large", input: "data:image/png;base64," + strings.Repeat("A", (service.MaxImageBytes/3+2)*4), want: service.ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := images.Save(context.Background(), "avatars", tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestImageSavePropagatesStoreErrors(t *testing.T) {
	store := &testhelpers.MockObjectStore{}
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket unavailable"))

	_, err := service.NewImageService(store).Save(context.Background(), "avatars", testhelpers.PNGDataURI)
	assert.EqualError(t, err, "bucket unavailable")
}

func TestImageRemove(t *testing.T) {
	store := &testhelpers.MockObjectStore{}
	store.On("KeyFromURL", "http://media.test/avatars/a.png").Return("avatars/a.png", true)
	store.On("KeyFromURL", "http://elsewhere.test/a.png").Return("", false)
	store.On("DeleteObject", mock.Anything, "avatars/a.png").Return(nil).Once()
	images := service.NewImageService(store)

	require.NoError(t, images.Remove(context.Background(), "http://media.test/avatars/a.png"))
	require.NoError(t, images.Remove(context.Background(), "http://elsewhere.test/a.png"))
	require.NoError(t, images.Remove(context.Background(), ""))
	store.AssertExpectations(t)
}
