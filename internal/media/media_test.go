package media

import (
	"strings"
	"testing"

	"github.com/Baaaki/event-manager/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlyer_Validate(t *testing.T) {
	body := strings.NewReader("png bytes")

	testCases := []struct {
		name    string
		flyer   Flyer
		wantErr error
	}{
		{"valid png", Flyer{Filename: "a.png", ContentType: "image/png", Size: 9, Body: body}, nil},
		{"upper case type", Flyer{Filename: "a.JPG", ContentType: "IMAGE/JPEG", Size: 9, Body: body}, nil},
		{"not an image", Flyer{Filename: "a.pdf", ContentType: "application/pdf", Size: 9, Body: body}, ErrUnsupportedMedia},
		{"missing type", Flyer{Filename: "a", Size: 9, Body: body}, ErrUnsupportedMedia},
		{"too large", Flyer{Filename: "a.png", ContentType: "image/png", Size: 11, Body: body}, ErrFlyerTooLarge},
		{"empty", Flyer{Filename: "a.png", ContentType: "image/png", Size: 0, Body: body}, ErrEmptyFlyer},
		{"no body", Flyer{Filename: "a.png", ContentType: "image/png", Size: 9}, ErrEmptyFlyer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.flyer.Validate(10)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("Poster.PNG")
	assert.True(t, strings.HasPrefix(key, "flyers/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, ObjectKey("Poster.PNG"), "Keys must be unique per upload")

	assert.NotContains(t, ObjectKey("weird.ext with space"), " ")
	assert.Len(t, ObjectKey("noext"), len("flyers/")+36)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", PublicBaseURL(config.MinioConfig{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://s3.example.com", PublicBaseURL(config.MinioConfig{Endpoint: "s3.example.com", UseSSL: true}))
	assert.Equal(t, "https://cdn.example.com", PublicBaseURL(config.MinioConfig{Endpoint: "s3", PublicURL: "https://cdn.example.com/"}))
}

func TestMinioUploader_URLRoundTrip(t *testing.T) {
	uploader, err := NewMinioUploader(config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "flyers",
	})
	require.NoError(t, err)

	url := uploader.URLFor("flyers/abc.png")
	assert.Equal(t, "http://localhost:9000/flyers/flyers/abc.png", url)

	key, ok := uploader.KeyFor(url)
	assert.True(t, ok)
	assert.Equal(t, "flyers/abc.png", key)

	_, ok = uploader.KeyFor("https://elsewhere.example.com/flyers/abc.png")
	assert.False(t, ok)
}

func TestNewMinioUploader_RequiresConfig(t *testing.T) {
	_, err := NewMinioUploader(config.MinioConfig{})
	assert.Error(t, err)

	_, err = NewMinioUploader(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)

	_, err = NewMinioUploader(config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: " "})
	assert.Error(t, err)
}
