package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		err  bool
	}{
		{"versioned", "https://res.cloudinary.com/demo/image/upload/v1712345678/events/abc.jpg", "events/abc", false},
		{"unversioned", "https://res.cloudinary.com/demo/image/upload/events/abc.png", "events/abc", false},
		{"transformed", "https://res.cloudinary.com/demo/image/upload/c_fill,w_300/v99/events/abc.webp", "events/abc", false},
		{"no extension", "https://res.cloudinary.com/demo/image/upload/v1/abc", "abc", false},
		{"foreign url", "https://example.com/pics/abc.jpg", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicIDFromURL(tt.url)
			if tt.err {
				assert.ErrorIs(t, err, ErrNotManaged)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectPathFromURL(t *testing.T) {
	got, err := ObjectPathFromURL("https://x.supabase.co/storage/v1/object/public/posters/events/a.png?t=1", "posters")
	require.NoError(t, err)
	assert.Equal(t, "events/a.png", got)

	_, err = ObjectPathFromURL("https://x.supabase.co/storage/v1/object/public/other/a.png", "posters")
	assert.ErrorIs(t, err, ErrNotManaged)
}

func TestObjectName(t *testing.T) {
	name := objectName("Poster.PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotEqual(t, name, objectName("Poster.PNG"))
	assert.Equal(t, "image/png", contentType("a.PNG"))
	assert.Equal(t, "image/jpeg", contentType("a"))
}
