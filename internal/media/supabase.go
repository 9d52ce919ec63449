package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStore keeps images in a public Supabase Storage bucket.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
	folder string
}

func NewSupabaseStore(client *supabase.Client, bucket, folder string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket, folder: folder}
}

func (s *SupabaseStore) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	objectPath := objectName(filename)
	if s.folder != "" {
		objectPath = s.folder + "/" + objectPath
	}
	ct := contentType(filename)
	if _, err := s.client.Storage.UploadFile(s.bucket, objectPath, file, storage_go.FileOptions{ContentType: &ct}); err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", filename, err)
	}
	return s.client.Storage.GetPublicUrl(s.bucket, objectPath).SignedURL, nil
}

func (s *SupabaseStore) Delete(_ context.Context, imageURL string) error {
	objectPath, err := ObjectPathFromURL(imageURL, s.bucket)
	if err != nil {
		return err
	}
	if _, err := s.client.Storage.RemoveFile(s.bucket, []string{objectPath}); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", objectPath, err)
	}
	return nil
}

// ObjectPathFromURL strips the public-object prefix of bucket from a storage URL.
func ObjectPathFromURL(imageURL, bucket string) (string, error) {
	marker := "/object/public/" + bucket + "/"
	_, objectPath, found := strings.Cut(imageURL, marker)
	if !found || objectPath == "" {
		return "", ErrNotManaged
	}
	if i := strings.IndexAny(objectPath, "?#"); i >= 0 {
		objectPath = objectPath[:i]
	}
	return objectPath, nil
}
