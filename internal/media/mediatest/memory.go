// Package mediatest provides an in-memory media.Store for tests.
package mediatest

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Store struct {
	mu      sync.Mutex
	next    int
	Uploads []string
	Deletes []string
	// UploadErr and DeleteErr, when set, fail the matching call.
	UploadErr error
	DeleteErr error
}

func (s *Store) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	s.next++
	url := fmt.Sprintf("https://images.test/%d/%s", s.next, filename)
	s.Uploads = append(s.Uploads, url)
	return url, nil
}

func (s *Store) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes = append(s.Deletes, url)
	return s.DeleteErr
}

func (s *Store) DeleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Deletes)
}
