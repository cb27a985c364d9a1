package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageStore keeps the most recent chart upload per chat: one file per chat
// at a path derived from the chat id, overwritten on every new upload.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if dir == "" {
		dir = "imgs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

func (s *ImageStore) Path(chatID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d_latest_chart.png", chatID))
}

// Save overwrites the stored chart for the chat. The write goes through a
// temp file and a rename so concurrent uploads from the same chat end as
// last-write-wins, never as interleaved bytes.
func (s *ImageStore) Save(chatID int64, data []byte) (string, error) {
	target := s.Path(chatID)

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("%d_upload_*", chatID))
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("store image: %w", err)
	}
	return target, nil
}
