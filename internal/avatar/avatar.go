// SPDX-License-Identifier: MIT

// Package avatar manages user avatar images: Gravatar defaults for new
// accounts and locally stored uploads served from the data directory.
package avatar

import (
	"crypto/md5" // #nosec G501 -- the Gravatar protocol requires md5
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GravatarURL derives the Gravatar image URL for an email address.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized)) // #nosec G401 -- Gravatar hashing, not security
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}

// ErrUnsupportedType is returned for uploads that are not recognized images.
var ErrUnsupportedType = errors.New("unsupported image type")

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Store persists uploaded avatars under <dir> and serves them back.
type Store struct {
	dir string
}

// NewStore creates the avatar directory under dataDir if needed.
func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "avatars")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("avatar: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded file and returns the public path ("/avatars/...").
// The stored name is derived from the user ID and a fresh UUID; the original
// filename only contributes its (validated) extension.
func (s *Store) Save(userID int64, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	name := fmt.Sprintf("u%d-%s%s", userID, uuid.New().String(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) // #nosec G304 -- name is server-generated
	if err != nil {
		return "", fmt.Errorf("avatar: create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("avatar: write file: %w", err)
	}
	return "/avatars/" + name, nil
}

// filePath resolves a request name to an on-disk path, rejecting traversal.
func (s *Store) filePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.New("avatar: invalid file name")
	}
	path := filepath.Join(s.dir, name)
	if !strings.HasPrefix(path, s.dir+string(os.PathSeparator)) {
		return "", errors.New("avatar: path escapes avatar dir")
	}
	return path, nil
}

// Handler serves stored avatar files. Mount under /avatars/.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		path, err := s.filePath(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	})
}
