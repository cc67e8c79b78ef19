// Package artifact names and stores rendered code images.
//
// Images are keyed by a hash of the language hint and the normalized
// source, so identical requests map to the same file.
// Nothing here deletes files; pruning the directory is left to whoever
// operates it.
package artifact

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"braces.dev/errtrace"
	"go.abhg.dev/code2img/internal/errdefer"
)

// KeyLen is the number of hex characters in a [Key].
const KeyLen = 12

// Normalize strips trailing white space and newlines from src.
func Normalize(src string) string {
	return strings.TrimRightFunc(src, unicode.IsSpace)
}

// Key derives the cache key for a snippet.
//
// src must already be normalized with [Normalize].
// The language is hashed as given by the caller,
// so "py" and "python" produce different keys.
func Key(lang, src string) string {
	sum := md5.Sum([]byte(lang + ":" + src))
	return hex.EncodeToString(sum[:])[:KeyLen]
}

// FileName reports the name of the image file for a key.
func FileName(key string) string {
	return "code_" + key + ".png"
}

// Store writes images into a directory.
// The directory is created on first write.
//
// A Store is safe for concurrent use,
// but writes to the same key race: the last writer wins.
type Store struct {
	dir string

	once     sync.Once
	mkdirErr error
}

// NewStore builds a Store for the given directory.
// Relative paths are resolved against the working directory.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &Store{dir: abs}, nil
}

// Dir is the absolute path of the directory images are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Path reports the absolute path of the image for a key.
// The file may not exist yet.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, FileName(key))
}

// Write writes data as the image for key,
// replacing any file already there,
// and returns the path of the file.
//
// Writes are not atomic.
// A failure midway may leave a partial file behind.
func (s *Store) Write(key string, data []byte) (_ string, err error) {
	s.once.Do(func() {
		s.mkdirErr = os.MkdirAll(s.dir, 0o755)
	})
	if s.mkdirErr != nil {
		return "", errtrace.Wrap(s.mkdirErr)
	}

	path := s.Path(key)
	f, err := os.Create(path)
	if err != nil {
		return "", errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	if _, err := f.Write(data); err != nil {
		return "", errtrace.Wrap(err)
	}
	return path, nil
}
