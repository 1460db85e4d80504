// Package fileutil holds the filesystem helpers the stages share: ordered
// tree walks and copies that keep the source's modification time.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Entry is a file found by Walk.
type Entry struct {
	// Path is the absolute path of the file.
	Path string
	// RelDir is the file's directory relative to the walk root ("." at the root).
	RelDir string
	// Name is the base name.
	Name string
}

// Stem returns the name without its extension.
func (e Entry) Stem() string {
	return strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
}

// Rel returns the path relative to the walk root.
func (e Entry) Rel() string {
	return filepath.Join(e.RelDir, e.Name)
}

// Walk calls fn for every regular file under root whose extension matches
// ext (case-insensitive), in lexical order. A non-nil error from fn stops
// the walk.
func Walk(root, ext string, fn func(Entry) error) error {
	ext = strings.ToLower(ext)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if ext != "" && strings.ToLower(filepath.Ext(d.Name())) != ext {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		return fn(Entry{Path: path, RelDir: rel, Name: d.Name()})
	})
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyPreserving copies src to dst, creating dst's directory, and carries
// over the source's permission bits and modification time.
func CopyPreserving(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := CopyFileMode(src, dst, info.Mode().Perm()); err != nil {
		return err
	}
	return preserveTimes(dst, info)
}

// CopyVerifiedPreserving is CopyPreserving with SHA256 + size verification.
// Stage 1 uses it for the Ogg backups.
func CopyVerifiedPreserving(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return err
	}
	return preserveTimes(dst, info)
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

func preserveTimes(dst string, info os.FileInfo) error {
	mtime := info.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return fmt.Errorf("preserve modification time: %w", err)
	}
	return nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
