package services

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MediaPrefix is the URL prefix under which the media root is served
const MediaPrefix = "/media"

var (
	// ErrOutsideRoot is returned when a path escapes the directory it must stay in
	ErrOutsideRoot = errors.New("path escapes root directory")

	// ErrNotFound is returned when a requested file does not exist
	ErrNotFound = errors.New("not found")
)

// DecodeRequestPath decodes an escaped URL path component.
// A '+' is taken as a space before percent-decoding, matching the
// form-style encoding used by EncodeComponent.
func DecodeRequestPath(raw string) (string, error) {
	decoded, err := url.PathUnescape(strings.ReplaceAll(raw, "+", " "))
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", raw, err)
	}
	return decoded, nil
}

// ResolveUnder joins rel onto root and verifies the result is root itself
// or lies below it, both lexically and after symlinks are resolved. The
// returned path need not exist yet.
func ResolveUnder(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}
	if strings.ContainsRune(rel, 0) {
		return "", ErrOutsideRoot
	}

	resolved := filepath.Clean(filepath.Join(absRoot, filepath.FromSlash(rel)))
	if !within(absRoot, resolved) {
		return "", ErrOutsideRoot
	}

	realRoot, err := canonicalPath(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}
	realTarget, err := canonicalPath(resolved)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", rel, err)
	}
	if !within(realRoot, realTarget) {
		return "", ErrOutsideRoot
	}
	return resolved, nil
}

func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// canonicalPath evaluates symlinks in the longest existing prefix of path
// and appends the missing remainder unchanged.
func canonicalPath(path string) (string, error) {
	target, err := filepath.EvalSymlinks(path)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path, nil
	}
	realParent, err := canonicalPath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(realParent, filepath.Base(path)), nil
}

// resolveChild resolves a single folder name that must name something
// strictly inside root.
func resolveChild(root, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", ErrOutsideRoot
	}
	resolved, err := ResolveUnder(root, name)
	if err != nil {
		return "", err
	}
	absRoot, _ := filepath.Abs(root)
	if resolved == absRoot {
		return "", ErrOutsideRoot
	}
	return resolved, nil
}

// EncodeComponent escapes a single path segment the way the frontend expects:
// spaces become '+', and every reserved character including !'()* is escaped.
func EncodeComponent(s string) string {
	return url.QueryEscape(s)
}

// MediaURL builds <base>/media/<seg1>/<seg2>... with every segment encoded
func MediaURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString(MediaPrefix)
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(EncodeComponent(seg))
	}
	return b.String()
}

// VideoKey derives a stable identifier from the creator folder and filename.
// This hash is used only as a short identifier, not for security purposes.
func VideoKey(creator, fileName string) string {
	hash := sha256.Sum256([]byte(creator + "/" + fileName))
	return base64.RawURLEncoding.EncodeToString(hash[:])[0:11]
}
