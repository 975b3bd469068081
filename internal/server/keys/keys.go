// Package keys encodes and decodes object keys.
//
// A key has the layout
//
//	[folder/]<uuid>_<original name>
//
// The folder is everything up to the last "/" and the unique token is the
// canonical 36-character UUID text, which never contains "_" or "/". Because
// the token has a fixed shape, underscores in folder names or in the original
// name parse back unambiguously. Original names may not contain "/".
//
// Keys that do not carry a token (placeholders, objects written by other
// tools) are parsed with the older heuristic: the display name is whatever
// follows the first "_" of the last path segment.
package keys

import (
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/archdrive/internal/common"
)

const (
	// Separator joins the unique token and the original name.
	Separator = "_"
	// PlaceholderName is the zero-byte object that keeps an empty folder visible.
	PlaceholderName = ".keep"

	tokenLen = 36
)

// newToken is swapped in tests to make keys deterministic.
var newToken = func() string {
	return uuid.NewString()
}

// BuildKey returns a fresh key for originalName inside folder. It does not
// check whether the key already exists in the store; the 122 random bits of
// a v4 UUID make collisions negligible.
func BuildKey(originalName, folder string) (string, error) {
	if strings.Contains(originalName, common.FolderDelimiter) {
		return "", common.InvalidInput("file name %q must not contain %q", originalName, common.FolderDelimiter)
	}

	prefix, err := NormalizeFolder(folder)
	if err != nil {
		return "", err
	}

	return prefix + newToken() + Separator + originalName, nil
}

// NormalizeFolder turns user input into a key prefix: "" for root, otherwise
// the path without leading delimiters and with exactly one trailing "/".
// Empty inner segments and "." / ".." segments are rejected.
func NormalizeFolder(folder string) (string, error) {
	f := strings.TrimSpace(folder)
	f = strings.TrimLeft(f, common.FolderDelimiter)
	f = strings.TrimRight(f, common.FolderDelimiter)
	if f == "" {
		return "", nil
	}

	for _, seg := range strings.Split(f, common.FolderDelimiter) {
		switch seg {
		case "":
			return "", common.InvalidInput("folder %q has an empty segment", folder)
		case ".", "..":
			return "", common.InvalidInput("folder %q contains a relative segment", folder)
		}
	}

	return f + common.FolderDelimiter, nil
}

// ParseFolder returns the folder prefix of key ("" for root).
func ParseFolder(key string) string {
	i := strings.LastIndex(key, common.FolderDelimiter)
	if i < 0 {
		return ""
	}
	return key[:i+1]
}

// ParseDisplayName returns the original file name encoded in key. When no
// name can be recovered (no separator, or nothing after it) the key itself
// is returned.
func ParseDisplayName(key string) string {
	base := key[len(ParseFolder(key)):]

	if hasToken(base) {
		if name := base[tokenLen+len(Separator):]; name != "" {
			return name
		}
		return key
	}

	i := strings.Index(base, Separator)
	if i <= 0 || i == len(base)-1 {
		return key
	}
	return base[i+1:]
}

// PlaceholderKey returns the placeholder object key for a normalized folder prefix.
func PlaceholderKey(prefix string) string {
	return prefix + PlaceholderName
}

// IsPlaceholder reports whether key is a folder placeholder object.
func IsPlaceholder(key string) bool {
	return path.Base(key) == PlaceholderName && !strings.HasSuffix(key, common.FolderDelimiter)
}

// ChildName strips parent and the trailing delimiter from a child prefix:
// ChildName("docs/sub/", "docs/") == "sub".
func ChildName(prefix, parent string) string {
	name := strings.TrimPrefix(prefix, parent)
	return strings.TrimSuffix(name, common.FolderDelimiter)
}

func hasToken(base string) bool {
	if len(base) < tokenLen+len(Separator) || base[tokenLen:tokenLen+len(Separator)] != Separator {
		return false
	}
	_, err := uuid.Parse(base[:tokenLen])
	return err == nil
}
