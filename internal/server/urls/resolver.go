// Package urls derives the public address of a stored object.
package urls

import (
	"fmt"
	"strings"
)

// Resolver builds object URLs either from a configured public base (a custom
// domain or r2.dev bucket URL) or from the account's R2 endpoint.
type Resolver struct {
	PublicURL string
	AccountID string
	Bucket    string
}

func NewResolver(publicURL, accountID, bucket string) Resolver {
	return Resolver{
		PublicURL: strings.TrimSpace(publicURL),
		AccountID: strings.TrimSpace(accountID),
		Bucket:    strings.TrimSpace(bucket),
	}
}

// Resolve joins the base and key with exactly one "/".
func (r Resolver) Resolve(key string) string {
	key = strings.TrimLeft(key, "/")
	if r.PublicURL != "" {
		return strings.TrimRight(r.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", r.AccountID, r.Bucket, key)
}
