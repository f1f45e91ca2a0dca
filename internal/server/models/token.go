// Package models defines the server-side records persisted in the database.
package models

import "time"

// SignedURLToken is a single-use upload capability minted by the issuer.
// The gateway never creates these on its own; it consumes them exactly once
// and the cleanup service destroys them after expiry.
type SignedURLToken struct {
	// ID is the opaque capability key. Knowing it is the authorization.
	ID string
	// FilePath is the logical path the token authorizes writing to.
	FilePath string
	// ContentType is the declared MIME type; the upload must match it exactly.
	ContentType string
	// FileSize is the declared byte ceiling for the payload.
	FileSize int64
	// ContentMD5 is the base64-encoded MD5 digest the payload must match.
	ContentMD5 string
	// IsProtected is copied onto the StorageFile record on successful upload.
	IsProtected bool
	// Used flips false to true exactly once, at the claim event.
	Used bool
	// ExpiresAt is the absolute expiry instant.
	ExpiresAt time.Time
	// CreatedAt is audit-only.
	CreatedAt time.Time
}
