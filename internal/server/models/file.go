package models

import "time"

// StorageFile is the metadata record for an uploaded object. The bytes live
// in the blob backend under the same path; content type and size are
// recorded from the token that created the record and used as serving
// metadata.
type StorageFile struct {
	// Path is the logical path, primary key, mirroring the backend key.
	Path string
	// IsProtected gates downloads behind an authenticated caller.
	IsProtected bool
	// ContentType is served back on downloads.
	ContentType string
	// Size is the stored byte length.
	Size int64
	// CreatedAt is audit-only.
	CreatedAt time.Time
}
