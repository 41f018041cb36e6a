package models

import "time"

// File describes server-side metadata for one uploaded blob. The bytes
// themselves live in object storage under StorageKey.
type File struct {
	ID string
	// UserID is the owner of the file.
	UserID string
	// OriginalName is the display name supplied at upload. Untrusted; never
	// used as a storage path component.
	OriginalName string
	// StorageKey is the object-storage key of the blob. Generated once at
	// upload from a random identifier plus the original extension.
	StorageKey string
	// Size is the blob's byte length, captured once at creation.
	Size int64
	UploadDate time.Time
	// LastDownload is set on every successful download, best-effort.
	LastDownload *time.Time
	Comment      string

	// SharedLink is the public download token. SharedLink and SharedExpiry
	// are set and cleared together.
	SharedLink   *string
	SharedExpiry *time.Time
}

// IsShareExpired reports whether the share window has passed. A nil expiry
// is not expired: a token without an expiry never lapses.
func (f *File) IsShareExpired(now time.Time) bool {
	if f.SharedExpiry == nil {
		return false
	}
	return now.After(*f.SharedExpiry)
}

// HasLiveShare reports whether the file is reachable through the public
// path right now.
func (f *File) HasLiveShare(now time.Time) bool {
	return f.SharedLink != nil && !f.IsShareExpired(now)
}
