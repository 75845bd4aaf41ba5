package filestorage

import "mime/multipart"

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath and returns its public URL
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveFileWithPath.
	// URLs this storage did not issue are ignored.
	DeleteFile(fileURL string) error

	// Owns reports whether fileURL was issued by this storage
	Owns(fileURL string) bool
}
