package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/edutrack/edutrack/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // directory on disk
	baseURL  string // URL prefix the directory is served under, e.g. "/uploads"
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates basePath if needed and returns a storage whose
// files are reachable under baseURL.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the directory files are written to
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveFileWithPath saves a file to a specified subdirectory under a random name
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file uploaded")
	}
	subPath = strings.Trim(path.Clean("/"+subPath), "/")

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + path.Join(subPath, uniqueFilename)
	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// Owns reports whether fileURL points into this storage
func (ls *LocalStorage) Owns(fileURL string) bool {
	_, ok := ls.relativePath(fileURL)
	return ok
}

func (ls *LocalStorage) relativePath(fileURL string) (string, bool) {
	rel, ok := strings.CutPrefix(fileURL, ls.baseURL+"/")
	if !ok || rel == "" {
		return "", false
	}
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

// DeleteFile removes a stored file. Missing files count as deleted.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	rel, ok := ls.relativePath(fileURL)
	if !ok {
		return nil
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
