package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/validator"
)

// Security errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrBlockedExt    = errors.New("file extension is blocked")
	ErrBlockedType   = errors.New("file content type is not allowed")
)

// DefaultMaxFileSize is the upload cap used when none is configured (5 MiB)
const DefaultMaxFileSize = 5 * 1024 * 1024

// maxStoredNameBytes keeps "<uuid>_<escaped name>" under common filesystem limits
const maxStoredNameBytes = 200

// BlockedExtensions contains file extensions that are not allowed
var BlockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".scr": true, ".vbs": true, ".js": true,
	".jar": true, ".ps1": true, ".sh": true, ".bash": true,
	".msi": true, ".dll": true, ".sys": true, ".svg": true,
	".html": true, ".htm": true,
}

// FileStorage defines the interface for transient upload storage
type FileStorage interface {
	SaveUpload(filename string, content io.Reader) (*models.Attachment, error)
	Get(filePath string) (io.ReadCloser, error)
	Delete(filePath string) error
}

// localStorage implements FileStorage using local filesystem
type localStorage struct {
	basePath string
	maxSize  int64
}

// NewLocalStorage creates a new localStorage instance. maxSize <= 0 uses
// DefaultMaxFileSize.
func NewLocalStorage(basePath string, maxSize int64) (FileStorage, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &localStorage{basePath: basePath, maxSize: maxSize}, nil
}

// validatePath ensures path is within basePath (prevents traversal)
func (s *localStorage) validatePath(filePath string) (string, error) {
	// Clean the path
	cleanPath := filepath.Clean(filePath)

	// Prevent absolute paths
	if filepath.IsAbs(cleanPath) {
		return "", ErrPathTraversal
	}

	// Prevent path traversal
	if strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	// Build full path
	fullPath := filepath.Join(s.basePath, cleanPath)

	// Get absolute paths for comparison
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	// Security check: ensure file is within allowed directory
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return absPath, nil
}

// ValidateFile checks file extension and size
func ValidateFile(filename string, size, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if BlockedExtensions[ext] {
		return ErrBlockedExt
	}

	if size > maxSize {
		return ErrFileTooLarge
	}

	return nil
}

// AllowedContentType reports whether sniffed content may be accepted:
// raster images and PDF only
func AllowedContentType(mtype *mimetype.MIME) bool {
	if mtype.Is("application/pdf") {
		return true
	}
	return strings.HasPrefix(mtype.String(), "image/") && !mtype.Is("image/svg+xml")
}

// SaveUpload stores an uploaded file. filename is the name the client sent,
// possibly percent-encoded. The returned attachment carries the decoded
// display name and a FilePath relative to the storage root.
func (s *localStorage) SaveUpload(filename string, content io.Reader) (*models.Attachment, error) {
	display := validator.SanitizeFilename(validator.DecodeFilename(filename))

	// One byte over the cap is enough to know the upload is too large
	data, err := io.ReadAll(io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if err := ValidateFile(display, int64(len(data)), s.maxSize); err != nil {
		return nil, rejected(err, s.maxSize)
	}

	mtype := mimetype.Detect(data)
	if !AllowedContentType(mtype) {
		return nil, rejected(fmt.Errorf("%w: %s", ErrBlockedType, mtype.String()), s.maxSize)
	}

	filePath := storedName(display)
	fullPath := filepath.Join(s.basePath, filePath)

	// Create file
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, bytes.NewReader(data)); err != nil {
		// Clean up on error
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &models.Attachment{
		Filename:    display,
		ContentType: mtype.String(),
		FilePath:    filePath,
		SizeBytes:   int64(len(data)),
	}, nil
}

// storedName builds "<uuid>_<percent-encoded name>", cutting the encoded part
// on an escape boundary when it is too long.
func storedName(display string) string {
	escaped := url.PathEscape(display)
	if len(escaped) > maxStoredNameBytes {
		cut := maxStoredNameBytes
		for i := cut - 2; i < cut && i >= 0; i++ {
			if escaped[i] == '%' {
				cut = i
				break
			}
		}
		escaped = escaped[:cut]
	}
	return uuid.New().String() + "_" + escaped
}

func rejected(err error, maxSize int64) error {
	msg := "画像またはPDFファイルのみアップロードできます"
	if errors.Is(err, ErrFileTooLarge) {
		msg = fmt.Sprintf("ファイルサイズは%dMB以下にしてください", maxSize/(1024*1024))
		if maxSize < 1024*1024 {
			msg = fmt.Sprintf("ファイルサイズは%dバイト以下にしてください", maxSize)
		}
	}
	return apperrors.NewAppError(fmt.Errorf("%w: %w", apperrors.ErrUploadRejected, err), msg, apperrors.CodeUploadRejected)
}

// Get retrieves a file by its path
func (s *localStorage) Get(filePath string) (io.ReadCloser, error) {
	// Validate path to prevent traversal
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a file by its path
func (s *localStorage) Delete(filePath string) error {
	// Validate path to prevent traversal
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			// File already doesn't exist, not an error
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// RemoveStale deletes uploads older than maxAge, left behind by a process
// that died mid-request. It returns the number of files removed.
func RemoveStale(basePath string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read storage directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(basePath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
