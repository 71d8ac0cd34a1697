package utils

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
)

// Upload subdirectories per blob kind
const (
	ProjectUploadDir = "projects"
	QRCodeUploadDir  = "qrcodes"
	APKUploadDir     = "apks"
	ProfileUploadDir = "profiles"
)

var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(filename)
	return filenameCleaner.ReplaceAllString(filename, "")
}

// BuildUploadKey produces a timestamp-prefixed key so repeated uploads of the
// same filename never collide, mirroring the client's `<ts>-<name>` scheme.
func BuildUploadKey(subDir, filename string) string {
	return filepath.Join(subDir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), cleanFilename(filename)))
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	dirs := []string{
		uploadBaseDir,
		filepath.Join(uploadBaseDir, ProjectUploadDir),
		filepath.Join(uploadBaseDir, QRCodeUploadDir),
		filepath.Join(uploadBaseDir, APKUploadDir),
		filepath.Join(uploadBaseDir, ProfileUploadDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// UploadFile saves a blob under the given key and returns its public URL
func UploadFile(fileData []byte, key string) (string, error) {
	fullPath := filepath.Join(uploadBaseDir, key)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %v", err)
	}

	// Write the file with restricted permissions
	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	return fmt.Sprintf("%s/%s", baseURL, filepath.ToSlash(key)), nil
}

// DeleteFile removes a previously uploaded blob given its public URL
func DeleteFile(fileURL string) error {
	if !strings.HasPrefix(fileURL, baseURL+"/") {
		return fmt.Errorf("not an uploaded file URL: %s", fileURL)
	}

	key := strings.TrimPrefix(fileURL, baseURL+"/")
	fullPath := filepath.Join(uploadBaseDir, filepath.FromSlash(key))

	// Refuse to escape the uploads tree
	absBase, err := filepath.Abs(uploadBaseDir)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absPath, absBase+string(os.PathSeparator)) {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	return os.Remove(fullPath)
}

// NormalizeQRImage decodes an uploaded QR image, scales it to a consistent
// 600px width and re-encodes it as PNG
func NormalizeQRImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	resized := imaging.Resize(img, 600, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}

	return buf.Bytes(), nil
}
