package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestBuildUploadKey(t *testing.T) {
	key := BuildUploadKey(QRCodeUploadDir, "my payment code!!.png")

	if !strings.HasPrefix(key, QRCodeUploadDir+string(filepath.Separator)) {
		t.Errorf("key %q should be placed under %q", key, QRCodeUploadDir)
	}
	if strings.Contains(key, " ") || strings.Contains(key, "!") {
		t.Errorf("key %q should not contain unsafe characters", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("key %q should keep the file extension", key)
	}
}

func TestBuildUploadKeyStripsPathComponents(t *testing.T) {
	key := BuildUploadKey(ProfileUploadDir, "../../etc/passwd")
	if strings.Contains(key, "..") {
		t.Errorf("key %q must not contain path traversal", key)
	}
}

func TestUploadAndDeleteFile(t *testing.T) {
	chdirTemp(t)
	if err := InitializeStorage(); err != nil {
		t.Fatalf("InitializeStorage failed: %v", err)
	}

	data := []byte("fake file content")
	key := BuildUploadKey(ProjectUploadDir, "brief.pdf")

	url, err := UploadFile(data, key)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("URL %q should be under /uploads/", url)
	}

	stored, err := os.ReadFile(filepath.Join("uploads", key))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("stored content does not match uploaded content")
	}

	if err := DeleteFile(url); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join("uploads", key)); !os.IsNotExist(err) {
		t.Error("file should be gone after DeleteFile")
	}
}

func TestDeleteFileRejectsForeignURLs(t *testing.T) {
	chdirTemp(t)

	if err := DeleteFile("https://example.com/uploads/x.png"); err == nil {
		t.Error("external URL should be rejected")
	}
	if err := DeleteFile("/uploads/../main.go"); err == nil {
		t.Error("path traversal should be rejected")
	}
}

func TestNormalizeQRImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for x := 0; x < 120; x++ {
		for y := 0; y < 120; y++ {
			if (x/10+y/10)%2 == 0 {
				src.Set(x, y, color.Black)
			} else {
				src.Set(x, y, color.White)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	out, err := NormalizeQRImage(buf.Bytes())
	if err != nil {
		t.Fatalf("NormalizeQRImage failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 600 {
		t.Errorf("normalized width = %d, want 600", decoded.Bounds().Dx())
	}
}

func TestNormalizeQRImageRejectsGarbage(t *testing.T) {
	if _, err := NormalizeQRImage([]byte("not an image")); err == nil {
		t.Error("garbage input should be rejected")
	}
}
