package controllers

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderQRCode(t *testing.T) {
	out, err := RenderQRCode("whish://pay?account=12345&amount=100")
	if err != nil {
		t.Fatalf("RenderQRCode failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 600 || bounds.Dy() != 600 {
		t.Errorf("QR image is %dx%d, want 600x600", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderQRCodeDiffersPerURI(t *testing.T) {
	first, err := RenderQRCode("whish://pay?account=1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := RenderQRCode("whish://pay?account=2")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first, second) {
		t.Error("different payment URIs should produce different QR images")
	}
}

func TestRenderQRCodeRejectsOversizedPayload(t *testing.T) {
	// QR version 40 tops out near 3KB of binary payload
	huge := make([]byte, 8000)
	for i := range huge {
		huge[i] = 'a'
	}
	if _, err := RenderQRCode(string(huge)); err == nil {
		t.Error("expected an error for a payload beyond QR capacity")
	}
}
