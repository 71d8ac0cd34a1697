package utils

import (
	"strings"
	"testing"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"escapes html", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"removes control characters", "abc\x00def", "abcdef"},
		{"plain text untouched", "My App Project", "My App Project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeInput(tt.input); got != tt.want {
				t.Errorf("SanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"User@Example.COM", "user@example.com", false},
		{"  spaced@example.com ", "spaced@example.com", false},
		{"not-an-email", "", true},
		{"missing@tld", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := SanitizeEmail(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizeEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"+96170123456", "+96170123456", false},
		{"961 70 123 456", "+96170123456", false},
		{"(961) 70-123-456", "+96170123456", false},
		{"", "", false}, // optional
		{"123", "", true},
		{"+1234567890123456789", "", true},
	}

	for _, tt := range tests {
		got, err := SanitizePhone(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizePhone(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abcdef12", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsStrongPassword(tt.password); got != tt.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestValidateAttachment(t *testing.T) {
	if err := ValidateAttachment("brief.pdf", 1024); err != nil {
		t.Errorf("pdf should be accepted: %v", err)
	}
	if err := ValidateAttachment("mockup.PNG", 1024); err != nil {
		t.Errorf("png should be accepted regardless of case: %v", err)
	}
	if err := ValidateAttachment("video.mp4", 1024); err == nil {
		t.Error("mp4 should be rejected")
	}
	if err := ValidateAttachment("brief.pdf", 11*1024*1024); err == nil {
		t.Error("oversized file should be rejected")
	}
}

func TestValidateImage(t *testing.T) {
	if err := ValidateImage("qr.png", 1024); err != nil {
		t.Errorf("png should be accepted: %v", err)
	}
	if err := ValidateImage("qr.svg", 1024); err == nil {
		t.Error("svg should be rejected")
	}
	if err := ValidateImage("qr.png", 6*1024*1024); err == nil {
		t.Error("oversized image should be rejected")
	}
}

func TestValidateAPK(t *testing.T) {
	if err := ValidateAPK("app-release.apk", 50*1024*1024); err != nil {
		t.Errorf("apk should be accepted: %v", err)
	}
	if err := ValidateAPK("bundle.zip", 1024); err != nil {
		t.Errorf("zip should be accepted: %v", err)
	}
	if err := ValidateAPK("app.exe", 1024); err == nil {
		t.Error("exe should be rejected")
	}
	if err := ValidateAPK("app.apk", 201*1024*1024); err == nil {
		t.Error("oversized apk should be rejected")
	}
	if err := ValidateAPK("app"+strings.Repeat("x", 3)+".apk", 1024); err != nil {
		t.Errorf("long name should still be accepted: %v", err)
	}
}
