package models

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to in progress", StatusPending, StatusInProgress, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending straight to completed", StatusPending, StatusCompleted, false},
		{"pending straight to payment", StatusPending, StatusPaymentProcessing, false},
		{"in progress to payment processing", StatusInProgress, StatusPaymentProcessing, true},
		{"in progress to completed", StatusInProgress, StatusCompleted, true},
		{"in progress to cancelled", StatusInProgress, StatusCancelled, true},
		{"in progress back to pending", StatusInProgress, StatusPending, false},
		{"payment processing to completed payment", StatusPaymentProcessing, StatusPaymentCompleted, true},
		{"payment processing to cancelled", StatusPaymentProcessing, StatusCancelled, true},
		{"payment processing back to in progress", StatusPaymentProcessing, StatusInProgress, false},
		{"payment completed to completed", StatusPaymentCompleted, StatusCompleted, true},
		{"payment completed to cancelled", StatusPaymentCompleted, StatusCancelled, false},
		{"completed is terminal", StatusCompleted, StatusInProgress, false},
		{"cancelled is terminal", StatusCancelled, StatusInProgress, false},
		{"cancelled cannot complete", StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusInProgress, StatusPaymentProcessing, StatusPaymentCompleted, StatusCompleted, StatusCancelled} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%s) = false, want true", s)
		}
	}
	for _, s := range []string{"", "pending", "DONE", "ARCHIVED"} {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true, want false", s)
		}
	}
}

func TestValidateStatusChange(t *testing.T) {
	t.Run("payment processing requires a QR code", func(t *testing.T) {
		p := &Project{Status: StatusInProgress}
		err := p.ValidateStatusChange(StatusPaymentProcessing, "")
		if !errors.Is(err, ErrQRCodeRequired) {
			t.Fatalf("expected ErrQRCodeRequired, got %v", err)
		}
	})

	t.Run("payment processing with a QR code succeeds", func(t *testing.T) {
		p := &Project{Status: StatusInProgress}
		if err := p.ValidateStatusChange(StatusPaymentProcessing, "qr_abc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("QR already on the project satisfies the gate", func(t *testing.T) {
		p := &Project{Status: StatusInProgress, PaymentQrCode: "qr_abc"}
		if err := p.ValidateStatusChange(StatusPaymentProcessing, p.PaymentQrCode); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		p := &Project{Status: StatusPending}
		if err := p.ValidateStatusChange("ARCHIVED", ""); err == nil {
			t.Fatal("expected error for unknown status")
		}
	})

	t.Run("disallowed transition is rejected", func(t *testing.T) {
		p := &Project{Status: StatusCompleted}
		if err := p.ValidateStatusChange(StatusInProgress, ""); err == nil {
			t.Fatal("expected error for transition out of a terminal state")
		}
	})

	t.Run("QR gate only applies to payment processing", func(t *testing.T) {
		p := &Project{Status: StatusPending}
		if err := p.ValidateStatusChange(StatusInProgress, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusPaymentProcessing, false},
		{StatusPaymentCompleted, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		p := &Project{Status: tt.status}
		if got := p.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal() for %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}
