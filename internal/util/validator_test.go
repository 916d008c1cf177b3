package util

import "testing"

func TestValidators(t *testing.T) {
	if err := ValidateEmail("member@brotherhood.org"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "  ", "not-an-email"} {
		if err := ValidateEmail(bad); err == nil {
			t.Fatalf("email %q accepted", bad)
		}
	}

	if err := ValidatePassword("short"); err == nil {
		t.Fatalf("short password accepted")
	}
	if err := RequireString(" ", "title"); err == nil || err.Error() != "title is required" {
		t.Fatalf("unexpected error %v", err)
	}

	if err := ValidateLink("https://drive.google.com/drive/folders/abc", "drive_link"); err != nil {
		t.Fatalf("valid link rejected: %v", err)
	}
	for _, bad := range []string{"", "drive.google.com/x", "ftp://host/file", "https://"} {
		if err := ValidateLink(bad, "drive_link"); err == nil {
			t.Fatalf("link %q accepted", bad)
		}
	}
}

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == "" || a == b {
		t.Fatalf("request ids must be unique: %q %q", a, b)
	}
}
