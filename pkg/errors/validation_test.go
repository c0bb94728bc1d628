package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"btn", false},
		{"save-button_2.tip", false},
		{"9lives", false},
		{"", true},
		{"-leading", true},
		{"has space", true},
		{"../etc", true},
		{strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateID("target", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"scene.toml", false},
		{"out/demo.svg", false},
		{"/tmp/demo.svg", false},
		{"a..b.svg", false},
		{"", true},
		{"../secret", true},
		{"out/../../x", true},
		{"bad\x00name", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	for _, u := range []string{"http://localhost:8080", "https://example.com/a", "file:///tmp/page.html"} {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v", u, err)
		}
	}
	for _, u := range []string{"", "ftp://example.com", "javascript:alert(1)"} {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) should fail", u)
		}
	}
}
