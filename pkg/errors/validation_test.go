package errors

import (
	"strings"
	"testing"
)

func TestValidateLevelID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "6f1c2b7e-3d4a-4c5b-9e8f-0a1b2c3d4e5f", false},
		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"upper case", "6F1C2B7E-3D4A-4C5B-9E8F-0A1B2C3D4E5F", false},
		{"braced", "{6f1c2b7e-3d4a-4c5b-9e8f-0a1b2c3d4e5f}", true},
		{"urn", "urn:uuid:6f1c2b7e-3d4a-4c5b-9e8f-0a1b2c3d4e5f", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLevelID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLevelID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "corner", false},
		{"spaces", "big hall", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"control", "a\nb", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTemplateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
