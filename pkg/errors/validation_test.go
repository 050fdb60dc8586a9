package errors

import (
	"strings"
	"testing"
)

func TestValidateFlowName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Inbound Sales", false},
		{"valid padded", "  Support  ", false},
		{"valid unicode", "Línea de soporte", false},

		{"empty", "", true},
		{"whitespace only", "   \t ", true},
		{"too long", strings.Repeat("a", MaxFlowNameLength+1), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlowName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFlowName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeValidation) {
				t.Errorf("ValidateFlowName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "Main Menu", false},
		{"padded", "  Menu ", false},
		{"empty", "", true},
		{"blank", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !IsStructuralRejection(err) {
				t.Errorf("ValidateLabel(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/postback", false},
		{"http", "http://tracker.example.com/p?id=1", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeStructuralRejection,
		ErrCodeValidation,
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidNodeType,
		ErrCodeTooLarge,
		ErrCodeNotFound,
		ErrCodeFlowNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
