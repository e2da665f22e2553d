package validation

import (
	"testing"
)

func TestValidateStatus(t *testing.T) {
	t.Parallel()

	valid := []string{"active", "pending_approval", "suspended"}
	for _, v := range valid {
		if err := ValidateStatus(v); err != nil {
			t.Errorf("ValidateStatus(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{"", "archived", "ACTIVE", "inactive", "pending"}
	for _, v := range invalid {
		if err := ValidateStatus(v); err == nil {
			t.Errorf("ValidateStatus(%q) = nil, want error", v)
		}
	}
}

func TestValidateRole(t *testing.T) {
	t.Parallel()

	if err := ValidateRole("user"); err != nil {
		t.Errorf("ValidateRole(user) = %v", err)
	}
	if err := ValidateRole("admin"); err != nil {
		t.Errorf("ValidateRole(admin) = %v", err)
	}
	for _, v := range []string{"", "superuser", "Admin"} {
		if err := ValidateRole(v); err == nil {
			t.Errorf("ValidateRole(%q) = nil, want error", v)
		}
	}
}

func TestValidateIncidentSeverity(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"low", "medium", "high", "critical"} {
		if err := ValidateIncidentSeverity(v); err != nil {
			t.Errorf("ValidateIncidentSeverity(%q) = %v", v, err)
		}
	}
	if err := ValidateIncidentSeverity("catastrophic"); err == nil {
		t.Error("ValidateIncidentSeverity(catastrophic) = nil, want error")
	}
}

func TestValidateEventKind(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"shift_start", "shift_end", "changeover", "maintenance", "observation"} {
		if err := ValidateEventKind(v); err != nil {
			t.Errorf("ValidateEventKind(%q) = %v", v, err)
		}
	}
	if err := ValidateEventKind("lunch"); err == nil {
		t.Error("ValidateEventKind(lunch) = nil, want error")
	}
}

func TestValidateRPNComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   int
		wantErr bool
	}{
		{value: 1, wantErr: false},
		{value: 10, wantErr: false},
		{value: 0, wantErr: true},
		{value: 11, wantErr: true},
		{value: -3, wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateRPNComponent("severity", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRPNComponent(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims whitespace", in: "  hello  ", want: "hello"},
		{name: "keeps newline and tab", in: "a\n\tb", want: "a\n\tb"},
		{name: "strips control chars", in: "a\x00b\x1bc", want: "abc"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.in); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
