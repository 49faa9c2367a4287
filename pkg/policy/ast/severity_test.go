package ast

import "testing"

func TestSeverityOrdering(t *testing.T) {
	tests := []struct {
		s     Severity
		other Severity
		want  bool
	}{
		{SeverityLow, SeverityLow, true},
		{SeverityMedium, SeverityLow, true},
		{SeverityHigh, SeverityCritical, false},
		{SeverityCritical, SeverityHigh, true},
		{SeverityHigh, SeverityHigh, true},
		{Severity("urgent"), SeverityLow, false},
	}
	for _, tt := range tests {
		if got := tt.s.AtLeast(tt.other); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.s, tt.other, got, tt.want)
		}
	}
}

func TestSeverityKnown(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !s.Known() {
			t.Errorf("%s.Known() = false, want true", s)
		}
	}
	if Severity("urgent").Known() {
		t.Error(`"urgent".Known() = true, want false`)
	}
}
