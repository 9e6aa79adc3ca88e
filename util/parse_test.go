package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"64KB", 64 * 1024, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"2GB", 2 * 1024 * 1024 * 1024, false},
		{"1024", 1024, false},
		{"300B", 300, false},
		{"  10mb  ", 10 * 1024 * 1024, false},
		{"8 KB", 8 * 1024, false},
		{"", 0, true},
		{"KB", 0, true},
		{"lots", 0, true},
		{"1.5MB", 0, true},
		{"-1KB", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestPtr(t *testing.T) {
	p := Ptr(1.5)
	if p == nil || *p != 1.5 {
		t.Fatalf("expected pointer to 1.5, got %v", p)
	}
	*p = 2
	if q := Ptr(1.5); *q != 1.5 {
		t.Error("expected each call to return a fresh pointer")
	}
}
