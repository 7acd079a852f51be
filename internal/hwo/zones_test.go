package hwo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestIsZoneLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"GAZ010-018-026>028-110815-", true},
		{"ABC001-002-003-", true},
		{"NCZ501>505-", true},
		{"National Weather Service Greenville-Spartanburg SC", false},
		{"Banks-Barrow-Clarke-", false},
		{"", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsZoneLine(tt.line), "line %q", tt.line)
	}
}

func TestDecodeZoneLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "explicit codes with carried prefix",
			line: "ABC001-002-003-",
			want: []string{"ABC001", "ABC002", "ABC003"},
		},
		{
			name: "range expansion",
			line: "GAZ010-018-026>028-110815-",
			want: []string{"GAZ010", "GAZ018", "GAZ026", "GAZ027", "GAZ028"},
		},
		{
			name: "prefix switch mid-line",
			line: "NCZ501-502-SCZ001-002-",
			want: []string{"NCZ501", "NCZ502", "SCZ001", "SCZ002"},
		},
		{
			name: "range carries prefix forward",
			line: "MEZ001>003-010-",
			want: []string{"MEZ001", "MEZ002", "MEZ003", "MEZ010"},
		},
		{
			name: "purge time skipped",
			line: "ABC001-110815-",
			want: []string{"ABC001"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeZoneLine(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeZoneLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}
