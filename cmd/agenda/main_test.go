package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectDetailLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"agenda"},
			want: []string{"agenda"},
		},
		{
			name: "direct detail id first token",
			in:   []string{"agenda", "det-abc123"},
			want: []string{"agenda", "activity", "show", "det-abc123"},
		},
		{
			name: "direct detail id after value flag",
			in:   []string{"agenda", "--event", "congreso", "det-abc123"},
			want: []string{"agenda", "--event", "congreso", "activity", "show", "det-abc123"},
		},
		{
			name: "direct detail id after equals flag",
			in:   []string{"agenda", "--dir=./tmp", "det-abc123"},
			want: []string{"agenda", "--dir=./tmp", "activity", "show", "det-abc123"},
		},
		{
			name: "direct detail id after bool flag",
			in:   []string{"agenda", "--pretty", "det-abc123"},
			want: []string{"agenda", "--pretty", "activity", "show", "det-abc123"},
		},
		{
			name: "direct detail id after double dash",
			in:   []string{"agenda", "--dir", "./tmp", "--", "det-abc123"},
			want: []string{"agenda", "--dir", "./tmp", "--", "activity", "show", "det-abc123"},
		},
		{
			name: "bare prefix is not an id",
			in:   []string{"agenda", "det-"},
			want: []string{"agenda", "det-"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"agenda", "activity", "show", "det-abc123"},
			want: []string{"agenda", "activity", "show", "det-abc123"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"agenda", "wat"},
			want: []string{"agenda", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectDetailLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
