package scoring

import (
	"reflect"
	"testing"
)

func TestMarkManual(t *testing.T) {
	cases := []struct {
		name    string
		reasons []string
		want    []string
	}{
		{
			name:    "plain reasons get marker prepended",
			reasons: []string{"has budget mentioned", "urgent timeline"},
			want:    []string{"[Manual] has budget mentioned", "[Manual] urgent timeline"},
		},
		{
			name:    "already marked reason is not double marked",
			reasons: []string{"[Manual] has budget mentioned"},
			want:    []string{"[Manual] has budget mentioned"},
		},
		{
			name:    "marker in the middle is normalized to the front",
			reasons: []string{"budget [Manual] mentioned"},
			want:    []string{"[Manual] budget  mentioned"},
		},
		{
			name:    "blank reasons are dropped",
			reasons: []string{"  ", "[Manual]", "real reason"},
			want:    []string{"[Manual] real reason"},
		},
		{
			name:    "empty slice stays empty",
			reasons: []string{},
			want:    []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := markManual(tc.reasons)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("markManual(%v) = %v, want %v", tc.reasons, got, tc.want)
			}
		})
	}
}
