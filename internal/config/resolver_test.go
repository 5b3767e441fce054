package config

import "testing"

func TestResolver_Resolve(t *testing.T) {
	r := NewResolverWithLookup(func(k string) (string, bool) {
		if k == "GROQ_API_KEY" {
			return "gsk_123", true
		}
		return "", false
	})

	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{value: "plain-key", want: "plain-key"},
		{value: "", want: ""},
		{value: "$GROQ_API_KEY", want: "gsk_123"},
		{value: "${GROQ_API_KEY}", want: "gsk_123"},
		{value: "$", want: "$"},
		{value: "${UNCLOSED", want: "${UNCLOSED"},
		{value: "$MISSING", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := r.Resolve(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
