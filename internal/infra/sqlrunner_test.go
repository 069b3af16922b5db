package infra

import "testing"

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantName string
		wantErr  bool
	}{
		{
			name:     "valid marker",
			query:    "--sql grant_role\nINSERT INTO user_roles ...",
			wantName: "grant_role",
		},
		{
			name:    "missing marker",
			query:   "SELECT 1",
			wantErr: true,
		},
		{
			name:    "uppercase marker rejected",
			query:   "--sql GrantRole\nSELECT 1",
			wantErr: true,
		},
		{
			name:     "leading whitespace tolerated",
			query:    "\n  --sql reset_usage\nUPDATE user_credits ...",
			wantName: "reset_usage",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, _, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("extractMarker() expected error, got marker %q", marker)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker() error: %v", err)
			}
			if marker != tc.wantName {
				t.Fatalf("extractMarker() = %q, want %q", marker, tc.wantName)
			}
		})
	}
}
