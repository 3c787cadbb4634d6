package ai

import "testing"

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain array", `["a","b","c"]`, `["a","b","c"]`},
		{"json fence", "```json\n[\"a\",\"b\",\"c\"]\n```", `["a","b","c"]`},
		{"bare fence", "```\n{\"amount\": 5}\n```", `{"amount": 5}`},
		{"single line fence", "```json[1,2,3]```", `[1,2,3]`},
		{"leading chatter", "Here you go:\n[\"x\"]\nHope it helps", `["x"]`},
		{"object with nested array", `{"items":[1,2]}`, `{"items":[1,2]}`},
		{"no json", "sorry, I can't help", "sorry, I can't help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.raw); got != tt.want {
				t.Errorf("CleanJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
