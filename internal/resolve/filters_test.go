package resolve

import "testing"

func TestIsKnockoff(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      bool
	}{
		{"study guide shadows the real work", "Dune", "Summary of Dune by Frank Herbert", true},
		{"review compilation", "Dune", "Review: Dune", true},
		{"analysis entry", "Thinking, Fast and Slow", "Analysis of Thinking, Fast and Slow", true},
		{"legitimate match", "Dune", "Dune", false},
		{"marker mid-title is fine", "Dune", "The Dune Summary Project", false},
		{"query is itself a summary", "Summary of Dune", "Summary of Dune by Frank Herbert", false},
		{"case insensitive", "Dune", "SUMMARY OF DUNE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isKnockoff(tt.query, tt.candidate); got != tt.want {
				t.Errorf("isKnockoff(%q, %q) = %v, want %v", tt.query, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestAuthorsMatch(t *testing.T) {
	tests := []struct {
		name       string
		expected   string
		candidates []string
		want       bool
	}{
		{"exact", "Frank Herbert", []string{"Frank Herbert"}, true},
		{"surname only", "Herbert", []string{"Frank Herbert"}, true},
		{"initials dropped", "J.R.R. Tolkien", []string{"John Ronald Reuel Tolkien"}, true},
		{"unknown passes", "Unknown", []string{"Frank Herbert"}, true},
		{"empty passes", "", []string{"Frank Herbert"}, true},
		{"no candidates passes", "Frank Herbert", nil, true},
		{"different author", "Frank Herbert", []string{"Dan Simmons"}, false},
		{"one of several", "Frank Herbert", []string{"Dan Simmons", "Frank Herbert"}, true},
		// Known looseness: a surname embedded in a longer name still matches.
		{"substring surname", "Stephen King", []string{"Stephen Hawking"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authorsMatch(tt.expected, tt.candidates); got != tt.want {
				t.Errorf("authorsMatch(%q, %v) = %v, want %v", tt.expected, tt.candidates, got, tt.want)
			}
		})
	}
}

func TestTitleOverlaps(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      bool
	}{
		{"identical", "Dune", "Dune", true},
		{"shared word", "Dune Messiah", "Messiah of the Desert", true},
		{"substring word", "Neuromancer", "The Neuromancers", true},
		{"unrelated", "Dune", "Pride and Prejudice", false},
		{"no significant query words", "It", "Anything At All", true},
		{"short words ignored", "It Of An", "Unrelated", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleOverlaps(tt.query, tt.candidate); got != tt.want {
				t.Errorf("titleOverlaps(%q, %q) = %v, want %v", tt.query, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestStripSubtitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Thinking, Fast and Slow", "Thinking, Fast and Slow"},
		{"Dune: The Graphic Novel", "Dune"},
		{"Sapiens — A Brief History of Humankind", "Sapiens"},
		{"Gut - The Inside Story", "Gut"},
		{":Leading Colon", ":Leading Colon"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripSubtitle(tt.in); got != tt.want {
			t.Errorf("stripSubtitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
