package parser

import "testing"

func TestParseCourseHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCID  string
		wantName string
		wantErr  bool
	}{
		{
			name:     "plain header",
			input:    "20-00-0005-iv Einführung in die Informatik",
			wantCID:  "20-00-0005-iv",
			wantName: "Einführung in die Informatik",
		},
		{
			name:     "surrounding whitespace and newlines",
			input:    "\n\t  CS-IN-1000-VU \n Introduction to\n Computer Science  \n",
			wantCID:  "CS-IN-1000-VU",
			wantName: "Introduction to Computer Science",
		},
		{
			name:    "missing course id",
			input:   "Einführung in die Informatik",
			wantErr: true,
		},
		{
			name:    "malformed course id",
			input:   "20-000-05-iv Some Course",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cid, name, err := ParseCourseHeader(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got cid=%q name=%q", cid, name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cid != tt.wantCID || name != tt.wantName {
				t.Fatalf("got (%q, %q), want (%q, %q)", cid, name, tt.wantCID, tt.wantName)
			}
		})
	}
}

func TestShouldConsider(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "title with punctuation",
			input: "Introduction to Algorithms, Cormen et al., 2009",
			want:  true,
		},
		{
			name:  "too short",
			input: "Cormen 2009",
			want:  false,
		},
		{
			name:  "fourteen characters",
			input: "Algorithms 009",
			want:  false,
		},
		{
			name:  "exactly fifteen characters with punctuation",
			input: "Algorithms, 3rd",
			want:  true,
		},
		{
			name:  "prose sentence ending in period",
			input: "Wird in der Vorlesung bekannt gegeben.",
			want:  false,
		},
		{
			name:  "prose ending in colon",
			input: "Als Begleitlektüre wird empfohlen:",
			want:  false,
		},
		{
			name:  "multiple sentences",
			input: "Keine Literatur notwendig. Skript wird gestellt.",
			want:  false,
		},
		{
			name:  "plain word run without terminator",
			input: "Grundlagen der Programmierung im Selbststudium",
			want:  false,
		},
		{
			name:  "title with edition and commas",
			input: "Tanenbaum, Computer Networks, 5th Edition",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldConsider(tt.input); got != tt.want {
				t.Fatalf("ShouldConsider(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  a  b  ", "a b"},
		{"\n\ta\nb\t", "a b"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CollapseWhitespace(tt.input); got != tt.want {
			t.Fatalf("CollapseWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
