package extract

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "fenced block",
			input: "Here is what I ran:\n```sql\nSELECT name FROM users;\n```\nThat returned 3 rows.",
			want:  "SELECT name FROM users;",
			found: true,
		},
		{
			name:  "fenced block uppercase tag",
			input: "```SQL\nSELECT 1;\n```",
			want:  "SELECT 1;",
			found: true,
		},
		{
			name:  "fenced block wins over bare keyword lines",
			input: "SELECT ignored FROM outside\n```sql\nSELECT inside FROM fence;\n```\nSELECT also_ignored;",
			want:  "SELECT inside FROM fence;",
			found: true,
		},
		{
			name:  "fence opener discards a bare collection in progress",
			input: "SELECT a\nFROM b\n```sql\nSELECT c FROM d;\n```",
			want:  "SELECT c FROM d;",
			found: true,
		},
		{
			name:  "unclosed fence collects to end",
			input: "```sql\nSELECT a\nFROM b",
			want:  "SELECT a\nFROM b;",
			found: true,
		},
		{
			name:  "bare statement with semicolon",
			input: "The answer is below.\nSELECT count(*) FROM orders;\nThere are 42 orders.",
			want:  "SELECT count(*) FROM orders;",
			found: true,
		},
		{
			name:  "bare statement without semicolon gets one",
			input: "SELECT * FROM t\nWHERE x = 1",
			want:  "SELECT * FROM t\nWHERE x = 1;",
			found: true,
		},
		{
			name:  "comments and blank lines stay in the body",
			input: "SELECT id\n-- only active rows\n\nFROM users\nWHERE active = true;",
			want:  "SELECT id\n-- only active rows\n\nFROM users\nWHERE active = true;",
			found: true,
		},
		{
			name:  "prose with punctuation ends collection",
			input: "SELECT id\nFROM users\nThis query lists every user.\nWHERE ignored = 1",
			want:  "SELECT id\nFROM users;",
			found: true,
		},
		{
			name:  "narrative prefix stripped",
			input: "Here's the SQL query:\nSELECT 1;",
			want:  "SELECT 1;",
			found: true,
		},
		{
			name:  "narrative prefix inside fence stripped",
			input: "```sql\nQuery:\nSELECT 1;\n```",
			want:  "SELECT 1;",
			found: true,
		},
		{
			name:  "pure prose",
			input: "There are three tables in this database.\nNone of them are empty.",
			want:  "",
			found: false,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
			found: false,
		},
		{
			name:  "lowercase keyword",
			input: "select name from users",
			want:  "select name from users;",
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Extract(tt.input)
			if found != tt.found {
				t.Fatalf("Extract() found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Fatalf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	inputs := []string{
		"SELECT name FROM users;",
		"SELECT id\nFROM orders\nWHERE total > 10;",
		"WITH recent AS (SELECT * FROM events)\nSELECT count(*) FROM recent;",
	}
	for _, input := range inputs {
		once, ok := Extract(input)
		if !ok {
			t.Fatalf("Extract(%q) found nothing", input)
		}
		twice, ok := Extract(once)
		if !ok {
			t.Fatalf("Extract(Extract(%q)) found nothing", input)
		}
		if once != twice {
			t.Fatalf("extraction not idempotent: %q then %q", once, twice)
		}
	}
}

// Plain words with spaces carry no signal either way: they have no SQL
// punctuation but also nothing disqualifying, so the permissive default
// keeps them attached to the statement. Documented limitation, kept for
// compatibility with the behavior front ends already rely on.
func TestExtractKeepsAmbiguousWordLines(t *testing.T) {
	got, ok := Extract("SELECT id\nFROM users\nand that is everything")
	if !ok {
		t.Fatal("Extract() found nothing")
	}
	want := "SELECT id\nFROM users\nand that is everything;"
	if got != want {
		t.Fatalf("Extract() = %q, want %q", got, want)
	}
}
