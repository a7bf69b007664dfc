package sanitize

import (
	"net/url"
	"testing"
)

func TestString(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Ada Lovelace", "Ada Lovelace"},
		{"email untouched", "ada@x.com", "ada@x.com"},
		{"operator dollar", `{"$gt": ""}`, `"gt": ""`},
		{"braces stripped", "{name}", "name"},
		{"script block", `Ada<script>alert(1)</script>`, "Ada"},
		{"unterminated script", `Ada<script>alert(1)`, "Ada"},
		{"nested markup", `<img src=x onerror=alert(1)>Ada`, "Ada"},
		{"event handler fragment", `a onload=evil b`, "a evil b"},
		{"whitespace trimmed", "  Ada  ", "Ada"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := String(tc.input); got != tc.want {
				t.Errorf("String(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestQuery_CollapsesDuplicates(t *testing.T) {
	values, _ := url.ParseQuery("page=1&page=2&search=ada")

	clean := Query(values)

	// Duplicate parameters collapse deterministically to the last value.
	if got := clean.Get("page"); got != "2" {
		t.Errorf("page = %q, want %q", got, "2")
	}
	if len(clean["page"]) != 1 {
		t.Errorf("expected single page value, got %d", len(clean["page"]))
	}
	if got := clean.Get("search"); got != "ada" {
		t.Errorf("search = %q, want %q", got, "ada")
	}
}

func TestQuery_SanitizesValues(t *testing.T) {
	values := url.Values{"search": {`{"$where": "1"}<script>x</script>`}}

	clean := Query(values)

	got := clean.Get("search")
	if got != `"where": "1"` {
		t.Errorf("search = %q, want %q", got, `"where": "1"`)
	}
}
