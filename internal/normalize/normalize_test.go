package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"line comment", "int x = 5; // comment", "int x = 5;"},
		{"block comment", "int a; /* gone */ int b;", "int a;  int b;"},
		{"multiline block", "a();\n/* one\n two */\nb();", "a();\nb();"},
		{"non-greedy block", "/* a */ x /* b */", "x"},
		{"blank lines dropped", "\n\n  foo();  \n\t\n", "foo();"},
		{"only comments", "// a\n/* b */\n", ""},
		{"crlf trimmed", "x;\r\ny;\r\n", "x;\ny;"},
		{"line marker inside string", `s = "http://x";`, `s = "http:`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"int main() {\n    return 0; // done\n}\n",
		"/* header */\npublic class A {\n\n  int x = 1;\n}",
		"  a  \n\n b \n",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
