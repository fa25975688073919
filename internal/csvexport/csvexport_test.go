package csvexport

import (
	"bytes"
	"testing"
)

func TestField(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme Motors", "Acme Motors"},
		{"empty", "", ""},
		{"leading space is not quoted", " Acme", " Acme"},
		{"comma", "Chicago, IL", `"Chicago, IL"`},
		{"quote", `Bob's "Best" Cars`, `"Bob's ""Best"" Cars"`},
		{"newline", "line1\nline2", "\"line1\nline2\""},
		{"carriage return", "a\rb", "\"a\rb\""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Field(tc.in); got != tc.want {
				t.Errorf("Field(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	table := Table{
		Header: []string{"Name", "City"},
		Rows: [][]string{
			{"Acme", "Springfield"},
			{"Best, Inc", "Peoria"},
		},
	}

	t.Run("without BOM", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, table, Options{}); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		want := "Name,City\r\nAcme,Springfield\r\n\"Best, Inc\",Peoria\r\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("with BOM", func(t *testing.T) {
		out := Encode(table, Options{BOM: true})
		if !bytes.HasPrefix(out, utf8BOM) {
			t.Fatalf("expected output to start with a UTF-8 BOM, got %q", out[:3])
		}
		if !bytes.HasPrefix(out[3:], []byte("Name,City\r\n")) {
			t.Errorf("header missing after BOM: %q", out)
		}
	})
}
