// Package csvexport renders tables as CSV.
//
// A field is quoted only when it contains a comma, a double quote or a
// line break; embedded quotes are doubled. Records end with CRLF.
package csvexport

import (
	"bytes"
	"io"
	"strings"
)

// utf8BOM lets spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Options controls the encoding.
type Options struct {
	BOM bool
}

// Field quotes s when needed.
func Field(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Record joins fields into a single CSV line without the terminator.
func Record(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = Field(f)
	}
	return strings.Join(quoted, ",")
}

// Write encodes t to w.
func Write(w io.Writer, t Table, opts Options) error {
	var buf bytes.Buffer
	if opts.BOM {
		buf.Write(utf8BOM)
	}
	buf.WriteString(Record(t.Header) + "\r\n")
	for _, row := range t.Rows {
		buf.WriteString(Record(row) + "\r\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Encode returns t as bytes.
func Encode(t Table, opts Options) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, t, opts)
	return buf.Bytes()
}
