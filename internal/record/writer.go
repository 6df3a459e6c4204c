package record

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Header is the comment line written before the first record.
var Header = "# " + strings.Join(Columns, " ")

// Writer encodes records as one line each: time with five fixed decimals,
// every other field in scientific notation with five fractional digits.
// Output is buffered; call Flush before closing the underlying writer.
type Writer struct {
	w      *bufio.Writer
	buf    []byte
	header bool
	rows   int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:   bufio.NewWriterSize(w, 64*1024),
		buf: make([]byte, 0, 512),
	}
}

// WriteHeader writes the column header. Write calls it on first use if it
// has not been written yet.
func (w *Writer) WriteHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	_, err := w.w.WriteString(Header + "\n")
	return err
}

func (w *Writer) Write(r Record) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}

	b := w.buf[:0]
	for i, v := range r.Fields() {
		if i == 0 {
			b = strconv.AppendFloat(b, v, 'f', 5, 64)
			continue
		}
		b = append(b, ' ')
		b = strconv.AppendFloat(b, v, 'e', 5, 64)
	}
	b = append(b, '\n')
	w.buf = b

	if _, err := w.w.Write(b); err != nil {
		return err
	}
	w.rows++
	return nil
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Rows is the number of records written so far.
func (w *Writer) Rows() int {
	return w.rows
}
