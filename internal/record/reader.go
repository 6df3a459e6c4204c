package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("record: malformed row")

// Read decodes every record in r. Blank lines and lines starting with '#'
// are skipped.
func Read(r io.Reader) ([]Record, error) {
	return ReadEvery(r, 1)
}

// ReadEvery decodes every n-th record, starting with the first.
func ReadEvery(r io.Reader, n int) ([]Record, error) {
	if n < 1 {
		n = 1
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []Record
		line    int
		index   int
		fields  = make([]float64, NumFields)
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		keep := index%n == 0
		index++
		if !keep {
			continue
		}

		parts := strings.Fields(text)
		if len(parts) != NumFields {
			return records, fmt.Errorf("%w: line %d has %d fields, want %d", ErrMalformed, line, len(parts), NumFields)
		}
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return records, fmt.Errorf("%w: line %d field %s: %v", ErrMalformed, line, Columns[i], err)
			}
			fields[i] = v
		}

		rec, err := FromFields(fields)
		if err != nil {
			return records, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, err
	}
	return records, nil
}
