package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/record"
)

func line(n int) []record.Record {
	recs := make([]record.Record, n)
	for i := range recs {
		s := make(dynamo.State, 18)
		s[0] = float64(i)
		s[4] = -float64(i)
		s[8] = float64(i)
		recs[i] = record.Record{Time: float64(i), State: s}
	}
	return recs
}

func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestTrajectoriesToSVG(t *testing.T) {
	var buf bytes.Buffer
	err := TrajectoriesToSVG(&buf, line(10), SVGOptions{Names: []string{"Sun", "Earth", "<Moon>"}})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	wellFormed(t, buf.Bytes())

	svg := buf.String()
	if got := strings.Count(svg, "<path"); got != 3 {
		t.Errorf("expected 3 paths, got %d", got)
	}
	if !strings.Contains(svg, "&lt;Moon&gt;") {
		t.Error("legend names should be escaped")
	}
	if !strings.Contains(svg, "xy plane") {
		t.Error("plane label missing")
	}
}

func TestTrajectoriesToSVG_Planes(t *testing.T) {
	for _, plane := range []string{"xy", "xz", "yz"} {
		var buf bytes.Buffer
		if err := TrajectoriesToSVG(&buf, line(5), SVGOptions{Plane: plane}); err != nil {
			t.Errorf("%s: %v", plane, err)
		}
	}
	if err := TrajectoriesToSVG(io.Discard, line(5), SVGOptions{Plane: "xw"}); err == nil {
		t.Error("expected error for unknown plane")
	}
	if err := TrajectoriesToSVG(io.Discard, nil, SVGOptions{}); err == nil {
		t.Error("expected error for no records")
	}
}

func TestTrajectoriesToSVG_NonFinite(t *testing.T) {
	recs := line(6)
	recs[3].State[0] = math.NaN()

	var buf bytes.Buffer
	if err := TrajectoriesToSVG(&buf, recs, SVGOptions{}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	wellFormed(t, buf.Bytes())
	if strings.Contains(buf.String(), "NaN") {
		t.Error("non-finite samples should be skipped")
	}

	// body 1 path restarts after the gap
	first := buf.String()[strings.Index(buf.String(), "<path"):]
	first = first[:strings.Index(first, "/>")]
	if strings.Count(first, "M") != 2 {
		t.Errorf("expected a broken path, got %q", first)
	}
}
