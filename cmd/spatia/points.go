package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/geom"
)

// readPoints parses one "x y z" point per line. Fields may be separated by
// whitespace or commas; extra fields are ignored. Blank lines and lines
// starting with '#' are skipped. NaN and infinite coordinates are rejected.
func readPoints(r io.Reader) ([]v3.Vec, error) {
	var points []v3.Vec
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: expected x y z, got %q", line, text)
		}
		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			xyz[i] = v
		}
		p := v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		if !geom.IsFinite(p) {
			return nil, fmt.Errorf("line %d: coordinates must be finite, got %q", line, text)
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read points: %w", err)
	}
	return points, nil
}
