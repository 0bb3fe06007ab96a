// Package export renders stored transistor records into the file formats of
// the supported circuit simulators.
package export

import (
	"strconv"
	"strings"
)

// File is one rendered export artifact, ready to write to disk or publish
// to object storage.
type File struct {
	Name string
	Data []byte
}

// joinFloats renders values space-separated with a fixed decimal count, the
// way the simulator formats expect their data rows.
func joinFloats(vals []float64, decimals int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', decimals, 64)
	}
	return strings.Join(parts, " ")
}

// num renders a scalar compactly (25 instead of 25.000000).
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
