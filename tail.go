package revline

import (
	"io"
	"slices"
)

// Tail returns the last count lines of src in their original order. Only the
// chunks holding those lines are read.
func Tail(src Source, count int, cfg Config) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	var lines []string
	r := NewBackwardLineReader(src, cfg)
	for len(lines) < count {
		line, err := r.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	slices.Reverse(lines)
	return lines, nil
}
