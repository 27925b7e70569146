package intcode

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Program is an initial memory image.
type Program []int64

// Clone returns an independent copy of the program.
func (p Program) Clone() Program {
	c := make(Program, len(p))
	copy(c, p)
	return c
}

// String renders the program in the comma-separated source format.
func (p Program) String() string {
	var sb strings.Builder
	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}

// ParseProgram parses decimal integers separated by commas and/or
// whitespace. Empty fields (a trailing comma, blank lines) are ignored.
func ParseProgram(text string) (Program, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	p := make(Program, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("program cell %d: %w", i, err)
		}
		p = append(p, v)
	}
	return p, nil
}

// ReadProgram reads all of r and parses it with ParseProgram.
func ReadProgram(r io.Reader) (Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return ParseProgram(string(data))
}

// MustParseProgram is like ParseProgram but panics on malformed input.
// It is intended for programs embedded in source and tests.
func MustParseProgram(text string) Program {
	p, err := ParseProgram(text)
	if err != nil {
		panic(fmt.Sprintf("intcode: %v", err))
	}
	return p
}
