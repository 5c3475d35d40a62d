package fqn

import (
	"strconv"
	"strings"

	"github.com/matzehuels/datamapper/pkg/errors"
)

// Segment is one element of a Path.
type Segment struct {
	// Name is the field name without quotes, or the decimal text of an index.
	Name string
	// Index is the array index, or -1 when the segment is a field name.
	Index int
	// Quote is the quote character the segment was written with, or 0.
	Quote byte
	// Optional is set when the segment was reached through "?.".
	Optional bool
}

// IsIndex reports whether the segment is an array index.
func (s Segment) IsIndex() bool { return s.Index >= 0 }

func (s Segment) String() string {
	if s.Quote != 0 {
		q := string(s.Quote)
		return q + s.Name + q
	}
	return s.Name
}

// Field returns a bare field segment.
func Field(name string) Segment {
	if needsQuote(name) {
		q := byte('"')
		if strings.IndexByte(name, '"') >= 0 {
			q = '\''
		}
		return Segment{Name: name, Index: -1, Quote: q}
	}
	return Segment{Name: name, Index: -1}
}

// Index returns an array index segment.
func Index(i int) Segment {
	return Segment{Name: strconv.Itoa(i), Index: i}
}

// Path is a parsed FQN.
type Path []Segment

// String renders p in dotted form.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			if s.Optional {
				b.WriteString("?.")
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Names returns the unquoted segment names.
func (p Path) Names() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Name
	}
	return out
}

// Unquoted renders p in dotted form with quotes and optional markers removed.
func (p Path) Unquoted() string {
	return strings.Join(p.Names(), ".")
}

// Equal reports whether p and q address the same location.
// Quotes and optional markers are ignored.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].Name != q[i].Name {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a segment-wise prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Parse parses a dotted FQN.
func Parse(s string) (Path, error) {
	return scan(s, false)
}

// MustParse is like Parse but panics on malformed input. Intended for tests and constants.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseAccessExpr parses an access expression produced by [AccessExpr].
// Dotted segments are accepted as well, so any FQN is also a valid access expression.
func ParseAccessExpr(s string) (Path, error) {
	return scan(s, true)
}

func scan(s string, brackets bool) (Path, error) {
	if s == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "empty path")
	}
	var (
		p        Path
		i        int
		optional bool
	)
	for {
		var (
			seg Segment
			err error
		)
		if brackets && i < len(s) && s[i] == '[' {
			seg, i, err = scanBracket(s, i)
		} else {
			seg, i, err = scanDotted(s, i)
		}
		if err != nil {
			return nil, err
		}
		seg.Optional = optional
		p = append(p, seg)

		if i == len(s) {
			return p, nil
		}
		optional = false
		switch {
		case s[i] == '.':
			i++
		case strings.HasPrefix(s[i:], "?."):
			optional = true
			i += 2
		case brackets && s[i] == '[':
			continue
		default:
			return nil, errors.New(errors.ErrCodeInvalidPath, "unexpected %q at offset %d in %q", s[i], i, s)
		}
		if i == len(s) {
			return nil, errors.New(errors.ErrCodeInvalidPath, "trailing separator in %q", s)
		}
	}
}

func scanDotted(s string, i int) (Segment, int, error) {
	if q := s[i]; q == '"' || q == '\'' {
		end := strings.IndexByte(s[i+1:], q)
		if end < 0 {
			return Segment{}, 0, errors.New(errors.ErrCodeInvalidPath, "unterminated quote at offset %d in %q", i, s)
		}
		name := s[i+1 : i+1+end]
		if name == "" {
			return Segment{}, 0, errors.New(errors.ErrCodeInvalidPath, "empty quoted segment in %q", s)
		}
		return Segment{Name: name, Index: -1, Quote: q}, i + end + 2, nil
	}

	start := i
	for i < len(s) && s[i] != '.' && s[i] != '?' && s[i] != '[' && s[i] != '"' && s[i] != '\'' {
		i++
	}
	if i == start {
		return Segment{}, 0, errors.New(errors.ErrCodeInvalidPath, "empty segment at offset %d in %q", start, s)
	}
	return bare(s[start:i]), i, nil
}

func scanBracket(s string, i int) (Segment, int, error) {
	i++ // '['
	if i >= len(s) {
		return Segment{}, 0, errors.New(errors.ErrCodeInvalidPath, "unterminated bracket in %q", s)
	}
	var seg Segment
	if q := s[i]; q == '"' || q == '\'' {
		var err error
		seg, i, err = scanDotted(s, i)
		if err != nil {
			return Segment{}, 0, err
		}
	} else {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return Segment{}, 0, errors.New(errors.ErrCodeInvalidPath, "expected index or quoted name at offset %d in %q", start, s)
		}
		seg = bare(s[start:i])
	}
	if i >= len(s) || s[i] != ']' {
		return Segment{}, 0, errors.New(errors.ErrCodeInvalidPath, "unterminated bracket in %q", s)
	}
	return seg, i + 1, nil
}

func bare(name string) Segment {
	if isDigits(name) {
		if n, err := strconv.Atoi(name); err == nil {
			return Segment{Name: name, Index: n}
		}
	}
	return Segment{Name: name, Index: -1}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// needsQuote reports whether a field name cannot be written as a bare segment.
func needsQuote(name string) bool {
	if name == "" || isDigits(name) {
		return true
	}
	return strings.ContainsAny(name, ".?[]\"' \t")
}
