package fqn

import "strings"

// Unquote strips quotes and optional markers from a path.
// A malformed path has its quote characters removed verbatim.
func Unquote(path string) string {
	p, err := Parse(path)
	if err != nil {
		return strings.NewReplacer(`"`, "", "'", "", "?.", ".").Replace(path)
	}
	return p.Unquoted()
}

// Same reports whether two paths address the same location, ignoring quotes.
func Same(a, b string) bool {
	return Unquote(a) == Unquote(b)
}

// HasPrefix reports whether prefix is a segment-wise prefix of path (or equal to it).
// Unlike strings.HasPrefix, "person.addressList" does not have the prefix "person.address".
func HasPrefix(path, prefix string) bool {
	p, err := Parse(path)
	if err != nil {
		return false
	}
	q, err := Parse(prefix)
	if err != nil {
		return false
	}
	return p.HasPrefix(q)
}

// Prefixes returns path and every proper prefix of it, longest first.
func Prefixes(path string) []string {
	p, err := Parse(path)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(p))
	for n := len(p); n > 0; n-- {
		out = append(out, p[:n].String())
	}
	return out
}

// ChildPath appends field to parent. When index is given, the index segment is
// inserted first, addressing field inside that array element. An empty field
// with an index addresses the element itself.
func ChildPath(parent, field string, index ...int) string {
	var segs []string
	if parent != "" {
		segs = append(segs, parent)
	}
	for _, i := range index {
		segs = append(segs, Index(i).String())
	}
	if field != "" {
		segs = append(segs, Field(field).String())
	}
	return strings.Join(segs, ".")
}

// Root returns the unquoted first segment of path.
func Root(path string) string {
	p, err := Parse(path)
	if err != nil || len(p) == 0 {
		return ""
	}
	return p[0].Name
}

// Last returns the unquoted last segment of path.
func Last(path string) string {
	p, err := Parse(path)
	if err != nil || len(p) == 0 {
		return path
	}
	return p[len(p)-1].Name
}

// TrimRoot drops the first segment of path.
func TrimRoot(path string) string {
	p, err := Parse(path)
	if err != nil || len(p) < 2 {
		return ""
	}
	rest := p[1:]
	rest[0].Optional = false
	return rest.String()
}

// Parent drops the last segment of path.
func Parent(path string) string {
	p, err := Parse(path)
	if err != nil || len(p) < 2 {
		return ""
	}
	return p[:len(p)-1].String()
}

// StripIndices removes every array index segment from path.
func StripIndices(path string) string {
	p, err := Parse(path)
	if err != nil {
		return path
	}
	out := make(Path, 0, len(p))
	for _, s := range p {
		if !s.IsIndex() {
			out = append(out, s)
		}
	}
	return out.String()
}

// HasIndex reports whether path contains an array index segment.
func HasIndex(path string) bool {
	_, _, _, ok := SplitIndex(path)
	return ok
}

// SplitIndex splits path at its first index segment. For "items.2.qty" it
// returns ("items", 2, "qty", true). The rest is empty when the index is the
// last segment.
func SplitIndex(path string) (prefix string, index int, rest string, ok bool) {
	p, err := Parse(path)
	if err != nil {
		return "", 0, "", false
	}
	for i, s := range p {
		if !s.IsIndex() {
			continue
		}
		if i+1 < len(p) {
			tail := append(Path(nil), p[i+1:]...)
			tail[0].Optional = false
			rest = tail.String()
		}
		return p[:i].String(), s.Index, rest, true
	}
	return "", 0, "", false
}

// Rebase replaces the segment-wise prefix from of path with to. It reports
// false and returns path unchanged when from is not a prefix of path.
func Rebase(path, from, to string) (string, bool) {
	p, err := Parse(path)
	if err != nil {
		return path, false
	}
	f, err := Parse(from)
	if err != nil || !p.HasPrefix(f) {
		return path, false
	}
	t, err := Parse(to)
	if err != nil {
		return path, false
	}
	out := append(append(Path(nil), t...), p[len(f):]...)
	return out.String(), true
}
