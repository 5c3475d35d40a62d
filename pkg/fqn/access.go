package fqn

import "strings"

// AccessExpr rewrites an FQN into an access expression. Quoted segments become
// ["x"] or ['x'], numeric segments become [N], and bracket accesses attach
// directly to the preceding segment unless it is an optional hop ("?.[").
//
// A malformed fqn is returned unchanged.
func AccessExpr(fqn string) string {
	p, err := Parse(fqn)
	if err != nil {
		return fqn
	}
	return p.AccessExpr()
}

// AccessExpr renders p as an access expression. See the package-level [AccessExpr].
func (p Path) AccessExpr() string {
	var b strings.Builder
	for i, s := range p {
		bracket := s.Quote != 0 || s.IsIndex()
		switch {
		case i == 0:
		case s.Optional:
			b.WriteString("?.")
		case !bracket:
			b.WriteByte('.')
		}
		if bracket {
			b.WriteByte('[')
			b.WriteString(s.String())
			b.WriteByte(']')
		} else {
			b.WriteString(s.Name)
		}
	}
	return b.String()
}
