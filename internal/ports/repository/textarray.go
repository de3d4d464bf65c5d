package repository

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// textArray maps a Postgres text[] column onto a []string. The pgx stdlib
// driver hands array columns to database/sql as the raw array literal
// (e.g. `{NY,en}`), and refuses []string as a statement argument, so both
// directions go through this wrapper.
type textArray []string

func (a textArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, elem := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(elem))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String(), nil
}

func (a *textArray) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into text array", src)
	}

	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		return fmt.Errorf("malformed text array literal %q", raw)
	}
	raw = raw[1 : len(raw)-1]
	if raw == "" {
		*a = []string{}
		return nil
	}

	var out []string
	var elem strings.Builder
	quoted, wasQuoted := false, false
	flush := func() {
		s := elem.String()
		if s == "NULL" && !wasQuoted {
			s = ""
		}
		out = append(out, s)
		elem.Reset()
		wasQuoted = false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quoted && c == '\\' && i+1 < len(raw):
			i++
			elem.WriteByte(raw[i])
		case c == '"':
			quoted = !quoted
			wasQuoted = true
		case c == ',' && !quoted:
			flush()
		default:
			elem.WriteByte(c)
		}
	}
	flush()
	*a = out
	return nil
}
