package enum

import (
	"strings"

	"packagekit/internal/pkerr"
)

// NoneText is the rendering of an empty bitfield.
const NoneText = "none"

// Family is the canonical name table of one enum type.
type Family[E Member] struct {
	kind    string
	names   []string
	index   map[string]E
	unknown E
	// zeroIsNone marks families whose member 0 is spelled "none" and denotes
	// the empty set rather than a set member.
	zeroIsNone bool
}

func newFamily[E Member](kind string, unknown E, zeroIsNone bool, names ...string) *Family[E] {
	f := &Family[E]{
		kind:       kind,
		names:      names,
		index:      make(map[string]E, len(names)),
		unknown:    unknown,
		zeroIsNone: zeroIsNone,
	}
	for i, name := range names {
		f.index[name] = E(i)
	}
	return f
}

// Kind names the family for error messages.
func (f *Family[E]) Kind() string {
	return f.kind
}

// Len returns the number of members in the table.
func (f *Family[E]) Len() int {
	return len(f.names)
}

// ToString returns the wire name of e; out-of-range values render as the
// family's unknown member.
func (f *Family[E]) ToString(e E) string {
	if e < 0 || int(e) >= len(f.names) {
		return f.names[f.unknown]
	}
	return f.names[e]
}

// FromString decodes a single wire name, returning the unknown member when the
// name is not in the table.
func (f *Family[E]) FromString(name string) E {
	if e, ok := f.index[strings.TrimSpace(name)]; ok {
		return e
	}
	return f.unknown
}

// Parse decodes a single wire name strictly.
func (f *Family[E]) Parse(name string) (E, error) {
	if e, ok := f.index[strings.TrimSpace(name)]; ok {
		return e, nil
	}
	return f.unknown, pkerr.Wrap(pkerr.ErrInvalidEnumName, f.kind, "unknown name "+quote(name), nil)
}

// FromText parses semicolon-separated names into a bitfield. Empty text and
// "none" yield the empty set; any unknown token fails the whole parse.
func (f *Family[E]) FromText(text string) (Bitfield, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == NoneText {
		return 0, nil
	}
	var b Bitfield
	for _, token := range strings.Split(text, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		e, ok := f.index[token]
		if !ok {
			return 0, pkerr.Wrap(pkerr.ErrInvalidEnumName, f.kind, "unknown name "+quote(token), nil)
		}
		if f.zeroIsNone && e == 0 {
			continue
		}
		b = Add(b, e)
	}
	return b, nil
}

// ToText renders b as semicolon-separated names in table order.
func (f *Family[E]) ToText(b Bitfield) string {
	members := f.Expand(b)
	if len(members) == 0 {
		return NoneText
	}
	names := make([]string, 0, len(members))
	for _, e := range members {
		names = append(names, f.names[e])
	}
	return strings.Join(names, ";")
}

// Expand lists the members present in b in table order.
func (f *Family[E]) Expand(b Bitfield) []E {
	var out []E
	for i := range f.names {
		if f.zeroIsNone && i == 0 {
			continue
		}
		if Contains(b, E(i)) {
			out = append(out, E(i))
		}
	}
	return out
}

// All returns the bitfield holding every set member of the family.
func (f *Family[E]) All() Bitfield {
	var b Bitfield
	for i := range f.names {
		if f.zeroIsNone && i == 0 {
			continue
		}
		b = Add(b, E(i))
	}
	return b
}

// Names returns a copy of the table.
func (f *Family[E]) Names() []string {
	return append([]string(nil), f.names...)
}

func quote(s string) string {
	return "\"" + s + "\""
}
