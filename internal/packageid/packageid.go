// Package packageid parses and formats the four-field package identifiers
// exchanged with backend helpers ("name;version;arch;data").
package packageid

import (
	"strings"

	"packagekit/internal/pkerr"
)

const (
	fieldSeparator = ";"
	listSeparator  = "|"
)

// ID identifies one package build from one origin.
type ID struct {
	Name    string
	Version string
	Arch    string
	Data    string
}

// Parse decodes an identifier. Empty trailing fields are allowed; the name is
// not.
func Parse(s string) (ID, error) {
	parts := strings.Split(s, fieldSeparator)
	if len(parts) != 4 {
		return ID{}, pkerr.Wrap(pkerr.ErrInvalidWireValue, "package id", "expected 4 fields in \""+s+"\"", nil)
	}
	if strings.TrimSpace(parts[0]) == "" {
		return ID{}, pkerr.Wrap(pkerr.ErrInvalidWireValue, "package id", "empty name in \""+s+"\"", nil)
	}
	return ID{Name: parts[0], Version: parts[1], Arch: parts[2], Data: parts[3]}, nil
}

// New builds an identifier from its parts.
func New(name, version, arch, data string) ID {
	return ID{Name: name, Version: version, Arch: arch, Data: data}
}

func (id ID) String() string {
	return id.Name + fieldSeparator + id.Version + fieldSeparator + id.Arch + fieldSeparator + id.Data
}

// Valid reports whether id would survive a Parse round trip.
func (id ID) Valid() bool {
	if strings.TrimSpace(id.Name) == "" {
		return false
	}
	for _, field := range []string{id.Name, id.Version, id.Arch, id.Data} {
		if strings.Contains(field, fieldSeparator) || strings.Contains(field, listSeparator) {
			return false
		}
	}
	return true
}

// JoinList renders several identifiers as one helper argument.
func JoinList(ids []ID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, listSeparator)
}

// SplitList parses a "|"-joined argument.
func SplitList(s string) ([]ID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	raw := strings.Split(s, listSeparator)
	ids := make([]ID, 0, len(raw))
	for _, item := range raw {
		id, err := Parse(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
