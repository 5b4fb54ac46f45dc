package control

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"packagekit/internal/enum"
	"packagekit/internal/logging"
)

// Version is the daemon release.
type Version struct {
	Major uint32
	Minor uint32
	Micro uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// Properties is the capability cache: what the daemon and its backend
// advertise. Fields the daemon has not reported keep their zero value.
type Properties struct {
	Version            Version
	BackendName        string
	BackendDescription string
	BackendAuthor      string
	DistroID           string
	MimeTypes          []string
	Roles              enum.Bitfield
	Groups             enum.Bitfield
	Filters            enum.Bitfield
	NetworkState       enum.Network
	Locked             bool
}

// Properties returns a copy of the capability cache.
func (c *Control) Properties() Properties {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.props
	out.MimeTypes = append([]string(nil), c.props.MimeTypes...)
	return out
}

// CanDo reports whether the backend advertised role.
func (c *Control) CanDo(role enum.Role) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return enum.Contains(c.props.Roles, role)
}

// mergeProperties folds a GetAll reply into the cache. Recognised keys
// overwrite; values that fail to decode leave the cached field untouched.
func (c *Control) mergeProperties(values map[string]dbus.Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, variant := range values {
		err := c.props.apply(key, variant.Value())
		switch {
		case err == nil:
		case errors.Is(err, errUnknownProperty):
			logging.WarnWithContext(c.logger, "ignoring unknown daemon property", "property_unknown",
				logging.String("property", key),
				logging.String(logging.FieldImpact, "property not cached"),
			)
		default:
			logging.WarnWithContext(c.logger, "ignoring daemon property", "property_decode_failed",
				logging.String("property", key),
				logging.Error(err),
				logging.String(logging.FieldImpact, "cached value left unchanged"),
			)
		}
	}
}

var errUnknownProperty = errors.New("unknown property")

func (p *Properties) apply(key string, value any) error {
	switch key {
	case "VersionMajor", "version-major":
		return setUint32(&p.Version.Major, value)
	case "VersionMinor", "version-minor":
		return setUint32(&p.Version.Minor, value)
	case "VersionMicro", "version-micro":
		return setUint32(&p.Version.Micro, value)
	case "BackendName", "backend-name":
		return setString(&p.BackendName, value)
	case "BackendDescription", "backend-description":
		return setString(&p.BackendDescription, value)
	case "BackendAuthor", "backend-author":
		return setString(&p.BackendAuthor, value)
	case "DistroId", "distro-id":
		return setString(&p.DistroID, value)
	case "MimeTypes", "mime-types":
		switch v := value.(type) {
		case string:
			p.MimeTypes = splitList(v)
		case []string:
			p.MimeTypes = append([]string(nil), v...)
		default:
			return fmt.Errorf("mime types: unexpected %T", value)
		}
		return nil
	case "Roles", "roles":
		return setBitfield(&p.Roles, value, enum.Roles.FromText)
	case "Groups", "groups":
		return setBitfield(&p.Groups, value, enum.Groups.FromText)
	case "Filters", "filters":
		return setBitfield(&p.Filters, value, enum.Filters.FromText)
	case "NetworkState", "network-state":
		switch v := value.(type) {
		case string:
			p.NetworkState = enum.Networks.FromString(v)
		default:
			var index uint32
			if err := setUint32(&index, value); err != nil {
				return err
			}
			if int(index) >= enum.Networks.Len() {
				return fmt.Errorf("network state %d out of range", index)
			}
			p.NetworkState = enum.Network(index)
		}
		return nil
	case "Locked", "locked":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("locked: unexpected %T", value)
		}
		p.Locked = v
		return nil
	default:
		return fmt.Errorf("%w %q", errUnknownProperty, key)
	}
}

func setString(dst *string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	*dst = v
	return nil
}

func setUint32(dst *uint32, value any) error {
	switch v := value.(type) {
	case uint32:
		*dst = v
	case int32:
		if v < 0 {
			return fmt.Errorf("negative value %d", v)
		}
		*dst = uint32(v)
	case uint64:
		*dst = uint32(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("negative value %d", v)
		}
		*dst = uint32(v)
	case uint16:
		*dst = uint32(v)
	case byte:
		*dst = uint32(v)
	default:
		return fmt.Errorf("expected integer, got %T", value)
	}
	return nil
}

func setBitfield(dst *enum.Bitfield, value any, parse func(string) (enum.Bitfield, error)) error {
	switch v := value.(type) {
	case string:
		b, err := parse(v)
		if err != nil {
			return err
		}
		*dst = b
	case uint64:
		*dst = enum.Bitfield(v)
	default:
		return fmt.Errorf("expected text or bitfield, got %T", value)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
