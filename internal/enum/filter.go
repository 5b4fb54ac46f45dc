package enum

// Filter narrows package queries. The Not* members exclude what their
// counterpart includes and are spelled with a leading "~".
type Filter int

const (
	// FilterNone is the absence of filtering; it renders and parses as the
	// empty bitfield.
	FilterNone Filter = iota
	FilterInstalled
	FilterNotInstalled
	FilterDevelopment
	FilterNotDevelopment
	FilterGUI
	FilterNotGUI
	FilterFree
	FilterNotFree
	FilterVisible
	FilterNotVisible
	FilterSupported
	FilterNotSupported
	FilterBasename
	FilterNotBasename
	FilterNewest
	FilterNotNewest
	FilterArch
	FilterNotArch
	FilterSource
	FilterNotSource
	FilterCollections
	FilterNotCollections
	FilterApplication
	FilterNotApplication
)

// Filters is the filter table.
var Filters = newFamily("filter", FilterNone, true,
	"none",
	"installed",
	"~installed",
	"devel",
	"~devel",
	"gui",
	"~gui",
	"free",
	"~free",
	"visible",
	"~visible",
	"supported",
	"~supported",
	"basename",
	"~basename",
	"newest",
	"~newest",
	"arch",
	"~arch",
	"source",
	"~source",
	"collections",
	"~collections",
	"application",
	"~application",
)

func (f Filter) String() string { return Filters.ToString(f) }
