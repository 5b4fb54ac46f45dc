package enum

// Group is a package category.
type Group int

const (
	GroupUnknown Group = iota
	GroupAccessibility
	GroupAccessories
	GroupAdminTools
	GroupCommunication
	GroupDesktopGnome
	GroupDesktopKDE
	GroupDesktopOther
	GroupDesktopXfce
	GroupEducation
	GroupFonts
	GroupGames
	GroupGraphics
	GroupInternet
	GroupLegacy
	GroupLocalization
	GroupMaps
	GroupMultimedia
	GroupNetwork
	GroupOffice
	GroupOther
	GroupPowerManagement
	GroupProgramming
	GroupPublishing
	GroupRepos
	GroupSecurity
	GroupServers
	GroupSystem
	GroupVirtualization
	GroupScience
	GroupDocumentation
	GroupElectronics
	GroupCollections
	GroupVendor
	GroupNewest
)

// Groups is the group table.
var Groups = newFamily("group", GroupUnknown, false,
	"unknown",
	"accessibility",
	"accessories",
	"admin-tools",
	"communication",
	"desktop-gnome",
	"desktop-kde",
	"desktop-other",
	"desktop-xfce",
	"education",
	"fonts",
	"games",
	"graphics",
	"internet",
	"legacy",
	"localization",
	"maps",
	"multimedia",
	"network",
	"office",
	"other",
	"power-management",
	"programming",
	"publishing",
	"repos",
	"security",
	"servers",
	"system",
	"virtualization",
	"science",
	"documentation",
	"electronics",
	"collections",
	"vendor",
	"newest",
)

func (g Group) String() string { return Groups.ToString(g) }
