package enum

// Role is a transaction kind.
type Role int

const (
	RoleUnknown Role = iota
	RoleCancel
	RoleGetDepends
	RoleGetDetails
	RoleGetFiles
	RoleGetPackages
	RoleGetRepoList
	RoleGetRequires
	RoleGetUpdateDetail
	RoleGetUpdates
	RoleInstallFiles
	RoleInstallPackages
	RoleInstallSignature
	RoleRefreshCache
	RoleRemovePackages
	RoleRepoEnable
	RoleRepoSetData
	RoleResolve
	RoleRollback
	RoleSearchDetails
	RoleSearchFile
	RoleSearchGroup
	RoleSearchName
	RoleUpdatePackages
	RoleUpdateSystem
	RoleWhatProvides
	RoleAcceptEULA
	RoleDownloadPackages
	RoleGetDistroUpgrades
	RoleGetCategories
	RoleGetOldTransactions
	RoleSimulateInstallFiles
	RoleSimulateInstallPackages
	RoleSimulateRemovePackages
	RoleSimulateUpdatePackages
)

// Roles is the role table.
var Roles = newFamily("role", RoleUnknown, false,
	"unknown",
	"cancel",
	"get-depends",
	"get-details",
	"get-files",
	"get-packages",
	"get-repo-list",
	"get-requires",
	"get-update-detail",
	"get-updates",
	"install-files",
	"install-packages",
	"install-signature",
	"refresh-cache",
	"remove-packages",
	"repo-enable",
	"repo-set-data",
	"resolve",
	"rollback",
	"search-details",
	"search-file",
	"search-group",
	"search-name",
	"update-packages",
	"update-system",
	"what-provides",
	"accept-eula",
	"download-packages",
	"get-distro-upgrades",
	"get-categories",
	"get-old-transactions",
	"simulate-install-files",
	"simulate-install-packages",
	"simulate-remove-packages",
	"simulate-update-packages",
)

func (r Role) String() string { return Roles.ToString(r) }
