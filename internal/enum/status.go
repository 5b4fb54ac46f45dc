package enum

// Status is the phase a running transaction reports.
type Status int

const (
	StatusUnknown Status = iota
	StatusWait
	StatusSetup
	StatusRunning
	StatusQuery
	StatusInfo
	StatusRemove
	StatusRefreshCache
	StatusDownload
	StatusInstall
	StatusUpdate
	StatusCleanup
	StatusObsolete
	StatusDepResolve
	StatusSigCheck
	StatusRollback
	StatusTestCommit
	StatusCommit
	StatusRequest
	StatusFinished
	StatusCancel
	StatusDownloadRepository
	StatusDownloadPackagelist
	StatusDownloadFilelist
	StatusDownloadChangelog
	StatusDownloadGroup
	StatusDownloadUpdateinfo
	StatusRepackaging
	StatusLoadingCache
	StatusScanApplications
	StatusGeneratePackageList
	StatusWaitingForLock
	StatusWaitingForAuth
	StatusScanProcessList
	StatusCheckExecutableFiles
	StatusCheckLibraries
	StatusCopyFiles
)

// Statuses is the status table.
var Statuses = newFamily("status", StatusUnknown, false,
	"unknown",
	"wait",
	"setup",
	"running",
	"query",
	"info",
	"remove",
	"refresh-cache",
	"download",
	"install",
	"update",
	"cleanup",
	"obsolete",
	"dep-resolve",
	"sig-check",
	"rollback",
	"test-commit",
	"commit",
	"request",
	"finished",
	"cancel",
	"download-repository",
	"download-packagelist",
	"download-filelist",
	"download-changelog",
	"download-group",
	"download-updateinfo",
	"repackaging",
	"loading-cache",
	"scan-applications",
	"generate-package-list",
	"waiting-for-lock",
	"waiting-for-auth",
	"scan-process-list",
	"check-executable-files",
	"check-libraries",
	"copy-files",
)

func (s Status) String() string { return Statuses.ToString(s) }

// Info classifies a package line emitted by a helper.
type Info int

const (
	InfoUnknown Info = iota
	InfoInstalled
	InfoAvailable
	InfoLow
	InfoEnhancement
	InfoNormal
	InfoBugfix
	InfoImportant
	InfoSecurity
	InfoBlocked
	InfoDownloading
	InfoUpdating
	InfoInstalling
	InfoRemoving
	InfoCleanup
	InfoObsoleting
	InfoCollectionInstalled
	InfoCollectionAvailable
	InfoFinished
	InfoReinstalling
	InfoDowngrading
	InfoPreparing
	InfoDecompressing
)

// Infos is the info table.
var Infos = newFamily("info", InfoUnknown, false,
	"unknown",
	"installed",
	"available",
	"low",
	"enhancement",
	"normal",
	"bugfix",
	"important",
	"security",
	"blocked",
	"downloading",
	"updating",
	"installing",
	"removing",
	"cleanup",
	"obsoleting",
	"collection-installed",
	"collection-available",
	"finished",
	"reinstalling",
	"downgrading",
	"preparing",
	"decompressing",
)

func (i Info) String() string { return Infos.ToString(i) }
