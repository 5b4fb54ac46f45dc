package enum

// Network is the daemon's view of connectivity.
type Network int

const (
	NetworkUnknown Network = iota
	NetworkOffline
	NetworkOnline
	NetworkWired
	NetworkWifi
	NetworkMobile
)

// Networks is the network state table.
var Networks = newFamily("network", NetworkUnknown, false,
	"unknown",
	"offline",
	"online",
	"wired",
	"wifi",
	"mobile",
)

func (n Network) String() string { return Networks.ToString(n) }

// Online reports whether n denotes any usable connection.
func (n Network) Online() bool {
	switch n {
	case NetworkOnline, NetworkWired, NetworkWifi, NetworkMobile:
		return true
	default:
		return false
	}
}

// Authorize is the answer to an authorization query.
type Authorize int

const (
	AuthorizeUnknown Authorize = iota
	AuthorizeYes
	AuthorizeNo
	AuthorizeInteractive
)

// Authorizations is the authorization result table.
var Authorizations = newFamily("authorize", AuthorizeUnknown, false,
	"unknown",
	"yes",
	"no",
	"interactive",
)

func (a Authorize) String() string { return Authorizations.ToString(a) }

// Restart is the kind of restart an update requires.
type Restart int

const (
	RestartUnknown Restart = iota
	RestartNone
	RestartApplication
	RestartSession
	RestartSystem
	RestartSecuritySession
	RestartSecuritySystem
)

// Restarts is the restart table.
var Restarts = newFamily("restart", RestartUnknown, false,
	"unknown",
	"none",
	"application",
	"session",
	"system",
	"security-session",
	"security-system",
)

func (r Restart) String() string { return Restarts.ToString(r) }

// Exit is how a transaction ended.
type Exit int

const (
	ExitUnknown Exit = iota
	ExitSuccess
	ExitFailed
	ExitCancelled
	ExitKeyRequired
	ExitEULARequired
	ExitKilled
	ExitMediaChangeRequired
	ExitNeedUntrusted
)

// Exits is the exit table.
var Exits = newFamily("exit", ExitUnknown, false,
	"unknown",
	"success",
	"failed",
	"cancelled",
	"key-required",
	"eula-required",
	"killed",
	"media-change-required",
	"need-untrusted",
)

func (e Exit) String() string { return Exits.ToString(e) }
