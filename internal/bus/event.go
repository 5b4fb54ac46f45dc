package bus

import "packagekit/internal/enum"

// EventKind identifies a daemon notification.
type EventKind int

const (
	TransactionListChanged EventKind = iota + 1
	UpdatesChanged
	RepoListChanged
	NetworkStateChanged
	RestartSchedule
	Locked
	ConnectionChanged
)

var eventNames = map[EventKind]string{
	TransactionListChanged: "transaction-list-changed",
	UpdatesChanged:         "updates-changed",
	RepoListChanged:        "repo-list-changed",
	NetworkStateChanged:    "network-state-changed",
	RestartSchedule:        "restart-schedule",
	Locked:                 "locked",
	ConnectionChanged:      "connection-changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a translated daemon signal. Only the field matching Kind is set.
type Event struct {
	Kind EventKind
	// Transactions is the new list when the daemon sends one with
	// TransactionListChanged.
	Transactions []string
	Network      enum.Network
	Locked       bool
	Connected    bool
}
