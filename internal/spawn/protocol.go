package spawn

import (
	"strconv"
	"strings"

	"packagekit/internal/enum"
	"packagekit/internal/packageid"
)

// EventKind is the record type that starts a helper output line.
type EventKind string

const (
	EventPercentage            EventKind = "percentage"
	EventSubPercentage         EventKind = "subpercentage"
	EventNoPercentageUpdates   EventKind = "no-percentage-updates"
	EventStatus                EventKind = "status"
	EventPackage               EventKind = "package"
	EventError                 EventKind = "error"
	EventMessage               EventKind = "message"
	EventDetails               EventKind = "details"
	EventFiles                 EventKind = "files"
	EventUpdateDetail          EventKind = "updatedetail"
	EventRequireRestart        EventKind = "requirerestart"
	EventAllowCancel           EventKind = "allow-cancel"
	EventRepoDetail            EventKind = "repo-detail"
	EventRepoSignatureRequired EventKind = "repo-signature-required"
	EventData                  EventKind = "data"
	EventFinished              EventKind = "finished"
)

// Details describes one package.
type Details struct {
	License     string
	Group       enum.Group
	Description string
	URL         string
	Size        uint64
}

// UpdateDetail describes one available update.
type UpdateDetail struct {
	Updates     string
	Obsoletes   string
	VendorURL   string
	BugzillaURL string
	CVEURL      string
	Restart     enum.Restart
	Text        string
}

// Signature describes a repository key the user must accept.
type Signature struct {
	RepoName       string
	KeyURL         string
	KeyUserID      string
	KeyID          string
	KeyFingerprint string
	KeyTimestamp   string
	Type           string
}

// Event is one parsed helper output line. Kind selects which fields are set.
type Event struct {
	Kind       EventKind
	Percentage int
	Status     enum.Status
	Info       enum.Info
	PackageID  packageid.ID
	Summary    string
	// Code carries the error code, message type, or repository id.
	Code string
	// Text carries error and message text, restart details, data payloads, and
	// repository names.
	Text         string
	Restart      enum.Restart
	Enabled      bool
	Files        []string
	Details      *Details
	UpdateDetail *UpdateDetail
	Signature    *Signature
}

// Terminal reports whether the event ends the helper's work.
func (e Event) Terminal() bool {
	switch e.Kind {
	case EventFinished, EventError:
		return true
	case EventStatus:
		return e.Status == enum.StatusFinished
	default:
		return false
	}
}

// ParseLine decodes one helper output line. Lines that do not follow the
// protocol yield false.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Event{}, false
	}
	fields := strings.Split(line, "\t")
	kind, args := fields[0], fields[1:]

	switch EventKind(kind) {
	case EventPercentage, EventSubPercentage:
		if len(args) != 1 {
			return Event{}, false
		}
		pct, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || pct < 0 || pct > 100 {
			return Event{}, false
		}
		return Event{Kind: EventKind(kind), Percentage: pct}, true

	case EventNoPercentageUpdates, EventFinished:
		if len(args) != 0 {
			return Event{}, false
		}
		return Event{Kind: EventKind(kind)}, true

	case EventStatus:
		if len(args) != 1 {
			return Event{}, false
		}
		status, err := enum.Statuses.Parse(args[0])
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventStatus, Status: status}, true

	case EventPackage:
		if len(args) != 3 {
			return Event{}, false
		}
		info, err := enum.Infos.Parse(args[0])
		if err != nil {
			return Event{}, false
		}
		id, err := packageid.Parse(args[1])
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventPackage, Info: info, PackageID: id, Summary: args[2]}, true

	case EventError, EventMessage:
		if len(args) < 2 || strings.TrimSpace(args[0]) == "" {
			return Event{}, false
		}
		return Event{Kind: EventKind(kind), Code: args[0], Text: strings.Join(args[1:], "\t")}, true

	case EventDetails, "description":
		return parseDetails(args)

	case EventFiles:
		if len(args) != 2 {
			return Event{}, false
		}
		id, err := packageid.Parse(args[0])
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventFiles, PackageID: id, Files: splitFiles(args[1])}, true

	case EventUpdateDetail:
		return parseUpdateDetail(args)

	case EventRequireRestart:
		if len(args) != 2 {
			return Event{}, false
		}
		restart, err := enum.Restarts.Parse(args[0])
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventRequireRestart, Restart: restart, Text: args[1]}, true

	case EventAllowCancel:
		if len(args) != 1 {
			return Event{}, false
		}
		allow, ok := parseBool(args[0])
		if !ok {
			return Event{}, false
		}
		return Event{Kind: EventAllowCancel, Enabled: allow}, true

	case EventRepoDetail:
		if len(args) != 3 {
			return Event{}, false
		}
		enabled, ok := parseBool(args[2])
		if !ok {
			return Event{}, false
		}
		return Event{Kind: EventRepoDetail, Code: args[0], Text: args[1], Enabled: enabled}, true

	case EventRepoSignatureRequired:
		if len(args) != 8 {
			return Event{}, false
		}
		id, err := packageid.Parse(args[0])
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventRepoSignatureRequired, PackageID: id, Signature: &Signature{
			RepoName:       args[1],
			KeyURL:         args[2],
			KeyUserID:      args[3],
			KeyID:          args[4],
			KeyFingerprint: args[5],
			KeyTimestamp:   args[6],
			Type:           args[7],
		}}, true

	case EventData:
		if len(args) != 1 {
			return Event{}, false
		}
		return Event{Kind: EventData, Text: args[0]}, true
	}
	return Event{}, false
}

func parseDetails(args []string) (Event, bool) {
	if len(args) != 6 {
		return Event{}, false
	}
	id, err := packageid.Parse(args[0])
	if err != nil {
		return Event{}, false
	}
	size, err := strconv.ParseUint(strings.TrimSpace(args[5]), 10, 64)
	if err != nil {
		return Event{}, false
	}
	return Event{Kind: EventDetails, PackageID: id, Details: &Details{
		License:     args[1],
		Group:       enum.Groups.FromString(args[2]),
		Description: args[3],
		URL:         args[4],
		Size:        size,
	}}, true
}

func parseUpdateDetail(args []string) (Event, bool) {
	if len(args) != 8 {
		return Event{}, false
	}
	id, err := packageid.Parse(args[0])
	if err != nil {
		return Event{}, false
	}
	return Event{Kind: EventUpdateDetail, PackageID: id, UpdateDetail: &UpdateDetail{
		Updates:     args[1],
		Obsoletes:   args[2],
		VendorURL:   args[3],
		BugzillaURL: args[4],
		CVEURL:      args[5],
		Restart:     enum.Restarts.FromString(args[6]),
		Text:        args[7],
	}}, true
}

func splitFiles(list string) []string {
	var files []string
	for _, f := range strings.Split(list, ";") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	default:
		return false, false
	}
}
