package backend

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"packagekit/internal/enum"
	"packagekit/internal/packageid"
)

// Params carries the inputs an operation may consume. Each operation reads
// only the fields it documents.
type Params struct {
	Filters    enum.Bitfield
	PackageIDs []packageid.ID
	// Search is the search term, resolve name, or what-provides query.
	Search    string
	Recursive bool
	// AllowDeps lets remove-packages take dependent packages with it.
	AllowDeps bool
	Path      string
	RepoID    string
	Enabled   bool
	Parameter string
	Value     string
	// Provides is the what-provides kind, such as "codec" or "mimetype".
	Provides string
}

// Operation describes one helper-backed operation.
type Operation struct {
	Name           string
	Role           enum.Role
	Helper         string
	NeedsNetwork   bool
	OfflineMessage string
	Usage          string
	args           func(Params) ([]string, error)
}

// Args renders the helper argument vector for p.
func (o Operation) Args(p Params) ([]string, error) {
	return o.args(p)
}

var operations = []Operation{
	{
		Name: "install-packages", Role: enum.RoleInstallPackages, Helper: "install.py",
		NeedsNetwork: true, OfflineMessage: "Cannot install when offline",
		Usage: "<package-id>", args: singlePackage,
	},
	{
		Name: "install-file", Role: enum.RoleInstallFiles, Helper: "install-file.py",
		Usage: "<path>", args: filePath,
	},
	{
		Name: "remove-packages", Role: enum.RoleRemovePackages, Helper: "remove.py",
		Usage: "<package-id> [--allow-deps]",
		args: func(p Params) ([]string, error) {
			id, err := onePackage(p)
			if err != nil {
				return nil, err
			}
			return []string{yesNo(p.AllowDeps), id}, nil
		},
	},
	{
		Name: "update-packages", Role: enum.RoleUpdatePackages, Helper: "update.py",
		NeedsNetwork: true, OfflineMessage: "Cannot update when offline",
		Usage: "<package-id>...",
		args: func(p Params) ([]string, error) {
			if len(p.PackageIDs) == 0 {
				return nil, errors.New("at least one package id required")
			}
			return []string{packageid.JoinList(p.PackageIDs)}, nil
		},
	},
	{
		Name: "update-system", Role: enum.RoleUpdateSystem, Helper: "update-system.py",
		NeedsNetwork: true, OfflineMessage: "Cannot update system when offline",
		args: noArgs,
	},
	{
		Name: "refresh-cache", Role: enum.RoleRefreshCache, Helper: "refresh-cache.py",
		NeedsNetwork: true, OfflineMessage: "Cannot refresh cache whilst offline",
		args: noArgs,
	},
	{Name: "search-name", Role: enum.RoleSearchName, Helper: "search-name.py", Usage: "<term>", args: filterSearch},
	{Name: "search-details", Role: enum.RoleSearchDetails, Helper: "search-details.py", Usage: "<term>", args: filterSearch},
	{Name: "search-group", Role: enum.RoleSearchGroup, Helper: "search-group.py", Usage: "<group>", args: filterGroup},
	{Name: "search-file", Role: enum.RoleSearchFile, Helper: "search-file.py", Usage: "<path>", args: filterSearch},
	{Name: "resolve", Role: enum.RoleResolve, Helper: "resolve.py", Usage: "<name>", args: filterSearch},
	{Name: "get-updates", Role: enum.RoleGetUpdates, Helper: "get-updates.py", args: filterOnly},
	{Name: "get-description", Role: enum.RoleGetDetails, Helper: "get-description.py", Usage: "<package-id>", args: singlePackage},
	{Name: "get-files", Role: enum.RoleGetFiles, Helper: "get-files.py", Usage: "<package-id>", args: singlePackage},
	{Name: "get-update-detail", Role: enum.RoleGetUpdateDetail, Helper: "get-update-detail.py", Usage: "<package-id>", args: singlePackage},
	{Name: "get-depends", Role: enum.RoleGetDepends, Helper: "get-depends.py", Usage: "<package-id> [--recursive]", args: filterPackageRecursive},
	{Name: "get-requires", Role: enum.RoleGetRequires, Helper: "get-requires.py", Usage: "<package-id> [--recursive]", args: filterPackageRecursive},
	{Name: "get-repo-list", Role: enum.RoleGetRepoList, Helper: "get-repo-list.py", args: filterOnly},
	{
		Name: "repo-enable", Role: enum.RoleRepoEnable, Helper: "repo-enable.py",
		Usage: "<repo-id> [--enabled=false]",
		args: func(p Params) ([]string, error) {
			rid, err := required("repository id", p.RepoID)
			if err != nil {
				return nil, err
			}
			return []string{rid, trueFalse(p.Enabled)}, nil
		},
	},
	{
		Name: "repo-set-data", Role: enum.RoleRepoSetData, Helper: "repo-set-data.py",
		Usage: "<repo-id> <parameter> <value>",
		args: func(p Params) ([]string, error) {
			rid, err := required("repository id", p.RepoID)
			if err != nil {
				return nil, err
			}
			param, err := required("parameter", p.Parameter)
			if err != nil {
				return nil, err
			}
			return []string{rid, param, p.Value}, nil
		},
	},
	{
		Name: "what-provides", Role: enum.RoleWhatProvides, Helper: "what-provides.py",
		Usage: "<search> [--provides=any]",
		args: func(p Params) ([]string, error) {
			term, err := required("search term", p.Search)
			if err != nil {
				return nil, err
			}
			kind := strings.TrimSpace(p.Provides)
			if kind == "" {
				kind = "any"
			}
			return []string{enum.Filters.ToText(p.Filters), kind, term}, nil
		},
	},
}

// Lookup finds an operation by name.
func Lookup(name string) (Operation, bool) {
	idx := slices.IndexFunc(operations, func(o Operation) bool { return o.Name == name })
	if idx < 0 {
		return Operation{}, false
	}
	return operations[idx], true
}

// Operations lists every supported operation in table order.
func Operations() []Operation {
	return slices.Clone(operations)
}

// Roles returns the roles the table can serve.
func Roles() enum.Bitfield {
	var roles enum.Bitfield
	for _, op := range operations {
		roles = enum.Add(roles, op.Role)
	}
	return roles
}

func noArgs(Params) ([]string, error) { return nil, nil }

func filterOnly(p Params) ([]string, error) {
	return []string{enum.Filters.ToText(p.Filters)}, nil
}

func filterSearch(p Params) ([]string, error) {
	term, err := required("search term", p.Search)
	if err != nil {
		return nil, err
	}
	return []string{enum.Filters.ToText(p.Filters), term}, nil
}

func filterGroup(p Params) ([]string, error) {
	name, err := required("group", p.Search)
	if err != nil {
		return nil, err
	}
	if _, err := enum.Groups.Parse(name); err != nil {
		return nil, err
	}
	return []string{enum.Filters.ToText(p.Filters), name}, nil
}

func singlePackage(p Params) ([]string, error) {
	id, err := onePackage(p)
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

func filterPackageRecursive(p Params) ([]string, error) {
	id, err := onePackage(p)
	if err != nil {
		return nil, err
	}
	return []string{enum.Filters.ToText(p.Filters), id, yesNo(p.Recursive)}, nil
}

func filePath(p Params) ([]string, error) {
	path, err := required("file path", p.Path)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func onePackage(p Params) (string, error) {
	if len(p.PackageIDs) != 1 {
		return "", fmt.Errorf("exactly one package id required, got %d", len(p.PackageIDs))
	}
	if !p.PackageIDs[0].Valid() {
		return "", fmt.Errorf("invalid package id %q", p.PackageIDs[0].String())
	}
	return p.PackageIDs[0].String(), nil
}

func required(what, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s required", what)
	}
	return value, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func trueFalse(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
