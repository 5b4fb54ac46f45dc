package backend_test

import (
	"slices"
	"testing"

	"packagekit/internal/backend"
	"packagekit/internal/enum"
	"packagekit/internal/packageid"
)

var vim = packageid.New("vim", "7.1", "x86_64", "fedora")

func TestOperationArgs(t *testing.T) {
	gvim := packageid.New("gvim", "7.1", "x86_64", "fedora")
	installedGUI := enum.FromEnums(enum.FilterInstalled, enum.FilterGUI)

	tests := []struct {
		op     string
		params backend.Params
		want   []string
	}{
		{"install-packages", backend.Params{PackageIDs: []packageid.ID{vim}}, []string{"vim;7.1;x86_64;fedora"}},
		{"remove-packages", backend.Params{PackageIDs: []packageid.ID{vim}, AllowDeps: true}, []string{"yes", "vim;7.1;x86_64;fedora"}},
		{"update-packages", backend.Params{PackageIDs: []packageid.ID{vim, gvim}}, []string{"vim;7.1;x86_64;fedora|gvim;7.1;x86_64;fedora"}},
		{"update-system", backend.Params{}, nil},
		{"search-name", backend.Params{Filters: installedGUI, Search: "power"}, []string{"installed;gui", "power"}},
		{"search-group", backend.Params{Search: "programming"}, []string{"none", "programming"}},
		{"get-updates", backend.Params{}, []string{"none"}},
		{"get-depends", backend.Params{PackageIDs: []packageid.ID{vim}}, []string{"none", "vim;7.1;x86_64;fedora", "no"}},
		{"repo-enable", backend.Params{RepoID: "fedora-debuginfo"}, []string{"fedora-debuginfo", "false"}},
		{"repo-set-data", backend.Params{RepoID: "fedora", Parameter: "mirror", Value: "http://x"}, []string{"fedora", "mirror", "http://x"}},
		{"what-provides", backend.Params{Search: "gstreamer0.10(decoder-audio/ac3)", Provides: "codec"}, []string{"none", "codec", "gstreamer0.10(decoder-audio/ac3)"}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			op, ok := backend.Lookup(tt.op)
			if !ok {
				t.Fatalf("operation %q missing", tt.op)
			}
			got, err := op.Args(tt.params)
			if err != nil {
				t.Fatalf("Args: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperationArgsValidation(t *testing.T) {
	tests := []struct {
		op     string
		params backend.Params
	}{
		{"install-packages", backend.Params{}},
		{"install-packages", backend.Params{PackageIDs: []packageid.ID{{Version: "7.1"}}}},
		{"get-files", backend.Params{PackageIDs: []packageid.ID{vim, vim}}},
		{"search-name", backend.Params{Search: "  "}},
		{"search-group", backend.Params{Search: "not-a-group"}},
		{"install-file", backend.Params{}},
		{"repo-set-data", backend.Params{RepoID: "fedora"}},
	}
	for _, tt := range tests {
		op, _ := backend.Lookup(tt.op)
		if _, err := op.Args(tt.params); err == nil {
			t.Errorf("%s accepted %+v", tt.op, tt.params)
		}
	}
}

func TestNetworkOperations(t *testing.T) {
	var networked []string
	for _, op := range backend.Operations() {
		if op.NeedsNetwork {
			networked = append(networked, op.Name)
		}
	}
	want := []string{"install-packages", "update-packages", "update-system", "refresh-cache"}
	if !slices.Equal(networked, want) {
		t.Fatalf("network operations = %v, want %v", networked, want)
	}
	if !enum.Contains(backend.Roles(), enum.RoleSearchName) || enum.Contains(backend.Roles(), enum.RoleRollback) {
		t.Fatalf("roles = %s", enum.Roles.ToText(backend.Roles()))
	}
}
