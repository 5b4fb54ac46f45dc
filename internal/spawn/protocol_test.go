package spawn_test

import (
	"testing"

	"packagekit/internal/enum"
	"packagekit/internal/spawn"
)

func TestParseLineRecords(t *testing.T) {
	ev, ok := spawn.ParseLine("percentage\t42")
	if !ok || ev.Kind != spawn.EventPercentage || ev.Percentage != 42 {
		t.Fatalf("percentage: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("package\tinstalled\tgnome-power-manager;2.6.19;i386;fedora\tPower manager for GNOME")
	if !ok || ev.Info != enum.InfoInstalled || ev.PackageID.Name != "gnome-power-manager" || ev.Summary != "Power manager for GNOME" {
		t.Fatalf("package: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("status\tdownload")
	if !ok || ev.Status != enum.StatusDownload || ev.Terminal() {
		t.Fatalf("status: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("error\tno-network\tCannot refresh cache whilst offline")
	if !ok || ev.Code != "no-network" || ev.Text != "Cannot refresh cache whilst offline" || !ev.Terminal() {
		t.Fatalf("error: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("allow-cancel\tfalse")
	if !ok || ev.Kind != spawn.EventAllowCancel || ev.Enabled {
		t.Fatalf("allow-cancel: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("description\tvim;7.1;x86_64;fedora\tGPL\tprogramming\tThe editor\thttp://www.vim.org\t1048576")
	if !ok || ev.Kind != spawn.EventDetails || ev.Details.Group != enum.GroupProgramming || ev.Details.Size != 1048576 {
		t.Fatalf("description: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("files\tvim;7.1;x86_64;fedora\t/usr/bin/vim;/usr/share/vim;")
	if !ok || len(ev.Files) != 2 || ev.Files[1] != "/usr/share/vim" {
		t.Fatalf("files: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("repo-detail\tfedora-debuginfo\tFedora Debuginfo\tno")
	if !ok || ev.Code != "fedora-debuginfo" || ev.Text != "Fedora Debuginfo" || ev.Enabled {
		t.Fatalf("repo-detail: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("updatedetail\tvim;7.2;x86_64;fedora\tvim;7.1;x86_64;fedora\t\thttp://vendor\t\t\tsystem\tSecurity fix")
	if !ok || ev.UpdateDetail.Restart != enum.RestartSystem || ev.UpdateDetail.Text != "Security fix" {
		t.Fatalf("updatedetail: %+v %v", ev, ok)
	}

	ev, ok = spawn.ParseLine("finished")
	if !ok || !ev.Terminal() {
		t.Fatalf("finished: %+v %v", ev, ok)
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"percentage",
		"percentage\t101",
		"percentage\tabc",
		"status\tdancing",
		"package\tinstalled\tnot-an-id\tsummary",
		"package\tinstalled\tvim;7.1;x86_64;fedora",
		"allow-cancel\tmaybe",
		"finished\textra",
		"error\t\tmissing code",
		"some random chatter",
	}
	for _, line := range cases {
		if ev, ok := spawn.ParseLine(line); ok {
			t.Errorf("ParseLine(%q) = %+v, want rejection", line, ev)
		}
	}
}
