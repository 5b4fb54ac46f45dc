package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"packagekit/internal/control"
	"packagekit/internal/deps"
	"packagekit/internal/enum"
	"packagekit/internal/netstate"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize daemon, backend, and network health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Daemon", colorize)
			err = ctx.withControl(func(ctl *control.Control) error {
				lines = append(lines, daemonStatusLines(cmd.Context(), ctl, colorize)...)
				return nil
			})
			if err != nil {
				lines = append(lines, renderStatusLine("Bus", statusError, err.Error(), colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Local backend", colorize)...)
			helperDir := cfg.HelperPath("")
			if info, statErr := os.Stat(helperDir); statErr == nil && info.IsDir() {
				lines = append(lines, renderStatusLine("Helpers", statusOK, helperDir, colorize))
			} else {
				lines = append(lines, renderStatusLine("Helpers", statusWarn, helperDir+" not found", colorize))
			}
			statuses := deps.CheckHelpers(deps.HelperRequirements(cfg))
			required, optional := deps.Missing(statuses)
			available := len(statuses) - required - optional
			switch {
			case required > 0:
				lines = append(lines, renderStatusLine("Operations", statusError, fmt.Sprintf("%d of %d available; %d required helpers missing", available, len(statuses), required), colorize))
			case optional > 0:
				lines = append(lines, renderStatusLine("Operations", statusWarn, fmt.Sprintf("%d of %d available", available, len(statuses)), colorize))
			default:
				lines = append(lines, renderStatusLine("Operations", statusOK, fmt.Sprintf("%d available", available), colorize))
			}

			state := netstate.New(cfg).State()
			kind := statusOK
			if !state.Online() {
				kind = statusWarn
			}
			if cfg.Network.Force != "" {
				lines = append(lines, renderStatusLine("Network", kind, humanize(state.String())+" (forced)", colorize))
			} else {
				lines = append(lines, renderStatusLine("Network", kind, humanize(state.String()), colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func daemonStatusLines(ctx context.Context, ctl *control.Control, colorize bool) []string {
	running, err := ctl.DaemonRunning(ctx)
	switch {
	case err != nil:
		return []string{renderStatusLine("Daemon", statusError, err.Error(), colorize)}
	case !running:
		return []string{renderStatusLine("Daemon", statusWarn, "not running; it starts on first request", colorize)}
	}
	lines := []string{renderStatusLine("Daemon", statusOK, "running", colorize)}
	props, err := ctl.GetPropertiesSync(ctx)
	if err != nil {
		return append(lines, renderStatusLine("Properties", statusError, err.Error(), colorize))
	}
	lines = append(lines,
		renderStatusLine("Version", statusInfo, props.Version.String(), colorize),
		renderStatusLine("Backend", statusInfo, props.BackendName, colorize),
		renderStatusLine("Locked", statusInfo, yesNo(props.Locked), colorize),
	)
	if props.NetworkState.Online() {
		lines = append(lines, renderStatusLine("Daemon network", statusOK, humanize(props.NetworkState.String()), colorize))
	} else if props.NetworkState != enum.NetworkUnknown {
		lines = append(lines, renderStatusLine("Daemon network", statusWarn, humanize(props.NetworkState.String()), colorize))
	}
	return lines
}
