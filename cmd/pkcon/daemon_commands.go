package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"packagekit/internal/control"
	"packagekit/internal/enum"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	tidCmd := &cobra.Command{
		Use:   "tid",
		Short: "Request a new transaction id from the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				tid, err := ctl.GetTransactionID(cmd.Context()).Wait(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tid)
				return nil
			})
		},
	}

	stateCmd := &cobra.Command{
		Use:   "daemon-state",
		Short: "Print the daemon's debugging state dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				state, err := ctl.GetDaemonState(cmd.Context()).Wait(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(state, "\n"))
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions the daemon is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				tids, err := ctl.GetTransactionList(cmd.Context()).Wait(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, tids)
				}
				out := cmd.OutOrStdout()
				if len(tids) == 0 {
					fmt.Fprintln(out, "There are no transactions")
					return nil
				}
				for _, tid := range tids {
					fmt.Fprintln(out, tid)
				}
				return nil
			})
		},
	}

	timeCmd := &cobra.Command{
		Use:   "time-since <role>",
		Short: "Show how long ago the daemon last ran a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := enum.Roles.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return ctx.withControl(func(ctl *control.Control) error {
				seconds, err := ctl.GetTimeSinceAction(cmd.Context(), role).Wait(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Elapsed time: %d seconds\n", seconds)
				return nil
			})
		},
	}

	networkCmd := &cobra.Command{
		Use:   "network",
		Short: "Show the daemon's network state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				state, err := ctl.GetNetworkState(cmd.Context()).Wait(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Network state: %s\n", state)
				return nil
			})
		},
	}

	authCmd := &cobra.Command{
		Use:   "can-authorize <action-id>",
		Short: "Ask whether the caller may perform a policy action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				result, err := ctl.CanAuthorize(cmd.Context(), args[0]).Wait(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	propsCmd := &cobra.Command{
		Use:   "properties",
		Short: "Show the daemon and backend capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				props, err := ctl.GetPropertiesSync(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, propertiesView(props))
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderProperties(props))
				return nil
			})
		},
	}

	var httpProxy, ftpProxy string
	proxyCmd := &cobra.Command{
		Use:   "set-proxy",
		Short: "Set the proxies the daemon uses for downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				if _, err := ctl.SetProxy(cmd.Context(), httpProxy, ftpProxy).Wait(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Proxy updated")
				return nil
			})
		},
	}
	proxyCmd.Flags().StringVar(&httpProxy, "http", "", "HTTP proxy, e.g. http://proxy:3128")
	proxyCmd.Flags().StringVar(&ftpProxy, "ftp", "", "FTP proxy")

	return []*cobra.Command{tidCmd, stateCmd, listCmd, timeCmd, networkCmd, authCmd, propsCmd, proxyCmd}
}

type propertiesJSON struct {
	Version            string   `json:"version"`
	BackendName        string   `json:"backend_name"`
	BackendDescription string   `json:"backend_description"`
	BackendAuthor      string   `json:"backend_author"`
	DistroID           string   `json:"distro_id"`
	MimeTypes          []string `json:"mime_types"`
	Roles              []string `json:"roles"`
	Groups             []string `json:"groups"`
	Filters            []string `json:"filters"`
	NetworkState       string   `json:"network_state"`
	Locked             bool     `json:"locked"`
}

func propertiesView(p control.Properties) propertiesJSON {
	return propertiesJSON{
		Version:            p.Version.String(),
		BackendName:        p.BackendName,
		BackendDescription: p.BackendDescription,
		BackendAuthor:      p.BackendAuthor,
		DistroID:           p.DistroID,
		MimeTypes:          p.MimeTypes,
		Roles:              names(enum.Roles.Expand(p.Roles)),
		Groups:             names(enum.Groups.Expand(p.Groups)),
		Filters:            names(enum.Filters.Expand(p.Filters)),
		NetworkState:       p.NetworkState.String(),
		Locked:             p.Locked,
	}
}

func names[E fmt.Stringer](members []E) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.String())
	}
	return out
}

func renderProperties(p control.Properties) string {
	rows := [][]string{
		{"Version", p.Version.String()},
		{"Backend", p.BackendName},
		{"Description", p.BackendDescription},
		{"Author", p.BackendAuthor},
		{"Distribution", p.DistroID},
		{"MIME types", strings.Join(p.MimeTypes, "\n")},
		{"Roles", strings.Join(names(enum.Roles.Expand(p.Roles)), "\n")},
		{"Groups", strings.Join(names(enum.Groups.Expand(p.Groups)), "\n")},
		{"Filters", strings.Join(names(enum.Filters.Expand(p.Filters)), "\n")},
		{"Network", p.NetworkState.String()},
		{"Locked", strconv.FormatBool(p.Locked)},
	}
	return renderTable([]string{"Property", "Value"}, rows, nil)
}
