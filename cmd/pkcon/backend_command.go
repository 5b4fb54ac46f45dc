package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"packagekit/internal/backend"
	"packagekit/internal/deps"
	"packagekit/internal/enum"
	"packagekit/internal/netstate"
	"packagekit/internal/packageid"
	"packagekit/internal/spawn"
)

type backendFlags struct {
	tid       string
	filter    string
	recursive bool
	allowDeps bool
	enabled   bool
	provides  string
}

func newBackendCommand(ctx *commandContext) *cobra.Command {
	backendCmd := &cobra.Command{
		Use:   "backend",
		Short: "Run backend helpers directly",
	}
	for _, op := range backend.Operations() {
		backendCmd.AddCommand(newBackendOperationCommand(ctx, op))
	}
	backendCmd.AddCommand(newBackendListCommand(ctx))
	return backendCmd
}

func newBackendListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backend operations and whether their helpers are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			installed := make(map[string]bool)
			for _, s := range deps.CheckHelpers(deps.HelperRequirements(cfg)) {
				installed[s.Operation] = s.Available
			}
			rows := make([][]string, 0, len(installed))
			for _, op := range backend.Operations() {
				rows = append(rows, []string{op.Name, op.Helper, yesNo(installed[op.Name]), yesNo(op.NeedsNetwork), op.Usage})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Operation", "Helper", "Installed", "Network", "Arguments"}, rows, nil))
			return nil
		},
	}
}

func newBackendOperationCommand(ctx *commandContext, op backend.Operation) *cobra.Command {
	var flags backendFlags
	use := op.Name
	if op.Usage != "" {
		use += " " + op.Usage
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Run %s (%s)", op.Helper, humanize(op.Role.String())),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFromArgs(op, args, flags)
			if err != nil {
				return err
			}
			tid := strings.TrimSpace(flags.tid)
			if tid == "" {
				tid = fmt.Sprintf("/pkcon_%d", os.Getpid())
			}
			return ctx.withBackend(cmd.Context(), func(b *backend.Backend, _ *netstate.Monitor) error {
				return runBackendOperation(cmd.Context(), b, tid, op, params, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&flags.tid, "tid", "", "Transaction id to run under")
	cmd.Flags().StringVar(&flags.filter, "filter", "none", "Filters, e.g. installed;~devel")
	cmd.Flags().BoolVar(&flags.recursive, "recursive", false, "Follow dependencies recursively")
	cmd.Flags().BoolVar(&flags.allowDeps, "allow-deps", false, "Also remove packages that depend on the target")
	cmd.Flags().BoolVar(&flags.enabled, "enabled", true, "Enable (true) or disable (false) the repository")
	cmd.Flags().StringVar(&flags.provides, "provides", "any", "What-provides kind (any, codec, mimetype, ...)")
	return cmd
}

func paramsFromArgs(op backend.Operation, args []string, flags backendFlags) (backend.Params, error) {
	filters, err := enum.Filters.FromText(flags.filter)
	if err != nil {
		return backend.Params{}, err
	}
	params := backend.Params{
		Filters:   filters,
		Recursive: flags.recursive,
		AllowDeps: flags.allowDeps,
		Enabled:   flags.enabled,
		Provides:  flags.provides,
	}
	switch op.Name {
	case "search-name", "search-details", "search-group", "search-file", "resolve", "what-provides":
		params.Search = strings.Join(args, " ")
	case "install-file":
		if len(args) != 1 {
			return params, errors.New("exactly one file path required")
		}
		params.Path = args[0]
	case "repo-enable":
		if len(args) != 1 {
			return params, errors.New("exactly one repository id required")
		}
		params.RepoID = args[0]
	case "repo-set-data":
		if len(args) != 3 {
			return params, errors.New("repository id, parameter, and value required")
		}
		params.RepoID, params.Parameter, params.Value = args[0], args[1], args[2]
	default:
		for _, arg := range args {
			id, err := packageid.Parse(arg)
			if err != nil {
				return params, err
			}
			params.PackageIDs = append(params.PackageIDs, id)
		}
	}
	return params, nil
}

func runBackendOperation(ctx context.Context, b *backend.Backend, tid string, op backend.Operation, params backend.Params, out io.Writer) error {
	var mu sync.Mutex
	job, err := b.Run(ctx, tid, op.Name, params, func(ev spawn.Event) {
		line := describeHelperEvent(ev)
		if line == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, line)
	})
	if err != nil {
		return err
	}
	<-job.Done()
	res := job.Result()
	switch res.Exit {
	case enum.ExitSuccess:
		return nil
	case enum.ExitCancelled:
		return context.Canceled
	default:
		return res.Err
	}
}

func describeHelperEvent(ev spawn.Event) string {
	switch ev.Kind {
	case spawn.EventPercentage:
		return fmt.Sprintf("Percentage:\t%d", ev.Percentage)
	case spawn.EventStatus:
		return "Status:\t" + humanize(ev.Status.String())
	case spawn.EventPackage:
		return fmt.Sprintf("%s\t%s-%s.%s\t%s", ev.Info, ev.PackageID.Name, ev.PackageID.Version, ev.PackageID.Arch, ev.Summary)
	case spawn.EventMessage:
		return fmt.Sprintf("Message:\t%s: %s", ev.Code, ev.Text)
	case spawn.EventDetails:
		d := ev.Details
		return fmt.Sprintf("Package:\t%s\nLicense:\t%s\nGroup:\t%s\nURL:\t%s\nSize:\t%d bytes\n%s",
			ev.PackageID, d.License, d.Group, d.URL, d.Size, d.Description)
	case spawn.EventFiles:
		return strings.Join(ev.Files, "\n")
	case spawn.EventUpdateDetail:
		u := ev.UpdateDetail
		return fmt.Sprintf("Update:\t%s\nUpdates:\t%s\nObsoletes:\t%s\nRestart:\t%s\n%s",
			ev.PackageID, u.Updates, u.Obsoletes, u.Restart, u.Text)
	case spawn.EventRequireRestart:
		return fmt.Sprintf("Restart required:\t%s %s", ev.Restart, ev.Text)
	case spawn.EventRepoDetail:
		state := "disabled"
		if ev.Enabled {
			state = "enabled"
		}
		return fmt.Sprintf("%s\t%s\t%s", ev.Code, state, ev.Text)
	case spawn.EventRepoSignatureRequired:
		s := ev.Signature
		return fmt.Sprintf("Signature required:\t%s key %s (%s) from %s", s.RepoName, s.KeyID, s.KeyUserID, s.KeyURL)
	case spawn.EventData:
		return "Data:\t" + ev.Text
	default:
		return ""
	}
}
