package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"packagekit/internal/bus"
	"packagekit/internal/control"
)

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Print daemon notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withControl(func(ctl *control.Control) error {
				out := cmd.OutOrStdout()
				var mu sync.Mutex
				unsubscribe := ctl.Subscribe(func(ev control.Event) {
					mu.Lock()
					defer mu.Unlock()
					fmt.Fprintln(out, describeEvent(ev))
				})
				defer unsubscribe()

				<-cmd.Context().Done()
				return nil
			})
		},
	}
}

func describeEvent(ev bus.Event) string {
	switch ev.Kind {
	case bus.TransactionListChanged:
		if len(ev.Transactions) == 0 {
			return "transaction-list-changed"
		}
		return "transaction-list-changed: " + strings.Join(ev.Transactions, " ")
	case bus.NetworkStateChanged:
		return "network-state-changed: " + ev.Network.String()
	case bus.Locked:
		return "locked: " + yesNo(ev.Locked)
	case bus.ConnectionChanged:
		return "connection-changed: " + yesNo(ev.Connected)
	default:
		return ev.Kind.String()
	}
}
