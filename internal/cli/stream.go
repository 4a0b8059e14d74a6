package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vetraconnect/vetra/pkg/event"
)

func (a *app) addStreamCommands(root *cobra.Command) {
	root.AddCommand(
		a.newSubscribeCommand(),
		a.newWaitForOperationCommand(),
	)
}

func (a *app) newSubscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe",
		Short: "Connect to the event broker and print every event until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx, true); err != nil {
				return err
			}
			if err := a.client.SubscribeEvents(func(ev event.Event) {
				if err := a.printResult("event", ev); err != nil {
					a.log.Warn("printing event failed", "error", err)
				}
			}); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
}

func (a *app) newWaitForOperationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait-for-operation OPERATION",
		Short: "Wait for the named operation to start and complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := event.OperationName(args[0])
			if !name.Known() {
				return fmt.Errorf("unknown operation %q", args[0])
			}

			ctx, cancel := a.commandContext(cmd.Context())
			defer cancel()
			if err := a.connect(ctx, true); err != nil {
				return err
			}
			w, err := a.client.WaitForOperation(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Waiting for "+okStyle.Render(string(name))+" to start and complete...")
			if _, err := w.Wait(ctx); err != nil {
				return err
			}
			a.printOK("completed")
			return nil
		},
	}
}
