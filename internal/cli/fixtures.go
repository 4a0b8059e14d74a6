package cli

import (
	"github.com/spf13/cobra"

	"github.com/vetraconnect/vetra/pkg/vetra"
)

func (a *app) newFixturesCommand() *cobra.Command {
	fixtures := &cobra.Command{
		Use:   "fixtures",
		Short: "Tools for capturing anonymized test fixtures",
	}
	fixtures.AddCommand(a.newFixturesGenCommand())
	return fixtures
}

func (a *app) newFixturesGenCommand() *cobra.Command {
	var (
		vehicle     string
		name        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "gen [ENDPOINT]",
		Short: "Capture anonymized endpoint responses into a fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext(cmd.Context())
			defer cancel()
			if err := a.connect(ctx, false); err != nil {
				return err
			}

			endpoint := vetra.FixtureAllEndpoints
			if len(args) == 1 {
				endpoint = args[0]
			}
			vins := []string{vehicle}
			if vehicle == "all" {
				var err error
				if vins, err = a.client.ListVehicleVins(ctx); err != nil {
					return err
				}
			}

			fixture, err := a.client.GenerateFixture(ctx, name, description, vins, endpoint)
			if err != nil {
				return err
			}
			return a.printResult("fixture", fixture)
		},
	}
	cmd.Flags().StringVar(&vehicle, "vehicle", "all", "vin to capture, or all for every vehicle on the account")
	cmd.Flags().StringVar(&name, "name", "", "short name describing the vehicle's state")
	cmd.Flags().StringVar(&description, "description", "", "longer description of the capture")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
