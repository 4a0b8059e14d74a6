package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (a *app) addRequestCommands(root *cobra.Command) {
	root.AddCommand(
		a.accountReadCommand("user", "Print the profile of the logged in user", func(ctx context.Context) (any, error) {
			return a.client.User(ctx)
		}),
		a.accountReadCommand("garage", "Print the account's vehicle list", func(ctx context.Context) (any, error) {
			return a.client.Garage(ctx)
		}),
		a.accountReadCommand("list-vehicles", "Print the vins of all vehicles on the account", func(ctx context.Context) (any, error) {
			return a.client.ListVehicleVins(ctx)
		}),
		a.vehicleReadCommand("info", "Print basic information and capabilities for a vehicle", func(ctx context.Context, vin string) (any, error) {
			return a.client.Info(ctx, vin)
		}),
		a.vehicleReadCommand("status", "Print the doors and windows status", func(ctx context.Context, vin string) (any, error) {
			return a.client.Status(ctx, vin)
		}),
		a.vehicleReadCommand("charging", "Print the charging state and settings", func(ctx context.Context, vin string) (any, error) {
			return a.client.Charging(ctx, vin)
		}),
		a.vehicleReadCommand("air-conditioning", "Print the climate state", func(ctx context.Context, vin string) (any, error) {
			return a.client.AirConditioning(ctx, vin)
		}),
		a.vehicleReadCommand("auxiliary-heating", "Print the auxiliary heater state", func(ctx context.Context, vin string) (any, error) {
			return a.client.AuxiliaryHeating(ctx, vin)
		}),
		a.vehicleReadCommand("positions", "Print the last known vehicle positions", func(ctx context.Context, vin string) (any, error) {
			return a.client.Positions(ctx, vin)
		}),
		a.vehicleReadCommand("driving-range", "Print the estimated driving range", func(ctx context.Context, vin string) (any, error) {
			return a.client.DrivingRange(ctx, vin)
		}),
		a.vehicleReadCommand("trip-statistics", "Print statistics about the current week's trips", func(ctx context.Context, vin string) (any, error) {
			return a.client.TripStatistics(ctx, vin)
		}),
		a.vehicleReadCommand("maintenance", "Print the maintenance report", func(ctx context.Context, vin string) (any, error) {
			return a.client.Maintenance(ctx, vin)
		}),
		a.vehicleReadCommand("health", "Print the warning light report", func(ctx context.Context, vin string) (any, error) {
			return a.client.Health(ctx, vin)
		}),
		a.vehicleReadCommand("departure-timers", "Print the departure timers", func(ctx context.Context, vin string) (any, error) {
			return a.client.DepartureTimers(ctx, vin)
		}),
		a.newVerifySpinCommand(),
	)
}

// vehicleReadCommand builds a command that fetches one endpoint for the vin
// argument and prints the payload.
func (a *app) vehicleReadCommand(name, short string, fetch func(ctx context.Context, vin string) (any, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " VIN",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext(cmd.Context())
			defer cancel()
			if err := a.connect(ctx, false); err != nil {
				return err
			}
			result, err := fetch(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printResult(name, result)
		},
	}
	cmd.Flags().BoolVar(&a.anonymize, "anonymize", false, "strip personal data from the output")
	return cmd
}

func (a *app) accountReadCommand(name, short string, fetch func(ctx context.Context) (any, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext(cmd.Context())
			defer cancel()
			if err := a.connect(ctx, false); err != nil {
				return err
			}
			result, err := fetch(ctx)
			if err != nil {
				return err
			}
			return a.printResult(name, result)
		},
	}
	cmd.Flags().BoolVar(&a.anonymize, "anonymize", false, "strip personal data from the output")
	return cmd
}

func (a *app) newVerifySpinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-spin",
		Short: "Check the s-pin against the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSpin(); err != nil {
				return err
			}
			ctx, cancel := a.commandContext(cmd.Context())
			defer cancel()
			if err := a.connect(ctx, false); err != nil {
				return err
			}
			report, err := a.client.VerifySpin(ctx, a.spin)
			if err != nil {
				return err
			}
			return a.printResult("verify-spin", report)
		},
	}
}
