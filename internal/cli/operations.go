package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vetraconnect/vetra/pkg/model"
)

func (a *app) addOperationCommands(root *cobra.Command) {
	root.AddCommand(
		a.operationCommand("start-charging", "Start charging the battery", func(ctx context.Context, vin string) error {
			return a.client.StartCharging(ctx, vin)
		}),
		a.operationCommand("stop-charging", "Stop charging the battery", func(ctx context.Context, vin string) error {
			return a.client.StopCharging(ctx, vin)
		}),
		a.newSetChargeLimitCommand(),
		a.newSetChargeModeCommand(),
		a.enabledOperationCommand("set-battery-care-mode", "Enable or disable the battery care mode", func(ctx context.Context, vin string, enabled bool) error {
			return a.client.SetBatteryCareMode(ctx, vin, enabled)
		}),
		a.enabledOperationCommand("set-reduced-current-limit", "Enable or disable charging with reduced current", func(ctx context.Context, vin string, enabled bool) error {
			return a.client.SetReducedCurrentLimit(ctx, vin, enabled)
		}),
		a.newStartAirConditioningCommand(),
		a.operationCommand("stop-air-conditioning", "Stop the air conditioning", func(ctx context.Context, vin string) error {
			return a.client.StopAirConditioning(ctx, vin)
		}),
		a.newSetTargetTemperatureCommand(),
		a.operationCommand("start-window-heating", "Start heating the front and rear window", func(ctx context.Context, vin string) error {
			return a.client.StartWindowHeating(ctx, vin)
		}),
		a.operationCommand("stop-window-heating", "Stop heating the front and rear window", func(ctx context.Context, vin string) error {
			return a.client.StopWindowHeating(ctx, vin)
		}),
		a.newSetSeatsHeatingCommand(),
		a.enabledOperationCommand("set-ac-at-unlock", "Enable or disable starting the climate on unlock", func(ctx context.Context, vin string, enabled bool) error {
			return a.client.SetACAtUnlock(ctx, vin, enabled)
		}),
		a.enabledOperationCommand("set-ac-without-external-power", "Enable or disable climate without external power", func(ctx context.Context, vin string, enabled bool) error {
			return a.client.SetACWithoutExternalPower(ctx, vin, enabled)
		}),
		a.newStartAuxiliaryHeatingCommand(),
		a.operationCommand("stop-auxiliary-heating", "Stop the auxiliary heater", func(ctx context.Context, vin string) error {
			return a.client.StopAuxiliaryHeating(ctx, vin)
		}),
		a.spinOperationCommand("lock", "Lock the vehicle", func(ctx context.Context, vin, spin string) error {
			return a.client.Lock(ctx, vin, spin)
		}),
		a.spinOperationCommand("unlock", "Unlock the vehicle", func(ctx context.Context, vin, spin string) error {
			return a.client.Unlock(ctx, vin, spin)
		}),
		a.operationCommand("wakeup", "Wake the vehicle up, allowed three times a day", func(ctx context.Context, vin string) error {
			return a.client.Wakeup(ctx, vin)
		}),
		a.operationCommand("honk-flash", "Honk the horn and flash the lights", func(ctx context.Context, vin string) error {
			return a.client.HonkFlash(ctx, vin)
		}),
		a.operationCommand("flash", "Flash the lights", func(ctx context.Context, vin string) error {
			return a.client.Flash(ctx, vin)
		}),
	)
}

// runOperation connects with the event stream enabled and reports the
// outcome of one vehicle command.
func (a *app) runOperation(cmd *cobra.Command, name string, run func(ctx context.Context) error) error {
	ctx, cancel := a.commandContext(cmd.Context())
	defer cancel()
	if err := a.connect(ctx, true); err != nil {
		return err
	}
	if err := run(ctx); err != nil {
		return err
	}
	if a.eventsEnabled() {
		a.printOK(name + " completed")
	} else {
		a.printOK(name + " accepted")
	}
	return nil
}

func (a *app) operationCommand(name, short string, run func(ctx context.Context, vin string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " VIN",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, name, func(ctx context.Context) error {
				return run(ctx, args[0])
			})
		},
	}
}

func (a *app) spinOperationCommand(name, short string, run func(ctx context.Context, vin, spin string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " VIN",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSpin(); err != nil {
				return err
			}
			return a.runOperation(cmd, name, func(ctx context.Context) error {
				return run(ctx, args[0], a.spin)
			})
		},
	}
}

// enabledOperationCommand builds a command toggled by a required --enabled
// flag.
func (a *app) enabledOperationCommand(name, short string, run func(ctx context.Context, vin string, enabled bool) error) *cobra.Command {
	var enabled bool
	cmd := &cobra.Command{
		Use:   name + " VIN",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, name, func(ctx context.Context) error {
				return run(ctx, args[0], enabled)
			})
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", false, "enable or disable the setting")
	_ = cmd.MarkFlagRequired("enabled")
	return cmd
}

func (a *app) newSetChargeLimitCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "set-charge-limit VIN",
		Short: "Set the maximum charge limit in percent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, "set-charge-limit", func(ctx context.Context) error {
				return a.client.SetChargeLimit(ctx, args[0], limit)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "charge limit in percent")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func (a *app) newSetChargeModeCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "set-charge-mode VIN",
		Short: "Select the charge mode, for example manual or preferred-charging-times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, "set-charge-mode", func(ctx context.Context) error {
				normalized := strings.ToUpper(strings.ReplaceAll(mode, "-", "_"))
				return a.client.SetChargeMode(ctx, args[0], model.ChargeMode(normalized))
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "charge mode name")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}

func (a *app) newStartAirConditioningCommand() *cobra.Command {
	var temperature float64
	cmd := &cobra.Command{
		Use:   "start-air-conditioning VIN",
		Short: "Start the air conditioning with a target temperature in °C",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, "start-air-conditioning", func(ctx context.Context) error {
				return a.client.StartAirConditioning(ctx, args[0], temperature)
			})
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "target temperature in °C")
	_ = cmd.MarkFlagRequired("temperature")
	return cmd
}

func (a *app) newSetTargetTemperatureCommand() *cobra.Command {
	var temperature float64
	cmd := &cobra.Command{
		Use:   "set-target-temperature VIN",
		Short: "Set the air conditioning's target temperature in °C",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, "set-target-temperature", func(ctx context.Context) error {
				return a.client.SetTargetTemperature(ctx, args[0], temperature)
			})
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "target temperature in °C")
	_ = cmd.MarkFlagRequired("temperature")
	return cmd
}

func (a *app) newSetSeatsHeatingCommand() *cobra.Command {
	var frontLeft, frontRight bool
	cmd := &cobra.Command{
		Use:   "set-seats-heating VIN",
		Short: "Enable or disable the seat heating per seat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var settings model.SeatHeating
			if cmd.Flags().Changed("front-left") {
				settings.FrontLeft = &frontLeft
			}
			if cmd.Flags().Changed("front-right") {
				settings.FrontRight = &frontRight
			}
			return a.runOperation(cmd, "set-seats-heating", func(ctx context.Context) error {
				return a.client.SetSeatsHeating(ctx, args[0], settings)
			})
		},
	}
	cmd.Flags().BoolVar(&frontLeft, "front-left", false, "heat the front left seat")
	cmd.Flags().BoolVar(&frontRight, "front-right", false, "heat the front right seat")
	return cmd
}

func (a *app) newStartAuxiliaryHeatingCommand() *cobra.Command {
	var (
		temperature float64
		duration    time.Duration
		mode        string
	)
	cmd := &cobra.Command{
		Use:   "start-auxiliary-heating VIN",
		Short: "Start the auxiliary heater",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSpin(); err != nil {
				return err
			}
			config := &model.AuxiliaryConfig{}
			if cmd.Flags().Changed("temperature") {
				target := model.NewTargetTemperature(temperature)
				config.TargetTemperature = &target
			}
			if cmd.Flags().Changed("duration") {
				config.DurationInSeconds = int(duration.Seconds())
			}
			if cmd.Flags().Changed("mode") {
				config.StartMode = model.AuxiliaryStartMode(strings.ToUpper(mode))
			}
			return a.runOperation(cmd, "start-auxiliary-heating", func(ctx context.Context) error {
				return a.client.StartAuxiliaryHeating(ctx, args[0], a.spin, config)
			})
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "target temperature in °C")
	cmd.Flags().DurationVar(&duration, "duration", 0, "how long to heat, for example 20m")
	cmd.Flags().StringVar(&mode, "mode", "", "start mode, heating or ventilation")
	return cmd
}
