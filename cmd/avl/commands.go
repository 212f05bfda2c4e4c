package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rocketraman/audio-virtual-linker/internal/config"
	"github.com/rocketraman/audio-virtual-linker/internal/logging"
	"github.com/rocketraman/audio-virtual-linker/internal/pipewire"
	"github.com/rocketraman/audio-virtual-linker/internal/policy"
	"github.com/rocketraman/audio-virtual-linker/internal/routing"
	"github.com/rocketraman/audio-virtual-linker/internal/watcher"
)

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/avl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; default: info or $AVL_LOG_LEVEL)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(wireCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the routing daemon",
	Long: `Run the routing daemon.

Provisions the virtual sink/source pair, performs an initial
reconciliation against the live device state, then watches every
configured Bluetooth device concurrently. The daemon exits when any
watcher dies or on SIGINT/SIGTERM.`,
	Example: `  # Run with the default config
  avl run

  # Run with verbose logging and an explicit config
  avl run --config ./config.yaml --log-level debug`,
	RunE: runDaemon,
	// The daemon logs its own failures; repeating cobra usage text on a
	// runtime error would only bury them.
	SilenceUsage: true,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	registry, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cli := pipewire.NewCLI()
	modes := routing.BuildModes(registry)
	reconciler := routing.NewReconciler(cli, registry.Virtual)
	applier := policy.NewApplier(registry, cli, modes, reconciler)
	supervisor := watcher.NewSupervisor(registry, cli, cli, modes, reconciler, applier, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("Starting audio-virtual-linker")
	err = supervisor.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info("Shut down cleanly")
	return nil
}

var wireCmd = &cobra.Command{
	Use:   "wire <mode>",
	Short: "Apply a wiring mode once and exit",
	Long: `Apply the named wiring mode's fixed desired-edge table to the live graph.

Modes are derived from the configuration: "usb" plus "<device>-stereo"
and "<device>-hfp" for each Bluetooth device. Exits non-zero on an
unknown mode or a missing argument.`,
	Example: `  avl wire usb
  avl wire xm5-stereo
  avl wire earfun-hfp`,
	Args: cobra.ExactArgs(1),
	RunE: runWire,
}

func runWire(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	registry, err := config.Load(configPath)
	if err != nil {
		return err
	}

	modes := routing.BuildModes(registry)
	links, err := modes.Lookup(args[0])
	if err != nil {
		return err
	}

	cli := pipewire.NewCLI()
	reconciler := routing.NewReconciler(cli, registry.Virtual)
	if err := reconciler.Apply(cmd.Context(), links); err != nil {
		return err
	}

	fmt.Printf("Applied wiring mode %s (%d edges)\n", args[0], len(links))
	return nil
}

var statusStyles = struct {
	title  lipgloss.Style
	label  lipgloss.Style
	active lipgloss.Style
	dim    lipgloss.Style
}{
	title:  lipgloss.NewStyle().Bold(true).Underline(true),
	label:  lipgloss.NewStyle().Bold(true),
	active: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

var statusCmd = &cobra.Command{
	Use:          "status",
	Short:        "Show devices, live profiles and current links",
	RunE:         runStatus,
	SilenceUsage: true,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	registry, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cli := pipewire.NewCLI()
	ctx := cmd.Context()

	fmt.Println(statusStyles.title.Render("Devices"))
	for _, dev := range registry.BluetoothDevices() {
		profile, err := cli.ActiveProfile(ctx, dev.Card)
		display := statusStyles.dim.Render("disconnected")
		if err == nil {
			display = string(profile)
			if profile.Active() {
				display = statusStyles.active.Render(display)
			}
		}
		fmt.Printf("  %s rank=%d profile=%s\n", statusStyles.label.Render(dev.Name), dev.Rank, display)
	}
	if usb := registry.USBFallback(); usb != nil {
		fmt.Printf("  %s fallback (%d edges)\n", statusStyles.label.Render(usb.Name), len(usb.Links))
	}

	links, err := cli.Links(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(statusStyles.title.Render("Virtual links"))
	reconciler := routing.NewReconciler(cli, registry.Virtual)
	count := 0
	for _, l := range links {
		if !reconciler.TouchesBoundary(l) {
			continue
		}
		count++
		fmt.Printf("  %s\n", l)
	}
	if count == 0 {
		fmt.Println(statusStyles.dim.Render("  (none)"))
	}

	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Long: `Write a commented example configuration to the config path.

Refuses to overwrite an existing file. Edit the generated file to match
your headsets' addresses, cards and port names (see pw-link -o / -i and
pactl list cards).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		if err := config.WriteExample(path); err != nil {
			return err
		}
		fmt.Printf("Wrote example config to %s\n", path)
		return nil
	},
}
