// Avl keeps a virtual audio sink/source pair routed to the best
// available physical device.
//
// Applications attach to the virtual endpoints; avl watches the
// configured Bluetooth headsets over the system bus and reconciles the
// PipeWire link graph as they connect, disconnect and change profile,
// falling back to a USB device when no headset is active.
//
// Usage:
//
//	avl run                start the routing daemon
//	avl wire <mode>        apply a wiring mode once and exit
//	avl status             show devices, profiles and current links
//	avl config init        write an example configuration file
//
// See 'avl --help' for available flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketraman/audio-virtual-linker/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "avl",
	Short: "Audio virtual linker",
	Long: `Keeps a virtual sink/source pair wired to the best available audio device.

A prioritized list of Bluetooth headsets and a USB fallback are described
in the configuration file. The daemon watches each headset's property
changes on the system bus and moves the PipeWire links so that the
virtual endpoints always reach the highest-priority active device.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("avl %s\n", version.Full())
	},
}
