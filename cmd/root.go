package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/FarhadNuri/VC/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vc",
	Short: "Small-group voice rooms over WebRTC",
	Long: `VC lets a handful of people share a voice room identified by a short
code. Audio flows peer-to-peer; the server only brokers the session.

Create a room, share the code, and others join with it.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
