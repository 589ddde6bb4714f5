// Command footswitch reads pedal switches from GPIO and drives amp control
// lines, optionally publishing every edge to MQTT.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/footswitch/internal/config"
)

func main() {
	if err := newRootCmd(config.Default()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "footswitch",
		Short:        "Pedalboard to amp control line bridge",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Only the root's flags map to config keys; subcommand flags
			// such as config init's --output stay out of the loader.
			if err := c.LoadConfigWithFlagSet(cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			return setupLogging(c.LogLevel)
		},
	}
	c.AddFlags(root.PersistentFlags())

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Poll switches and drive control lines until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(c)
		},
	}

	printStateCmd := &cobra.Command{
		Use:   "print-state",
		Short: "Print the current switch positions and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printState(cmd.OutOrStdout(), c)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and print the layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.OutOrStdout(), c)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration file helpers",
	}
	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return configInit(cmd.OutOrStdout(), output, force)
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default stdout)")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(initCmd)

	root.AddCommand(runCmd, printStateCmd, validateCmd, configCmd)
	return root
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}
