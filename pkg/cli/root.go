// Package cli implements the znptool commands. Each command is a thin
// wrapper over the driver packages; no protocol logic lives here.
package cli

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urmzd/znp/pkg/znp"
)

// Options carries the flags shared by every subcommand.
type Options struct {
	v   *viper.Viper
	log zerolog.Logger
}

// NewRootCommand builds the znptool command tree. Flags are bound to
// viper so a znptool.yaml config file can supply them too.
func NewRootCommand() *cobra.Command {
	opts := &Options{v: viper.New()}

	command := &cobra.Command{
		Use:   "znptool",
		Short: "Backup, restore, form, scan, and flash TI ZNP Zigbee coordinators",
		RunE: func(command *cobra.Command, args []string) error {
			return errors.New("please select a command")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		SilenceUsage: true,
	}

	pf := command.PersistentFlags()
	pf.String("port", "/dev/ttyUSB0", "serial port of the ZNP dongle")
	pf.Int("baudrate", 115200, "serial baud rate")
	pf.Bool("verbose", false, "enable debug logging")
	pf.Duration("sreq-timeout", 15*time.Second, "synchronous request timeout")

	command.AddCommand(NewBackupCommand(opts))
	command.AddCommand(NewRestoreCommand(opts))
	command.AddCommand(NewFormCommand(opts))
	command.AddCommand(NewScanCommand(opts))
	command.AddCommand(NewFlashCommand(opts))

	return command
}

func (o *Options) setup(cmd *cobra.Command) error {
	o.v.SetConfigName("znptool")
	o.v.SetConfigType("yaml")
	o.v.AddConfigPath("$HOME/.config/znptool")
	o.v.AddConfigPath(".")
	o.v.SetEnvPrefix("ZNPTOOL")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()
	if err := o.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	// A missing config file is fine; flags and env cover everything.
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	level := zerolog.InfoLevel
	if o.v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	o.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func (o *Options) driverConfig() znp.Config {
	return znp.Config{
		Port:        o.v.GetString("port"),
		BaudRate:    o.v.GetInt("baudrate"),
		SREQTimeout: o.v.GetDuration("sreq-timeout"),
		Logger:      &o.log,
	}
}
