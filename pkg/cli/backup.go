package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/urmzd/znp/pkg/backup"
	"github.com/urmzd/znp/pkg/znp"
)

// NewBackupCommand snapshots the coordinator into a JSON document.
func NewBackupCommand(opts *Options) *cobra.Command {
	command := &cobra.Command{
		Use:   "backup <file>",
		Short: "Save the coordinator's network and NVRAM to a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := znp.Open(opts.driverConfig())
			if err != nil {
				return err
			}
			defer driver.Close()

			doc, err := driver.Backup(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := doc.Marshal()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], raw, 0o600); err != nil {
				return err
			}
			opts.log.Info().Str("file", args[0]).Msg("Backup written")
			return nil
		},
	}
	return command
}

// NewRestoreCommand rebuilds the network from a backup document.
func NewRestoreCommand(opts *Options) *cobra.Command {
	command := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore a coordinator from a backup file and start the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := backup.Unmarshal(raw)
			if err != nil {
				return err
			}

			driver, err := znp.Open(opts.driverConfig())
			if err != nil {
				return err
			}
			defer driver.Close()

			if err := driver.Start(cmd.Context(), znp.Restore(doc)); err != nil {
				return err
			}
			net := driver.NetworkInfo()
			fmt.Printf("Network restored: PAN 0x%04X on channel %d\n", net.PanID, net.Channel)
			return nil
		},
	}
	return command
}

// NewFormCommand forms a fresh network.
func NewFormCommand(opts *Options) *cobra.Command {
	var channel uint8
	var panID uint16

	command := &cobra.Command{
		Use:   "form",
		Short: "Form a new network and print its parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := znp.Open(opts.driverConfig())
			if err != nil {
				return err
			}
			defer driver.Close()

			err = driver.Start(cmd.Context(), znp.Form(znp.FormConfig{
				Channel: channel,
				PanID:   panID,
			}))
			if err != nil {
				return err
			}

			net := driver.NetworkInfo()
			fmt.Printf("PAN ID:           0x%04X\n", net.PanID)
			fmt.Printf("Extended PAN ID:  %s\n", backup.IEEEString(net.ExtendedPanID))
			fmt.Printf("Channel:          %d\n", net.Channel)
			fmt.Printf("Network key:      %s\n", backup.KeyString(net.NetworkKey))
			return nil
		},
	}
	command.Flags().Uint8Var(&channel, "channel", 11, "logical channel (11..26)")
	command.Flags().Uint16Var(&panID, "pan-id", 0, "PAN id (0 randomises)")
	return command
}

// NewScanCommand runs an energy scan across the 2.4 GHz channels.
func NewScanCommand(opts *Options) *cobra.Command {
	var duration uint8

	command := &cobra.Command{
		Use:   "scan",
		Short: "Form a new network, then request an energy scan of the 2.4 GHz channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := znp.Open(opts.driverConfig())
			if err != nil {
				return err
			}
			defer driver.Close()

			if err := driver.Start(cmd.Context(), znp.Form(znp.FormConfig{})); err != nil {
				return err
			}
			if err := driver.EnergyScan(context.Background(), 0, duration, 1); err != nil {
				return err
			}
			opts.log.Info().Msg("Energy scan requested")
			return nil
		},
	}
	command.Flags().Uint8Var(&duration, "duration", 2, "scan duration exponent")
	return command
}
