package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/urmzd/znp/pkg/bootloader"
	"github.com/urmzd/znp/pkg/serial"
)

// NewFlashCommand writes or reads firmware through the serial
// bootloader. The port is opened without the bootloader-skip pin dance so
// the device stays in its bootloader.
func NewFlashCommand(opts *Options) *cobra.Command {
	var read bool
	var size int

	command := &cobra.Command{
		Use:   "flash <file>",
		Short: "Flash firmware onto the dongle (or read it out with --read)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := serial.Open(serial.Config{
				Port:           opts.v.GetString("port"),
				BaudRate:       opts.v.GetInt("baudrate"),
				SkipBootloader: false,
			}, opts.log)
			if err != nil {
				return err
			}
			defer port.Close()

			client := bootloader.New(port, opts.log)
			if err := client.Handshake(cmd.Context()); err != nil {
				return err
			}

			progress := func(done, total int) {
				fmt.Printf("\r%d/%d bytes", done, total)
				if done == total {
					fmt.Println()
				}
			}

			if read {
				image, err := client.ReadFirmware(cmd.Context(), size, progress)
				if err != nil {
					return err
				}
				return os.WriteFile(args[0], image, 0o644)
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return client.WriteFirmware(cmd.Context(), image, progress)
		},
	}
	command.Flags().BoolVar(&read, "read", false, "read flash into the file instead of writing")
	command.Flags().IntVar(&size, "size", 0x40000, "bytes to read with --read")
	return command
}
