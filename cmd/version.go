package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minute-cli/pkg/buildinfo"
)

// NewVersionCommand creates the 'version' command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("minute %s\n", buildinfo.String())
			fmt.Printf("go %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
