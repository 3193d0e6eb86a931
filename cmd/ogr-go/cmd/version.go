package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/geobridge/ogr-go/pkg/ogr"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wrapper and driver versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ogr-go version: %s\n", ogr.WrapperVersion())
		s, err := openSession(cmd)
		if err != nil {
			if errors.Is(err, ogr.ErrNotBuilt) {
				fmt.Fprintf(out, "driver unavailable: %v\n", err)
				return nil
			}
			return err
		}
		defer s.Close()
		fmt.Fprintf(out, "driver: %s\n", s.lib.DriverVersion())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
