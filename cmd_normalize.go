package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pypa/packaging/pkg/cliutil"
	"github.com/pypa/packaging/pkg/python/pep503"
)

func init() {
	argparser.AddCommand(&cobra.Command{
		Use:   "normalize NAME...",
		Short: "Print the PEP 503 normalized form of project names",
		Args:  cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			for _, arg := range args {
				name, err := pep503.ParseName(arg)
				if err != nil {
					return err
				}
				fmt.Fprintln(flags.OutOrStdout(), name)
			}
			return nil
		},
	})
}
