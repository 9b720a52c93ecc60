package main

import (
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/pypa/packaging/pkg/cliutil"
	"github.com/pypa/packaging/pkg/python/pep440"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compare V1 OP V2",
		Short: "Compare two PEP 440 versions",
		Long: "Compare two PEP 440 version identifiers.  OP is one of " +
			"'<', '<=', '==', '!=', '>=', or '>'.  The exit status is 0 if the " +
			"comparison holds, 1 if it does not, and 2 if either version (or " +
			"the operator) does not parse.",
		Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(3)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			v1, err := pep440.ParseVersion(args[0])
			if err != nil {
				fmt.Fprintf(flags.ErrOrStderr(), "%v\n", err)
				os.Exit(2)
			}
			v2, err := pep440.ParseVersion(args[2])
			if err != nil {
				fmt.Fprintf(flags.ErrOrStderr(), "%v\n", err)
				os.Exit(2)
			}

			d := v1.Cmp(*v2)
			dlog.Debugf(ctx, "%s <=> %s = %d", v1, v2, d)

			var holds bool
			switch args[1] {
			case "<":
				holds = d < 0
			case "<=":
				holds = d <= 0
			case "==":
				holds = d == 0
			case "!=":
				holds = d != 0
			case ">=":
				holds = d >= 0
			case ">":
				holds = d > 0
			default:
				fmt.Fprintf(flags.ErrOrStderr(), "invalid comparison operator: %q\n", args[1])
				os.Exit(2)
			}

			if !holds {
				os.Exit(1)
			}
			return nil
		},
	}
	argparser.AddCommand(cmd)
}
