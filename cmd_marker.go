package main

import (
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/pypa/packaging/pkg/cliutil"
	"github.com/pypa/packaging/pkg/python/pep508"
)

// contextFlag makes a pep508.EvalContext usable as a --context flag value.
type contextFlag pep508.EvalContext

var _ pflag.Value = (*contextFlag)(nil)

func (f *contextFlag) String() string {
	return pep508.EvalContext(*f).String()
}

func (f *contextFlag) Set(val string) error {
	switch val {
	case "metadata":
		*f = contextFlag(pep508.ContextMetadata)
	case "lock_file":
		*f = contextFlag(pep508.ContextLockFile)
	case "requirement":
		*f = contextFlag(pep508.ContextRequirement)
	default:
		return fmt.Errorf("invalid marker context: %q", val)
	}
	return nil
}

func (f *contextFlag) Type() string {
	return "context"
}

func init() {
	var envFile string
	evalCtx := contextFlag(pep508.ContextRequirement)
	cmd := &cobra.Command{
		Use:   "marker [flags] EXPR",
		Short: "Evaluate a PEP 508 environment marker",
		Long: "Evaluate an environment marker expression against a described " +
			"environment.  The exit status is 0 if the marker evaluates true, " +
			"1 if it evaluates false, and 2 if the marker does not parse or " +
			"the evaluation is invalid." +
			"\n\n" +
			"pypkg does not inspect the running system; describe the target " +
			"environment with the --environment-file flag, pointing it at a " +
			"YAML file that is as follows:" +
			"\n\n" +
			"    scalar:\n" +
			"      os_name: posix\n" +
			"      sys_platform: linux\n" +
			"      python_version: \"3.11\"\n" +
			"      python_full_version: 3.11.4\n" +
			"      implementation_name: cpython\n" +
			"      # ... the rest of the PEP 508 keys\n" +
			"    list:\n" +
			"      extras: [tests]\n" +
			"\n" +
			"Keys the marker does not reference may be omitted.",
		Args: cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			env := pep508.Environment{}
			if envFile != "" {
				yamlBytes, err := os.ReadFile(envFile)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(yamlBytes, &env, yaml.DisallowUnknownFields); err != nil {
					return fmt.Errorf("%s: %w", envFile, err)
				}
			}

			marker, err := pep508.ParseMarker(args[0])
			if err != nil {
				fmt.Fprintf(flags.ErrOrStderr(), "%v\n", err)
				os.Exit(2)
			}
			dlog.Debugf(ctx, "canonical marker: %s", marker)

			result, err := marker.Evaluate(env, pep508.EvalContext(evalCtx))
			if err != nil {
				fmt.Fprintf(flags.ErrOrStderr(), "%v\n", err)
				os.Exit(2)
			}
			fmt.Fprintln(flags.OutOrStdout(), result)
			if !result {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "environment-file", "",
		"Read `IN_YAML_FILE` to determine the marker environment")
	cmd.Flags().Var(&evalCtx, "context",
		"Evaluation context: one of 'metadata', 'lock_file', or 'requirement'")
	argparser.AddCommand(cmd)
}
