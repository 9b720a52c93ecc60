package main

import (
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"
	yamlv2 "gopkg.in/yaml.v2"
	"sigs.k8s.io/yaml"

	"github.com/pypa/packaging/pkg/python/pep425"
)

func init() {
	var probeFile string
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "tags [flags]",
		Short: "List the wheel tags an interpreter supports, most preferred first",
		Long: "List the compatibility tags supported by an interpreter, in " +
			"preference order." +
			"\n\n" +
			"pypkg does not inspect the interpreter or the operating system " +
			"itself; you must describe them with the --probe-file flag, " +
			"pointing it at a YAML file that is as follows:" +
			"\n\n" +
			"    interpreter_name: cpython\n" +
			"    python_version: [3, 11]\n" +
			"    abis: [cp311]\n" +
			"    os: linux\n" +
			"    arch: x86_64\n" +
			"    glibc_version: [2, 31]\n" +
			"\n" +
			"A darwin probe carries 'mac_version: [12, 0]' instead of the " +
			"libc version; an ios probe carries 'ios_version' and " +
			"'multiarch'; an android probe carries 'android_api_level'.",
		Args: cobra.NoArgs,
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			yamlBytes, err := os.ReadFile(probeFile)
			if err != nil {
				return err
			}
			var probe pep425.Probe
			if err := yaml.Unmarshal(yamlBytes, &probe, yaml.DisallowUnknownFields); err != nil {
				return fmt.Errorf("%s: %w", probeFile, err)
			}

			tags, err := pep425.SysTags(probe)
			if err != nil {
				return err
			}
			dlog.Debugf(ctx, "%s: %d tags", probe.Interpreter(), len(tags))

			if asYAML {
				strs := make([]string, 0, len(tags))
				for _, tag := range tags {
					strs = append(strs, tag.String())
				}
				bs, err := yamlv2.Marshal(map[string][]string{"tags": strs})
				if err != nil {
					return err
				}
				_, err = flags.OutOrStdout().Write(bs)
				return err
			}
			for _, tag := range tags {
				fmt.Fprintln(flags.OutOrStdout(), tag)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&probeFile, "probe-file", "",
		"Read `IN_YAML_FILE` to determine details about the interpreter and platform")
	cmd.Flags().BoolVar(&asYAML, "yaml", false,
		"Emit the tag list as a YAML document instead of one tag per line")
	if err := cmd.MarkFlagRequired("probe-file"); err != nil {
		panic(err)
	}
	argparser.AddCommand(cmd)
}
