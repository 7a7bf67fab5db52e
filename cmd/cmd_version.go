package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":        presale.Version,
	"presale": presale.Version,
}

type versionCmdOptions struct {
	Module string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show presale-ledger version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Module, "module", "", `Show version of a specific module. E.g. "presale"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	version, ok := versions[opts.Module]
	if !ok {
		return errors.Wrap(errs.InvalidInput, "Invalid module name")
	}
	fmt.Println(version)
	return nil
}
