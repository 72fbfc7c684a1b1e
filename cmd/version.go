package cmd

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

// Set through -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

const (
	appName        = "scimrename"
	appDescription = "Bulk rename of SCIM user logins through an editable mapping file"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := buildVersion(version, commit, date, builtBy, treeState)
		_, err := fmt.Fprintln(cmd.OutOrStdout(), v.String())
		return err
	},
}

func buildVersion(version, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(appName, appDescription, ""),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
