package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scimrename/internal/config"
	renameerrors "scimrename/internal/errors"
)

type flags struct {
	EnvFile   string
	UsersFile string
	Format    string
	APIURL    string
	LogFile   string
	Debug     bool
	Backup    bool
}

var opts = &flags{}

var rootCmd = &cobra.Command{
	Use:   "scimrename",
	Short: "Rename SCIM user logins in bulk through a mapping file",
	Long: `scimrename downloads every user of a SCIM directory into a semicolon-delimited
mapping file with a proposed new login per user, and applies an edited mapping
file back through PATCH requests. Without a subcommand it starts an interactive
menu.

Settings are read from SCIM_TOKEN_ARG, SCIM_DOMAIN_ID_ARG, USERS_FILE_ARG and
NEW_LOGIN_DEFAULT_FORMAT_ARG, optionally overridden by a .env file and flags.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenu,
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download current users into the mapping file",
	Args:  cobra.NoArgs,
	RunE:  runDownload,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rename users listed in the mapping file",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

// Execute runs the root command and handles top-level error reporting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var re *renameerrors.RenameError
		if errors.As(err, &re) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", re.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "Env file with SCIM_* settings (overrides the environment)")
	pf.StringVarP(&opts.UsersFile, "file", "f", "", "Mapping file (overrides USERS_FILE_ARG)")
	pf.StringVar(&opts.Format, "format", "", "New login template using alias, domain and tld tokens (overrides NEW_LOGIN_DEFAULT_FORMAT_ARG)")
	pf.StringVar(&opts.APIURL, "api-url", "", "SCIM API URL template, {domain} is replaced by the domain id")
	pf.StringVar(&opts.LogFile, "log", config.DefaultLogFile, "Rotating log file, empty to disable")
	pf.BoolVar(&opts.Debug, "debug", false, "Print debug messages on the console")
	pf.BoolVar(&opts.Backup, "backup", false, "Keep a timestamped copy of the mapping file before download overwrites it")

	rootCmd.AddCommand(downloadCmd, updateCmd, versionCmd)
}

// loadConfig merges environment, env file and flags into a validated Config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("file") {
		cfg.UsersFile = opts.UsersFile
	}
	if cmd.Flags().Changed("format") {
		cfg.LoginFormat = opts.Format
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = opts.APIURL
	}
	cfg.LogFile = opts.LogFile
	cfg.Debug = opts.Debug
	cfg.Backup = opts.Backup

	if cfg.Token == "" {
		token, err := promptToken(cmd)
		if err != nil {
			return nil, err
		}
		cfg.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
