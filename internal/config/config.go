// Package config provides configuration loading and validation for scimrename.
// Settings come from the process environment, optionally overridden by a
// .env file, and finally by command-line flags applied by the cmd package.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"scimrename/internal/errors"
)

// Environment variable names understood by the tool.
const (
	EnvToken       = "SCIM_TOKEN_ARG"
	EnvDomainID    = "SCIM_DOMAIN_ID_ARG"
	EnvUsersFile   = "USERS_FILE_ARG"
	EnvLoginFormat = "NEW_LOGIN_DEFAULT_FORMAT_ARG"
	EnvAPIURL      = "SCIM_API_URL_ARG"
)

// Defaults applied by Normalize when a setting is left empty.
const (
	DefaultLoginFormat = "alias@domain.tld"
	DefaultAPIURL      = "https://{domain}.scim-api.passport.yandex.net/"
	DefaultLogFile     = "change_scim_user_name.log"
	DefaultEnvFile     = ".env"
)

// Config holds all runtime settings for the download and update operations.
// It is read-only once validated, except for LoginFormat which the
// interactive menu may change between operations.
type Config struct {
	Token       string
	DomainID    string
	UsersFile   string
	LoginFormat string
	APIURL      string
	EnvFile     string
	LogFile     string
	Debug       bool
	Backup      bool
}

// Load builds a Config from the environment and the optional .env file.
// Values found in the .env file win over the environment. A missing .env
// file is not an error.
func Load(envFile string) (*Config, error) {
	values := map[string]string{
		EnvToken:       os.Getenv(EnvToken),
		EnvDomainID:    os.Getenv(EnvDomainID),
		EnvUsersFile:   os.Getenv(EnvUsersFile),
		EnvLoginFormat: os.Getenv(EnvLoginFormat),
		EnvAPIURL:      os.Getenv(EnvAPIURL),
	}

	if envFile != "" {
		if err := overlayEnvFile(envFile, values); err != nil {
			return nil, err
		}
	}

	return &Config{
		Token:       values[EnvToken],
		DomainID:    values[EnvDomainID],
		UsersFile:   values[EnvUsersFile],
		LoginFormat: values[EnvLoginFormat],
		APIURL:      values[EnvAPIURL],
		EnvFile:     envFile,
		LogFile:     DefaultLogFile,
	}, nil
}

func overlayEnvFile(path string, values map[string]string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return errors.NewConfigErrorWithPath(path, "failed to parse env file", err)
	}

	section := file.Section(ini.DefaultSection)
	for name := range values {
		if section.HasKey(name) {
			values[name] = section.Key(name).String()
		}
	}
	return nil
}

// Validate checks that every required setting is present and fills in
// defaults. All missing settings are reported in one error so the operator
// can fix the environment in a single pass.
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, EnvToken)
	}
	if strings.TrimSpace(c.DomainID) == "" {
		missing = append(missing, EnvDomainID)
	}
	if strings.TrimSpace(c.UsersFile) == "" {
		missing = append(missing, EnvUsersFile)
	}

	if len(missing) > 0 {
		return errors.NewConfigError(strings.Join(missing, ", ")+" is not set", nil)
	}

	if err := c.validateUsersFile(); err != nil {
		return err
	}

	c.Normalize()
	return nil
}

func (c *Config) validateUsersFile() error {
	absPath, err := filepath.Abs(c.UsersFile)
	if err != nil {
		return errors.NewConfigErrorWithPath(c.UsersFile, "invalid users file path", err)
	}
	c.UsersFile = absPath
	return nil
}

// Normalize trims whitespace and applies defaults for optional settings.
func (c *Config) Normalize() {
	c.DomainID = strings.TrimSpace(c.DomainID)
	c.Token = strings.TrimSpace(c.Token)
	c.SetLoginFormat(c.LoginFormat)

	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = DefaultAPIURL
	}
}

// SetLoginFormat replaces the new-login template. A blank value restores
// DefaultLoginFormat.
func (c *Config) SetLoginFormat(format string) {
	format = strings.TrimSpace(format)
	if format == "" {
		format = DefaultLoginFormat
	}
	c.LoginFormat = format
}

// BaseURL returns the API root for the configured domain without a trailing
// slash.
func (c *Config) BaseURL() string {
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	apiURL = strings.ReplaceAll(apiURL, "{domain}", c.DomainID)
	return strings.TrimRight(apiURL, "/")
}
