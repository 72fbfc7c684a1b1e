// Package cmd implements the command-line interface of scimrename. It wires
// configuration, logging and the SCIM client into the download and update
// operations and drives the interactive menu.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"scimrename/internal/backup"
	"scimrename/internal/config"
	renameerrors "scimrename/internal/errors"
	"scimrename/internal/log"
	"scimrename/internal/scim"
	"scimrename/internal/users"
)

// session bundles what one invocation needs: settings, logger and the
// operator's terminal.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	in     *bufio.Reader
	out    io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: log.NewLogger(cfg, cmd.ErrOrStderr()),
		in:     bufio.NewReader(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
	}, nil
}

func (s *session) close() {
	_ = s.logger.Close()
}

func (s *session) prompter() users.Prompter {
	return &linePrompter{in: s.in, out: s.out}
}

func executeDownload(ctx context.Context, s *session) error {
	logger := log.WithRun(s.logger, "download")

	client := scim.NewClient(s.cfg.BaseURL(), s.cfg.Token, logger)
	defer client.Close()

	fetcher := users.NewFetcher(client, s.cfg.LoginFormat, logger,
		users.WithBackup(backup.NewBackupManager(s.cfg.Backup)),
	)
	_, err := fetcher.Download(ctx, s.cfg.UsersFile)
	return err
}

func executeUpdate(ctx context.Context, s *session) error {
	logger := log.WithRun(s.logger, "update")

	client := scim.NewClient(s.cfg.BaseURL(), s.cfg.Token, logger)
	defer client.Close()

	applier := users.NewApplier(client, s.prompter(), logger)
	result, err := applier.Apply(ctx, s.cfg.UsersFile)
	if err != nil {
		return err
	}

	if err := log.WriteSummary(s.out, result.Summary()); err != nil {
		return err
	}
	if failures := result.Err(); failures != nil {
		logger.WithError(failures).Errorf("%d of %d users were not renamed", len(result.Failed), len(result.Eligible))
	}
	return nil
}

func runDownload(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return executeDownload(ctx, s)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return executeUpdate(ctx, s)
}

// isOperatorError reports errors the menu reports and survives: bad input
// files, empty results and exhausted retries.
func isOperatorError(err error) bool {
	return errors.Is(err, renameerrors.Precondition) ||
		errors.Is(err, renameerrors.Aborted) ||
		errors.Is(err, renameerrors.File) ||
		errors.Is(err, renameerrors.Parsing) ||
		errors.Is(err, renameerrors.Transport)
}
