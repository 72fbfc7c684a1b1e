package users

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"scimrename/internal/errors"
	"scimrename/internal/parser"
	"scimrename/internal/replacement"
	"scimrename/internal/scim"
)

// Fetcher pages through every remote user and writes the mapping file.
type Fetcher struct {
	settings
	client Lister
	engine *replacement.Engine
}

// DownloadResult describes a written mapping file.
type DownloadResult struct {
	FilePath   string
	Users      int
	BackupPath string
}

// NewFetcher creates a Fetcher deriving new logins with the given template.
func NewFetcher(client Lister, format string, logger logrus.FieldLogger, opts ...Option) *Fetcher {
	f := &Fetcher{
		settings: defaultSettings(logger),
		client:   client,
		engine:   replacement.NewEngine(format),
	}
	for _, opt := range opts {
		opt(&f.settings)
	}
	return f
}

// FetchAll requests pages until the last one is reached. A page that still
// fails after every retry aborts the whole fetch and nothing fetched so far
// is returned.
func (f *Fetcher) FetchAll(ctx context.Context) ([]scim.User, error) {
	var users []scim.User
	startIndex := 1

	for {
		var page *scim.ListResponse
		unit := fmt.Sprintf("page at index %d", startIndex)

		err := f.policy.Do(ctx, unit, f.logger, func(ctx context.Context) error {
			p, err := f.client.ListUsers(ctx, startIndex, f.pageSize)
			if err != nil {
				return err
			}
			if len(p.Resources) == 0 && startIndex-1 < p.TotalResults {
				return errors.NewParsingError(unit,
					fmt.Sprintf("no users returned although totalResults is %d", p.TotalResults), nil)
			}
			page = p
			return nil
		})
		if err != nil {
			f.logger.Error("Forcing exit without getting data.")
			return nil, err
		}

		f.logger.Debugf("Received %d records.", len(page.Resources))
		users = append(users, page.Resources...)

		if page.ItemsPerPage <= 0 || len(page.Resources) == 0 {
			break
		}
		// Indexes are 1-based: the page covers startIndex..startIndex+itemsPerPage-1.
		next := page.StartIndex + page.ItemsPerPage
		if next-1 >= page.TotalResults {
			break
		}
		startIndex = next
	}

	return users, nil
}

// Rows converts users into mapping rows with proposed logins.
func (f *Fetcher) Rows(users []scim.User) []parser.Row {
	rows := make([]parser.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, parser.Row{
			UID:         u.ID,
			DisplayName: u.DisplayName,
			OldUserName: u.UserName,
			NewUserName: f.engine.Derive(u.UserName),
		})
	}
	return rows
}

// Download fetches every user and overwrites filePath with the mapping.
// The file is left untouched when the fetch fails or finds no users.
func (f *Fetcher) Download(ctx context.Context, filePath string) (*DownloadResult, error) {
	f.logger.Debugf("Using login format %q", f.engine.Format())

	users, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		f.logger.Info("No users found. Check your settings.")
		return nil, errors.NewPreconditionError(filePath, "no users found")
	}

	backupPath, err := f.backup.BackupFile(filePath)
	if err != nil {
		return nil, err
	}
	if backupPath != "" {
		f.logger.Infof("Previous mapping saved to %s", backupPath)
	}

	if err := parser.WriteFile(filePath, f.Rows(users)); err != nil {
		if restoreErr := f.backup.RestoreFile(filePath, backupPath); restoreErr != nil {
			f.logger.WithError(restoreErr).Error("Failed to restore previous mapping")
		}
		return nil, err
	}

	f.logger.Infof("%d users downloaded to file %s", len(users), filePath)
	return &DownloadResult{
		FilePath:   filePath,
		Users:      len(users),
		BackupPath: backupPath,
	}, nil
}
