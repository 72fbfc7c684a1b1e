// Package users implements the two operations of the tool: downloading every
// user into a mapping file and applying an edited mapping file back to the
// SCIM API. Both run strictly sequentially, one request in flight at a time.
package users

import (
	"context"

	"github.com/sirupsen/logrus"

	"scimrename/internal/backup"
	"scimrename/internal/retry"
	"scimrename/internal/scim"
)

// DefaultPageSize is the number of users requested per page.
const DefaultPageSize = 100

// Lister fetches one page of users.
type Lister interface {
	ListUsers(ctx context.Context, startIndex, count int) (*scim.ListResponse, error)
}

// Patcher renames one user.
type Patcher interface {
	PatchUserName(ctx context.Context, uid, newUserName string) error
}

// Prompter asks the operator a question and returns the raw answer.
type Prompter interface {
	Ask(question string) (string, error)
}

type settings struct {
	policy   retry.Policy
	backup   *backup.Manager
	pageSize int
	logger   logrus.FieldLogger
}

func defaultSettings(logger logrus.FieldLogger) settings {
	return settings{
		policy:   retry.DefaultPolicy(),
		backup:   backup.NewBackupManager(false),
		pageSize: DefaultPageSize,
		logger:   logger,
	}
}

// Option customises a Fetcher or an Applier.
type Option func(*settings)

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithBackup makes the Fetcher copy an existing mapping file before
// overwriting it. Ignored by the Applier, which never writes the file.
func WithBackup(m *backup.Manager) Option {
	return func(s *settings) {
		if m != nil {
			s.backup = m
		}
	}
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}
