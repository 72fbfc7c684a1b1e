package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"scimrename/internal/errors"
	"scimrename/internal/log"
	"scimrename/internal/parser"
)

// Applier renames users listed in an edited mapping file.
type Applier struct {
	settings
	client   Patcher
	prompter Prompter
}

// RowFailure records a row whose rename was abandoned.
type RowFailure struct {
	Row parser.Row
	Err error
}

// ApplyResult is the outcome of one update run. Row failures do not fail
// the run; they are collected here and exposed through Err.
type ApplyResult struct {
	FilePath  string
	Total     int
	Rejected  int
	Eligible  []parser.Row
	Applied   []parser.Row
	Failed    []RowFailure
	Cancelled bool
	Duration  time.Duration

	errs *multierror.Error
}

// Err returns every row failure combined, or nil when all renames succeeded.
func (r *ApplyResult) Err() error {
	return r.errs.ErrorOrNil()
}

// Summary converts the result for log.WriteSummary.
func (r *ApplyResult) Summary() log.Summary {
	s := log.Summary{
		Operation:      "update",
		Total:          r.Total,
		Eligible:       len(r.Eligible),
		Rejected:       r.Rejected,
		Applied:        len(r.Applied),
		Failed:         len(r.Failed),
		Cancelled:      r.Cancelled,
		ProcessingTime: r.Duration,
	}
	for _, f := range r.Failed {
		s.Errors = append(s.Errors, fmt.Sprintf("%s (%s): %v", f.Row.UID, f.Row.OldUserName, f.Err))
	}
	return s
}

func (r *ApplyResult) addFailure(row parser.Row, err error) {
	r.Failed = append(r.Failed, RowFailure{Row: row, Err: err})
	r.errs = multierror.Append(r.errs, fmt.Errorf("uid %s: %w", row.UID, err))
}

// NewApplier creates an Applier. prompter must obtain the operator's answer
// before any request is sent.
func NewApplier(client Patcher, prompter Prompter, logger logrus.FieldLogger, opts ...Option) *Applier {
	a := &Applier{
		settings: defaultSettings(logger),
		client:   client,
		prompter: prompter,
	}
	for _, opt := range opts {
		opt(&a.settings)
	}
	return a
}

// IsAffirmative reports whether answer is "Y" or "YES", ignoring case and
// surrounding whitespace.
func IsAffirmative(answer string) bool {
	switch strings.ToUpper(strings.TrimSpace(answer)) {
	case "Y", "YES":
		return true
	default:
		return false
	}
}

// Plan reads filePath and sorts its rows into eligible and rejected ones,
// logging the reason for every rejection. It never contacts the API.
func (a *Applier) Plan(filePath string) (*ApplyResult, error) {
	lines, err := parser.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{FilePath: filePath, Total: len(lines)}
	for _, line := range lines {
		row := line.Row
		switch line.Reason {
		case "":
			result.Eligible = append(result.Eligible, row)
			continue
		case parser.ReasonFieldCount:
			a.logger.Errorf("Line number %d has wrong count of values (should be 4 values, separated by semicolon). Skipping.", line.Number)
		case parser.ReasonInvalidUID:
			a.logger.Infof("Uid %s is not valid (%s). Skipping.", row.UID, row.DisplayName)
		case parser.ReasonEmptyName:
			a.logger.Infof("New userName for uid %s (%s) is empty. Skipping.", row.UID, row.DisplayName)
		case parser.ReasonUnchanged:
			a.logger.Debugf("User %s (%s) has the same new name %s. Skipping.", row.OldUserName, row.DisplayName, row.NewUserName)
		}
		result.Rejected++
	}

	if len(result.Eligible) == 0 {
		a.logger.Errorf("File %s is empty.", filePath)
		return result, errors.NewPreconditionError(filePath, "no eligible rows to update")
	}

	for _, row := range result.Eligible {
		a.logger.Debugf("Will modify - %s.", row.Line())
	}
	return result, nil
}

// Apply plans filePath, asks for confirmation and renames every eligible
// user in file order. A row that still fails after every retry is recorded
// and skipped; only context cancellation stops the batch early.
func (a *Applier) Apply(ctx context.Context, filePath string) (*ApplyResult, error) {
	started := time.Now()

	result, err := a.Plan(filePath)
	if err != nil {
		return result, err
	}

	question := fmt.Sprintf("Modify userName SCIM attribute for %d users? (Y/n): ", len(result.Eligible))
	answer, err := a.prompter.Ask(question)
	if err != nil {
		return result, err
	}
	if !IsAffirmative(answer) {
		a.logger.Info("Update cancelled by operator.")
		result.Cancelled = true
		return result, nil
	}

	for _, row := range result.Eligible {
		rowLogger := a.logger.WithField("uid", row.UID)
		rowLogger.Infof("Changing user %s to %s...", row.OldUserName, row.NewUserName)

		err := a.policy.Do(ctx, "uid "+row.UID, rowLogger, func(ctx context.Context) error {
			return a.client.PatchUserName(ctx, row.UID, row.NewUserName)
		})
		if err != nil {
			if ctx.Err() != nil {
				result.Duration = time.Since(started)
				return result, err
			}
			rowLogger.Errorf("Error. Patching user %s to %s failed.", row.OldUserName, row.NewUserName)
			result.addFailure(row, err)
			continue
		}

		rowLogger.Infof("Success - User %s changed to %s.", row.OldUserName, row.NewUserName)
		result.Applied = append(result.Applied, row)
	}

	result.Duration = time.Since(started)
	return result, nil
}
