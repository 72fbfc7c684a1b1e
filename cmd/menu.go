package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

type menuChoice struct {
	key   string
	label string
}

var menuChoices = []menuChoice{
	{"1", "Set new loginName format (default: alias@domain.tld)."},
	{"2", "Download current users into file."},
	{"3", "Use users file to change loginName of users."},
	{"0", "Exit"},
}

func runMenu(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return menuLoop(cmd.Context(), s)
}

// menuLoop serves the interactive menu until the operator exits or input
// ends. Operation failures are logged and the menu is shown again; anything
// else ends the loop with the error.
func menuLoop(ctx context.Context, s *session) error {
	for {
		printMenu(s)

		choice, err := readLine(s.in, s.out, fmt.Sprintf("Enter your choice (0-%d): ", len(menuChoices)-1))
		if err == io.EOF {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "0":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		case "1":
			fmt.Fprintln(s.out)
			if err := setLoginFormat(s); err != nil && err != io.EOF {
				return err
			}
		case "2":
			fmt.Fprintln(s.out)
			err = runOperation(ctx, s, executeDownload)
		case "3":
			fmt.Fprintln(s.out)
			err = runOperation(ctx, s, executeUpdate)
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
		}

		if err != nil {
			if !isOperatorError(err) {
				return err
			}
			s.logger.WithError(err).Error("Operation failed")
		}
	}
}

// runOperation lets an interrupt cancel the running operation without
// killing the menu prompt that follows.
func runOperation(ctx context.Context, s *session, op func(context.Context, *session) error) error {
	opCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := op(opCtx, s)
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		s.logger.Warn("Operation interrupted")
		return nil
	}
	return err
}

func printMenu(s *session) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "-------------------------- Config params ---------------------------")
	fmt.Fprintf(s.out, "New loginName format: %s\n", s.cfg.LoginFormat)
	fmt.Fprintf(s.out, "Users file: %s\n", s.cfg.UsersFile)
	fmt.Fprintln(s.out, "--------------------------------------------------------------------")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Select option:")
	for _, c := range menuChoices {
		fmt.Fprintf(s.out, "%s. %s\n", c.key, c.label)
	}
}

// setLoginFormat asks for a new template. Pressing Enter keeps the current
// one, a blank answer restores the default.
func setLoginFormat(s *session) error {
	answer, err := readLine(s.in, s.out, "Enter format of new userLogin name (space to use default format alias@domain.tld):\n")
	if err != nil {
		return err
	}
	if answer == "" {
		return nil
	}

	s.cfg.SetLoginFormat(answer)
	s.logger.Infof("New loginName format: %s", s.cfg.LoginFormat)
	return nil
}
