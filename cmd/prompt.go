package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scimrename/internal/config"
	renameerrors "scimrename/internal/errors"
)

// readLine prints prompt and returns the next input line without its line
// ending. A final line without a newline is still returned; io.EOF is only
// reported when nothing was read.
func readLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// linePrompter asks questions on the operator's terminal.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *linePrompter) Ask(question string) (string, error) {
	answer, err := readLine(p.in, p.out, question)
	if err == io.EOF {
		// No answer is a refusal.
		return "", nil
	}
	return answer, err
}

// promptToken reads the API token without echo when stdin is a terminal.
// Non-interactive runs leave the token empty for Validate to report.
func promptToken(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s is not set. Enter the SCIM token: ", config.EnvToken)
	token, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", renameerrors.NewConfigError("failed to read token", err)
	}
	return strings.TrimSpace(string(token)), nil
}
