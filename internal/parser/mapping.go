// Package parser reads and writes the user mapping file that bridges the
// download and update operations. The format is a flat, semicolon-delimited
// text file with a fixed four-column schema and one header line. Fields are
// never quoted or escaped, so a ';' inside a display name breaks the row.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"scimrename/internal/errors"
)

// Header is the first line written to every mapping file.
const Header = "uid;displayName;old_userName;new_userName"

// Separator delimits the fields of a mapping line.
const Separator = ";"

const fieldCount = 4

// Row is a single line of the mapping file.
type Row struct {
	UID         string
	DisplayName string
	OldUserName string
	NewUserName string
}

// Line renders the row exactly as it is stored in the file.
func (r Row) Line() string {
	return strings.Join([]string{r.UID, r.DisplayName, r.OldUserName, r.NewUserName}, Separator)
}

// Reason explains why a row cannot be applied.
type Reason string

// Rejection reasons, in the order they are checked.
const (
	ReasonFieldCount Reason = "wrong field count"
	ReasonInvalidUID Reason = "invalid uid"
	ReasonEmptyName  Reason = "empty new name"
	ReasonUnchanged  Reason = "unchanged"
)

// Validate returns the first reason the row is not eligible for a rename,
// or the empty Reason when it is.
func (r Row) Validate() Reason {
	if !strings.ContainsFunc(r.UID, unicode.IsDigit) {
		return ReasonInvalidUID
	}
	if r.NewUserName == "" {
		return ReasonEmptyName
	}
	if r.OldUserName == r.NewUserName {
		return ReasonUnchanged
	}
	return ""
}

// Eligible reports whether the row passes every validation check.
func (r Row) Eligible() bool {
	return r.Validate() == ""
}

// Line holds one parsed data line together with its position in the file.
// Row is only meaningful when Reason is not ReasonFieldCount.
type Line struct {
	Number int
	Text   string
	Row    Row
	Reason Reason
}

// ParseLine splits a trimmed mapping line into a Row. A line that does not
// yield exactly four fields is reported with ReasonFieldCount.
func ParseLine(number int, text string) Line {
	line := Line{Number: number, Text: text}

	fields := strings.Split(text, Separator)
	if len(fields) != fieldCount {
		line.Reason = ReasonFieldCount
		return line
	}

	line.Row = Row{
		UID:         fields[0],
		DisplayName: fields[1],
		OldUserName: fields[2],
		NewUserName: fields[3],
	}
	line.Reason = line.Row.Validate()
	return line
}

// ReadFile loads every data line of the mapping file at filePath. The first
// line is always treated as the header and skipped; blank lines are ignored.
func ReadFile(filePath string) ([]Line, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.WrapFileError(filePath, err)
	}
	defer file.Close()

	lines, err := Read(file)
	if err != nil {
		return nil, errors.NewParsingError(filePath, "failed to read mapping file", err)
	}
	return lines, nil
}

// Read parses mapping lines from r. Line numbers are 1-based and count the
// header.
func Read(r io.Reader) ([]Line, error) {
	var lines []Line

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	number := 0
	for scanner.Scan() {
		number++
		if number == 1 {
			continue
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, ParseLine(number, text))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteFile overwrites filePath with the header followed by one line per row.
func WriteFile(filePath string, rows []Row) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.WrapFileError(filePath, err)
	}

	if err := Write(file, rows); err != nil {
		file.Close()
		return errors.NewFileError(filePath, "failed to write mapping file", err)
	}

	if err := file.Close(); err != nil {
		return errors.WrapFileError(filePath, err)
	}
	return nil
}

// Write renders the header and rows to w.
func Write(w io.Writer, rows []Row) error {
	buf := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(buf, Header); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(buf, row.Line()); err != nil {
			return err
		}
	}

	return buf.Flush()
}
