// Package buildinfo prints the version data injected with -ldflags.
package buildinfo

import (
	"fmt"
	"io"
	"os"
)

const notAvailable = "N/A"

// Info is the build metadata of a command.
type Info struct {
	Version string
	Date    string
	Commit  string
}

// New returns Info with unset values replaced by "N/A".
func New(version, date, commit string) Info {
	return Info{
		Version: orNA(version),
		Date:    orNA(date),
		Commit:  orNA(commit),
	}
}

// Fprint writes the build info to w, one field per line.
func (i Info) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", i.Version)
	fmt.Fprintf(w, "Build date: %s\n", i.Date)
	fmt.Fprintf(w, "Build commit: %s\n", i.Commit)
}

// PrintBuildInfo prints the build info to stdout.
func PrintBuildInfo(version, date, commit string) {
	New(version, date, commit).Fprint(os.Stdout)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
