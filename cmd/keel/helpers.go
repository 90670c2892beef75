package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// errChecksFailed signals that targets failed a check or need review. The
// caller exits with status 1 rather than 2 so cron wrappers can tell data
// problems from operational ones.
var errChecksFailed = errors.New("checks failed")

// readTargets resolves the target paths for a command: positional arguments,
// or the lines of --file (with "-" meaning stdin).
func readTargets(cmd *cobra.Command, args []string, file string) ([]string, error) {
	if file == "" {
		if len(args) == 0 {
			return nil, errors.New("no targets given; pass paths or --file")
		}
		return args, nil
	}
	if len(args) > 0 {
		return nil, errors.New("pass either paths or --file, not both")
	}

	var reader io.Reader
	if file == "-" {
		reader = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open target list: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var targets []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read target list: %w", err)
	}
	if len(targets) == 0 {
		return nil, errors.New("target list is empty")
	}
	return targets, nil
}

// parseWindow resolves the update window. An explicit --since wins; otherwise
// the window duration is counted back from --until, which defaults to now.
func parseWindow(sinceFlag, untilFlag string, window time.Duration) (time.Time, time.Time, error) {
	until := time.Now().UTC()
	if untilFlag != "" {
		parsed, err := time.Parse(time.RFC3339, untilFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --until: %w", err)
		}
		until = parsed.UTC()
	}

	var since time.Time
	if sinceFlag != "" {
		parsed, err := time.Parse(time.RFC3339, sinceFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --since: %w", err)
		}
		since = parsed.UTC()
	} else {
		since = until.Add(-window)
	}

	if !since.Before(until) {
		return time.Time{}, time.Time{}, fmt.Errorf("window start %s is not before end %s",
			since.Format(time.RFC3339), until.Format(time.RFC3339))
	}
	return since, until, nil
}

func detailWithError(detail string, err error) string {
	if err == nil {
		return detail
	}
	if detail == "" {
		return err.Error()
	}
	return detail + ": " + err.Error()
}
