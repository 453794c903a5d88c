package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GoPolymarket/xterio-checker/internal/model"
)

const TotalPrefix = "Total points across all accounts: "

type Entry struct {
	Address string
	Balance int64
}

type Report struct {
	Entries []Entry
	Total   int64
}

// Write emits one "address:balance" line per successful result, a blank line and
// the total line. Failed results are skipped.
func Write(w io.Writer, results []model.CheckResult, total int64) error {
	bw := bufio.NewWriter(w)
	for _, res := range results {
		if !res.OK() {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s:%d\n", res.Address, res.Balance); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "\n%s%d", TotalPrefix, total); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile replaces path atomically so a crash never leaves a half-written report.
func WriteFile(path string, results []model.CheckResult, total int64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".result-*")
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, results, total); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func Parse(r io.Reader) (*Report, error) {
	out := &Report{}
	hasTotal := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, TotalPrefix); ok {
			total, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid total %q", lineNo, rest)
			}
			out.Total = total
			hasTotal = true
			continue
		}
		if hasTotal {
			return nil, fmt.Errorf("line %d: entry after total line", lineNo)
		}
		i := strings.LastIndex(line, ":")
		if i <= 0 {
			return nil, fmt.Errorf("line %d: expected address:balance", lineNo)
		}
		balance, err := strconv.ParseInt(line[i+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid balance %q", lineNo, line[i+1:])
		}
		out.Entries = append(out.Entries, Entry{Address: line[:i], Balance: balance})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !hasTotal {
		return nil, fmt.Errorf("missing total line")
	}
	return out, nil
}
