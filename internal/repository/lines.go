package repository

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/proxy"
)

// ReadLines returns the trimmed, non-empty lines of path. Lines starting with
// '#' are comments.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadWallets reads one private key per line. The keys are not validated here;
// a bad key fails only its own wallet check.
func LoadWallets(path string, log *slog.Logger) ([]string, error) {
	keys, err := readRequired(path, "wallets")
	if err != nil {
		return nil, err
	}
	log.Info("wallets loaded", "path", path, "count", len(keys))
	return keys, nil
}

// LoadProxies parses one proxy endpoint per line, skipping lines that do not parse.
func LoadProxies(path string, log *slog.Logger) ([]proxy.Endpoint, error) {
	lines, err := readRequired(path, "proxies")
	if err != nil {
		return nil, err
	}

	endpoints := make([]proxy.Endpoint, 0, len(lines))
	for i, line := range lines {
		ep, err := proxy.ParseEndpoint(line)
		if err != nil {
			// the raw line may carry credentials
			log.Warn("skipping malformed proxy", "path", path, "entry", i+1, "error", err)
			continue
		}
		endpoints = append(endpoints, ep)
	}
	if len(endpoints) == 0 {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("no usable proxies in %s", path), nil)
	}

	log.Info("proxies loaded", "path", path, "count", len(endpoints), "skipped", len(lines)-len(endpoints))
	return endpoints, nil
}

func readRequired(path, what string) ([]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("failed to read %s file %s", what, path), err)
	}
	if len(lines) == 0 {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("%s file %s is empty", what, path), nil)
	}
	return lines, nil
}
