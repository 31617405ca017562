// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Targets returns the positional args of cmd. A lone "-" is replaced by the
// non-blank lines read from stdin; lines starting with # are skipped.
func Targets(cmd *cli.Command) ([]string, error) {
	var targets []string
	for _, a := range cmd.Args().Slice() {
		if a != "-" {
			targets = append(targets, a)
			continue
		}
		lines, err := readLines(reader(cmd))
		if err != nil {
			return nil, fmt.Errorf("failed to read targets from stdin: %w", err)
		}
		targets = append(targets, lines...)
	}
	return targets, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// Batch runs fn for every target with at most parallel calls in flight.
// Results keep the order of targets. A failed call still contributes its
// result, and all failures are joined into the returned error.
func Batch[T any](
	ctx context.Context,
	targets []string,
	parallel int,
	fn func(context.Context, string) (T, error),
) ([]T, error) {
	results := make([]T, len(targets))
	errs := make([]error, len(targets))

	if parallel < 1 {
		parallel = 1
	}

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, target := range targets {
		g.Go(func() error {
			r, err := fn(ctx, target)
			results[i] = r
			if err != nil {
				log.WithError(err).Debugf("lookup failed: %s", target)
				errs[i] = fmt.Errorf("%s: %w", target, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
