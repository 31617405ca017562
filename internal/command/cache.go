// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/meta"
	"github.com/staranto/vhsecgo/pkg/cache"
)

// CacheInfoCommandAction reports where the cache lives and how much it holds.
func CacheInfoCommandAction(ctx context.Context, cmd *cli.Command) error {
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(CacheInfoRow{})) {
		return nil
	}

	client, err := NewClient(ctx, cmd)
	if err != nil {
		return err
	}
	c := client.Cache()

	row := CacheInfoRow{
		Backend:  SettingsFromCommand(cmd).CacheBackend,
		Location: fmt.Sprint(c.Store()),
		Entries:  c.Len(),
		Enabled:  cache.Enabled(),
	}

	if fs, ok := c.Store().(*cache.FileStore); ok {
		info, err := fs.Stat()
		if err != nil {
			return err
		}
		row.Exists = info.Exists
		if info.Exists {
			row.Size = humanize.Bytes(uint64(info.Size))
			row.Modified = humanize.Time(info.ModTime)
		}
	} else {
		row.Exists = row.Entries > 0
	}

	attrs := BuildAttrs(cmd, "backend", "location", "entries", "exists", "size", "modified", "enabled")
	return Emit([]CacheInfoRow{row}, attrs, cmd)
}

// CacheListCommandAction lists the cached entries.
func CacheListCommandAction(ctx context.Context, cmd *cli.Command) error {
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(CacheRow{})) {
		return nil
	}

	client, err := NewClient(ctx, cmd)
	if err != nil {
		return err
	}
	c := client.Cache()

	keys := c.Keys()
	rows := make([]CacheRow, 0, len(keys))
	for _, k := range keys {
		e, ok := c.Entry(k)
		if !ok {
			continue
		}
		rows = append(rows, CacheRow{
			Key:      k,
			Kind:     string(e.Kind),
			StoredAt: e.StoredAt,
			Size:     len(e.Value),
		})
	}
	log.Debugf("cache entries: %d", len(rows))

	attrs := BuildAttrs(cmd, "key", "kind", "stored_at", "size")
	return Emit(rows, attrs, cmd)
}

// CacheClearCommandAction removes every cached entry and saves the empty
// cache.
func CacheClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	client, err := NewClient(ctx, cmd)
	if err != nil {
		return err
	}
	c := client.Cache()

	n := c.Len()
	if err := c.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(writer(cmd), "removed %d entries from %v\n", n, c.Store())
	return nil
}

// CacheCommandBuilder constructs the cli.Command for "cache" and its
// subcommands.
func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	sub := func(name, usage string, action func(context.Context, *cli.Command) error) *cli.Command {
		b := &LookupCommandBuilder{
			Name:      name,
			Usage:     usage,
			UsageText: "vhsec cache " + name + " [options]",
			Action:    action,
			Meta:      meta,
			Namespace: "cache",
		}
		return b.Build()
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "inspect or clear the response cache",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			sub("info", "show where the cache lives", CacheInfoCommandAction),
			sub("list", "list cached entries", CacheListCommandAction),
			sub("clear", "remove every cached entry", CacheClearCommandAction),
		},
	}
}
