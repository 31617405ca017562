// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/attrs"
	"github.com/staranto/vhsecgo/internal/meta"
	"github.com/staranto/vhsecgo/internal/output"
)

// DumpSchemaIfRequested prints the attributes of the row type when --schema is
// set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), "", t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// Emit marshals rows and passes them to the common output routine.
func Emit(rows any, al attrs.AttrList, cmd *cli.Command) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	return output.SliceDiceSpit(raw, al, output.OptionsFromCommand(cmd), writer(cmd))
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// LookupCommandBuilder constructs a cli.Command for the lookup subcommands
// (check, detail, dynamic, similar, screenshot) using a consistent pattern.
// The builder wires metadata, adds the schema, output and service flags, and
// validates the resolved settings before the action runs.
type LookupCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
	// Namespace qualifies config file keys. It defaults to Name.
	Namespace string
}

// Build returns a configured cli.Command from the builder.
func (lcb *LookupCommandBuilder) Build() *cli.Command {
	ns := lcb.Namespace
	if ns == "" {
		ns = lcb.Name
	}
	flags := append([]cli.Flag{newSchemaFlag()}, lcb.Flags...)
	flags = append(flags, NewGlobalFlags(ns, lcb.Meta.Config)...)
	flags = append(flags, NewServiceFlags(ns, lcb.Meta.Config)...)

	return &cli.Command{
		Name:      lcb.Name,
		Usage:     lcb.Usage,
		UsageText: lcb.UsageText,
		Metadata: map[string]any{
			"meta": lcb.Meta,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: lcb.Action,
	}
}

// LookupActionRunner[T] encapsulates the common action pattern of the lookup
// subcommands. It handles the schema short-circuit, target gathering, attrs
// and output, with the lookups themselves provided by FetchFn.
type LookupActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	// Noun names a target in the missing argument error.
	Noun    string
	FetchFn func(context.Context, *cli.Command, []string) ([]T, error)
	// VerdictFn, when set, inspects the emitted rows and may fail the run.
	VerdictFn func(*cli.Command, []T) error
}

// Run executes the action with the provided context and command. Rows are
// emitted even when some lookups failed; the failures are then returned.
func (lar *LookupActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if DumpSchemaIfRequested(cmd, lar.SchemaType) {
		return nil
	}

	if err := ArgsValidator(cmd, lar.Noun); err != nil {
		return err
	}
	targets, err := Targets(cmd)
	if err != nil {
		return err
	}

	attrs := BuildAttrs(cmd, lar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	rows, fetchErr := lar.FetchFn(ctx, cmd, targets)
	if rows == nil {
		rows = []T{}
	}

	if err := Emit(rows, attrs, cmd); err != nil {
		return err
	}
	if fetchErr != nil {
		return fetchErr
	}

	if lar.VerdictFn != nil {
		return lar.VerdictFn(cmd, rows)
	}
	return nil
}
