// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vhsecgo/internal/aws"
	"github.com/staranto/vhsecgo/internal/config"
	"github.com/staranto/vhsecgo/internal/version"
	"github.com/staranto/vhsecgo/pkg/cache"
	"github.com/staranto/vhsecgo/pkg/vladhog"
)

// SettingsFromCommand gathers the resolved service flags of cmd. With caching
// turned off by VHSEC_CACHE the backend is always memory.
func SettingsFromCommand(cmd *cli.Command) config.Settings {
	s := config.Settings{
		APIKey:          cmd.String("api-key"),
		Endpoint:        cmd.String("endpoint"),
		ServiceEndpoint: cmd.String("service-endpoint"),
		CacheBackend:    cmd.String("cache-backend"),
		CacheFile:       cmd.String("cache-file"),
		S3Bucket:        cmd.String("s3-bucket"),
		S3Key:           cmd.String("s3-key"),
		S3Region:        cmd.String("s3-region"),
		S3Endpoint:      cmd.String("s3-endpoint"),
		Timeout:         cmd.Duration("timeout"),
		Parallel:        int(cmd.Int("parallel")),
		Output:          cmd.String("output"),
	}
	if !cache.Enabled() {
		s.CacheBackend = "memory"
	}
	return s
}

// NewStore builds the cache store selected by s.
func NewStore(ctx context.Context, s config.Settings) (cache.Store, error) {
	switch s.CacheBackend {
	case "memory":
		return cache.NewMemoryStore(nil), nil
	case "s3":
		store, err := aws.NewS3Store(ctx, s.S3Bucket, s.S3Key,
			aws.WithRegion(s.S3Region),
			aws.WithEndpoint(s.S3Endpoint),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "file", "":
		path := s.CacheFile
		if path == "" {
			path = cache.DefaultPath()
		}
		return cache.NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", s.CacheBackend)
	}
}

// NewClient builds a vladhog client from the service flags of cmd. Cache
// failures are reported on the command's error writer and never fail a run.
func NewClient(ctx context.Context, cmd *cli.Command) (*vladhog.Client, error) {
	s := SettingsFromCommand(cmd)

	store, err := NewStore(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	log.Debugf("cache store: %v", store)

	ew := errWriter(cmd)
	return vladhog.New(ctx, vladhog.Options{
		APIKey:          s.APIKey,
		Store:           store,
		Endpoint:        s.Endpoint,
		ServiceEndpoint: s.ServiceEndpoint,
		HTTPClient:      &http.Client{Timeout: s.Timeout},
		UserAgent:       version.UserAgent(),
		Logger:          log.Log,
		OnCacheError: func(op string, err error) {
			fmt.Fprintf(ew, "warning: cache %s failed: %v\n", op, err)
		},
	}), nil
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
