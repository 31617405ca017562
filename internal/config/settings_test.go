// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validSettings() Settings {
	return Settings{
		Endpoint:     "https://api.vladhog.ru/security",
		CacheBackend: "file",
		Timeout:      30 * time.Second,
		Parallel:     4,
		Output:       "text",
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{name: "empty endpoints use defaults", mutate: func(s *Settings) { s.Endpoint = "" }},
		{
			name:    "bad endpoint",
			mutate:  func(s *Settings) { s.Endpoint = "not a url" },
			wantErr: `--endpoint "not a url" is not a URL`,
		},
		{
			name:    "unknown backend",
			mutate:  func(s *Settings) { s.CacheBackend = "redis" },
			wantErr: "--cache-backend \"redis\" must be one of file, s3, memory",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(s *Settings) { s.CacheBackend = "s3"; s.S3Key = "k" },
			wantErr: "--s3-bucket is required with --cache-backend s3",
		},
		{
			name:   "s3 complete",
			mutate: func(s *Settings) { s.CacheBackend = "s3"; s.S3Bucket = "b"; s.S3Key = "k" },
		},
		{
			name:    "parallel out of range",
			mutate:  func(s *Settings) { s.Parallel = 0 },
			wantErr: "--parallel 0 is out of range",
		},
		{
			name:    "unknown output",
			mutate:  func(s *Settings) { s.Output = "xml" },
			wantErr: "--output \"xml\" must be one of text, json, yaml, raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSettings_ValidateReportsEveryField(t *testing.T) {
	s := validSettings()
	s.Output = "xml"
	s.Parallel = 100

	err := s.Validate()
	assert.ErrorContains(t, err, "--output")
	assert.ErrorContains(t, err, "--parallel")
}
