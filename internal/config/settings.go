// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings are the resolved global options of a run, whichever of flags, env
// or the config file they came from.
type Settings struct {
	APIKey          string
	Endpoint        string `validate:"omitempty,url"`
	ServiceEndpoint string `validate:"omitempty,url"`
	CacheBackend    string `validate:"oneof=file s3 memory"`
	CacheFile       string
	S3Bucket        string `validate:"required_if=CacheBackend s3"`
	S3Key           string `validate:"required_if=CacheBackend s3"`
	S3Region        string
	S3Endpoint      string        `validate:"omitempty,url"`
	Timeout         time.Duration `validate:"gte=0"`
	Parallel        int           `validate:"min=1,max=64"`
	Output          string        `validate:"oneof=text json yaml raw"`
}

var validate = validator.New()

// Validate checks the settings and reports every offending field.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := flagName(fe.Field())
	switch fe.Tag() {
	case "url":
		return fmt.Sprintf("--%s %q is not a URL", name, fe.Value())
	case "oneof":
		return fmt.Sprintf("--%s %q must be one of %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "required_if":
		return fmt.Sprintf("--%s is required with --cache-backend s3", name)
	case "min", "max", "gte":
		return fmt.Sprintf("--%s %v is out of range", name, fe.Value())
	default:
		return fmt.Sprintf("--%s failed %s", name, fe.Tag())
	}
}

var flagNames = map[string]string{
	"Endpoint":        "endpoint",
	"ServiceEndpoint": "service-endpoint",
	"CacheBackend":    "cache-backend",
	"S3Bucket":        "s3-bucket",
	"S3Key":           "s3-key",
	"S3Endpoint":      "s3-endpoint",
	"Timeout":         "timeout",
	"Parallel":        "parallel",
	"Output":          "output",
}

func flagName(field string) string {
	if n, ok := flagNames[field]; ok {
		return n
	}
	return strings.ToLower(field)
}
