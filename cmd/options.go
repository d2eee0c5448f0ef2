// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/splcheck/check"
	"github.com/luthersystems/splcheck/diagnostic"
	"github.com/luthersystems/splcheck/parser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
)

// Option configures an exported command factory (CheckCommand,
// ScopesCommand, FmtCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	logger logrus.FieldLogger
	tp     trace.TracerProvider
	stdin  io.Reader
}

func newCmdConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger sets the logger phases trace to. By default a stderr logger at
// the configured --log-level is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *cmdConfig) { c.logger = l }
}

// WithTracerProvider sets the provider phase spans are created with.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *cmdConfig) { c.tp = tp }
}

// WithStdin replaces the reader trees are read from when no files are given.
func WithStdin(r io.Reader) Option {
	return func(c *cmdConfig) { c.stdin = r }
}

func (c *cmdConfig) resolveLogger() logrus.FieldLogger {
	if c.logger != nil {
		return c.logger
	}
	return newLogger()
}

// checker returns a checker running phases, or every default phase when
// phases is nil.
func (c *cmdConfig) checker(phases []*check.Phase) *check.Checker {
	return &check.Checker{
		Phases:         phases,
		Logger:         c.resolveLogger(),
		TracerProvider: c.tp,
	}
}

// inputFormat returns the tree encoding selected by --format.
func inputFormat() (parser.Format, error) {
	return parser.ParseFormat(viper.GetString("format"))
}

// colorMode returns the color mode selected by --color. Invalid values fall
// back to auto detection.
func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString("color"))
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}
