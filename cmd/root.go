// Copyright © 2018 The ELPS authors

// Package cmd implements the splcheck command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "splcheck",
	Short: "Semantic checker for SPL syntax trees",
	Long: `splcheck reads the syntax tree of an SPL program and checks it: it builds
the scope tree and the symbol and function tables, validates every call
against the scope tree and type checks the program.

Trees are read in tree notation (.tree), YAML (.yaml, .yml) or XML (.xml).
A program is accepted when every phase passes.

Getting started:
  splcheck check prog.tree        Check a program
  splcheck check --json ./...     Check every tree below the current directory
  splcheck scopes prog.tree       Print the scope tree and tables
  splcheck fmt prog.yaml          Print a tree in canonical tree notation
  splcheck repl                   Check trees interactively

Settings may also come from $HOME/.splcheck.yaml or from environment
variables prefixed with SPLCHECK_ (for example SPLCHECK_COLOR=never).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	var exit *exitError
	if err != nil && !errors.As(err, &exit) {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck // best-effort error display
	}
	os.Exit(ExitCode(err))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.splcheck.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().String("log-level", "warning",
		"Log level for phase traces (debug, info, warning, error).")
	rootCmd.PersistentFlags().String("format", "auto",
		`Input tree encoding: "auto", "tree", "yaml" or "xml".`)
	for _, name := range []string{"color", "log-level", "format"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(CheckCommand())
	rootCmd.AddCommand(ScopesCommand())
	rootCmd.AddCommand(FmtCommand())
	rootCmd.AddCommand(replCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".splcheck")
	}

	viper.SetEnvPrefix("splcheck")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		newLogger().WithField("config", viper.ConfigFileUsed()).Debug("using config file")
	}
}

// newLogger returns a logger writing to stderr at the configured level.
func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	l.SetLevel(level)
	return l
}

// Exit codes shared by the subcommands.
const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
)

// exitError carries a process exit code out of a command's RunE.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWith(code int) error {
	if code == exitOK {
		return nil
	}
	return &exitError{code: code}
}

// ExitCode returns the exit code a command error maps to.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return exitUsage
}
