// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/luthersystems/splcheck/check"
	"github.com/luthersystems/splcheck/repl"
	"github.com/spf13/cobra"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Check SPL syntax trees interactively",
	Long: `Start an interactive loop that checks SPL syntax trees.

Trees are typed in tree notation and may span several lines; a tree is
checked as soon as its parentheses balance. Line editing, history and
completion of production labels are supported via readline. Use Ctrl-D or
:quit to exit.

Commands:
  :fmt      print the last tree in canonical form
  :tables   print the scope tree and tables of the last tree
  :help     list commands
  :quit     leave the loop

Example session:
  splcheck> (PROG main (GLOBVARS) (ALGO begin
              (INSTRUC (COMMAND halt) ;) end) (FUNCTIONS))
  accepted (3 of 3 phases, 0 diagnostics)
  splcheck> :tables
  scopes:
    main (scope 0, node 0)
  ...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl.Run(cmd.Context(), filepath.Base(os.Args[0])+"> ",
			repl.WithChecker(&check.Checker{Logger: newLogger()}),
			repl.WithColor(colorMode()),
		)
	},
}
