// Command wisp is the minimal CLI entry point described in SPEC_FULL.md's
// ambient-stack section: a cobra root command that runs a script file, an
// inline -e expression, or a line-at-a-time REPL over stdin, colorizing
// error output with fatih/color the way vovakirdan-surge's own CLI does
// for its diagnostics.
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chazu/wisp/bytecode"
	"github.com/chazu/wisp/internal/config"
	"github.com/chazu/wisp/vm"
)

var (
	inlineSource string
	configPath   string
)

func main() {
	root := &cobra.Command{
		Use:   "wisp [script]",
		Short: "Run wisp scripts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().StringVarP(&inlineSource, "eval", "e", "", "run an inline script")
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	machine := vm.New(cfg, os.Stdout, os.Stderr)
	machine.DefineNative("clock", clockNative)

	switch {
	case inlineSource != "":
		return interpret(machine, inlineSource)
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return interpret(machine, string(data))
	default:
		return repl(machine)
	}
}

func interpret(machine *vm.VM, source string) error {
	if _, err := machine.Interpret(source); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(70)
	}
	return nil
}

func repl(machine *vm.VM) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return nil
		}
		if _, err := machine.Interpret(scanner.Text()); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		}
	}
}

var processStart = time.Now()

func clockNative(args []bytecode.Value) (bytecode.Value, error) {
	return bytecode.Number(time.Since(processStart).Seconds()), nil
}
