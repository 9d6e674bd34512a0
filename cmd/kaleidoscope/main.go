// Command kaleidoscope lexes, parses, compiles, and runs a single
// Kaleidoscope source file, printing the value its last top-level
// expression evaluates to. Structured after the teacher's
// src/cmd/execute.go: an olive.CLI with a primary path argument plus
// a couple of flags, no subcommands -- this driver only ever does one
// thing.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/ComedicChimera/olive"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/codegen"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/config"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/engine"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ffi"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/lexer"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/parser"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/report"
)

func main() {
	cli := olive.NewCLI("kaleidoscope", "kaleidoscope compiles and runs a Kaleidoscope source file", true)
	cli.AddPrimaryArg("source", "the path to the Kaleidoscope source file", true)

	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	cli.AddFlag("ir", "i", "print the generated LLVM IR before executing it")
	cli.AddStringArg("config", "c", "path to a kaleidoscope.toml configuration file", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.Fatal("CLI usage error: %s", err.Error())
	}

	sourcePath, _ := result.PrimaryArg()

	configPath := "kaleidoscope.toml"
	if v, ok := result.Arguments["config"]; ok {
		configPath = v.(string)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		report.Fatal("config error: %s", err.Error())
	}

	level := cfg.LogLevel
	if v, ok := result.Arguments["loglevel"]; ok {
		if lvl, ok := levelFromName(v.(string)); ok {
			level = lvl
		}
	}
	printIR := cfg.PrintIR || result.HasFlag("ir")

	reporter := report.New(level)
	reportPrecedenceOverrides(reporter, cfg.Precedence)

	src, err := ioutil.ReadFile(sourcePath)
	if err != nil {
		report.Fatal("failed to read %s: %s", sourcePath, err.Error())
	}

	os.Exit(run(reporter, string(src), cfg.Precedence, printIR))
}

// reportPrecedenceOverrides logs each config-supplied operator
// precedence: a warning if it shadows one of the built-ins (the config
// is silently changing how existing programs parse), an info message
// otherwise (a genuinely new operator).
func reportPrecedenceOverrides(reporter *report.Reporter, extra map[byte]int) {
	builtins := parser.BuiltinPrecedence()
	for op, prec := range extra {
		if _, isBuiltin := builtins[op]; isBuiltin {
			reporter.Warnf(0, "config overrides built-in precedence for '%c' (now %d)", op, prec)
		} else {
			reporter.Infof("config registers precedence %d for operator '%c'", prec, op)
		}
	}
}

// run lexes, parses, compiles, and executes src, printing the final
// top-level result. It returns the process exit code rather than
// calling os.Exit itself so the compilation path stays testable.
func run(reporter *report.Reporter, src string, extraPrecedence map[byte]int, printIR bool) int {
	items, err := parser.New(lexer.Tokenize(src), extraPrecedence).Parse()
	if err != nil {
		reportPipelineError(reporter, err)
		return 1
	}

	mod, err := codegen.New().Compile(items)
	if err != nil {
		reportPipelineError(reporter, err)
		return 1
	}

	if printIR {
		fmt.Println(mod.String())
	}

	result, err := engine.Run(mod, ffi.NewRegistry())
	if err != nil {
		reporter.Errorf(0, "%s", err.Error())
		return 1
	}

	fmt.Printf("Result: %v\n", result)

	if reporter.HadError() {
		return 1
	}
	return 0
}

// reportPipelineError unwraps a parser.ParseError or codegen.Error to
// recover its source line; any other error is reported at line 0.
func reportPipelineError(reporter *report.Reporter, err error) {
	switch e := err.(type) {
	case *parser.ParseError:
		reporter.Errorf(e.Line, "%s", e.Msg)
	case *codegen.Error:
		reporter.Errorf(e.Line, "%s", e.Msg)
	default:
		reporter.Errorf(0, "%s", e.Error())
	}
}

func levelFromName(name string) (report.Level, bool) {
	switch name {
	case "silent":
		return report.LevelSilent, true
	case "error":
		return report.LevelError, true
	case "warn":
		return report.LevelWarn, true
	case "verbose":
		return report.LevelVerbose, true
	default:
		return 0, false
	}
}
