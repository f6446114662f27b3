// Package cmd implements the driftmap CLI commands.
//
// A root command dispatches to subcommands registered from init functions
// (icons, id, config).
package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = &Command{
	Name:  "driftmap",
	Short: "driftmap - map marker icons for Drift apps",
	Long: `driftmap renders the pin icons a Drift map registers in its style and
prints the image ids they are registered under.

Use "driftmap <command> --help" for more information about a command.`,
	Usage: "driftmap <command> [flags]",
}

var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
}

var (
	stdout io.Writer = os.Stdout
	logger           = newLogger(os.Stderr, false)
)

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}

// Execute runs the CLI with args, excluding the program name.
func Execute(args []string) error {
	var filtered []string
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "help":
			if len(filtered) == 0 {
				printHelp()
				return nil
			}
			filtered = append(filtered, arg)
		case "-v", "--version", "version":
			if len(filtered) == 0 {
				fmt.Fprintf(stdout, "driftmap version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filtered = append(filtered, arg)
		case "--verbose":
			logger = newLogger(os.Stderr, true)
		default:
			filtered = append(filtered, arg)
		}
	}

	if len(filtered) == 0 {
		printHelp()
		return nil
	}

	cmd, ok := commands[filtered[0]]
	if !ok {
		err := fmt.Errorf("unknown command %q", filtered[0])
		logger.Error().Err(err).Msg("")
		printHelp()
		return err
	}
	cmdArgs := filtered[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	if err := cmd.Run(cmdArgs); err != nil {
		logger.Error().Err(err).Str("command", cmd.Name).Msg("command failed")
		return err
	}
	return nil
}

func printHelp() {
	fmt.Fprintln(stdout, rootCmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(stdout, "  %-10s %s\n", name, commands[name].Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help      Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version   Show version information")
	fmt.Fprintln(stdout, "  --verbose       Log debug output")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
