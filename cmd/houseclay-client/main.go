// houseclay-client - консольный клиент HouseClay: вход по телефону,
// поиск объявлений, избранное и черновики объявлений.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"houseclay-client/internal"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts internal.Options

	flagSet := pflag.NewFlagSet("houseclay-client", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&opts.EnvPath, "env", "", "path to .env file (default: ./.env if present)")
	flagSet.StringVar(&opts.LogLevel, "log-level", "", "override STDOUT_LOG_LEVEL (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(flagSet)
		return nil
	}

	name, rest := flagSet.Arg(0), flagSet.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		printHelp(flagSet)
		return fmt.Errorf("unknown command %q", name)
	}
	command, err := cmd.build(rest)
	if err != nil {
		return err
	}

	application, err := internal.NewApp(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(command)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: houseclay-client [flags] <command> [args]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "flags:")
	fmt.Fprint(os.Stderr, flagSet.FlagUsages())
}
