package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/formshift/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "formshift",
		Usage:   "AI-powered conversion of Oracle Forms PL/SQL to modern target platforms",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "formshift.toml",
			},
		},
		Commands: []*cli.Command{
			cmd.GenerateCommand(),
			cmd.CheckCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
