package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/routerbot/routerbot/pkg/cli"
	"github.com/routerbot/routerbot/pkg/command"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List bot commands with their options and permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The dispatcher is only inspected here, never run.
		d := command.NewDispatcher(command.Deps{})

		t := cli.NewTable("COMMAND", "OPTIONS", "PERMISSION", "WRITE")
		for _, c := range d.Registry().Commands() {
			write := ""
			if c.Write {
				write = cli.Yellow("yes")
			}
			perm := string(c.Permission)
			if perm == "" {
				perm = cli.Dim("-")
			}
			t.Row(c.Name, formatOptions(c.Options), perm, write)
		}
		t.Flush()
		fmt.Println()
		fmt.Println("Run with: routerbot exec <command> option=value ...")
		return nil
	},
}

func formatOptions(opts []command.Option) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		s := o.Name
		if o.Type != command.OptionString {
			s += ":" + o.Type.String()
		}
		if !o.Required {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
