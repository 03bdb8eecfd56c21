package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/routerbot/routerbot/pkg/cli"
	"github.com/routerbot/routerbot/pkg/command"
)

var (
	execUser  string
	execGuild string
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [option=value ...]",
	Short: "Run one bot command from the terminal",
	Long: `Run one bot command without Discord and print the reply.

Options are given as key=value; see "routerbot commands" for the list.
Permission checks use --user as the user ID (default: the local login name).

Examples:
  routerbot exec get-interface name=gi1
  routerbot exec set-interface-state name=gi1 enabled=false
  routerbot exec add-static-route prefix=10.9.0.0 mask=16 next-hop=10.0.0.254`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		name := args[0]
		inv := command.Invocation{Command: name, Actor: localActor()}
		if c, ok := a.dispatcher.Registry().Lookup(name); ok {
			inv.Args, err = command.ParseArgs(c, args[1:])
			if err != nil {
				return err
			}
		}

		reply := a.dispatcher.Execute(ctx, inv)
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(reply)
		}
		printReply(reply)
		if reply.Level == command.LevelError {
			return fmt.Errorf("%s failed", name)
		}
		return nil
	},
}

func localActor() command.Actor {
	name := execUser
	if name == "" {
		if u, err := user.Current(); err == nil {
			name = u.Username
		}
	}
	return command.Actor{UserID: name, Username: name, GuildID: execGuild}
}

func levelColor(level command.Level) func(string) string {
	switch level {
	case command.LevelSuccess:
		return cli.Green
	case command.LevelWarning:
		return cli.Yellow
	case command.LevelError:
		return cli.Red
	}
	return cli.Bold
}

func printReply(r *command.Reply) {
	fmt.Println(levelColor(r.Level)(r.Title))
	if r.Description != "" {
		fmt.Println(r.Description)
	}
	if len(r.Fields) > 0 {
		fmt.Println()
		for _, f := range r.Fields {
			lines := strings.Split(f.Value, "\n")
			fmt.Printf("  %s %s\n", cli.DotPad(f.Name, 32), lines[0])
			for _, l := range lines[1:] {
				fmt.Printf("  %s %s\n", strings.Repeat(" ", 32), l)
			}
		}
	}
	for _, f := range r.Files {
		fmt.Printf("\nattachment: %s (%d bytes)\n", f.Name, len(f.Content))
	}
	if r.Footer != "" {
		fmt.Println(cli.Dim(r.Footer))
	}
}

func init() {
	execCmd.Flags().StringVar(&execUser, "user", "", "User ID for permission checks and audit")
	execCmd.Flags().StringVar(&execGuild, "guild", "", "Guild ID scoping inventory routers")
	addOutputFlags(execCmd)
}
