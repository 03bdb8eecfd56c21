package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/routerbot/routerbot/pkg/cli"
	"github.com/routerbot/routerbot/pkg/command"
)

func TestFormatOptions(t *testing.T) {
	tests := []struct {
		opts []command.Option
		want string
	}{
		{nil, ""},
		{[]command.Option{{Name: "name", Required: true}}, "name"},
		{[]command.Option{
			{Name: "name", Required: true},
			{Name: "enabled", Type: command.OptionBool, Required: true},
			{Name: "router"},
		}, "name enabled:bool [router]"},
		{[]command.Option{{Name: "limit", Type: command.OptionInt}}, "[limit:integer]"},
	}
	for _, tt := range tests {
		if got := formatOptions(tt.opts); got != tt.want {
			t.Errorf("formatOptions() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	root := &cobra.Command{Use: "routerbot"}
	version := &cobra.Command{Use: "version"}
	audit := &cobra.Command{Use: "audit"}
	list := &cobra.Command{Use: "list"}
	root.AddCommand(version, audit)
	audit.AddCommand(list)

	if !isHelpOrVersion(version) {
		t.Error("version should skip configuration")
	}
	if isHelpOrVersion(list) {
		t.Error("audit list needs configuration")
	}
}

func TestLevelColor(t *testing.T) {
	cli.SetColor(false)
	for _, level := range []command.Level{command.LevelSuccess, command.LevelInfo, command.LevelWarning, command.LevelError} {
		if got := levelColor(level)("x"); got != "x" {
			t.Errorf("levelColor(%s) without color = %q, want %q", level, got, "x")
		}
	}
}

func TestStandardCommandsAreRegistered(t *testing.T) {
	for _, name := range []string{"serve", "exec", "monitor", "audit", "commands", "version"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("rootCmd.Find(%q) = %v, %v", name, c, err)
		}
	}
}
