package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/routerbot/routerbot/pkg/command"
)

func noop(context.Context, *command.Request) (*command.Reply, error) { return nil, nil }

func testRegistry() *command.Registry {
	r := command.NewRegistry()
	r.Register(&command.Command{
		Name:        "set-interface-state",
		Description: "Enable or shut down an interface",
		Options: []command.Option{
			{Name: "name", Description: "Interface", Required: true},
			{Name: "enabled", Description: "State", Type: command.OptionBool, Required: true},
		},
		Device:  true,
		Handler: noop,
	})
	r.Register(&command.Command{
		Name:        "audit-log",
		Description: strings.Repeat("x", 150),
		Options:     []command.Option{{Name: "limit", Type: command.OptionInt}},
		Handler:     noop,
	})
	r.Register(&command.Command{Name: "add-router", Private: true, Handler: noop})
	return r
}

func TestApplicationCommands(t *testing.T) {
	cmds := ApplicationCommands(testRegistry())
	if len(cmds) != 3 {
		t.Fatalf("len = %d, want 3", len(cmds))
	}

	state := cmds[0]
	wantOpts := []struct {
		name     string
		typ      discordgo.ApplicationCommandOptionType
		required bool
	}{
		{"name", discordgo.ApplicationCommandOptionString, true},
		{"enabled", discordgo.ApplicationCommandOptionBoolean, true},
		{"router", discordgo.ApplicationCommandOptionString, false},
	}
	if len(state.Options) != len(wantOpts) {
		t.Fatalf("options = %d, want %d", len(state.Options), len(wantOpts))
	}
	for i, w := range wantOpts {
		o := state.Options[i]
		if o.Name != w.name || o.Type != w.typ || o.Required != w.required {
			t.Errorf("option[%d] = %s/%v/%v, want %s/%v/%v", i, o.Name, o.Type, o.Required, w.name, w.typ, w.required)
		}
	}

	audit := cmds[1]
	if n := len([]rune(audit.Description)); n != maxOptionDesc {
		t.Errorf("description length = %d, want %d", n, maxOptionDesc)
	}
	if audit.Options[0].Type != discordgo.ApplicationCommandOptionInteger {
		t.Errorf("limit type = %v, want integer", audit.Options[0].Type)
	}
}

func interaction(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:   "i1",
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func TestInvocation(t *testing.T) {
	i := interaction("set-interface-state",
		&discordgo.ApplicationCommandInteractionDataOption{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: "gi1"},
		&discordgo.ApplicationCommandInteractionDataOption{Name: "enabled", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
		&discordgo.ApplicationCommandInteractionDataOption{Name: "limit", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(5)},
	)
	i.GuildID = "g1"
	i.Member = &discordgo.Member{User: &discordgo.User{ID: "1", Username: "alice"}, Roles: []string{"r1", "r2"}}

	inv := Invocation(i)
	if inv.Command != "set-interface-state" {
		t.Errorf("Command = %q", inv.Command)
	}
	if inv.Actor.UserID != "1" || inv.Actor.Username != "alice" || inv.Actor.GuildID != "g1" || len(inv.Actor.RoleIDs) != 2 {
		t.Errorf("Actor = %+v", inv.Actor)
	}
	if inv.Args.String("name") != "gi1" {
		t.Errorf("name = %q", inv.Args.String("name"))
	}
	if b, ok := inv.Args.Bool("enabled"); !ok || !b {
		t.Errorf("enabled = %v, %v", b, ok)
	}
	if n := inv.Args.Int("limit", 0); n != 5 {
		t.Errorf("limit = %d, want 5", n)
	}
}

func TestInvocation_DirectMessage(t *testing.T) {
	i := interaction("ping")
	i.User = &discordgo.User{ID: "9", Username: "dm-user"}

	inv := Invocation(i)
	if inv.Actor.UserID != "9" || inv.Actor.GuildID != "" || inv.Actor.Guild() != "global" {
		t.Errorf("Actor = %+v", inv.Actor)
	}
}

func TestEmbed(t *testing.T) {
	r := command.Failure("Router unreachable", strings.Repeat("é", maxDescription+10))
	r.AddField("a", "", false)
	r.Footer = "footer"

	e := Embed(r)
	if e.Color != levelColors[command.LevelError] {
		t.Errorf("Color = %#x", e.Color)
	}
	if n := len([]rune(e.Description)); n != maxDescription {
		t.Errorf("description runes = %d, want %d", n, maxDescription)
	}
	if !strings.HasSuffix(e.Description, "…") {
		t.Error("truncated description lacks ellipsis")
	}
	if len(e.Fields) != 1 || e.Fields[0].Value != "-" {
		t.Errorf("Fields = %+v", e.Fields)
	}
	if e.Footer == nil || e.Footer.Text != "footer" {
		t.Errorf("Footer = %+v", e.Footer)
	}
}

func embedSize(e *discordgo.MessageEmbed) int {
	n := runes(e.Title) + runes(e.Description)
	if e.Footer != nil {
		n += runes(e.Footer.Text)
	}
	for _, f := range e.Fields {
		n += runes(f.Name) + runes(f.Value)
	}
	return n
}

func TestEmbed_TotalSizeCapped(t *testing.T) {
	tests := []struct {
		name       string
		footer     string
		wantFooter string
	}{
		{"full list", "", "of 25"},
		{"already cut by handler", "Showing 25 of 40", "of 40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := command.Info("Audit Log", "Last 25 change(s), newest first.")
			for i := 0; i < command.MaxFields; i++ {
				r.AddField(fmt.Sprintf("2024-01-01 00:00:%02d · set-banner-motd", i), strings.Repeat("b", 1200), false)
			}
			r.Footer = tt.footer

			e := Embed(r)
			if n := embedSize(e); n > maxEmbedTotal {
				t.Errorf("embed size = %d, want <= %d", n, maxEmbedTotal)
			}
			if len(e.Fields) == 0 || len(e.Fields) >= command.MaxFields {
				t.Fatalf("fields = %d, want some dropped", len(e.Fields))
			}
			want := fmt.Sprintf("Showing %d %s", len(e.Fields), tt.wantFooter)
			if e.Footer == nil || e.Footer.Text != want {
				t.Errorf("Footer = %+v, want %q", e.Footer, want)
			}
		})
	}
}

func TestEmbed_SmallReplyKeepsAllFields(t *testing.T) {
	r := command.Info("Routers", "")
	for i := 0; i < 5; i++ {
		r.AddField(fmt.Sprintf("r%d", i), "online", true)
	}
	e := Embed(r)
	if len(e.Fields) != 5 || e.Footer != nil {
		t.Errorf("fields = %d footer = %+v, want 5 and none", len(e.Fields), e.Footer)
	}
}

func TestFollowup(t *testing.T) {
	r := command.Success("Configuration backup", "saved")
	r.Attach("running_config.txt", []byte("hostname r1\n"))

	p := followup(r)
	if p.Flags != 0 {
		t.Errorf("Flags = %v, want 0", p.Flags)
	}
	if len(p.Files) != 1 || p.Files[0].Name != "running_config.txt" {
		t.Fatalf("Files = %+v", p.Files)
	}
	data, _ := io.ReadAll(p.Files[0].Reader)
	if string(data) != "hostname r1\n" {
		t.Errorf("file content = %q", data)
	}

	if p := followup(command.Failure("x", "y")); p.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("error Flags = %v, want ephemeral", p.Flags)
	}
}

type fakeDispatcher struct {
	reg   *command.Registry
	reply *command.Reply
	got   command.Invocation
}

func (f *fakeDispatcher) Execute(ctx context.Context, inv command.Invocation) *command.Reply {
	f.got = inv
	return f.reply
}

func (f *fakeDispatcher) Registry() *command.Registry { return f.reg }

type fakeResponder struct {
	deferFlags discordgo.MessageFlags
	deleted    bool
	sent       []*discordgo.WebhookParams
	failFirst  bool
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.deferFlags = resp.Data.Flags
	return nil
}

func (f *fakeResponder) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.deleted = true
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	if f.failFirst && len(f.sent) == 1 {
		return nil, errors.New("HTTP 400 Bad Request: embed too large")
	}
	return &discordgo.Message{}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		reply       *command.Reply
		wantFlags   discordgo.MessageFlags
		wantDeleted bool
	}{
		{"public success", "audit-log", command.Success("ok", ""), 0, false},
		{"error replaces deferral", "audit-log", command.Failure("bad", ""), 0, true},
		{"private command", "add-router", command.Success("Router added", ""), discordgo.MessageFlagsEphemeral, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := tt.reply
			if tt.command == "add-router" {
				reply.Ephemeral = true
			}
			d := &fakeDispatcher{reg: testRegistry(), reply: reply}
			b := &Bot{dispatcher: d, ctx: context.Background()}
			s := &fakeResponder{}

			b.handle(s, interaction(tt.command))
			if s.deferFlags != tt.wantFlags {
				t.Errorf("defer flags = %v, want %v", s.deferFlags, tt.wantFlags)
			}
			if s.deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", s.deleted, tt.wantDeleted)
			}
			if len(s.sent) != 1 || s.sent[0].Embeds[0].Title != reply.Title {
				t.Errorf("sent = %+v", s.sent)
			}
			if d.got.Command != tt.command {
				t.Errorf("dispatched %q, want %q", d.got.Command, tt.command)
			}
		})
	}
}

func TestHandle_FallbackWhenReplyRejected(t *testing.T) {
	d := &fakeDispatcher{reg: testRegistry(), reply: command.Success("ok", "")}
	b := &Bot{dispatcher: d, ctx: context.Background()}
	s := &fakeResponder{failFirst: true}

	b.handle(s, interaction("audit-log"))
	if len(s.sent) != 2 {
		t.Fatalf("sent %d follow-ups, want reply and fallback", len(s.sent))
	}
	fallback := s.sent[1]
	if fallback.Content == "" || len(fallback.Embeds) != 0 {
		t.Errorf("fallback = %+v, want plain text", fallback)
	}
	if fallback.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("fallback Flags = %v, want ephemeral", fallback.Flags)
	}
}

func TestHandle_IgnoresOtherInteractions(t *testing.T) {
	d := &fakeDispatcher{reg: testRegistry()}
	b := &Bot{dispatcher: d, ctx: context.Background()}
	s := &fakeResponder{}

	i := interaction("ping")
	i.Type = discordgo.InteractionMessageComponent
	b.handle(s, i)
	if len(s.sent) != 0 || d.got.Command != "" {
		t.Error("non-command interaction was handled")
	}
}
