package discord

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/routerbot/routerbot/pkg/command"
)

// Embed limits enforced by the Discord API.
const (
	maxTitle       = 256
	maxDescription = 4096
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxFooter      = 2048
	maxEmbedTotal  = 6000
	maxOptionDesc  = 100
)

// footerReserve is the room kept for a "Showing n of m" footer when fields
// have to be dropped.
const footerReserve = 40

var levelColors = map[command.Level]int{
	command.LevelSuccess: 0x2ecc71,
	command.LevelInfo:    0x3498db,
	command.LevelWarning: 0xf1c40f,
	command.LevelError:   0xe74c3c,
}

// ApplicationCommands converts the registry to slash command definitions.
func ApplicationCommands(reg *command.Registry) []*discordgo.ApplicationCommand {
	cmds := reg.Commands()
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, cmd := range cmds {
		ac := &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: truncate(cmd.Description, maxOptionDesc),
		}
		// Required options must precede optional ones.
		for _, required := range []bool{true, false} {
			for _, opt := range cmd.Options {
				if opt.Required != required {
					continue
				}
				ac.Options = append(ac.Options, &discordgo.ApplicationCommandOption{
					Type:        optionType(opt.Type),
					Name:        opt.Name,
					Description: truncate(opt.Description, maxOptionDesc),
					Required:    opt.Required,
				})
			}
		}
		out = append(out, ac)
	}
	return out
}

func optionType(t command.OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case command.OptionBool:
		return discordgo.ApplicationCommandOptionBoolean
	case command.OptionInt:
		return discordgo.ApplicationCommandOptionInteger
	}
	return discordgo.ApplicationCommandOptionString
}

// Invocation builds a command invocation from a slash command interaction.
// Guild interactions carry a Member; direct messages carry a User.
func Invocation(i *discordgo.InteractionCreate) command.Invocation {
	data := i.ApplicationCommandData()
	inv := command.Invocation{
		Command: data.Name,
		Args:    command.Args{},
		Actor:   command.Actor{GuildID: i.GuildID},
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		inv.Actor.UserID = i.Member.User.ID
		inv.Actor.Username = i.Member.User.Username
		inv.Actor.RoleIDs = i.Member.Roles
	case i.User != nil:
		inv.Actor.UserID = i.User.ID
		inv.Actor.Username = i.User.Username
	}

	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionBoolean:
			inv.Args[opt.Name] = opt.BoolValue()
		case discordgo.ApplicationCommandOptionInteger:
			inv.Args[opt.Name] = opt.IntValue()
		default:
			inv.Args[opt.Name] = opt.StringValue()
		}
	}
	return inv
}

// Embed renders a reply as a message embed. Trailing fields are dropped to
// keep the embed within Discord's total size, and the footer then says how
// many are shown.
func Embed(r *command.Reply) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       truncate(r.Title, maxTitle),
		Description: truncate(r.Description, maxDescription),
		Color:       levelColors[r.Level],
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	footer := truncate(r.Footer, maxFooter)

	budget := maxEmbedTotal - runes(e.Title) - runes(e.Description) - max(runes(footer), footerReserve)
	for _, f := range r.Fields {
		field := &discordgo.MessageEmbedField{
			Name:   truncate(f.Name, maxFieldName),
			Value:  truncate(f.Value, maxFieldValue),
			Inline: f.Inline,
		}
		size := runes(field.Name) + runes(field.Value)
		if size > budget {
			break
		}
		budget -= size
		e.Fields = append(e.Fields, field)
	}
	if len(e.Fields) < len(r.Fields) {
		footer = fmt.Sprintf("Showing %d of %d", len(e.Fields), fieldTotal(r))
	}
	if footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return e
}

// fieldTotal is the number of items the reply stands for, taken from an
// existing "Showing n of m" footer when the handler already cut the list.
func fieldTotal(r *command.Reply) int {
	var shown, total int
	if _, err := fmt.Sscanf(r.Footer, "Showing %d of %d", &shown, &total); err == nil && total > len(r.Fields) {
		return total
	}
	return len(r.Fields)
}

func runes(s string) int { return utf8.RuneCountInString(s) }

// followup renders a reply as a follow-up message with its attachments.
func followup(r *command.Reply) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{Embed(r)}}
	if r.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	for _, f := range r.Files {
		params.Files = append(params.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: "text/plain",
			Reader:      bytes.NewReader(f.Content),
		})
	}
	return params
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if runes(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
