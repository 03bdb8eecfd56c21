// Package discord connects the command dispatcher to Discord slash commands.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/routerbot/routerbot/pkg/command"
	"github.com/routerbot/routerbot/pkg/util"
)

// Dispatcher runs invocations. *command.Dispatcher implements it.
type Dispatcher interface {
	Execute(ctx context.Context, inv command.Invocation) *command.Reply
	Registry() *command.Registry
}

// responder is the part of *discordgo.Session used to answer interactions.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot serves slash commands from a Discord gateway session.
type Bot struct {
	session    *discordgo.Session
	dispatcher Dispatcher
	guildID    string
	ctx        context.Context
}

// New creates a bot for token. With guildID set, commands are registered
// on that guild only, which takes effect immediately.
func New(token, guildID string, dispatcher Dispatcher) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return &Bot{session: session, dispatcher: dispatcher, guildID: guildID, ctx: context.Background()}, nil
}

// Run connects, registers commands and serves interactions until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		util.Infof("discord: logged in as %s#%s", r.User.Username, r.User.Discriminator)
	})
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handle(s, i)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	defer b.session.Close()

	cmds := ApplicationCommands(b.dispatcher.Registry())
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, cmds); err != nil {
		return fmt.Errorf("registering slash commands: %w", err)
	}
	scope := "globally"
	if b.guildID != "" {
		scope = "on guild " + b.guildID
	}
	util.Infof("discord: registered %d commands %s", len(cmds), scope)

	<-ctx.Done()
	util.Info("discord: shutting down")
	return nil
}

func (b *Bot) handle(s responder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	inv := Invocation(i)
	log := util.WithCommand(inv.Command, inv.Actor.String())

	// Private commands answer only the caller from the start.
	var flags discordgo.MessageFlags
	if cmd, ok := b.dispatcher.Registry().Lookup(inv.Command); ok && cmd.Private {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
	if err != nil {
		log.Warnf("deferring response: %v", err)
		return
	}

	reply := b.dispatcher.Execute(b.ctx, inv)

	// An ephemeral follow-up to a public deferral needs the placeholder
	// removed first, or it would replace it publicly.
	if reply.Ephemeral && flags == 0 {
		if err := s.InteractionResponseDelete(i.Interaction); err != nil {
			log.Debugf("deleting deferred response: %v", err)
		}
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, followup(reply)); err != nil {
		log.Warnf("sending reply: %v", err)
		fallback := &discordgo.WebhookParams{
			Content: "The reply could not be delivered. Check the bot logs.",
			Flags:   discordgo.MessageFlagsEphemeral,
		}
		if _, err := s.FollowupMessageCreate(i.Interaction, true, fallback); err != nil {
			log.Warnf("sending fallback reply: %v", err)
		}
	}
}
