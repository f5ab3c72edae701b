// Package discord wraps the Discord session behind the narrow surface
// the rest of the bot consumes: forwarding requests, publishing
// tallies, reaction maintenance, reminders, and slash-command
// responses.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"interviewbot/pkg/ballot"
	"interviewbot/pkg/config"
	"interviewbot/pkg/logger"
	"interviewbot/pkg/messages"
	"interviewbot/pkg/models"
)

// reactionPageSize is the per-request cap of the reaction user listing.
const reactionPageSize = 100

// Bot represents a Discord bot instance
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config
	logger  *logger.Logger
}

// CommandHandler is a function that handles one slash command
type CommandHandler func(i *discordgo.InteractionCreate)

// Handlers bundles the event callbacks the bot dispatches to
type Handlers struct {
	Commands         map[string]CommandHandler
	OnRequestMessage func(m *discordgo.MessageCreate)
	OnReactionAdd    func(r *discordgo.MessageReactionAdd)
	OnReactionRemove func(r *discordgo.MessageReactionRemove)
}

// New creates a new Discord bot instance
func New(cfg *config.Config) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers

	return &Bot{
		session: session,
		cfg:     cfg,
		logger:  logger.New("discord"),
	}, nil
}

// Start wires the handlers, opens the gateway connection and registers
// the slash commands once the session is ready.
func (b *Bot) Start(commands []*discordgo.ApplicationCommand, h Handlers) error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("Logged in as %s", r.User.String())

		_, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.cfg.GuildID, commands)
		if err != nil {
			b.logger.Error("Failed to register commands: %v", err)
			return
		}
		b.logger.Info("Registered %d application commands", len(commands))
	})

	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.ChannelID != b.cfg.RequestChannelID || m.Author == nil || m.Author.Bot {
			return
		}
		if h.OnRequestMessage != nil {
			h.OnRequestMessage(m)
		}
	})

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.ChannelID != b.cfg.ManageChannelID || r.UserID == s.State.User.ID {
			return
		}
		if h.OnReactionAdd != nil {
			h.OnReactionAdd(r)
		}
	})

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if r.ChannelID != b.cfg.ManageChannelID || r.UserID == s.State.User.ID {
			return
		}
		if h.OnReactionRemove != nil {
			h.OnReactionRemove(r)
		}
	})

	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		name := i.ApplicationCommandData().Name
		if handler, ok := h.Commands[name]; ok {
			b.logger.Info("Handling command: %s", name)
			handler(i)
		}
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	return nil
}

// Close closes the gateway connection
func (b *Bot) Close() error {
	return b.session.Close()
}

// HasRequiredRole reports whether the user carries the configured role
func (b *Bot) HasRequiredRole(guildID, userID string) (bool, error) {
	member, err := b.session.GuildMember(guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild member: %w", err)
	}

	for _, roleID := range member.Roles {
		if roleID == b.cfg.RequiredRoleID {
			return true, nil
		}
	}
	return false, nil
}

// ForwardRequest posts a request embed into the manage channel and
// seeds the two voting reactions. Returns the forwarded message id.
func (b *Bot) ForwardRequest(requesterID, avatarURL, requestText string) (string, error) {
	msg, err := b.session.ChannelMessageSendComplex(b.cfg.ManageChannelID, &discordgo.MessageSend{
		Content: messages.RequestContent,
		Embeds:  []*discordgo.MessageEmbed{messages.RequestEmbed(requesterID, avatarURL, requestText)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to forward request: %w", err)
	}

	// Seed failure leaves voters able to react manually; not fatal.
	for _, emoji := range []string{ballot.EmojiApprove, ballot.EmojiReject} {
		if err := b.session.MessageReactionAdd(b.cfg.ManageChannelID, msg.ID, emoji); err != nil {
			b.logger.Warn("Failed to seed %s on %s: %v", emoji, msg.ID, err)
		}
	}

	return msg.ID, nil
}

// AcknowledgeRequest reacts to the original request message
func (b *Bot) AcknowledgeRequest(channelID, messageID string) {
	if err := b.session.MessageReactionAdd(channelID, messageID, ballot.EmojiReceived); err != nil {
		b.logger.Warn("Failed to acknowledge request %s: %v", messageID, err)
	}
}

// RemoveReaction removes one user's reaction from a message
func (b *Bot) RemoveReaction(channelID, messageID, emoji, userID string) error {
	return b.session.MessageReactionRemove(channelID, messageID, emoji, userID)
}

// ReactionVoters returns the users currently holding a reaction
func (b *Bot) ReactionVoters(channelID, messageID, emoji string) ([]models.Voter, error) {
	users, err := b.session.MessageReactions(channelID, messageID, emoji, reactionPageSize, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reactions: %w", err)
	}

	voters := make([]models.Voter, 0, len(users))
	for _, user := range users {
		voters = append(voters, models.Voter{ID: user.ID, Bot: user.Bot})
	}
	return voters, nil
}

// SendTally publishes a new tally message in the result channel
func (b *Bot) SendTally(requesterID, requestText string, tally models.Tally) (string, error) {
	msg, err := b.session.ChannelMessageSendComplex(b.cfg.ResultChannelID, &discordgo.MessageSend{
		Content: messages.TallyContent,
		Embeds:  []*discordgo.MessageEmbed{messages.TallyEmbed(requesterID, requestText, tally)},
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// EditTally updates a previously published tally message in place
func (b *Bot) EditTally(messageID, requesterID, requestText string, tally models.Tally) error {
	content := messages.TallyContent
	edit := discordgo.NewMessageEdit(b.cfg.ResultChannelID, messageID)
	edit.Content = &content
	edit.Embeds = &[]*discordgo.MessageEmbed{messages.TallyEmbed(requesterID, requestText, tally)}

	_, err := b.session.ChannelMessageEditComplex(edit)
	return err
}

// SendSchedule publishes the schedule embed in the result channel
func (b *Bot) SendSchedule(embed *discordgo.MessageEmbed) error {
	_, err := b.session.ChannelMessageSendComplex(b.cfg.ResultChannelID, &discordgo.MessageSend{
		Content: messages.ScheduleContent,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	return err
}

// NotifyDirect sends a direct message to a user
func (b *Bot) NotifyDirect(userID, text string) error {
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel for %s: %w", userID, err)
	}

	if _, err := b.session.ChannelMessageSend(channel.ID, text); err != nil {
		return fmt.Errorf("failed to DM %s: %w", userID, err)
	}
	return nil
}

// NotifyChannel sends a plain message to the result channel
func (b *Bot) NotifyChannel(text string) error {
	_, err := b.session.ChannelMessageSend(b.cfg.ResultChannelID, text)
	return err
}

// RespondEphemeral sends an immediate response only the invoker sees
func (b *Bot) RespondEphemeral(i *discordgo.InteractionCreate, content string) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// DeferEphemeral acknowledges an interaction so the final response can
// follow later; the eventual response stays invoker-only.
func (b *Bot) DeferEphemeral(i *discordgo.InteractionCreate) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// EditResponse replaces the deferred acknowledgement with the final
// response
func (b *Bot) EditResponse(i *discordgo.InteractionCreate, content string) error {
	_, err := b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}
