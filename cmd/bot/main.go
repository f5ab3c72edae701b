package main

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"interviewbot/pkg/ballot"
	"interviewbot/pkg/config"
	"interviewbot/pkg/discord"
	"interviewbot/pkg/interview"
	"interviewbot/pkg/logger"
	"interviewbot/pkg/messages"
	"interviewbot/pkg/reminder"
	"interviewbot/pkg/storage"
	"interviewbot/pkg/timeparse"
)

func main() {
	// Initialize logger
	log := logger.Global
	log.Info("Starting interview bot...")

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize storage
	dataDir := filepath.Join(".", "data")
	store, err := storage.New(dataDir)
	if err != nil {
		log.Error("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// Start BadgerDB garbage collection
	store.StartGCRoutine(10 * time.Minute)

	// Initialize Discord bot
	bot, err := discord.New(cfg)
	if err != nil {
		log.Error("Failed to initialize Discord bot: %v", err)
		os.Exit(1)
	}

	// Initialize services
	interviewService := interview.New(store)
	ballotService := ballot.New(store, bot)
	reminderService := reminder.New(interviewService, bot, messages.Reminder, cfg.ReminderInterval)

	// Setup command handlers
	commandHandlers := map[string]discord.CommandHandler{
		"register_interview": func(i *discordgo.InteractionCreate) {
			if i.GuildID == "" {
				bot.RespondEphemeral(i, messages.ErrDMNotAllowed)
				return
			}

			if err := bot.DeferEphemeral(i); err != nil {
				log.Error("Failed to defer register response: %v", err)
				return
			}

			options := commandOptions(i)
			userOpt, okUser := options["user"]
			datetimeOpt, okDatetime := options["datetime"]
			if !okUser || !okDatetime {
				bot.EditResponse(i, messages.ErrInvalidDatetime)
				return
			}

			// Validation happens before any store mutation
			subjectID := userOpt.UserValue(nil).ID
			at, err := timeparse.Normalize(datetimeOpt.StringValue(), time.Now(), cfg.Location)
			if err != nil {
				bot.EditResponse(i, messages.ErrInvalidDatetime)
				return
			}

			if _, err := interviewService.Insert(subjectID, at); err != nil {
				log.Error("Failed to register interview: %v", err)
				bot.EditResponse(i, messages.ErrRegisterFailed)
				return
			}

			bot.EditResponse(i, messages.Registered(subjectID, at, cfg.Location))
		},
		"list_interviews": func(i *discordgo.InteractionCreate) {
			if i.GuildID == "" {
				bot.RespondEphemeral(i, messages.ErrDMNotAllowed)
				return
			}

			if err := bot.DeferEphemeral(i); err != nil {
				log.Error("Failed to defer list response: %v", err)
				return
			}

			records, err := interviewService.ListOrdered(time.Now())
			if err != nil {
				log.Error("Failed to list interviews: %v", err)
				bot.EditResponse(i, messages.ErrListFailed)
				return
			}

			if len(records) == 0 {
				bot.EditResponse(i, messages.ErrScheduleEmpty)
				return
			}

			if err := bot.SendSchedule(messages.ScheduleEmbed(records, cfg.Location)); err != nil {
				log.Error("Failed to publish schedule: %v", err)
				bot.EditResponse(i, messages.ErrListFailed)
				return
			}

			bot.EditResponse(i, messages.ScheduleSent(len(records)))
		},
		"delete_interview": func(i *discordgo.InteractionCreate) {
			if i.GuildID == "" {
				bot.RespondEphemeral(i, messages.ErrDMNotAllowed)
				return
			}

			if err := bot.DeferEphemeral(i); err != nil {
				log.Error("Failed to defer delete response: %v", err)
				return
			}

			options := commandOptions(i)
			idOpt, ok := options["id"]
			if !ok {
				bot.EditResponse(i, messages.ErrInterviewGone)
				return
			}

			rank := int(idOpt.IntValue())
			removed, err := interviewService.DeleteByRank(rank, time.Now())
			if err != nil {
				if errors.Is(err, interview.ErrNotFound) {
					bot.EditResponse(i, messages.ErrInterviewGone)
					return
				}
				log.Error("Failed to delete interview: %v", err)
				bot.EditResponse(i, messages.ErrDeleteFailed)
				return
			}

			bot.EditResponse(i, messages.Deleted(rank, *removed, cfg.Location))
		},
	}

	// Request channel messages: role-gated, must contain a date/time
	// phrase, then forwarded for voting.
	onRequestMessage := func(m *discordgo.MessageCreate) {
		hasRole, err := bot.HasRequiredRole(m.GuildID, m.Author.ID)
		if err != nil {
			log.Error("Failed to check role for %s: %v", m.Author.ID, err)
			return
		}
		if !hasRole || !ballot.Qualifies(m.Content) {
			return
		}

		forwardedID, err := bot.ForwardRequest(m.Author.ID, m.Author.AvatarURL(""), m.Content)
		if err != nil {
			// Without a forwarded message there is nothing to track
			log.Error("Failed to forward request from %s: %v", m.Author.ID, err)
			return
		}

		if err := ballotService.Track(cfg.ManageChannelID, forwardedID, m.Author.ID, m.Content); err != nil {
			log.Error("Failed to track ballot %s: %v", forwardedID, err)
		}

		bot.AcknowledgeRequest(m.ChannelID, m.ID)
	}

	onReactionAdd := func(r *discordgo.MessageReactionAdd) {
		if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
			return
		}
		if err := ballotService.HandleReactionAdd(r.MessageID, r.UserID, r.Emoji.Name); err != nil {
			log.Error("Failed to handle reaction add on %s: %v", r.MessageID, err)
		}
	}

	onReactionRemove := func(r *discordgo.MessageReactionRemove) {
		if err := ballotService.HandleReactionRemove(r.MessageID, r.UserID, r.Emoji.Name); err != nil {
			log.Error("Failed to handle reaction remove on %s: %v", r.MessageID, err)
		}
	}

	// Start the bot
	err = bot.Start(commandDefinitions(), discord.Handlers{
		Commands:         commandHandlers,
		OnRequestMessage: onRequestMessage,
		OnReactionAdd:    onReactionAdd,
		OnReactionRemove: onReactionRemove,
	})
	if err != nil {
		log.Error("Error starting bot: %v", err)
		os.Exit(1)
	}

	reminderService.Start()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Bot is now running. Press CTRL-C to exit.")
	<-sigChan

	log.Info("Shutting down...")
	reminderService.Stop()
	bot.Close()
	store.Close()
}
