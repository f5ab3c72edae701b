package main

import (
	"github.com/bwmarrin/discordgo"
)

// commandDefinitions are the slash commands registered on startup.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "register_interview",
			Description: "面接の開始時間を登録",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "面接対象者",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "datetime",
					Description: "面接日時 (例: 02-10 15:00)",
					Required:    true,
				},
			},
		},
		{
			Name:        "list_interviews",
			Description: "登録されている面接日程を表示",
		},
		{
			Name:        "delete_interview",
			Description: "面接をIDで削除",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "削除する面接のID",
					Required:    true,
				},
			},
		},
	}
}

// commandOptions indexes an interaction's options by name.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	indexed := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		indexed[option.Name] = option
	}
	return indexed
}
