// Package messages renders every user-facing text and embed the bot
// produces. Keeping rendering in one place keeps the services free of
// presentation concerns and makes the output testable.
package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"interviewbot/pkg/models"
	"interviewbot/pkg/timeparse"
)

const embedColor = 0x00FF00

// Headline contents attached above embeds
const (
	RequestContent  = "📝 **新規面接希望**"
	TallyContent    = "📊 **面接リアクション集計**"
	ScheduleContent = "__**登録されている面接日程**__"
)

// Plain-text responses
const (
	ErrDMNotAllowed    = "❌ このコマンドはDMでは使用できません。サーバー内で試してください。"
	ErrInvalidDatetime = "❌ 無効な日時フォーマットです。例: 02-10 15:00"
	ErrRegisterFailed  = "❌ 面接の登録に失敗しました。"
	ErrListFailed      = "❌ 面接リストの取得に失敗しました。"
	ErrDeleteFailed    = "❌ 面接の削除に失敗しました。"
	ErrInterviewGone   = "❌ 指定された面接が見つかりません。正しいIDを入力してください。"
	ErrScheduleEmpty   = "❌ 現在登録されている面接はありません。"
)

// Mention renders a user reference as a Discord mention.
func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// Registered confirms a successful registration.
func Registered(userID string, at time.Time, loc *time.Location) string {
	return fmt.Sprintf("✅ %s さんの面接を %s に登録しました。", Mention(userID), timeparse.FormatLocal(at, loc))
}

// Deleted confirms a successful deletion by rank.
func Deleted(rank int, record models.InterviewRecord, loc *time.Location) string {
	return fmt.Sprintf("✅ 面接 ID: %d を削除しました。\n対象: %s さん\n日時: %s",
		rank, Mention(record.UserID), timeparse.FormatLocal(record.ScheduledAt, loc))
}

// ScheduleSent tells the invoker where the schedule was published.
func ScheduleSent(count int) string {
	return fmt.Sprintf("✅ %d 件の面接日程を送信しました。", count)
}

// Reminder renders the reminder for one interview.
func Reminder(record models.InterviewRecord) string {
	return fmt.Sprintf("⏰ **リマインダー**: %s さんの面接が10分後に予定されています！", Mention(record.UserID))
}

// RequestEmbed renders the embed forwarded into the manage channel for
// voting.
func RequestEmbed(requesterID, avatarURL, requestText string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       embedColor,
		Description: fmt.Sprintf("**申請者**: %s\n**希望日時**: %s", Mention(requesterID), requestText),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: avatarURL},
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "✅:対応可能, ❌:対応不可"},
	}
}

// TallyEmbed renders the current voter sets of a ballot. The output is
// fully determined by its inputs so republishing an unchanged tally
// yields an identical embed.
func TallyEmbed(requesterID, requestText string, tally models.Tally) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       embedColor,
		Description: fmt.Sprintf("**申請者**: %s\n**希望日時**: %s", Mention(requesterID), requestText),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "✅ **対応可能**",
				Value:  voterList(tally.Approve),
				Inline: true,
			},
			{
				Name:   "❌ **対応不可**",
				Value:  voterList(tally.Reject),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "面接の詳細をご確認ください"},
	}
}

// ScheduleEmbed renders the full interview schedule, one field per
// record in rank order.
func ScheduleEmbed(records []models.InterviewRecord, loc *time.Location) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:     embedColor,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "面接の詳細をご確認ください"},
	}

	for _, record := range records {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("ID: %d", record.Rank),
			Value: fmt.Sprintf("- %s\n📅 %s", Mention(record.UserID), timeparse.FormatLocal(record.ScheduledAt, loc)),
		})
	}

	return embed
}

func voterList(userIDs []string) string {
	if len(userIDs) == 0 {
		return "なし"
	}

	lines := make([]string, len(userIDs))
	for i, id := range userIDs {
		lines[i] = "- " + Mention(id)
	}
	return strings.Join(lines, "\n")
}
