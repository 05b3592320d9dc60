package bot

import (
	"fmt"
	"time"

	"canary-bot/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   messageFlags(ephemeral),
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "Nenhuma resposta disponível.", ephemeral)
		return
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  messageFlags(ephemeral),
		},
	})
}

func (b *Bot) respondWithComponents(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Content:    content,
		Components: components,
		Flags:      messageFlags(ephemeral),
	}
	if embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{embed}
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// updateMessage rewrites the message a component belongs to. A nil embed
// keeps the current embeds.
func (b *Bot) updateMessage(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	data := &discordgo.InteractionResponseData{
		Content:    content,
		Components: components,
	}
	if components == nil {
		data.Components = []discordgo.MessageComponent{}
	}
	if embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{embed}
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

func (b *Bot) deferResponse(session *discordgo.Session, interaction *discordgo.InteractionCreate, ephemeral bool) {
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: messageFlags(ephemeral)},
	})
}

func (b *Bot) editResponse(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed) {
	edit := &discordgo.WebhookEdit{Content: &content}
	if embed != nil {
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
	}
	_, _ = session.InteractionResponseEdit(interaction.Interaction, edit)
}

func (b *Bot) followup(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed, ephemeral bool) {
	params := &discordgo.WebhookParams{Content: content, Flags: messageFlags(ephemeral)}
	if embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{embed}
	}
	_, _ = session.FollowupMessageCreate(interaction.Interaction, true, params)
}

func messageFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) errorEmbed(title, description string) *discordgo.MessageEmbed {
	return b.commandEmbed("❌ "+title, description, b.cfg.Notifications.EmbedColors.Error, nil)
}

func (b *Bot) denyAccess(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.respondEmbed(session, interaction, b.errorEmbed("Acesso Negado", "Você não tem permissão para usar este comando!"), true)
}

func interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func mentionOr(userID, fallback string) string {
	if userID == "" || userID == "ALL" {
		if fallback == "" {
			return "-"
		}
		return fallback
	}
	return mention(userID)
}

// formatDuration renders minutes as "45 minutos", "2h 30m" or "3d 4h".
func formatDuration(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d minutos", minutes)
	case minutes < 1440:
		hours, rest := minutes/60, minutes%60
		if rest > 0 {
			return fmt.Sprintf("%dh %dm", hours, rest)
		}
		return fmt.Sprintf("%dh", hours)
	default:
		days, hours := minutes/1440, (minutes%1440)/60
		if hours > 0 {
			return fmt.Sprintf("%dd %dh", days, hours)
		}
		return fmt.Sprintf("%dd", days)
	}
}

func actionEmoji(action string) string {
	switch action {
	case audit.ActionAddCoins:
		return "💰"
	case audit.ActionRemoveCoins:
		return "💸"
	case audit.ActionWarn:
		return "⚠️"
	case audit.ActionUnwarn:
		return "✅"
	case audit.ActionBan:
		return "🔨"
	case audit.ActionKick:
		return "👢"
	case audit.ActionMute:
		return "🔇"
	case audit.ActionUnmute:
		return "🔊"
	case audit.ActionClear:
		return "🧹"
	case audit.ActionAutomod:
		return "🛡️"
	default:
		return "📝"
	}
}

func actionLabel(action string) string {
	switch action {
	case audit.ActionAddCoins:
		return "Adicionar Orbs"
	case audit.ActionRemoveCoins:
		return "Remover Orbs"
	case audit.ActionWarn:
		return "Advertência"
	case audit.ActionUnwarn:
		return "Advertência Removida"
	case audit.ActionBan:
		return "Banimento"
	case audit.ActionKick:
		return "Expulsão"
	case audit.ActionMute:
		return "Silenciamento"
	case audit.ActionUnmute:
		return "Fim do Silenciamento"
	case audit.ActionClear:
		return "Limpeza"
	case audit.ActionAutomod:
		return "AutoMod"
	default:
		return action
	}
}

// options indexes slash command options by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	out := make(options, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

func (o options) String(name, fallback string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return fallback
}

func (o options) Int(name string, fallback int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}

// User resolves a user option, preferring the resolved payload so the bot
// flag and username are filled in.
func (o options) User(data discordgo.ApplicationCommandInteractionData, name string) *discordgo.User {
	opt, ok := o[name]
	if !ok {
		return nil
	}
	user := opt.UserValue(nil)
	if data.Resolved != nil {
		if resolved, ok := data.Resolved.Users[user.ID]; ok && resolved != nil {
			return resolved
		}
	}
	return user
}

func (o options) Channel(data discordgo.ApplicationCommandInteractionData, name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	id, _ := opt.Value.(string)
	if data.Resolved != nil {
		if channel, ok := data.Resolved.Channels[id]; ok && channel != nil {
			return channel.ID
		}
	}
	return id
}
