package bot

import (
	"context"
	"errors"
	"time"

	"canary-bot/internal/ai"
	"canary-bot/internal/modules/punish"

	"github.com/bwmarrin/discordgo"
)

const generateTimeout = 45 * time.Second

func (b *Bot) handleGenerate(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if b.ai == nil || !b.ai.Enabled() {
		b.respondEmbed(session, interaction, b.errorEmbed("IA Indisponível", "A geração de conteúdo não está configurada neste bot."), true)
		return
	}
	prompt := optionMap(data.Options).String("prompt", "")
	if prompt == "" {
		b.respondEmbed(session, interaction, b.errorEmbed("Tema Vazio", "Diga sobre o que o embed deve falar."), true)
		return
	}
	user := interactionUser(interaction)
	b.deferResponse(session, interaction, true)

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	content, err := b.ai.GenerateContent(ctx, user.ID, prompt)
	if err != nil {
		b.editResponse(session, interaction, "", b.generateErrorEmbed(ctx, err))
		return
	}

	embed := b.commandEmbed(punish.Truncate(content.Title, 256), punish.Truncate(content.Description, 4096), b.cfg.Notifications.EmbedColors.Action, nil)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "✨ Gerado por IA para " + user.Username}
	b.editResponse(session, interaction, "", embed)
}

func (b *Bot) generateErrorEmbed(ctx context.Context, err error) *discordgo.MessageEmbed {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return b.errorEmbed("Calma Aí", "Você fez muitos pedidos em pouco tempo. Tente novamente em instantes.")
	case errors.Is(err, ai.ErrSafetyBlocked):
		return b.errorEmbed("Conteúdo Bloqueado", "A IA se recusou a gerar esse conteúdo pelos filtros de segurança. Tente outro tema.")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return b.errorEmbed("Tempo Esgotado", "A IA demorou demais para responder. Tente novamente.")
	default:
		return b.errorEmbed("Falha na Geração", "Não foi possível gerar o conteúdo agora. Tente novamente mais tarde.")
	}
}
