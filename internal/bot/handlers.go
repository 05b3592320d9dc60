package bot

import (
	"context"

	"canary-bot/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

var staffCommands = map[string]struct{}{
	"warn":             {},
	"warns":            {},
	"unwarn":           {},
	"mute":             {},
	"unmute":           {},
	"ban":              {},
	"kick":             {},
	"clear":            {},
	"addcoins":         {},
	"removecoins":      {},
	"stafflogs":        {},
	"setlogchannel":    {},
	"removelogchannel": {},
	"automod":          {},
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	defer b.recoverHandler("interaction_create")
	ctx := context.Background()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, session, interaction)
	}
}

func (b *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ApplicationCommandData()
	metrics.ObserveCommand(data.Name)

	if interaction.GuildID == "" || interactionUser(interaction) == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Comando Indisponível", "Este comando só funciona em servidores."), true)
		return
	}

	if _, ok := staffCommands[data.Name]; ok {
		if !b.isStaff(interaction) {
			b.denyAccess(session, interaction)
			return
		}
		b.handleStaffCommand(ctx, session, interaction, data)
		return
	}

	switch data.Name {
	case "daily":
		b.handleDaily(ctx, session, interaction)
	case "perfil":
		b.handleProfile(ctx, session, interaction, data)
	case "ranking":
		b.handleRanking(ctx, session, interaction)
	case "casar":
		b.handleMarry(ctx, session, interaction, data)
	case "divorciar":
		b.handleDivorce(ctx, session, interaction)
	case "interagir":
		b.handleRoleplay(ctx, session, interaction, data)
	case "gerar":
		b.handleGenerate(ctx, session, interaction, data)
	default:
		b.respondEmbed(session, interaction, b.errorEmbed("Comando Desconhecido", "Este comando não existe mais."), true)
	}
}

func (b *Bot) handleComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	kind, args, ok := parseComponentID(interaction.MessageComponentData().CustomID)
	if !ok || interactionUser(interaction) == nil {
		b.respond(session, interaction, "Este botão não é mais válido.", true)
		return
	}
	metrics.ObserveCommand(string(kind))

	switch kind {
	case componentDailyClaim:
		b.handleDailyClaim(ctx, session, interaction, args[0])
	case componentDailyPhrase:
		b.handleNewPhrase(ctx, session, interaction, args[0])
	case componentMarryAccept:
		b.handleProposalAnswer(ctx, session, interaction, args[0], true)
	case componentMarryDecline:
		b.handleProposalAnswer(ctx, session, interaction, args[0], false)
	case componentDivorceConfirm:
		b.handleDivorceAnswer(ctx, session, interaction, args[0], true)
	case componentDivorceCancel:
		b.handleDivorceAnswer(ctx, session, interaction, args[0], false)
	}
}
