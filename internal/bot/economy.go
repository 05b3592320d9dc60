package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var greetings = []string{
	"☀️ Bom dia! Que seu dia seja repleto de alegria!",
	"🌅 Bom dia! Um novo dia, novas oportunidades!",
	"🌞 Bom dia! Que a energia positiva te acompanhe!",
	"🌻 Bom dia! Desperte com gratidão e determinação!",
	"🌈 Bom dia! Hoje é um ótimo dia para ser feliz!",
	"☕ Bom dia! Que seu café seja forte e seu dia seja incrível!",
	"🦋 Bom dia! Transforme cada momento em algo especial!",
	"🌺 Bom dia! Floresça onde você estiver plantado!",
	"✨ Bom dia! Brilhe como a estrela que você é!",
	"🎵 Bom dia! Que sua vida seja uma música feliz!",
}

var quotes = []string{
	"💪 'O sucesso nasce do querer, da determinação e persistência em se chegar a um objetivo.'",
	"🚀 'Acredite em si próprio e chegará um dia em que os outros não terão outra escolha senão acreditar com você.'",
	"🌟 'O que nos move é a busca da felicidade, é acreditar que vale a pena viver.'",
	"🎯 'Grandes realizações são possíveis quando se dá importância aos pequenos começos.'",
	"🔥 'A persistência é o caminho do êxito.'",
	"🌱 'Cada dia é uma nova oportunidade de crescer e se tornar uma versão melhor de si mesmo.'",
	"⚡ 'A força não vem da capacidade física. Vem de uma vontade indomável.'",
	"🏆 'O futuro pertence àqueles que acreditam na beleza de seus sonhos.'",
	"💎 'Seja você mesmo, todos os outros já existem.'",
	"🌍 'A mudança que você quer ver no mundo, comece em você.'",
}

var medals = []string{"🥇", "🥈", "🥉"}

func pick(list []string) string {
	return list[rand.IntN(len(list))]
}

func medal(rank int) string {
	if rank < len(medals) {
		return medals[rank]
	}
	return fmt.Sprintf("**%d.**", rank+1)
}

func (b *Bot) dailyEmbed(ctx context.Context, userID string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "💭 Frase Motivacional", Value: pick(quotes)},
		{Name: "🪙 Seus Orbs", Value: fmt.Sprintf("**%d** Orbs", b.economy.Coins(ctx, userID)), Inline: true},
	}
	if b.economy.CanClaimDaily(ctx, userID) {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🎁 Recompensa Diária", Value: "Disponível! Clique no botão abaixo.", Inline: true})
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "⏰ Próxima Recompensa", Value: "Disponível amanhã!", Inline: true})
	}
	if b.economy.CanClaimNewPhrase(ctx, userID) {
		phrase := fmt.Sprintf("Disponível! (%d-%d Orbs)", b.cfg.Economy.PhraseMin, b.cfg.Economy.PhraseMax)
		fields = append(fields, &discordgo.MessageEmbedField{Name: "✨ Nova Frase", Value: phrase, Inline: true})
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🔄 Nova Frase", Value: "Usada hoje!", Inline: true})
	}
	embed := b.commandEmbed("🌅 Bom Dia!", pick(greetings)+"\n\n"+mention(userID), b.cfg.Notifications.EmbedColors.Economy, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "💰 Ganhe Orbs interagindo com o bot!"}
	return embed
}

// dailyComponents renders the daily buttons, disabling whatever was already
// claimed today.
func (b *Bot) dailyComponents(ctx context.Context, userID string) []discordgo.MessageComponent {
	claim := button("🎁 Recompensa Diária", discordgo.PrimaryButton, componentDailyClaim, userID)
	if !b.economy.CanClaimDaily(ctx, userID) {
		claim.Label = "✅ Coletado!"
		claim.Style = discordgo.SuccessButton
		claim.Disabled = true
	}
	phrase := button("🔄 Nova Frase", discordgo.SecondaryButton, componentDailyPhrase, userID)
	if !b.economy.CanClaimNewPhrase(ctx, userID) {
		phrase.Label = "Usada hoje!"
		phrase.Style = discordgo.SuccessButton
		phrase.Disabled = true
	}
	return row(claim, phrase)
}

func (b *Bot) handleDaily(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	userID := interactionUser(interaction).ID
	embed := b.dailyEmbed(ctx, userID)
	if session.State.User != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: session.State.User.AvatarURL("")}
	}
	b.respondWithComponents(session, interaction, "", embed, b.dailyComponents(ctx, userID), false)
}

func (b *Bot) handleDailyClaim(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, ownerID string) {
	if interactionUser(interaction).ID != ownerID {
		b.respond(session, interaction, "🚓 Esta recompensa não é para você!", true)
		return
	}
	granted, amount, err := b.economy.ClaimDaily(ctx, ownerID)
	if err != nil {
		b.logger.Error("daily claim failed", zap.String("user_id", ownerID), zap.Error(err))
		b.respond(session, interaction, "Não foi possível coletar sua recompensa agora. Tente novamente.", true)
		return
	}
	if !granted {
		b.respond(session, interaction, "🚓 Você já coletou sua recompensa diária hoje! Volte amanhã.", true)
		return
	}
	b.updateMessage(session, interaction, "", b.dailyEmbed(ctx, ownerID), b.dailyComponents(ctx, ownerID))

	success := b.commandEmbed("Recompensa Coletada!", fmt.Sprintf("Você ganhou **%d Orbs**!\n\nTotal: **%d Orbs** 🪙", amount, b.economy.Coins(ctx, ownerID)), b.cfg.Notifications.EmbedColors.Action, nil)
	success.Footer = &discordgo.MessageEmbedFooter{Text: "Volte amanhã para mais recompensas!"}
	b.followup(session, interaction, "", success, true)
}

func (b *Bot) handleNewPhrase(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, ownerID string) {
	if interactionUser(interaction).ID != ownerID {
		b.respond(session, interaction, "😠 Este botão não é para você, seu bobão!", true)
		return
	}
	granted, amount, err := b.economy.ClaimNewPhrase(ctx, ownerID)
	if err != nil {
		b.logger.Error("new phrase failed", zap.String("user_id", ownerID), zap.Error(err))
		b.respond(session, interaction, "Não foi possível gerar uma nova frase agora. Tente novamente.", true)
		return
	}
	if !granted {
		b.respond(session, interaction, "🚓 Você já gerou uma nova frase hoje! Volte amanhã para gerar outra.", true)
		return
	}
	b.updateMessage(session, interaction, "", b.dailyEmbed(ctx, ownerID), b.dailyComponents(ctx, ownerID))
	b.followup(session, interaction, fmt.Sprintf("✨ Nova frase gerada! Você ganhou **%d Orbs** por interagir! 🪙", amount), nil, true)
}

var roleplayLabels = []struct {
	kind  string
	label string
}{
	{"kiss", "😘 Beijos"},
	{"hug", "🤗 Abraços"},
	{"pat", "🥰 Cafunés"},
}

func (b *Bot) handleProfile(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := optionMap(data.Options).User(data, "user")
	if target == nil {
		target = interactionUser(interaction)
	}

	account := b.economy.Account(ctx, target.ID)
	fields := []*discordgo.MessageEmbedField{
		{Name: "💰 Saldo Atual", Value: fmt.Sprintf("**%d** Orbs", account.Coins), Inline: true},
		{Name: "📈 Total Ganho", Value: fmt.Sprintf("**%d** Orbs", account.TotalEarned), Inline: true},
	}

	if record, ok := b.marriage.Record(ctx, target.ID); ok {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "💍 Estado Civil", Value: "Casado(a) com " + mention(record.PartnerID.String())},
			&discordgo.MessageEmbedField{Name: "💕 Pontos de Afinidade", Value: fmt.Sprintf("**%d** / %d", record.Affinity, b.cfg.Marriage.AffinityMax), Inline: true},
		)
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "💍 Estado Civil", Value: "Solteiro(a)"})
	}

	var lines []string
	for _, rp := range roleplayLabels {
		if count := account.RoleplayCounts[rp.kind]; count > 0 {
			lines = append(lines, fmt.Sprintf("%s: **%d**", rp.label, count))
		}
	}
	if len(lines) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "💖 Interações Recebidas", Value: strings.Join(lines, "\n")})
	}

	daily := "⏰ Disponível amanhã!"
	if b.economy.CanClaimDaily(ctx, target.ID) {
		daily = "✅ Disponível!"
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "🎁 Recompensa Diária", Value: daily, Inline: true})

	embed := b.commandEmbed("👤 Perfil de "+target.Username, mention(target.ID), b.cfg.Notifications.EmbedColors.Action, fields)
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "ID do Usuário: " + target.ID}
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleRanking(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	limit := b.cfg.Economy.TopLimit

	var richest []string
	for i, balance := range b.economy.TopBalances(ctx, limit) {
		richest = append(richest, fmt.Sprintf("%s %s - **%d** Orbs", medal(i), mention(balance.UserID), balance.Coins))
	}
	richestText := "Ninguém tem Orbs ainda."
	if len(richest) > 0 {
		richestText = strings.Join(richest, "\n")
	}

	var couples []string
	for i, couple := range b.marriage.TopCouples(ctx, limit) {
		couples = append(couples, fmt.Sprintf("%s %s & %s - **%d** de Afinidade ❤️", medal(i), mention(couple.UserID), mention(couple.PartnerID), couple.Affinity))
	}
	couplesText := "Nenhum casal no servidor ainda."
	if len(couples) > 0 {
		couplesText = strings.Join(couples, "\n")
	}

	embed := b.commandEmbed("🏆 Rankings do Servidor "+b.guildName(interaction.GuildID), "", b.cfg.Notifications.EmbedColors.Economy, []*discordgo.MessageEmbedField{
		{Name: "💰 Mais Ricos", Value: richestText},
		{Name: "💞 Casais do Ano", Value: couplesText},
	})
	b.respondEmbed(session, interaction, embed, true)
}
