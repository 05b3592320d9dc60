package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"canary-bot/internal/modules/audit"
	"canary-bot/internal/modules/automod"
	"canary-bot/internal/modules/punish"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// bulkDeleteMaxAge is how old a message may be for the bulk delete endpoint.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

func (b *Bot) handleStaffCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)
	switch data.Name {
	case "warn":
		b.handleWarn(ctx, session, interaction, opts.User(data, "user"), opts.String("reason", ""))
	case "warns":
		b.handleWarns(ctx, session, interaction, opts.User(data, "user"))
	case "unwarn":
		b.handleUnwarn(ctx, session, interaction, opts.User(data, "user"), opts.Int("id", 0))
	case "mute":
		b.handleMute(ctx, session, interaction, opts.User(data, "user"), opts.Int("duration", 0), opts.String("reason", ""))
	case "unmute":
		b.handleUnmute(ctx, session, interaction, opts.User(data, "user"))
	case "ban":
		b.handleBan(ctx, session, interaction, opts.User(data, "user"), opts.String("reason", ""), opts.Int("delete_messages", 0))
	case "kick":
		b.handleKick(ctx, session, interaction, opts.User(data, "user"), opts.String("reason", ""))
	case "clear":
		b.handleClear(ctx, session, interaction, opts.Int("amount", 0), opts.User(data, "user"))
	case "addcoins":
		b.handleAddCoins(ctx, session, interaction, opts.User(data, "user"), opts.Int("amount", 0), opts.String("reason", "Não especificado"))
	case "removecoins":
		b.handleRemoveCoins(ctx, session, interaction, opts.User(data, "user"), opts.Int("amount", 0), opts.String("reason", "Não especificado"))
	case "stafflogs":
		b.handleStaffLogs(ctx, session, interaction, opts.Int("limit", b.cfg.Staff.StaffLogsDefault))
	case "setlogchannel":
		b.handleSetLogChannel(ctx, session, interaction, opts.Channel(data, "channel"))
	case "removelogchannel":
		b.handleRemoveLogChannel(ctx, session, interaction)
	case "automod":
		b.handleAutomodCommand(ctx, session, interaction, data.Options)
	}
}

func (b *Bot) rejectSelf(session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, verb string) bool {
	if target == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Usuário Inválido", "Não encontrei esse usuário."), true)
		return true
	}
	if staff := interactionUser(interaction); staff != nil && staff.ID == target.ID {
		b.respondEmbed(session, interaction, b.errorEmbed("Ação Inválida", "Você não pode "+verb+" a si mesmo!"), true)
		return true
	}
	return false
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, reason string) {
	if b.rejectSelf(session, interaction, target, "dar advertência para") {
		return
	}
	staff := interactionUser(interaction)
	total, err := b.discipline.AddWarn(ctx, target.ID, staff.ID, reason)
	if err != nil {
		b.logger.Error("warn failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível registrar a advertência."), true)
		return
	}
	active := b.discipline.ActiveWarnCount(ctx, target.ID)
	b.recordAction(ctx, interaction, audit.ActionWarn, target, total, reason, "")

	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário Advertido", Value: mention(target.ID), Inline: true},
		{Name: "📊 Advertências Ativas", Value: fmt.Sprintf("**%d** de %d", active, total), Inline: true},
		{Name: "👮 Staff Responsável", Value: mention(staff.ID), Inline: true},
		{Name: "📝 Motivo", Value: "```" + reason + "```", Inline: false},
	}
	if active >= b.cfg.Staff.WarnAlertCount {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "🚨 Aviso Importante",
			Value: fmt.Sprintf("Este usuário atingiu **%d ou mais advertências**! Considere ações adicionais.", b.cfg.Staff.WarnAlertCount),
		})
	}
	embed := b.commandEmbed("⚠️ Advertência Aplicada", fmt.Sprintf("**%s** recebeu uma advertência!", target.Username), b.cfg.Notifications.EmbedColors.Warning, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "ID: " + target.ID}
	b.respondEmbed(session, interaction, embed, true)

	dm := b.commandEmbed("⚠️ Você Recebeu uma Advertência", fmt.Sprintf("Você recebeu uma advertência no servidor **%s**", b.guildName(interaction.GuildID)), b.cfg.Notifications.EmbedColors.Warning,
		[]*discordgo.MessageEmbedField{{Name: "📝 Motivo", Value: reason}})
	dm.Footer = &discordgo.MessageEmbedFooter{Text: "Por favor, leia as regras do servidor para evitar futuras advertências."}
	_ = b.platform.SendDirectEmbed(ctx, target.ID, dm)
}

func (b *Bot) handleWarns(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User) {
	if target == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Usuário Inválido", "Não encontrei esse usuário."), true)
		return
	}
	warns := b.discipline.Warns(ctx, target.ID)
	active := 0
	var lines []string
	for _, warn := range warns {
		if !warn.Active {
			continue
		}
		active++
		lines = append(lines, fmt.Sprintf("**#%d** - %s\n```%s```", warn.ID, warn.Timestamp.In(b.cfg.Location()).Format("02/01/2006"), punish.Truncate(warn.Reason, 50)))
	}
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}

	color := b.cfg.Notifications.EmbedColors.Action
	if active > 0 {
		color = b.cfg.Notifications.EmbedColors.Warning
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "📊 Resumo", Value: fmt.Sprintf("**%d** advertências ativas\n**%d** advertências totais", active, len(warns)), Inline: true},
	}
	if active == 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "✅ Status", Value: "Usuário sem advertências ativas", Inline: true})
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "⚠️ Advertências Recentes", Value: strings.Join(lines, "\n")})
	}
	if mute, ok := b.discipline.MuteStatus(ctx, target.ID); ok && b.discipline.IsMuted(ctx, target.ID) {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "🔇 Silenciado",
			Value: fmt.Sprintf("Até <t:%d:F>\n```%s```", mute.MuteUntil.Unix(), punish.Truncate(mute.Reason, 50)),
		})
	}
	embed := b.commandEmbed("📋 Advertências de "+target.Username, "", color, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "ID: " + target.ID}
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleUnwarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, warnID int) {
	if target == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Usuário Inválido", "Não encontrei esse usuário."), true)
		return
	}
	removed, err := b.discipline.DeactivateWarn(ctx, target.ID, warnID)
	if err != nil {
		b.logger.Error("unwarn failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível remover a advertência."), true)
		return
	}
	if !removed {
		b.respondEmbed(session, interaction, b.errorEmbed("Advertência Não Encontrada", fmt.Sprintf("Não há advertência ativa **#%d** para %s.", warnID, mention(target.ID))), true)
		return
	}
	b.recordAction(ctx, interaction, audit.ActionUnwarn, target, warnID, "", "")
	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário", Value: mention(target.ID), Inline: true},
		{Name: "📊 Advertências Ativas", Value: fmt.Sprintf("**%d**", b.discipline.ActiveWarnCount(ctx, target.ID)), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("✅ Advertência Removida", fmt.Sprintf("A advertência **#%d** foi desativada.", warnID), b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, minutes int, reason string) {
	if b.rejectSelf(session, interaction, target, "silenciar") {
		return
	}
	if minutes <= 0 || minutes > b.cfg.Staff.MuteMaxMinutes {
		b.respondEmbed(session, interaction, b.errorEmbed("Duração Inválida", fmt.Sprintf("A duração deve ser entre 1 e %d minutos!", b.cfg.Staff.MuteMaxMinutes)), true)
		return
	}
	staff := interactionUser(interaction)
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := b.session.GuildMemberTimeout(interaction.GuildID, target.ID, &until); err != nil {
		b.logger.Warn("timeout failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro de Permissão", "Não foi possível silenciar este usuário. Verifique as permissões!"), true)
		return
	}
	record, err := b.discipline.AddMute(ctx, target.ID, staff.ID, minutes, reason)
	if err != nil {
		b.logger.Error("mute record failed", zap.String("user_id", target.ID), zap.Error(err))
	} else {
		until = record.MuteUntil.Time
	}
	b.recordAction(ctx, interaction, audit.ActionMute, target, minutes, reason, "")

	duration := formatDuration(minutes)
	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário Silenciado", Value: mention(target.ID), Inline: true},
		{Name: "⏰ Duração", Value: "**" + duration + "**", Inline: true},
		{Name: "👮 Staff Responsável", Value: mention(staff.ID), Inline: true},
		{Name: "🕐 Liberado em", Value: fmt.Sprintf("<t:%d:F>", until.Unix()), Inline: true},
		{Name: "📝 Motivo", Value: "```" + reason + "```"},
	}
	embed := b.commandEmbed("🔇 Usuário Silenciado", fmt.Sprintf("**%s** foi silenciado temporariamente!", target.Username), b.cfg.Notifications.EmbedColors.Warning, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "ID: " + target.ID}
	b.respondEmbed(session, interaction, embed, true)

	dm := b.commandEmbed("🔇 Você Foi Silenciado", fmt.Sprintf("Você foi silenciado no servidor **%s**", b.guildName(interaction.GuildID)), b.cfg.Notifications.EmbedColors.Warning,
		[]*discordgo.MessageEmbedField{
			{Name: "⏰ Duração", Value: duration, Inline: true},
			{Name: "📝 Motivo", Value: reason},
			{Name: "🕐 Será liberado em", Value: fmt.Sprintf("<t:%d:F>", until.Unix())},
		})
	_ = b.platform.SendDirectEmbed(ctx, target.ID, dm)
}

func (b *Bot) handleUnmute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User) {
	if target == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Usuário Inválido", "Não encontrei esse usuário."), true)
		return
	}
	if err := b.session.GuildMemberTimeout(interaction.GuildID, target.ID, nil); err != nil && !punish.IsGoneOrForbidden(err) {
		b.logger.Warn("timeout removal failed", zap.String("user_id", target.ID), zap.Error(err))
	}
	cleared, err := b.discipline.Unmute(ctx, target.ID)
	if err != nil {
		b.logger.Error("unmute failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível remover o silenciamento."), true)
		return
	}
	if !cleared {
		b.respondEmbed(session, interaction, b.commandEmbed("⚠️ Sem Silenciamento", mention(target.ID)+" não estava silenciado.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	}
	b.recordAction(ctx, interaction, audit.ActionUnmute, target, 0, "", "")
	b.respondEmbed(session, interaction, b.commandEmbed("🔊 Silenciamento Removido", mention(target.ID)+" pode falar novamente.", b.cfg.Notifications.EmbedColors.Action, nil), true)
}

// clampDeleteDays maps out-of-range values to 0, matching the platform limit
// of seven days.
func clampDeleteDays(days int) int {
	if days < 0 || days > 7 {
		return 0
	}
	return days
}

func (b *Bot) handleBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, reason string, deleteDays int) {
	if b.rejectSelf(session, interaction, target, "banir") {
		return
	}
	staff := interactionUser(interaction)
	deleteDays = clampDeleteDays(deleteDays)

	dm := b.commandEmbed("🔨 Você Foi Banido", fmt.Sprintf("Você foi banido do servidor **%s**", b.guildName(interaction.GuildID)), b.cfg.Notifications.EmbedColors.Error,
		[]*discordgo.MessageEmbedField{{Name: "📝 Motivo", Value: reason}})
	dm.Footer = &discordgo.MessageEmbedFooter{Text: "Se você acredita que este banimento foi injusto, entre em contato com a administração."}
	_ = b.platform.SendDirectEmbed(ctx, target.ID, dm)

	if err := b.session.GuildBanCreateWithReason(interaction.GuildID, target.ID, fmt.Sprintf("[%s] %s", staff.Username, reason), deleteDays); err != nil {
		b.logger.Warn("ban failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro de Permissão", "Não foi possível banir este usuário. Verifique a hierarquia de cargos!"), true)
		return
	}
	b.recordAction(ctx, interaction, audit.ActionBan, target, deleteDays, reason, fmt.Sprintf("Mensagens deletadas: %d dias", deleteDays))

	deleted := "Nenhuma"
	if deleteDays > 0 {
		deleted = fmt.Sprintf("Últimos **%d** dias", deleteDays)
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário Banido", Value: fmt.Sprintf("%s\n`%s`", mention(target.ID), target.Username), Inline: true},
		{Name: "👮 Staff Responsável", Value: mention(staff.ID), Inline: true},
		{Name: "🗑️ Mensagens Deletadas", Value: deleted, Inline: true},
		{Name: "📝 Motivo", Value: "```" + reason + "```"},
	}
	embed := b.commandEmbed("🔨 Usuário Banido", fmt.Sprintf("**%s** foi banido permanentemente do servidor!", target.Username), b.cfg.Notifications.EmbedColors.Error, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "ID: " + target.ID}
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleKick(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, reason string) {
	if b.rejectSelf(session, interaction, target, "expulsar") {
		return
	}
	staff := interactionUser(interaction)

	dm := b.commandEmbed("👢 Você Foi Expulso", fmt.Sprintf("Você foi expulso do servidor **%s**", b.guildName(interaction.GuildID)), b.cfg.Notifications.EmbedColors.Warning,
		[]*discordgo.MessageEmbedField{{Name: "📝 Motivo", Value: reason}})
	dm.Footer = &discordgo.MessageEmbedFooter{Text: "Você pode retornar ao servidor através de um novo convite."}
	_ = b.platform.SendDirectEmbed(ctx, target.ID, dm)

	if err := b.session.GuildMemberDeleteWithReason(interaction.GuildID, target.ID, fmt.Sprintf("[%s] %s", staff.Username, reason)); err != nil {
		b.logger.Warn("kick failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro de Permissão", "Não foi possível expulsar este usuário. Verifique a hierarquia de cargos!"), true)
		return
	}
	b.recordAction(ctx, interaction, audit.ActionKick, target, 0, reason, "")

	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário Expulso", Value: fmt.Sprintf("%s\n`%s`", mention(target.ID), target.Username), Inline: true},
		{Name: "👮 Staff Responsável", Value: mention(staff.ID), Inline: true},
		{Name: "🔄 Pode Retornar", Value: "✅ Sim, com novo convite", Inline: true},
		{Name: "📝 Motivo", Value: "```" + reason + "```"},
	}
	embed := b.commandEmbed("👢 Usuário Expulso", fmt.Sprintf("**%s** foi expulso do servidor!", target.Username), b.cfg.Notifications.EmbedColors.Warning, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "ID: " + target.ID}
	b.respondEmbed(session, interaction, embed, true)
}

// purgeable picks up to amount message ids young enough for bulk deletion,
// optionally only from one author. messages are newest first.
func purgeable(messages []*discordgo.Message, authorID string, amount int, now time.Time) []string {
	ids := make([]string, 0, amount)
	for _, msg := range messages {
		if len(ids) >= amount {
			break
		}
		if msg == nil || now.Sub(msg.Timestamp) >= bulkDeleteMaxAge {
			continue
		}
		if authorID != "" && (msg.Author == nil || msg.Author.ID != authorID) {
			continue
		}
		ids = append(ids, msg.ID)
	}
	return ids
}

func (b *Bot) handleClear(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, amount int, target *discordgo.User) {
	limit := b.cfg.Staff.ClearMaxMessages
	if amount < 1 || amount > limit {
		b.respondEmbed(session, interaction, b.errorEmbed("Quantidade Inválida", fmt.Sprintf("Você deve especificar entre 1 e %d mensagens!", limit)), true)
		return
	}
	b.deferResponse(session, interaction, true)

	messages, err := b.session.ChannelMessages(interaction.ChannelID, limit, "", "", "")
	if err != nil {
		b.logger.Warn("clear fetch failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
		b.editResponse(session, interaction, "", b.errorEmbed("Erro", "Não foi possível ler as mensagens deste canal."))
		return
	}
	authorID := ""
	if target != nil {
		authorID = target.ID
	}
	ids := purgeable(messages, authorID, amount, time.Now())

	switch len(ids) {
	case 0:
	case 1:
		err = b.session.ChannelMessageDelete(interaction.ChannelID, ids[0])
	default:
		err = b.session.ChannelMessagesBulkDelete(interaction.ChannelID, ids)
	}
	if err != nil {
		b.logger.Warn("clear failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
		b.editResponse(session, interaction, "", b.errorEmbed("Erro de Permissão", "Não foi possível deletar as mensagens. Verifique as permissões!"))
		return
	}

	targetLabel := "Todas as mensagens"
	logTarget := &discordgo.User{ID: "ALL", Username: targetLabel}
	if target != nil {
		targetLabel = mention(target.ID)
		logTarget = target
	}
	b.recordAction(ctx, interaction, audit.ActionClear, logTarget, len(ids), "Limpeza no canal <#"+interaction.ChannelID+">", "")

	fields := []*discordgo.MessageEmbedField{
		{Name: "📺 Canal", Value: "<#" + interaction.ChannelID + ">", Inline: true},
		{Name: "👤 Alvo", Value: targetLabel, Inline: true},
	}
	b.editResponse(session, interaction, "", b.commandEmbed("🧹 Mensagens Limpas", fmt.Sprintf("**%d** mensagens foram deletadas com sucesso!", len(ids)), b.cfg.Notifications.EmbedColors.Action, fields))
}

func (b *Bot) handleAddCoins(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, amount int, reason string) {
	if target == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Usuário Inválido", "Não encontrei esse usuário."), true)
		return
	}
	if amount <= 0 {
		b.respondEmbed(session, interaction, b.errorEmbed("Valor Inválido", "A quantidade deve ser positiva!"), true)
		return
	}
	balance, err := b.economy.AddCoins(ctx, target.ID, amount)
	if err != nil {
		b.logger.Error("add coins failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível adicionar os Orbs."), true)
		return
	}
	b.recordAction(ctx, interaction, audit.ActionAddCoins, target, amount, reason, "")

	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário", Value: mention(target.ID), Inline: true},
		{Name: "🪙 Novo Saldo", Value: fmt.Sprintf("**%d** Orbs", balance), Inline: true},
		{Name: "👮 Staff", Value: mention(interactionUser(interaction).ID), Inline: true},
		{Name: "📝 Motivo", Value: "```" + reason + "```"},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("💰 Orbs Adicionados", fmt.Sprintf("**%d** Orbs foram adicionados com sucesso!", amount), b.cfg.Notifications.EmbedColors.Economy, fields), true)

	dm := b.commandEmbed("🎁 Você Recebeu Orbs!", fmt.Sprintf("Um membro da staff te beneficiou com **%d** Orbs à sua conta!", amount), b.cfg.Notifications.EmbedColors.Economy,
		[]*discordgo.MessageEmbedField{
			{Name: "💰 Seu Novo Saldo", Value: fmt.Sprintf("**%d** Orbs", balance), Inline: true},
			{Name: "📝 Motivo", Value: reason},
		})
	dm.Footer = &discordgo.MessageEmbedFooter{Text: "Servidor: " + b.guildName(interaction.GuildID)}
	_ = b.platform.SendDirectEmbed(ctx, target.ID, dm)
}

func (b *Bot) handleRemoveCoins(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, target *discordgo.User, amount int, reason string) {
	if target == nil {
		b.respondEmbed(session, interaction, b.errorEmbed("Usuário Inválido", "Não encontrei esse usuário."), true)
		return
	}
	if amount <= 0 {
		b.respondEmbed(session, interaction, b.errorEmbed("Valor Inválido", "A quantidade deve ser positiva!"), true)
		return
	}
	removed, err := b.economy.RemoveCoins(ctx, target.ID, amount)
	if err != nil {
		b.logger.Error("remove coins failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível remover os Orbs."), true)
		return
	}
	if !removed {
		b.respondEmbed(session, interaction, b.errorEmbed("Saldo Insuficiente", fmt.Sprintf("%s tem apenas **%d** Orbs.", mention(target.ID), b.economy.Coins(ctx, target.ID))), true)
		return
	}
	b.recordAction(ctx, interaction, audit.ActionRemoveCoins, target, amount, reason, "")

	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 Usuário", Value: mention(target.ID), Inline: true},
		{Name: "🪙 Novo Saldo", Value: fmt.Sprintf("**%d** Orbs", b.economy.Coins(ctx, target.ID)), Inline: true},
		{Name: "📝 Motivo", Value: "```" + reason + "```"},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("💸 Orbs Removidos", fmt.Sprintf("**%d** Orbs foram removidos.", amount), b.cfg.Notifications.EmbedColors.Economy, fields), true)
}

func (b *Bot) handleStaffLogs(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, limit int) {
	if limit <= 0 {
		limit = b.cfg.Staff.StaffLogsDefault
	}
	if limit > 10 {
		limit = 10
	}
	entries := b.audit.Recent(ctx, limit)
	if len(entries) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("📋 Logs da Staff", "Nenhum log encontrado.", b.cfg.Notifications.EmbedColors.Action, nil), true)
		return
	}

	location := b.cfg.Location()
	fields := make([]*discordgo.MessageEmbedField, 0, len(entries)+1)
	for i, entry := range entries {
		lines := []string{
			fmt.Sprintf("%s **%s**", actionEmoji(entry.Action), actionLabel(entry.Action)),
			"👤 **" + entry.TargetName + "**",
		}
		if entry.Action == audit.ActionAddCoins || entry.Action == audit.ActionRemoveCoins {
			lines = append(lines, fmt.Sprintf("💰 **%d** Orbs", entry.Amount))
		}
		lines = append(lines, "👮 "+entry.StaffName)
		if entry.Reason != "" {
			lines = append(lines, "📝 "+punish.Truncate(entry.Reason, 30))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("#%d • %s", i+1, entry.Timestamp.In(location).Format("02/01 às 15:04")),
			Value:  strings.Join(lines, "\n"),
			Inline: true,
		})
	}

	report := b.analytics.Report(ctx, 0)
	if len(report.ByAction) > 0 {
		summary := make([]string, 0, len(report.ByAction))
		for _, count := range report.ByAction {
			summary = append(summary, fmt.Sprintf("%s %d", actionEmoji(count.Key), count.Total))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("📈 Resumo (%d ações)", report.Total),
			Value: strings.Join(summary, " • "),
		})
	}

	embed := b.commandEmbed("📋 Logs da Staff", fmt.Sprintf("📊 Exibindo as últimas **%d** ações:", len(entries)), b.cfg.Notifications.EmbedColors.Warning, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "📋 Consultado por " + interactionUser(interaction).Username}
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleSetLogChannel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, channelID string) {
	if channelID == "" {
		b.respondEmbed(session, interaction, b.errorEmbed("Canal Inválido", "Escolha um canal de texto."), true)
		return
	}
	if err := b.guilds.SetLogChannel(ctx, interaction.GuildID, channelID); err != nil {
		b.logger.Error("log channel update failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível salvar o canal de logs."), true)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("✅ Canal de Logs Definido", "O canal de logs foi configurado para <#"+channelID+">.", b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleRemoveLogChannel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	removed, err := b.guilds.RemoveLogChannel(ctx, interaction.GuildID)
	if err != nil {
		b.logger.Error("log channel removal failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("Erro", "Não foi possível remover o canal de logs."), true)
		return
	}
	if !removed {
		b.respondEmbed(session, interaction, b.commandEmbed("⚠️ Nenhum Canal de Log", "Não havia um canal de logs configurado.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("✅ Logs Desativados", "O canal de logs foi removido.", b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleAutomodCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(opts) == 0 {
		b.respondEmbed(session, interaction, b.errorEmbed("AutoMod", "Escolha um subcomando."), true)
		return
	}
	sub := opts[0]
	value := optionMap(sub.Options).String("value", "")

	var changed bool
	var err error
	switch sub.Name {
	case "add-keyword":
		changed, err = b.rules.AddKeyword(ctx, value)
	case "remove-keyword":
		changed, err = b.rules.RemoveKeyword(ctx, value)
	case "add-pattern":
		changed, err = b.rules.AddPattern(ctx, value)
	case "remove-pattern":
		changed, err = b.rules.RemovePattern(ctx, value)
	case "reload":
		if err := b.rules.Reload(ctx); err != nil {
			b.logger.Warn("automod reload failed", zap.Error(err))
			b.respondEmbed(session, interaction, b.errorEmbed("AutoMod", "Não foi possível recarregar as regras."), true)
			return
		}
		b.respondEmbed(session, interaction, b.automodListEmbed("🔄 Regras Recarregadas"), true)
		return
	case "list":
		b.respondEmbed(session, interaction, b.automodListEmbed("🛡️ Regras do AutoMod"), true)
		return
	}

	switch {
	case errors.Is(err, automod.ErrInvalidPattern):
		b.respondEmbed(session, interaction, b.errorEmbed("Padrão Inválido", "A expressão regular não é válida."), true)
	case err != nil:
		b.logger.Error("automod update failed", zap.String("subcommand", sub.Name), zap.Error(err))
		b.respondEmbed(session, interaction, b.errorEmbed("AutoMod", "Não foi possível salvar as regras."), true)
	case !changed:
		b.respondEmbed(session, interaction, b.commandEmbed("⚠️ Nada Mudou", "`"+value+"` já estava nesse estado.", b.cfg.Notifications.EmbedColors.Warning, nil), true)
	default:
		b.logger.Info("automod rules updated", zap.String("subcommand", sub.Name), zap.String("value", value), zap.String("staff_id", interactionUser(interaction).ID))
		b.respondEmbed(session, interaction, b.automodListEmbed("✅ Regras Atualizadas"), true)
	}
}

func (b *Bot) automodListEmbed(title string) *discordgo.MessageEmbed {
	settings := b.rules.Snapshot()
	keywords := "Nenhuma"
	if list := settings.SortedKeywords(); len(list) > 0 {
		keywords = punish.Truncate("`"+strings.Join(list, "`, `")+"`", 1000)
	}
	patterns := "Nenhum"
	if len(settings.Patterns) > 0 {
		patterns = punish.Truncate("`"+strings.Join(settings.Patterns, "`\n`")+"`", 1000)
	}
	return b.commandEmbed(title, "", b.cfg.Notifications.EmbedColors.Action, []*discordgo.MessageEmbedField{
		{Name: "🔞 Palavras", Value: keywords},
		{Name: "🎣 Padrões de Phishing", Value: patterns},
	})
}
