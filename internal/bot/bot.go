package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"canary-bot/internal/ai"
	"canary-bot/internal/analytics"
	"canary-bot/internal/config"
	"canary-bot/internal/guild"
	"canary-bot/internal/metrics"
	"canary-bot/internal/modules/audit"
	"canary-bot/internal/modules/automod"
	"canary-bot/internal/modules/discipline"
	"canary-bot/internal/modules/economy"
	"canary-bot/internal/modules/marriage"
	"canary-bot/internal/modules/punish"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Services are the stores and engines the bot drives. All are required
// except AI, which may be nil when generation is disabled.
type Services struct {
	Guilds     *guild.Store
	Rules      *automod.SettingsStore
	Automod    *automod.Engine
	Discipline *discipline.Ledger
	Economy    *economy.Ledger
	Marriage   *marriage.Ledger
	Audit      *audit.Logger
	Analytics  *analytics.Service
	AI         *ai.Client
}

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	session  *discordgo.Session
	platform *discordPlatform
	pipeline *punish.Pipeline

	guilds     *guild.Store
	rules      *automod.SettingsStore
	automod    *automod.Engine
	discipline *discipline.Ledger
	economy    *economy.Ledger
	marriage   *marriage.Ledger
	audit      *audit.Logger
	analytics  *analytics.Service
	ai         *ai.Client

	proposals *marriage.Proposals
	divorces  *marriage.Proposals

	stop     chan struct{}
	stopOnce sync.Once
}

func New(cfg config.Config, logger *zap.Logger, services Services) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:        cfg,
		logger:     logger,
		session:    session,
		platform:   &discordPlatform{session: session},
		guilds:     services.Guilds,
		rules:      services.Rules,
		automod:    services.Automod,
		discipline: services.Discipline,
		economy:    services.Economy,
		marriage:   services.Marriage,
		audit:      services.Audit,
		analytics:  services.Analytics,
		ai:         services.AI,
		proposals:  marriage.NewProposals(time.Duration(cfg.Marriage.ProposalSeconds) * time.Second),
		divorces:   marriage.NewProposals(time.Duration(cfg.Marriage.DivorceConfirmSecs) * time.Second),
		stop:       make(chan struct{}),
	}
	b.pipeline = punish.New(b.platform, b.guilds, cfg, logger)

	if b.audit != nil {
		b.audit.SetNotifier(func(ctx context.Context, entry audit.Entry) {
			if !b.cfg.Notifications.AuditToChannel {
				return
			}
			b.notifyAudit(ctx, entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.startMaintenance()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.stopOnce.Do(func() { close(b.stop) })
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	defer b.recoverHandler("message_create")
	if msg.Author == nil || msg.GuildID == "" {
		return
	}

	ctx := context.Background()
	guildState, _ := session.State.Guild(msg.GuildID)
	message := automodMessage(msg, guildState)

	verdict := b.automod.Evaluate(ctx, message)
	if !verdict.Violation() {
		return
	}
	metrics.ObserveVerdict(verdict.Kind.String())

	if verdict.Kind == automod.KindSpam {
		_ = b.pipeline.WarnSpam(ctx, message)
		return
	}

	outcome := b.pipeline.Punish(ctx, message, verdict)
	botID := ""
	if session.State.User != nil {
		botID = session.State.User.ID
	}
	_, _ = b.audit.Log(ctx, audit.Entry{
		GuildID:    msg.GuildID,
		StaffID:    botID,
		StaffName:  "AutoMod",
		Action:     audit.ActionAutomod,
		TargetID:   message.AuthorID,
		TargetName: message.AuthorName,
		Reason:     verdict.Kind.String() + ": " + verdict.Detail,
		ExtraData:  "incident " + outcome.IncidentID,
	})
}

// automodMessage flattens a gateway message. guild may be nil when the state
// cache has not seen the guild yet, in which case nobody counts as admin.
func automodMessage(msg *discordgo.MessageCreate, guild *discordgo.Guild) automod.Message {
	message := automod.Message{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		Content:   msg.Content,
		IsMember:  msg.Member != nil,
	}
	if msg.Author != nil {
		message.AuthorID = msg.Author.ID
		message.AuthorName = msg.Author.Username
		message.AuthorBot = msg.Author.Bot
	}
	if guild != nil {
		message.GuildName = guild.Name
		if guild.OwnerID != "" && guild.OwnerID == message.AuthorID {
			message.IsAdmin = true
		} else {
			message.IsAdmin = memberHasAdmin(guild, msg.Member)
		}
	}
	return message
}

func memberHasAdmin(guild *discordgo.Guild, member *discordgo.Member) bool {
	if guild == nil || member == nil {
		return false
	}
	perms := int64(0)
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			perms |= role.Permissions
			break
		}
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms&discordgo.PermissionAdministrator != 0
}

// memberHasStaffRole reports whether member holds a role named in names.
func memberHasStaffRole(roles []*discordgo.Role, member *discordgo.Member, names []string) bool {
	if member == nil || len(names) == 0 {
		return false
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	byID := make(map[string]*discordgo.Role, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
	}
	for _, roleID := range member.Roles {
		role := byID[roleID]
		if role == nil {
			continue
		}
		if _, ok := wanted[role.Name]; ok {
			return true
		}
	}
	return false
}

func (b *Bot) isStaff(interaction *discordgo.InteractionCreate) bool {
	member := interaction.Member
	if member == nil || interaction.GuildID == "" {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	roles := b.guildRoles(interaction.GuildID)
	if memberHasAdmin(&discordgo.Guild{ID: interaction.GuildID, Roles: roles}, member) {
		return true
	}
	return memberHasStaffRole(roles, member, b.cfg.Staff.RoleNames)
}

func (b *Bot) guildRoles(guildID string) []*discordgo.Role {
	if g, err := b.session.State.Guild(guildID); err == nil && g != nil && len(g.Roles) > 0 {
		return g.Roles
	}
	roles, err := b.session.GuildRoles(guildID)
	if err != nil {
		b.logger.Debug("guild roles lookup failed", zap.String("guild_id", guildID), zap.Error(err))
		return nil
	}
	return roles
}

func (b *Bot) guildName(guildID string) string {
	if g, err := b.session.State.Guild(guildID); err == nil && g != nil {
		return g.Name
	}
	return guildID
}

const limiterIdle = 30 * time.Minute

func (b *Bot) startMaintenance() {
	interval := time.Duration(b.cfg.Staff.ReconcileMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				b.runMaintenance()
			}
		}
	}()
}

func (b *Bot) runMaintenance() {
	defer b.recoverHandler("maintenance")
	ctx := context.Background()
	expired, err := b.discipline.ReconcileExpired(ctx)
	if err != nil {
		b.logger.Warn("mute reconcile failed", zap.Error(err))
	}
	windows := b.automod.Sweep()
	stale := b.proposals.Sweep() + b.divorces.Sweep()
	limiters := 0
	if b.ai != nil {
		limiters = b.ai.Sweep(limiterIdle)
	}
	if expired > 0 || windows > 0 || stale > 0 || limiters > 0 {
		b.logger.Debug("maintenance",
			zap.Int("expired_mutes", expired),
			zap.Int("spam_windows", windows),
			zap.Int("stale_requests", stale),
			zap.Int("ai_limiters", limiters),
		)
	}
}

func (b *Bot) recoverHandler(name string) {
	if r := recover(); r != nil {
		b.logger.Error("handler panic", zap.String("handler", name), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
	}
}

// recordAction appends a staff action to the audit log.
func (b *Bot) recordAction(ctx context.Context, interaction *discordgo.InteractionCreate, action string, target *discordgo.User, amount int, reason, extra string) {
	staff := interactionUser(interaction)
	entry := audit.Entry{
		GuildID:   interaction.GuildID,
		Action:    action,
		Amount:    amount,
		Reason:    reason,
		ExtraData: extra,
	}
	if staff != nil {
		entry.StaffID = staff.ID
		entry.StaffName = staff.Username
	}
	if target != nil {
		entry.TargetID = target.ID
		entry.TargetName = target.Username
	}
	if _, err := b.audit.Log(ctx, entry); err != nil {
		b.logger.Warn("staff action not recorded", zap.String("action", action), zap.Error(err))
	}
}

func (b *Bot) notifyAudit(ctx context.Context, entry audit.Entry) {
	if entry.Action == audit.ActionAutomod || entry.GuildID == "" {
		return
	}
	channelID, ok := b.guilds.LogChannel(ctx, entry.GuildID)
	if !ok {
		return
	}
	if err := b.platform.SendEmbed(ctx, channelID, b.auditEmbed(entry)); err != nil {
		b.logger.Debug("audit notification failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) auditEmbed(entry audit.Entry) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "👮 Staff", Value: mentionOr(entry.StaffID, entry.StaffName), Inline: true},
		{Name: "👤 Alvo", Value: mentionOr(entry.TargetID, entry.TargetName), Inline: true},
	}
	if entry.Amount != 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🔢 Quantidade", Value: fmt.Sprintf("%d", entry.Amount), Inline: true})
	}
	if entry.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "📝 Motivo", Value: punish.Truncate(entry.Reason, 1000), Inline: false})
	}
	if entry.ExtraData != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "ℹ️ Detalhes", Value: punish.Truncate(entry.ExtraData, 1000), Inline: false})
	}
	embed := b.commandEmbed(actionEmoji(entry.Action)+" "+actionLabel(entry.Action), "", b.cfg.Notifications.EmbedColors.Action, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Registro " + entry.ID}
	return embed
}
