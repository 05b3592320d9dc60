package punish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/metrics"
	"canary-bot/internal/modules/automod"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Platform is the slice of the chat client the pipeline needs.
type Platform interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	SendDirectEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error
	SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error
}

// LogChannels resolves a guild's configured log channel.
type LogChannels interface {
	LogChannel(ctx context.Context, guildID string) (string, bool)
}

// Outcome records which best-effort steps went through.
type Outcome struct {
	IncidentID string
	Deleted    bool
	Logged     bool
	Notified   bool
}

type Pipeline struct {
	platform     Platform
	channels     LogChannels
	logger       *zap.Logger
	contentLimit int
	spamTTL      time.Duration
	notifyDM     bool
	colors       config.EmbedColors
	now          func() time.Time
}

func New(platform Platform, channels LogChannels, cfg config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		platform:     platform,
		channels:     channels,
		logger:       logger,
		contentLimit: cfg.Automod.LogContentLimit,
		spamTTL:      time.Duration(cfg.Automod.SpamWarningSeconds) * time.Second,
		notifyDM:     cfg.Notifications.DMOnPunish,
		colors:       cfg.Notifications.EmbedColors,
		now:          time.Now,
	}
}

// Punish deletes the message, posts an incident to the log channel and DMs
// the author. Each step is tried once and a failure never stops the next.
func (p *Pipeline) Punish(ctx context.Context, msg automod.Message, verdict automod.Verdict) Outcome {
	outcome := Outcome{IncidentID: uuid.NewString()}
	title, reason := describe(verdict)
	log := p.logger.With(
		zap.String("incident_id", outcome.IncidentID),
		zap.String("guild_id", msg.GuildID),
		zap.String("user_id", msg.AuthorID),
		zap.String("kind", verdict.Kind.String()),
	)

	err := p.platform.DeleteMessage(ctx, msg.ChannelID, msg.MessageID)
	metrics.ObservePunishStep("delete", err)
	switch {
	case err == nil:
		outcome.Deleted = true
	case IsGoneOrForbidden(err):
		log.Debug("message delete skipped", zap.Error(err))
	default:
		log.Warn("message delete failed", zap.Error(err))
	}

	if channelID, ok := p.channels.LogChannel(ctx, msg.GuildID); ok {
		err := p.platform.SendEmbed(ctx, channelID, p.incidentEmbed(outcome.IncidentID, msg, title, reason))
		metrics.ObservePunishStep("log", err)
		if err != nil {
			log.Warn("incident log failed", zap.String("channel_id", channelID), zap.Error(err))
		} else {
			outcome.Logged = true
		}
	}

	if p.notifyDM {
		err := p.platform.SendDirectEmbed(ctx, msg.AuthorID, p.directEmbed(msg, title))
		metrics.ObservePunishStep("notify", err)
		if err != nil {
			log.Debug("author notification failed", zap.Error(err))
		} else {
			outcome.Notified = true
		}
	}

	log.Info("automod punishment", zap.Bool("deleted", outcome.Deleted), zap.Bool("logged", outcome.Logged), zap.Bool("notified", outcome.Notified))
	return outcome
}

// WarnSpam posts a short-lived in-channel warning instead of deleting anything.
func (p *Pipeline) WarnSpam(ctx context.Context, msg automod.Message) error {
	content := fmt.Sprintf("<@%s>, por favor, evite enviar mensagens em excesso!", msg.AuthorID)
	err := p.platform.SendTransient(ctx, msg.ChannelID, content, p.spamTTL)
	metrics.ObservePunishStep("spam_warning", err)
	if err != nil {
		p.logger.Debug("spam warning failed", zap.String("user_id", msg.AuthorID), zap.Error(err))
	}
	return err
}

func (p *Pipeline) incidentEmbed(incidentID string, msg automod.Message, title, reason string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🛡️ AutoMod: " + title,
		Description: reason,
		Color:       p.colors.Error,
		Timestamp:   p.now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usuário", Value: "<@" + msg.AuthorID + ">", Inline: true},
			{Name: "Canal", Value: "<#" + msg.ChannelID + ">", Inline: true},
			{Name: "Conteúdo Original", Value: "```\n" + Truncate(msg.Content, p.contentLimit) + "\n```", Inline: false},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID do Usuário: " + msg.AuthorID + " • Incidente " + incidentID},
	}
}

func (p *Pipeline) directEmbed(msg automod.Message, title string) *discordgo.MessageEmbed {
	guildName := msg.GuildName
	if guildName == "" {
		guildName = msg.GuildID
	}
	return &discordgo.MessageEmbed{
		Title:       "Sua mensagem foi removida",
		Description: fmt.Sprintf("Sua mensagem no servidor **%s** foi removida automaticamente pelo seguinte motivo: **%s**.", guildName, title),
		Color:       p.colors.Warning,
	}
}

func describe(verdict automod.Verdict) (string, string) {
	switch verdict.Kind {
	case automod.KindKeyword:
		return "Conteúdo Inapropriado Detectado", fmt.Sprintf("A mensagem continha a palavra-chave proibida: `%s`.", verdict.Detail)
	case automod.KindPhishing:
		return "Link Malicioso Detectado", fmt.Sprintf("A mensagem continha um link suspeito que corresponde ao padrão: `%s`.", verdict.Detail)
	case automod.KindSpam:
		return "Spam Detectado", "Mensagens em excesso em pouco tempo."
	default:
		return "Violação", verdict.Detail
	}
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// IsGoneOrForbidden reports platform errors for targets that no longer
// exist or that the bot may not touch.
func IsGoneOrForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	switch restErr.Response.StatusCode {
	case http.StatusNotFound, http.StatusForbidden:
		return true
	default:
		return false
	}
}
