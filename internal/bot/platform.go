package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// discordPlatform adapts the session to the punishment pipeline.
type discordPlatform struct {
	session *discordgo.Session
}

func (p *discordPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_ = ctx
	return p.session.ChannelMessageDelete(channelID, messageID)
}

func (p *discordPlatform) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_ = ctx
	_, err := p.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (p *discordPlatform) SendDirectEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	_ = ctx
	channel, err := p.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

// SendTransient posts content and deletes it after ttl.
func (p *discordPlatform) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	_ = ctx
	msg, err := p.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return err
	}
	if ttl > 0 && msg != nil {
		time.AfterFunc(ttl, func() {
			_ = p.session.ChannelMessageDelete(channelID, msg.ID)
		})
	}
	return nil
}
