package punish

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/modules/automod"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type fakePlatform struct {
	calls      []string
	deleteErr  error
	embedErr   error
	directErr  error
	embeds     map[string]*discordgo.MessageEmbed
	direct     *discordgo.MessageEmbed
	transient  string
	transientT time.Duration
}

func (f *fakePlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func (f *fakePlatform) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	f.calls = append(f.calls, "log")
	if f.embeds == nil {
		f.embeds = make(map[string]*discordgo.MessageEmbed)
	}
	f.embeds[channelID] = embed
	return f.embedErr
}

func (f *fakePlatform) SendDirectEmbed(ctx context.Context, userID string, embed *discordgo.MessageEmbed) error {
	f.calls = append(f.calls, "dm")
	f.direct = embed
	return f.directErr
}

func (f *fakePlatform) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	f.calls = append(f.calls, "transient")
	f.transient = content
	f.transientT = ttl
	return nil
}

type fakeChannels map[string]string

func (f fakeChannels) LogChannel(ctx context.Context, guildID string) (string, bool) {
	channel, ok := f[guildID]
	return channel, ok
}

func testMessage(content string) automod.Message {
	return automod.Message{GuildID: "g1", GuildName: "Canary", ChannelID: "c1", MessageID: "m1", AuthorID: "u1", Content: content, IsMember: true}
}

func forbidden() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
}

func TestPunishRunsAllSteps(t *testing.T) {
	platform := &fakePlatform{}
	pipeline := New(platform, fakeChannels{"g1": "log1"}, config.DefaultConfig(), zap.NewNop())

	outcome := pipeline.Punish(context.Background(), testMessage("nsfw"), automod.Verdict{Kind: automod.KindKeyword, Detail: "nsfw"})
	if !outcome.Deleted || !outcome.Logged || !outcome.Notified {
		t.Fatalf("expected all steps, got %+v", outcome)
	}
	if strings.Join(platform.calls, ",") != "delete,log,dm" {
		t.Fatalf("unexpected call order %v", platform.calls)
	}
	embed := platform.embeds["log1"]
	if embed == nil || !strings.Contains(embed.Title, "Conteúdo Inapropriado") {
		t.Fatalf("unexpected incident embed %+v", embed)
	}
	if !strings.Contains(embed.Footer.Text, outcome.IncidentID) {
		t.Fatalf("expected incident id in footer")
	}
	if !strings.Contains(platform.direct.Description, "Canary") {
		t.Fatalf("expected guild name in DM, got %q", platform.direct.Description)
	}
}

func TestPunishContinuesAfterFailures(t *testing.T) {
	platform := &fakePlatform{deleteErr: forbidden(), embedErr: errors.New("missing access")}
	pipeline := New(platform, fakeChannels{"g1": "log1"}, config.DefaultConfig(), zap.NewNop())

	outcome := pipeline.Punish(context.Background(), testMessage("x"), automod.Verdict{Kind: automod.KindPhishing, Detail: "dlscord.gift"})
	if outcome.Deleted || outcome.Logged {
		t.Fatalf("expected delete and log to fail, got %+v", outcome)
	}
	if !outcome.Notified {
		t.Fatalf("expected DM after earlier failures")
	}
	if len(platform.calls) != 3 {
		t.Fatalf("expected three attempts, got %v", platform.calls)
	}
}

func TestPunishWithoutLogChannel(t *testing.T) {
	platform := &fakePlatform{}
	pipeline := New(platform, fakeChannels{}, config.DefaultConfig(), zap.NewNop())

	outcome := pipeline.Punish(context.Background(), testMessage("x"), automod.Verdict{Kind: automod.KindKeyword, Detail: "x"})
	if outcome.Logged {
		t.Fatalf("expected no log without channel")
	}
	if strings.Join(platform.calls, ",") != "delete,dm" {
		t.Fatalf("unexpected calls %v", platform.calls)
	}
}

func TestIncidentContentTruncated(t *testing.T) {
	platform := &fakePlatform{}
	pipeline := New(platform, fakeChannels{"g1": "log1"}, config.DefaultConfig(), zap.NewNop())

	pipeline.Punish(context.Background(), testMessage(strings.Repeat("é", 1500)), automod.Verdict{Kind: automod.KindKeyword})
	field := platform.embeds["log1"].Fields[2].Value
	body := strings.TrimSuffix(strings.TrimPrefix(field, "```\n"), "\n```")
	if got := len([]rune(body)); got != 1000 {
		t.Fatalf("expected 1000 characters, got %d", got)
	}
}

func TestWarnSpamIsTransient(t *testing.T) {
	platform := &fakePlatform{}
	pipeline := New(platform, fakeChannels{}, config.DefaultConfig(), zap.NewNop())

	if err := pipeline.WarnSpam(context.Background(), testMessage("hi")); err != nil {
		t.Fatalf("warn spam: %v", err)
	}
	if platform.transientT != 10*time.Second || !strings.Contains(platform.transient, "<@u1>") {
		t.Fatalf("unexpected transient warning %q %v", platform.transient, platform.transientT)
	}
	for _, call := range platform.calls {
		if call == "delete" {
			t.Fatalf("spam warning must not delete")
		}
	}
}

func TestIsGoneOrForbidden(t *testing.T) {
	if !IsGoneOrForbidden(forbidden()) {
		t.Fatalf("expected forbidden classified")
	}
	if IsGoneOrForbidden(errors.New("boom")) {
		t.Fatalf("expected plain error not classified")
	}
}
