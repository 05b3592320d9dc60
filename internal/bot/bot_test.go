package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestComponentIDRoundTrip(t *testing.T) {
	id := componentMarryAccept.customID("abc-123")
	kind, args, ok := parseComponentID(id)
	if !ok {
		t.Fatalf("expected %q to parse", id)
	}
	if kind != componentMarryAccept || len(args) != 1 || args[0] != "abc-123" {
		t.Fatalf("unexpected parse %s %v", kind, args)
	}
}

func TestParseComponentIDRejects(t *testing.T) {
	cases := []string{
		"",
		"unknown:1",
		"daily_claim",
		"daily_claim:",
		"daily_claim:1:2",
	}
	for _, id := range cases {
		if _, _, ok := parseComponentID(id); ok {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}

func adminGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g",
		OwnerID: "owner",
		Name:    "Canary",
		Roles: []*discordgo.Role{
			{ID: "g", Name: "@everyone"},
			{ID: "admin", Name: "Admin", Permissions: discordgo.PermissionAdministrator},
			{ID: "mod", Name: "Moderador"},
		},
	}
}

func TestMemberHasAdmin(t *testing.T) {
	guild := adminGuild()
	if !memberHasAdmin(guild, &discordgo.Member{Roles: []string{"admin"}}) {
		t.Fatalf("expected admin role to grant admin")
	}
	if memberHasAdmin(guild, &discordgo.Member{Roles: []string{"mod"}}) {
		t.Fatalf("expected mod role not to grant admin")
	}
	if memberHasAdmin(nil, &discordgo.Member{Roles: []string{"admin"}}) {
		t.Fatalf("expected nil guild to deny admin")
	}
}

func TestMemberHasStaffRole(t *testing.T) {
	roles := adminGuild().Roles
	names := []string{"Moderador", "Staff"}
	if !memberHasStaffRole(roles, &discordgo.Member{Roles: []string{"mod"}}, names) {
		t.Fatalf("expected Moderador to count as staff")
	}
	if memberHasStaffRole(roles, &discordgo.Member{Roles: []string{"admin"}}, names) {
		t.Fatalf("expected Admin name not to count as staff role")
	}
	if memberHasStaffRole(roles, nil, names) {
		t.Fatalf("expected nil member to be rejected")
	}
}

func TestAutomodMessage(t *testing.T) {
	guild := adminGuild()
	msg := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m",
		GuildID:   "g",
		ChannelID: "c",
		Content:   "hello",
		Author:    &discordgo.User{ID: "owner", Username: "dono"},
		Member:    &discordgo.Member{},
	}}

	got := automodMessage(msg, guild)
	if !got.IsAdmin || !got.IsMember || got.GuildName != "Canary" || got.AuthorName != "dono" {
		t.Fatalf("expected owner flagged as admin member, got %+v", got)
	}

	msg.Author = &discordgo.User{ID: "u1", Username: "user"}
	msg.Member = &discordgo.Member{Roles: []string{"admin"}}
	if got := automodMessage(msg, guild); !got.IsAdmin {
		t.Fatalf("expected admin role flagged")
	}

	msg.Member = nil
	got = automodMessage(msg, nil)
	if got.IsAdmin || got.IsMember {
		t.Fatalf("expected non-member without admin, got %+v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		45:   "45 minutos",
		60:   "1h",
		150:  "2h 30m",
		1440: "1d",
		1700: "1d 4h",
	}
	for minutes, want := range cases {
		if got := formatDuration(minutes); got != want {
			t.Fatalf("formatDuration(%d): expected %q, got %q", minutes, want, got)
		}
	}
}

func TestClampDeleteDays(t *testing.T) {
	cases := map[int]int{-1: 0, 0: 0, 3: 3, 7: 7, 8: 0}
	for in, want := range cases {
		if got := clampDeleteDays(in); got != want {
			t.Fatalf("clampDeleteDays(%d): expected %d, got %d", in, want, got)
		}
	}
}

func TestPurgeable(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	messages := []*discordgo.Message{
		{ID: "1", Author: &discordgo.User{ID: "a"}, Timestamp: now.Add(-time.Minute)},
		{ID: "2", Author: &discordgo.User{ID: "b"}, Timestamp: now.Add(-time.Hour)},
		{ID: "3", Author: &discordgo.User{ID: "a"}, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "4", Author: &discordgo.User{ID: "a"}, Timestamp: now.Add(-15 * 24 * time.Hour)},
	}

	if got := purgeable(messages, "", 2, now); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected newest two messages, got %v", got)
	}
	if got := purgeable(messages, "a", 10, now); len(got) != 2 || got[1] != "3" {
		t.Fatalf("expected author filter without old message, got %v", got)
	}
}

func TestCommandDefinitions(t *testing.T) {
	seen := make(map[string]bool)
	for _, cmd := range commandDefinitions() {
		if seen[cmd.Name] {
			t.Fatalf("duplicate command %s", cmd.Name)
		}
		seen[cmd.Name] = true
		if cmd.DMPermission == nil || *cmd.DMPermission {
			t.Fatalf("expected %s to be guild only", cmd.Name)
		}
	}
	for name := range staffCommands {
		if !seen[name] {
			t.Fatalf("staff command %s is not registered", name)
		}
	}
	for _, name := range []string{"daily", "perfil", "casar", "divorciar", "ranking", "interagir", "gerar"} {
		if !seen[name] {
			t.Fatalf("expected command %s", name)
		}
	}
}

func TestRoleplaysMatchSubcommands(t *testing.T) {
	for _, cmd := range commandDefinitions() {
		if cmd.Name != "interagir" {
			continue
		}
		for _, sub := range cmd.Options {
			if _, ok := roleplays[sub.Name]; !ok {
				t.Fatalf("subcommand %s has no roleplay", sub.Name)
			}
		}
		return
	}
	t.Fatalf("interagir not registered")
}

func TestMedal(t *testing.T) {
	if medal(0) != "🥇" || medal(2) != "🥉" || medal(3) != "**4.**" {
		t.Fatalf("unexpected medals %s %s %s", medal(0), medal(2), medal(3))
	}
}

func TestRoleplayFor(t *testing.T) {
	if _, _, ok := roleplayFor(discordgo.ApplicationCommandInteractionData{Name: "interagir"}); ok {
		t.Fatalf("expected missing subcommand to be rejected")
	}

	unknown := discordgo.ApplicationCommandInteractionData{
		Name:    "interagir",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{Name: "dance"}},
	}
	if _, _, ok := roleplayFor(unknown); ok {
		t.Fatalf("expected unknown subcommand to be rejected")
	}

	for name, want := range roleplays {
		data := discordgo.ApplicationCommandInteractionData{
			Name:    "interagir",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{Name: name}},
		}
		rp, sub, ok := roleplayFor(data)
		if !ok || sub.Name != name || rp.name != want.name {
			t.Fatalf("expected %s to resolve, got %v %+v", name, ok, rp)
		}
	}
}
