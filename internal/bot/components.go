package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// componentKind identifies what a button does. Custom ids are encoded as
// kind:arg[:arg...] so handlers never depend on button labels.
type componentKind string

const (
	componentDailyClaim     componentKind = "daily_claim"
	componentDailyPhrase    componentKind = "daily_phrase"
	componentMarryAccept    componentKind = "marry_accept"
	componentMarryDecline   componentKind = "marry_decline"
	componentDivorceConfirm componentKind = "divorce_confirm"
	componentDivorceCancel  componentKind = "divorce_cancel"
)

var knownComponents = map[componentKind]int{
	componentDailyClaim:     1,
	componentDailyPhrase:    1,
	componentMarryAccept:    1,
	componentMarryDecline:   1,
	componentDivorceConfirm: 1,
	componentDivorceCancel:  1,
}

func (k componentKind) customID(args ...string) string {
	return strings.Join(append([]string{string(k)}, args...), ":")
}

// parseComponentID splits a custom id, rejecting unknown kinds and ids with
// the wrong number of arguments.
func parseComponentID(customID string) (componentKind, []string, bool) {
	parts := strings.Split(customID, ":")
	kind := componentKind(parts[0])
	want, ok := knownComponents[kind]
	if !ok || len(parts)-1 != want {
		return "", nil, false
	}
	for _, arg := range parts[1:] {
		if arg == "" {
			return "", nil, false
		}
	}
	return kind, parts[1:], true
}

func button(label string, style discordgo.ButtonStyle, kind componentKind, args ...string) discordgo.Button {
	return discordgo.Button{Label: label, Style: style, CustomID: kind.customID(args...)}
}

func row(buttons ...discordgo.Button) []discordgo.MessageComponent {
	components := make([]discordgo.MessageComponent, 0, len(buttons))
	for _, btn := range buttons {
		components = append(components, btn)
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: components}}
}
