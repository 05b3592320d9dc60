package bot

import "github.com/bwmarrin/discordgo"

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionUser, Name: name, Description: description, Required: required}
}

func intOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionInteger, Name: name, Description: description, Required: required}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: name, Description: description, Required: required}
}

func subcommand(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionSubCommand, Name: name, Description: description, Options: opts}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	guildOnly := false
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "warn",
			Description: "⚠️ [STAFF] Dar advertência a um usuário",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário que receberá a advertência", true),
				stringOption("reason", "Motivo da advertência", true),
			},
		},
		{
			Name:        "warns",
			Description: "📋 [STAFF] Ver advertências de um usuário",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Usuário para verificar advertências", true)},
		},
		{
			Name:        "unwarn",
			Description: "✅ [STAFF] Remover uma advertência de um usuário",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário advertido", true),
				intOption("id", "Número da advertência", true),
			},
		},
		{
			Name:        "mute",
			Description: "🔇 [STAFF] Silenciar um usuário temporariamente",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário que será silenciado", true),
				intOption("duration", "Duração em minutos", true),
				stringOption("reason", "Motivo do silenciamento", true),
			},
		},
		{
			Name:        "unmute",
			Description: "🔊 [STAFF] Remover o silenciamento de um usuário",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Usuário silenciado", true)},
		},
		{
			Name:        "ban",
			Description: "🔨 [STAFF] Banir um usuário do servidor",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário que será banido", true),
				stringOption("reason", "Motivo do banimento", true),
				intOption("delete_messages", "Deletar mensagens dos últimos X dias (0-7)", false),
			},
		},
		{
			Name:        "kick",
			Description: "👢 [STAFF] Expulsar um usuário do servidor",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário que será expulso", true),
				stringOption("reason", "Motivo da expulsão", true),
			},
		},
		{
			Name:        "clear",
			Description: "🧹 [STAFF] Limpar mensagens de um canal",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("amount", "Número de mensagens para deletar (1-100)", true),
				userOption("user", "Deletar apenas mensagens de um usuário específico", false),
			},
		},
		{
			Name:        "addcoins",
			Description: "🪙 [STAFF] Adicionar Orbs a um usuário",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário que receberá os Orbs", true),
				intOption("amount", "Quantidade de Orbs para adicionar", true),
				stringOption("reason", "Motivo da adição", false),
			},
		},
		{
			Name:        "removecoins",
			Description: "💸 [STAFF] Remover Orbs de um usuário",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Usuário que perderá os Orbs", true),
				intOption("amount", "Quantidade de Orbs para remover", true),
				stringOption("reason", "Motivo da remoção", false),
			},
		},
		{
			Name:        "stafflogs",
			Description: "📋 [STAFF] Ver logs das ações da staff",
			Options:     []*discordgo.ApplicationCommandOption{intOption("limit", "Número de logs para mostrar (máximo 10)", false)},
		},
		{
			Name:        "setlogchannel",
			Description: "🔧 [STAFF] Define o canal para receber os logs de moderação.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "O canal de texto para onde os logs serão enviados.",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}},
		},
		{
			Name:        "removelogchannel",
			Description: "🔧 [STAFF] Desativa o envio de logs de moderação.",
		},
		{
			Name:        "automod",
			Description: "🛡️ [STAFF] Gerenciar as regras do AutoMod",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add-keyword", "Adicionar palavra proibida", stringOption("value", "Palavra", true)),
				subcommand("remove-keyword", "Remover palavra proibida", stringOption("value", "Palavra", true)),
				subcommand("add-pattern", "Adicionar padrão de phishing (regex)", stringOption("value", "Expressão regular", true)),
				subcommand("remove-pattern", "Remover padrão de phishing", stringOption("value", "Expressão regular", true)),
				subcommand("list", "Listar as regras atuais"),
				subcommand("reload", "Recarregar as regras do armazenamento"),
			},
		},
		{
			Name:        "daily",
			Description: "Pegue sua recompensa diária de hoje!",
		},
		{
			Name:        "perfil",
			Description: "Veja seu perfil, Orbs e status de casamento! 🤵👰",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Opcional: veja o perfil de outro usuário.", false)},
		},
		{
			Name:        "casar",
			Description: "💍 Peça alguém em casamento!",
			Options:     []*discordgo.ApplicationCommandOption{userOption("alvo", "A pessoa com quem você quer casar.", true)},
		},
		{
			Name:        "divorciar",
			Description: "💔 Termine seu casamento atual.",
		},
		{
			Name:        "ranking",
			Description: "🏆 Veja os rankings de Orbs e de casais do servidor!",
		},
		{
			Name:        "interagir",
			Description: "Interaja com outros usuários!",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("beijar", "😘 Dê um beijo em alguém!", userOption("alvo", "A pessoa que você quer beijar.", true)),
				subcommand("abracar", "🤗 Dê um abraço em alguém!", userOption("alvo", "A pessoa que você quer abraçar.", true)),
				subcommand("carinho", "🥰 Faça um cafuné em alguém!", userOption("alvo", "A pessoa em quem você quer fazer cafuné.", true)),
			},
		},
		{
			Name:        "gerar",
			Description: "✨ Gere o conteúdo de um embed com IA",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("prompt", "Sobre o que o embed deve falar", true)},
		},
	}
	for _, cmd := range commands {
		cmd.DMPermission = &guildOnly
	}
	return commands
}

func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}
	return nil
}
