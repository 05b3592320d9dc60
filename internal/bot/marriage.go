package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"canary-bot/internal/modules/economy"
	"canary-bot/internal/modules/marriage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const proposalGone = "Este pedido de casamento não está mais disponível."

type roleplay struct {
	action marriage.Action
	verb   string
	name   string
	gifs   []string
}

var roleplays = map[string]roleplay{
	"beijar": {
		action: marriage.Kiss,
		verb:   "beijou",
		name:   "beijar",
		gifs: []string{
			"https://media.discordapp.net/attachments/1278504005542219900/1387210211726590053/dc5424c13451567db5d9d3d6fe9d0878cca8b11f.gif",
			"https://media.discordapp.net/attachments/1278504005542219900/1387210211428663317/J19WNqwS8.gif",
		},
	},
	"abracar": {
		action: marriage.Hug,
		verb:   "abraçou",
		name:   "abraçar",
		gifs: []string{
			"https://i.pinimg.com/originals/3e/30/03/3e3003c2a6d2038749a34181a7894a8e.gif",
			"https://i.pinimg.com/originals/c3/11/17/c31117565778845f061e3328e13725f2.gif",
			"https://i.pinimg.com/originals/5e/b9/73/5eb973e6e8da6324a3c1032a56784b29.gif",
		},
	},
	"carinho": {
		action: marriage.Pat,
		verb:   "fez carinho em",
		name:   "fazer carinho",
		gifs: []string{
			"https://i.pinimg.com/originals/a2/33/c2/a233c2a8f81156637372d8a398327c58.gif",
			"https://i.pinimg.com/originals/ca/36/57/ca36573e23a3f5a135315569477038c3.gif",
			"https://i.pinimg.com/originals/2e/27/41/2e274154407981548a8c43553580554c.gif",
		},
	},
}

func (b *Bot) proposalText(proposerID, targetID string) string {
	cost := b.cfg.Marriage.Cost
	return fmt.Sprintf("💍 | %s Você recebeu uma proposta de casamento de %s!\n\n"+
		"💵 | Para aceitar, clique no 💍! Mas lembrando, o custo de um casamento é **%d Orbs** (%d para cada usuário) "+
		"e cada casamento começa com %d pontos de afinidade, sendo possível ganhar pontos usando ações fofinhas nos comandos de roleplay.\n\n"+
		"🧐 | O sistema de casamento pode mudar ao longo do tempo, então os valores podem ser alterados no futuro, fique de olho nas novidades!",
		mention(targetID), mention(proposerID), cost*2, cost, b.cfg.Marriage.AffinityInitial)
}

func (b *Bot) handleMarry(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	proposer := interactionUser(interaction)
	target := optionMap(data.Options).User(data, "alvo")
	cost := b.cfg.Marriage.Cost

	switch {
	case target == nil:
		b.respond(session, interaction, "Não encontrei essa pessoa.", true)
	case target.ID == proposer.ID:
		b.respond(session, interaction, "Tá com muito amor próprio.", true)
	case target.Bot:
		b.respond(session, interaction, "Você não pode se casar com um bot!", true)
	case b.marriage.IsMarried(ctx, proposer.ID):
		b.respond(session, interaction, "Você já está casado(a)! Use `/divorciar` primeiro.", true)
	case b.marriage.IsMarried(ctx, target.ID):
		b.respond(session, interaction, fmt.Sprintf("Querendo pegar ele(a)? %s, ele(a) já é casado, tome cuidado.", target.Username), true)
	case b.economy.Coins(ctx, proposer.ID) < cost:
		b.respond(session, interaction, fmt.Sprintf("Você não tem Orbs o suficiente! O casamento custa **%d Orbs**.", cost), true)
	case b.economy.Coins(ctx, target.ID) < cost:
		b.respond(session, interaction, fmt.Sprintf("Infelizmente, %s, não possui os **%d Orbs** necessários para casar.", target.Username, cost), true)
	default:
		proposal := b.proposals.Open(interaction.GuildID, proposer.ID, target.ID)
		components := row(
			button("💍 Aceitar", discordgo.SuccessButton, componentMarryAccept, proposal.ID),
			button("💔 Recusar", discordgo.DangerButton, componentMarryDecline, proposal.ID),
		)
		b.respondWithComponents(session, interaction, b.proposalText(proposer.ID, target.ID), nil, components, false)
		b.expireRequest(session, interaction, b.proposals, proposal,
			fmt.Sprintf("O pedido de casamento de %s para %s expirou por falta de resposta.", mention(proposer.ID), mention(target.ID)))
	}
}

// expireRequest rewrites the original response once the request outlives
// its deadline without being answered.
func (b *Bot) expireRequest(session *discordgo.Session, interaction *discordgo.InteractionCreate, requests *marriage.Proposals, proposal marriage.Proposal, content string) {
	time.AfterFunc(time.Until(proposal.ExpiresAt), func() {
		if !requests.Discard(proposal.ID) {
			return
		}
		components := []discordgo.MessageComponent{}
		_, _ = session.InteractionResponseEdit(interaction.Interaction, &discordgo.WebhookEdit{
			Content:    &content,
			Components: &components,
		})
	})
}

func (b *Bot) handleProposalAnswer(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, proposalID string, accept bool) {
	proposal, ok := b.proposals.Peek(proposalID)
	if !ok {
		b.respond(session, interaction, proposalGone, true)
		return
	}
	if interactionUser(interaction).ID != proposal.TargetID {
		b.respond(session, interaction, "Seu boboca, não se meta no casamento dos outros.", true)
		return
	}
	cost := b.cfg.Marriage.Cost
	proposer, target := mention(proposal.ProposerID), mention(proposal.TargetID)

	if _, ok := b.proposals.Take(proposalID); !ok {
		b.respond(session, interaction, proposalGone, true)
		return
	}
	if accept && b.economy.Coins(ctx, proposal.TargetID) < cost {
		b.updateMessage(session, interaction, fmt.Sprintf("%s, seu pedido foi recusado pois %s não tinha os Orbs necessários no momento do aceite.", proposer, target), nil, nil)
		b.followup(session, interaction, fmt.Sprintf("Você não pode aceitar, pois não tem **%d Orbs** necessários!", cost), nil, true)
		return
	}

	if !accept {
		b.updateMessage(session, interaction, fmt.Sprintf("💔 Que pena, %s...", proposer), nil, nil)
		b.followup(session, interaction, fmt.Sprintf("%s recusou o pedido de casamento de %s.", target, proposer), nil, false)
		return
	}

	if err := b.wed(ctx, proposal.ProposerID, proposal.TargetID, cost); err != nil {
		content := "Algo deu errado ao registrar o casamento. Tente novamente mais tarde."
		switch {
		case errors.Is(err, marriage.ErrAlreadyMarried):
			content = "Um de vocês já se casou com outra pessoa enquanto o pedido estava aberto."
		case errors.Is(err, economy.ErrInsufficientFunds):
			content = fmt.Sprintf("O casamento não aconteceu: %s e %s precisam ter **%d Orbs** cada.", proposer, target, cost)
		default:
			b.logger.Error("marriage failed", zap.String("proposer_id", proposal.ProposerID), zap.String("target_id", proposal.TargetID), zap.Error(err))
		}
		b.updateMessage(session, interaction, content, nil, nil)
		return
	}

	b.updateMessage(session, interaction, fmt.Sprintf("🎉 Parabéns, %s e %s!", proposer, target), nil, nil)
	b.followup(session, interaction, fmt.Sprintf("Parabéns! %s e %s agora estão casados! ❤️", proposer, target), nil, false)
}

// wed charges both partners in one write and then links the couple. The
// charge is refunded when the link cannot be made.
func (b *Bot) wed(ctx context.Context, proposerID, targetID string, cost int) error {
	if err := b.economy.Charge(ctx, cost, proposerID, targetID); err != nil {
		return err
	}
	if err := b.marriage.Marry(ctx, proposerID, targetID); err != nil {
		if refundErr := b.economy.Refund(ctx, cost, proposerID, targetID); refundErr != nil {
			b.logger.Error("marriage refund failed", zap.String("proposer_id", proposerID), zap.String("target_id", targetID), zap.Error(refundErr))
		}
		return err
	}
	return nil
}

func (b *Bot) handleDivorce(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := interactionUser(interaction)
	partnerID, ok := b.marriage.Partner(ctx, user.ID)
	if !ok {
		b.respond(session, interaction, "Você não está casado!", true)
		return
	}
	request := b.divorces.Open(interaction.GuildID, user.ID, partnerID)
	components := row(
		button("Confirmar Divórcio", discordgo.DangerButton, componentDivorceConfirm, request.ID),
		button("Cancelar", discordgo.SecondaryButton, componentDivorceCancel, request.ID),
	)
	content := fmt.Sprintf("Vish, eu entendo que o amor não foi tão forte, mas, se decidir clicar no botão abaixo, vão se divorciar totalmente. Tem certeza que quer se divorciar dele(a) %s?", mention(partnerID))
	b.respondWithComponents(session, interaction, content, nil, components, true)
	b.expireRequest(session, interaction, b.divorces, request, "Perdeu o time, paizão")
}

func (b *Bot) handleDivorceAnswer(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, requestID string, confirm bool) {
	request, ok := b.divorces.Peek(requestID)
	if !ok {
		b.updateMessage(session, interaction, "Perdeu o time, paizão", nil, nil)
		return
	}
	user := interactionUser(interaction)
	if user.ID != request.ProposerID {
		b.respond(session, interaction, "Este botão não é para você.", true)
		return
	}
	if _, ok := b.divorces.Take(requestID); !ok {
		b.updateMessage(session, interaction, "Perdeu o time, paizão", nil, nil)
		return
	}
	if !confirm {
		b.updateMessage(session, interaction, "Operação cancelada.", nil, nil)
		return
	}

	partnerID, found, err := b.marriage.Divorce(ctx, user.ID)
	if err != nil {
		b.logger.Error("divorce failed", zap.String("user_id", user.ID), zap.Error(err))
		b.updateMessage(session, interaction, "Não foi possível concluir o divórcio agora.", nil, nil)
		return
	}
	if !found {
		b.updateMessage(session, interaction, "Você não está casado!", nil, nil)
		return
	}
	b.updateMessage(session, interaction, "💔 Processando divórcio...", nil, nil)
	b.followup(session, interaction, fmt.Sprintf("%s se divorciou de %s. A vida continua...", mention(user.ID), mention(partnerID)), nil, false)
}

// roleplayFor resolves the chosen subcommand of the roleplay command.
func roleplayFor(data discordgo.ApplicationCommandInteractionData) (roleplay, *discordgo.ApplicationCommandInteractionDataOption, bool) {
	if len(data.Options) == 0 {
		return roleplay{}, nil, false
	}
	sub := data.Options[0]
	rp, ok := roleplays[sub.Name]
	return rp, sub, ok
}

func (b *Bot) handleRoleplay(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	rp, sub, ok := roleplayFor(data)
	if !ok {
		b.respond(session, interaction, "Interação desconhecida.", true)
		return
	}
	user := interactionUser(interaction)
	target := optionMap(sub.Options).User(data, "alvo")

	switch {
	case target == nil:
		b.respond(session, interaction, "Não encontrei essa pessoa.", true)
		return
	case target.ID == user.ID:
		b.respond(session, interaction, fmt.Sprintf("Você não pode %s em si mesmo!", rp.name), true)
		return
	case target.Bot:
		b.respond(session, interaction, "Você não pode interagir com bots.", true)
		return
	}

	embed := b.commandEmbed("", fmt.Sprintf("%s %s %s!", mention(user.ID), rp.verb, mention(target.ID)), b.cfg.Notifications.EmbedColors.Love, nil)
	embed.Image = &discordgo.MessageEmbedImage{URL: pick(rp.gifs)}
	b.respondEmbed(session, interaction, embed, false)

	if _, err := b.economy.IncrementRoleplay(ctx, target.ID, string(rp.action)); err != nil {
		b.logger.Warn("roleplay count failed", zap.String("user_id", target.ID), zap.Error(err))
	}

	partnerID, married := b.marriage.Partner(ctx, user.ID)
	if !married || partnerID != target.ID {
		return
	}
	gain := b.cfg.Marriage.AffinityGainMin + rand.IntN(b.cfg.Marriage.AffinityGainMax-b.cfg.Marriage.AffinityGainMin+1)
	updated, err := b.marriage.RecordAndUpdateAffinity(ctx, user.ID, rp.action, gain)
	switch {
	case err != nil:
		b.logger.Warn("affinity update failed", zap.String("user_id", user.ID), zap.Error(err))
	case updated:
		b.followup(session, interaction, fmt.Sprintf("💕 Por essa ação, você e %s ganharam **+%d ponto(s) de afinidade!**", mention(target.ID), gain), nil, true)
	default:
		b.followup(session, interaction, "Vocês já demonstraram seu amor com esta ação hoje. Tente outra ou volte amanhã!", nil, true)
	}
}
