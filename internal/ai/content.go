package ai

import (
	"fmt"
	"strings"
)

const PlaceholderTitle = "Título Gerado pela IA"

var (
	titleMarkers       = []string{"TÍTULO:", "TITLE:"}
	descriptionMarkers = []string{"DESCRIÇÃO:", "DESCRIPTION:"}
)

type Content struct {
	Title       string
	Description string
}

func structuredPrompt(topic string) string {
	return fmt.Sprintf("Com base no tópico a seguir, gere um conteúdo para um embed do Discord. "+
		"Sua resposta DEVE ser em português e seguir EXATAMENTE este formato, sem nenhuma palavra extra:\n"+
		"TÍTULO: [título gerado aqui]\n"+
		"DESCRIÇÃO: [descrição gerada aqui com parágrafos]\n\n"+
		"Tópico: %q", topic)
}

// ParseContent splits a model reply into title and description. Without a
// description marker the whole reply is the description; without a title
// marker the placeholder title is used.
func ParseContent(text string) Content {
	content := Content{Title: PlaceholderTitle, Description: strings.TrimSpace(text)}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := cutMarker(trimmed, titleMarkers); ok {
			if title := strings.TrimSpace(rest); title != "" {
				content.Title = title
			}
			continue
		}
		if rest, ok := cutMarker(trimmed, descriptionMarkers); ok {
			tail := append([]string{rest}, lines[i+1:]...)
			content.Description = strings.TrimSpace(strings.Join(tail, "\n"))
			break
		}
	}
	return content
}

func cutMarker(line string, markers []string) (string, bool) {
	for _, marker := range markers {
		if len(line) >= len(marker) && strings.EqualFold(line[:len(marker)], marker) {
			return line[len(marker):], true
		}
	}
	return "", false
}
