package ai

import "testing"

func TestParseContent(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		title string
		desc  string
	}{
		{"portuguese markers", "TÍTULO: Regras\nDESCRIÇÃO: Seja gentil.", "Regras", "Seja gentil."},
		{"english markers", "title: Rules\ndescription: Be kind.\n\nNo spam.", "Rules", "Be kind.\n\nNo spam."},
		{"no markers", "  Apenas texto.  ", PlaceholderTitle, "Apenas texto."},
		{"title only", "TITLE: Só título\nresto", "Só título", "TITLE: Só título\nresto"},
		{"empty title", "TÍTULO:\nDESCRIÇÃO: corpo", PlaceholderTitle, "corpo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseContent(tc.text)
			if got.Title != tc.title || got.Description != tc.desc {
				t.Fatalf("expected %q/%q, got %q/%q", tc.title, tc.desc, got.Title, got.Description)
			}
		})
	}
}
