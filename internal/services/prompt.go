package services

import (
	"fmt"

	"github.com/doeshing/aside/internal/domain"
)

// System personas. The coding persona is the default; the concise persona is
// selected only by the literal "ChatGPT" model alias.
const (
	codingPersona = "You are ASSISTANT, an expert developer helping USER with programming questions. " +
		"You answer truthfully, never invent APIs, and only do what you are asked. " +
		"Format every response with GitHub Flavored Markdown and put code inside fenced code blocks."

	concisePersona = "You are ChatGPT, a large language model. Answer as concisely as possible."
)

// BuildPrompt assembles the ordered three-message list for one chat turn:
// system persona, user question (optionally carrying the editor selection),
// and the assistant placeholder stub. Pure function, rebuilt on every turn.
func BuildPrompt(settings domain.ConnectionSettings, question, selection string) []domain.ChatMessage {
	persona := codingPersona
	if settings.Model == domain.ChatGPTModelAlias {
		persona = concisePersona
	}

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: persona},
		{Role: domain.RoleUser, Content: userContent(settings, question, selection)},
		{Role: domain.RoleAssistant, Content: domain.AssistantPlaceholder},
	}
}

func userContent(settings domain.ConnectionSettings, question, selection string) string {
	if selection == "" {
		return question
	}
	if settings.SelectedInsideCodeblock {
		return fmt.Sprintf("%s\n```\n%s\n```", question, selection)
	}
	return question + "\n" + selection
}
