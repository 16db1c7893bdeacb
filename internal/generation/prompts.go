package generation

import (
	"fmt"
	"strings"

	"github.com/rpggio/codegenesis/internal/domain/project"
)

const defaultLanguage = "English"

func inceptionPrompt(requirementsDoc, language string) string {
	return fmt.Sprintf(`You are an expert Product Manager and Technical Architect in the Inception phase.
Your goal is to help the user clarify their requirements.

Current requirements document:
%s

Instructions:
1. Ask clarifying questions if the request is vague.
2. Suggest user stories or functional modules.
3. When the user seems satisfied with the requirements, ask whether they are ready to proceed to the Construction phase and generate code.
4. Respond in %s.`, requirementsDoc, language)
}

func constructionPrompt(requirementsDoc, language string) string {
	return fmt.Sprintf(`You are a Senior Full Stack Developer (Java Spring Boot + Vue 3) in the Construction phase.
The project files have already been generated from these requirements:
%s

Instructions:
1. Answer technical questions about the generated code.
2. If the user asks for modifications, explain how to implement them. You cannot change the files from this chat.
3. Respond in %s.`, requirementsDoc, language)
}

func summarizePrompt(language string) string {
	return fmt.Sprintf(`Summarize the project requirements from the conversation into a structured Markdown document.
Include: Project Name, Core Features, User Roles and key User Stories.
Output ONLY the Markdown content. Language: %s.`, language)
}

const codePrompt = `ACT AS: Senior Full Stack Architect & Developer.
TASK: Generate a production-ready web application scaffold from the requirements.

TECH STACK:
- Backend: Java 17, Spring Boot 3, Spring Data JPA, H2 Database, Lombok.
- Frontend: Vue 3 (Script Setup), Vite, Ant Design Vue 4.x, Axios, Pinia, Vue Router.

ENGINEERING STANDARDS:
1. The frontend uses Ant Design Vue components.
2. The frontend is modular: src/api/ for requests, src/utils/request.js for the Axios instance, src/router/ with lazy routes, src/stores/ for Pinia, .env.development and .env.production.
3. The backend follows the Controller -> Service -> Repository -> Entity layering.

GENERATE AT LEAST:
1. Backend: pom.xml, Application.java, application.yml and one complete feature module.
2. Frontend: package.json, vite.config.js, src/main.js, src/App.vue, src/utils/request.js, src/router/index.js, src/api/demo.js.

OUTPUT:
Return ONLY a JSON object of the form {"files": {"<path>": "<full file content>"}}.
Paths use forward slashes. Do not generate binary files.`

func systemPromptFor(phase project.Phase, requirementsDoc, language string) string {
	if phase == project.PhaseConstruction {
		return constructionPrompt(requirementsDoc, language)
	}
	return inceptionPrompt(requirementsDoc, language)
}

// historyMessages maps the user and model turns of a conversation to chat
// roles. System notices are not part of the history.
func historyMessages(messages []project.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case project.RoleUser:
			out = append(out, chatMessage{Role: "user", Content: content})
		case project.RoleModel:
			out = append(out, chatMessage{Role: "assistant", Content: content})
		}
	}
	return out
}

// transcript renders a conversation as "role: content" lines.
func transcript(messages []project.Message) string {
	var b strings.Builder
	for _, m := range messages {
		if m.Role == project.RoleSystem {
			continue
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
