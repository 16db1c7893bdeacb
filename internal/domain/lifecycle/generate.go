package lifecycle

import (
	"context"
	"errors"
	"strings"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/project"
)

// SendMessage appends the user's message and persists it before asking the
// generator for a reply. The reply, and in INCEPTION an updated requirements
// document, are committed together in one update. A failed reply appends a
// system notice instead; the user message is kept either way.
func (m *Manager) SendMessage(ctx context.Context, text string) (proj *project.Project, err error) {
	defer func() { m.metrics.Operation("send_message", err) }()

	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}
	if !m.flight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer m.flight.Release(1)
	m.setBusy(true)
	defer m.setBusy(false)

	proj, err = m.applyCurrent(ctx, project.Patch{
		AppendMessages: []project.Message{project.NewMessage(m.newID(), project.RoleUser, text, m.now())},
	})
	if err != nil {
		return nil, err
	}
	id := proj.ID
	m.record(ctx, id, activity.TypeMessageSent, "sent message", map[string]any{"bytes": len(text)})

	reply, err := m.generator.Converse(ctx, proj.ConversationTurns(), proj.Phase, proj.RequirementsDoc)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		m.logger.Error("conversation reply failed", "project_id", id, "error", err)
		m.record(ctx, id, activity.TypeReplyFailed, "reply failed", map[string]any{"error": err.Error()})
		return m.tail(ctx, id, proj, project.Patch{
			AppendMessages: []project.Message{project.ReplyFailedNotice(m.newID(), m.now())},
		}), nil
	}

	modelMsg := project.NewMessage(m.newID(), project.RoleModel, reply, m.now())
	patch := project.Patch{AppendMessages: []project.Message{modelMsg}}

	if proj.Phase == project.PhaseInception && m.shouldSummarize(proj) {
		history := append(proj.ConversationTurns(), modelMsg)
		doc, serr := m.generator.SummarizeRequirements(ctx, history)
		switch {
		case serr != nil:
			m.logger.Warn("requirements summarization failed, keeping previous document", "project_id", id, "error", serr)
		case strings.TrimSpace(doc) != "":
			patch.RequirementsDoc = &doc
		}
	}

	proj = m.tail(ctx, id, proj, patch)
	m.record(ctx, id, activity.TypeReplyReceived, "received reply", map[string]any{"bytes": len(reply)})
	if patch.RequirementsDoc != nil {
		m.record(ctx, id, activity.TypeRequirementsUpdated, "summarized requirements", map[string]any{"bytes": len(*patch.RequirementsDoc)})
	}
	return proj, nil
}

// GenerateCode asks the generator for a complete file set built from the
// requirements document. On success the project moves to CONSTRUCTION with
// exactly the returned files; on failure phase and files are unchanged.
// Either way exactly one outcome notice is appended.
func (m *Manager) GenerateCode(ctx context.Context) (proj *project.Project, err error) {
	defer func() { m.metrics.Operation("generate_code", err) }()

	if !m.flight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer m.flight.Release(1)

	current := m.Current(ctx)
	if current.Phase != project.PhaseInception {
		return nil, ErrInvalidPhase
	}
	if strings.TrimSpace(current.RequirementsDoc) == "" {
		return nil, ErrMissingRequirements
	}

	m.setBusy(true)
	defer m.setBusy(false)

	proj, err = m.apply(ctx, current.ID, project.Patch{
		AppendMessages: []project.Message{project.TransitionNotice(m.newID(), m.now())},
	})
	if err != nil {
		return nil, err
	}
	id := proj.ID

	files, genErr := m.generator.GenerateProject(ctx, proj.RequirementsDoc)
	if genErr == nil && len(files) == 0 {
		genErr = project.ErrEmptyFileSet
	}
	if genErr == nil {
		next, applyErr := m.apply(ctx, id, project.Patch{
			Phase:          project.PhasePtr(project.PhaseConstruction),
			Files:          files,
			AppendMessages: []project.Message{project.GenerationSucceededNotice(m.newID(), len(files), m.now())},
		})
		if applyErr == nil {
			m.logger.Info("code generated", "project_id", id, "files", len(next.Files))
			m.record(ctx, id, activity.TypeCodeGenerated, "generated code", map[string]any{"files": len(next.Files)})
			return next, nil
		}
		if errors.Is(applyErr, ErrProjectNotFound) {
			m.logger.Warn("dropping generated files for deleted project", "project_id", id)
			return proj, nil
		}
		genErr = applyErr
	}

	m.logger.Error("code generation failed", "project_id", id, "error", genErr)
	m.record(ctx, id, activity.TypeGenerationFailed, "code generation failed", map[string]any{"error": genErr.Error()})
	return m.tail(ctx, id, proj, project.Patch{
		AppendMessages: []project.Message{project.GenerationFailedNotice(m.newID(), m.now())},
	}), nil
}

// tail applies the result of an asynchronous call to project id. When the
// project was deleted while the call was outstanding the result is dropped
// and fallback is returned.
func (m *Manager) tail(ctx context.Context, id string, fallback *project.Project, patch project.Patch) *project.Project {
	proj, err := m.apply(ctx, id, patch)
	if err != nil {
		m.logger.Warn("dropping generation result", "project_id", id, "error", err)
		return fallback
	}
	return proj
}

func (m *Manager) shouldSummarize(proj *project.Project) bool {
	if m.summarizeEvery <= 0 {
		return false
	}
	return proj.UserTurns()%m.summarizeEvery == 0
}
