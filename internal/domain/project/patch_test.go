package project_test

import (
	"testing"
	"time"

	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func seeded() *project.Project {
	return project.New("p1", "m1", epoch)
}

func TestNew_Seeding(t *testing.T) {
	proj := seeded()
	require.Equal(t, project.PhaseInception, proj.Phase)
	require.Len(t, proj.Messages, 1)
	require.Equal(t, project.RoleModel, proj.Messages[0].Role)
	require.Equal(t, project.PlaceholderRequirements, proj.RequirementsDoc)
	require.Empty(t, proj.Files)
	require.NotNil(t, proj.Files)
	require.Equal(t, epoch, proj.CreatedAt)
	require.Equal(t, epoch, proj.UpdatedAt)
}

func TestApply_DoesNotMutateReceiver(t *testing.T) {
	proj := seeded()
	next, err := proj.Apply(project.Patch{
		AppendMessages: []project.Message{project.NewMessage("m2", project.RoleUser, "hi", epoch)},
		FileUpserts:    map[string]string{"a.txt": "x"},
	}, epoch.Add(time.Second))
	require.NoError(t, err)

	require.Len(t, proj.Messages, 1)
	require.Empty(t, proj.Files)
	require.Len(t, next.Messages, 2)
	require.Equal(t, "x", next.Files["a.txt"])
	require.Equal(t, epoch.Add(time.Second), next.UpdatedAt)
}

func TestApply_UpdatedAtNeverMovesBackwards(t *testing.T) {
	proj := seeded()
	next, err := proj.Apply(project.Patch{Name: project.StringPtr("Renamed")}, epoch.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, epoch, next.UpdatedAt)
	require.Equal(t, "Renamed", next.Name)
}

func TestApply_RejectsEmptyName(t *testing.T) {
	_, err := seeded().Apply(project.Patch{Name: project.StringPtr("  ")}, epoch)
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestApply_PhaseIsOneDirectional(t *testing.T) {
	proj := seeded()
	built, err := proj.Apply(project.Patch{
		Phase: project.PhasePtr(project.PhaseConstruction),
		Files: map[string]string{"a.txt": "hello"},
	}, epoch)
	require.NoError(t, err)
	require.Equal(t, project.PhaseConstruction, built.Phase)

	_, err = built.Apply(project.Patch{Phase: project.PhasePtr(project.PhaseInception)}, epoch)
	require.ErrorIs(t, err, project.ErrInvalidTransition)
}

func TestApply_ConstructionRequiresFiles(t *testing.T) {
	_, err := seeded().Apply(project.Patch{Phase: project.PhasePtr(project.PhaseConstruction)}, epoch)
	require.ErrorIs(t, err, project.ErrEmptyFileSet)

	_, err = seeded().Apply(project.Patch{
		Phase: project.PhasePtr(project.PhaseConstruction),
		Files: map[string]string{},
	}, epoch)
	require.ErrorIs(t, err, project.ErrEmptyFileSet)
}

func TestApply_FilesReplaceNormalizes(t *testing.T) {
	next, err := seeded().Apply(project.Patch{
		Files: map[string]string{"./src/main.go": "package main", "/README.md": "# hi"},
	}, epoch)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"src/main.go": "package main", "README.md": "# hi"}, next.Files)
}

func TestApply_RejectsMalformedMessage(t *testing.T) {
	_, err := seeded().Apply(project.Patch{
		AppendMessages: []project.Message{{ID: "m2", Role: "assistant", Content: "x"}},
	}, epoch)
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestNormalizeFiles(t *testing.T) {
	_, err := project.NormalizeFiles(map[string]string{"a/b.txt": "1", "a//b.txt": "2"})
	require.ErrorIs(t, err, project.ErrDuplicatePath)

	_, err = project.NormalizeFiles(map[string]string{"../etc/passwd": "x"})
	require.ErrorIs(t, err, project.ErrInvalidPath)

	out, err := project.NormalizeFiles(map[string]string{`src\app\App.vue`: "<template/>"})
	require.NoError(t, err)
	require.Contains(t, out, "src/app/App.vue")
}

func TestConversationTurnsSkipsSystemNotices(t *testing.T) {
	proj, err := seeded().Apply(project.Patch{AppendMessages: []project.Message{
		project.NewMessage("m2", project.RoleUser, "build a todo app", epoch),
		project.TransitionNotice("m3", epoch),
	}}, epoch)
	require.NoError(t, err)

	turns := proj.ConversationTurns()
	require.Len(t, turns, 2)
	require.Equal(t, project.RoleModel, turns[0].Role)
	require.Equal(t, project.RoleUser, turns[1].Role)
	require.Equal(t, 1, proj.UserTurns())
}
