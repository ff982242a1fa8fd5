package service_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/pkg/apperror"
)

func TestCreateTodoRequiresSupervisor(t *testing.T) {
	env := newTestEnv(t)
	bob := env.register(t, "bob", "pw1234", false)

	_, err := env.todos.Create(testCtx(), bob, dto.CreateTodoRequest{Title: "Ship v1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))
}

func TestCreateTodoProvisionsGroupAndMemberships(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)
	bob := env.register(t, "bob", "pw5678", false)

	// Duplicated assignees collapse; the creator is included even when
	// omitted from the list.
	resp, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{
		Title:           "Ship v1",
		AssignedUserIDs: []uint{bob.UserID, bob.UserID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ParticipantCount)
	assert.NotZero(t, resp.GroupID)

	detail, err := env.todos.Detail(testCtx(), resp.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.Group)
	assert.Equal(t, resp.GroupID, detail.Group.ID)
	assert.True(t, strings.HasPrefix(detail.Group.Name, "Ship v1-"))
	assert.Len(t, detail.Group.Name, len("Ship v1-")+4)

	members := map[uint]bool{}
	for _, membership := range detail.Group.UserGroups {
		members[membership.UserID] = true
	}
	assert.Equal(t, map[uint]bool{alice.UserID: true, bob.UserID: true}, members)
}

func TestCreateTodoGroupNamesDoNotCollide(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	first, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)
	second, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	var groups []model.Group
	require.NoError(t, env.db.Find(&groups).Error)
	require.Len(t, groups, 2)
	assert.NotEqual(t, groups[0].Name, groups[1].Name)
	assert.NotEqual(t, first.GroupID, second.GroupID)
}

func TestCreateTodoUnknownAssigneeLeavesNoPartialState(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	_, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{
		Title:           "Ship v1",
		AssignedUserIDs: []uint{9999},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	// Neither the todo nor a half-provisioned group may be observable.
	var todoCount, groupCount int64
	require.NoError(t, env.db.Model(&model.TodoItem{}).Count(&todoCount).Error)
	require.NoError(t, env.db.Model(&model.Group{}).Count(&groupCount).Error)
	assert.Zero(t, todoCount)
	assert.Zero(t, groupCount)
}

func TestCreateTodoRejectsBlankTitle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	_, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "   "})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestTodoDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.todos.Detail(testCtx(), 404)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestSetCompletion(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	resp, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	require.NoError(t, env.todos.SetCompletion(testCtx(), alice, resp.ID, true))

	detail, err := env.todos.Detail(testCtx(), resp.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsCompleted)

	err = env.todos.SetCompletion(testCtx(), alice, 404, true)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestAddCommentSanitizesContent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)
	bob := env.register(t, "bob", "pw5678", false)

	resp, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	comment, err := env.todos.AddComment(testCtx(), bob, resp.ID, dto.CommentRequest{
		Content: `<script>alert(1)</script>on it`,
	})
	require.NoError(t, err)
	assert.Equal(t, "on it", comment.Content)

	// Markup-only content collapses to nothing and is rejected.
	_, err = env.todos.AddComment(testCtx(), bob, resp.ID, dto.CommentRequest{
		Content: "<b></b>",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestDeleteTodoCascades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)
	bob := env.register(t, "bob", "pw5678", false)

	resp, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{
		Title:           "Ship v1",
		AssignedUserIDs: []uint{bob.UserID},
	})
	require.NoError(t, err)

	_, err = env.groups.PostMessage(testCtx(), bob, resp.GroupID, dto.PostMessageRequest{Content: "ack"})
	require.NoError(t, err)

	// Only supervisors may delete.
	err = env.todos.Delete(testCtx(), bob, resp.ID)
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))

	require.NoError(t, env.todos.Delete(testCtx(), alice, resp.ID))

	for _, entity := range []interface{}{&model.TodoItem{}, &model.Group{}, &model.Message{}, &model.UserGroup{}} {
		var n int64
		require.NoError(t, env.db.Model(entity).Count(&n).Error)
		assert.Zero(t, n)
	}
}
