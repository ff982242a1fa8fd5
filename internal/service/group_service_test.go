package service_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/pkg/apperror"
)

func TestPostMessageUpdatesLatestPointer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	msg, err := env.groups.PostMessage(testCtx(), alice, todo.GroupID, dto.PostMessageRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, alice.UserID, msg.UserID)

	var group model.Group
	require.NoError(t, env.db.First(&group, todo.GroupID).Error)
	require.NotNil(t, group.LatestMessageID)
	assert.Equal(t, msg.ID, *group.LatestMessageID)
}

func TestPostMessageToMissingGroup(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", false)

	_, err := env.groups.PostMessage(testCtx(), alice, 404, dto.PostMessageRequest{Content: "hello"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestPostMessageAllowsNonMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)
	carol := env.register(t, "carol", "pw9999", false)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	// Membership is not checked: any authenticated user may post into any
	// existing group.
	_, err = env.groups.PostMessage(testCtx(), carol, todo.GroupID, dto.PostMessageRequest{Content: "drive-by"})
	assert.NoError(t, err)
}

func TestPostMessageRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	for _, content := range []string{"   ", "<i></i>"} {
		_, err = env.groups.PostMessage(testCtx(), alice, todo.GroupID, dto.PostMessageRequest{Content: content})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	}
}

func TestListMessagesAscending(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		_, err = env.groups.PostMessage(testCtx(), alice, todo.GroupID, dto.PostMessageRequest{Content: content})
		require.NoError(t, err)
	}

	messages, err := env.groups.ListMessages(testCtx(), todo.GroupID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)
	assert.Equal(t, "alice", messages[0].UserAccount)
}

func TestMarkReadAndUnreadFlag(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)
	bob := env.register(t, "bob", "pw5678", false)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{
		Title:           "Ship v1",
		AssignedUserIDs: []uint{bob.UserID},
	})
	require.NoError(t, err)

	msg, err := env.groups.PostMessage(testCtx(), alice, todo.GroupID, dto.PostMessageRequest{Content: "kickoff"})
	require.NoError(t, err)

	groups, err := env.groups.MyGroups(testCtx(), bob)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Unread)
	require.NotNil(t, groups[0].LatestMessage)
	assert.Equal(t, "kickoff", groups[0].LatestMessage.Content)

	require.NoError(t, env.groups.MarkRead(testCtx(), bob, todo.GroupID, dto.MarkReadRequest{MessageID: msg.ID}))

	groups, err = env.groups.MyGroups(testCtx(), bob)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.False(t, groups[0].Unread)
}

func TestMarkReadValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)
	carol := env.register(t, "carol", "pw9999", false)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	msg, err := env.groups.PostMessage(testCtx(), alice, todo.GroupID, dto.PostMessageRequest{Content: "hello"})
	require.NoError(t, err)

	// Non-members have no read position to move.
	err = env.groups.MarkRead(testCtx(), carol, todo.GroupID, dto.MarkReadRequest{MessageID: msg.ID})
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	// The message must belong to the group.
	other, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Other"})
	require.NoError(t, err)
	otherMsg, err := env.groups.PostMessage(testCtx(), alice, other.GroupID, dto.PostMessageRequest{Content: "elsewhere"})
	require.NoError(t, err)

	err = env.groups.MarkRead(testCtx(), alice, todo.GroupID, dto.MarkReadRequest{MessageID: otherMsg.ID})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	groupIDs []uint
	messages []*dto.MessageResponse
}

func (r *recordingBroadcaster) BroadcastMessage(groupID uint, message *dto.MessageResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupIDs = append(r.groupIDs, groupID)
	r.messages = append(r.messages, message)
}

func TestPostMessageNotifiesBroadcaster(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1234", true)

	recorder := &recordingBroadcaster{}
	env.groups.SetBroadcaster(recorder)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{Title: "Ship v1"})
	require.NoError(t, err)

	msg, err := env.groups.PostMessage(testCtx(), alice, todo.GroupID, dto.PostMessageRequest{Content: "hello"})
	require.NoError(t, err)

	require.Len(t, recorder.messages, 1)
	assert.Equal(t, todo.GroupID, recorder.groupIDs[0])
	assert.Equal(t, msg.ID, recorder.messages[0].ID)
}

// Full scenario: alice assigns bob, bob acknowledges in the auto-created
// discussion group.
func TestAssignmentScenario(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice", "pw1", true)
	bob := env.register(t, "bob", "pw2", false)

	todo, err := env.todos.Create(testCtx(), alice, dto.CreateTodoRequest{
		Title:           "Ship v1",
		AssignedUserIDs: []uint{bob.UserID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, todo.ParticipantCount)

	detail, err := env.todos.Detail(testCtx(), todo.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Group)

	members := map[string]bool{}
	for _, membership := range detail.Group.UserGroups {
		require.NotNil(t, membership.User)
		members[membership.User.Account] = true
	}
	assert.Equal(t, map[string]bool{"alice": true, "bob": true}, members)

	_, err = env.groups.PostMessage(testCtx(), bob, todo.GroupID, dto.PostMessageRequest{Content: "ack"})
	require.NoError(t, err)

	var group model.Group
	require.NoError(t, env.db.First(&group, todo.GroupID).Error)
	require.NotNil(t, group.LatestMessageID)

	var latest model.Message
	require.NoError(t, env.db.First(&latest, *group.LatestMessageID).Error)
	assert.Equal(t, "ack", latest.Content)
	assert.Equal(t, bob.UserID, latest.UserID)
}
