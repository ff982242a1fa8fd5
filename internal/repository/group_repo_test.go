package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todopro/internal/model"
	"todopro/internal/repository"
)

func seedGroup(t *testing.T, db *gorm.DB, name string) *model.Group {
	t.Helper()

	group := &model.Group{Name: name}
	require.NoError(t, db.Create(group).Error)
	return group
}

func TestGroupRepository_CreateMessageMovesLatestPointer(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGroupRepository(db)

	alice := createUser(t, db, "alice", nil)
	group := seedGroup(t, db, "standup")

	first := &model.Message{GroupID: group.ID, UserID: alice.ID, Content: "hello", MessageType: "text"}
	require.NoError(t, repo.CreateMessage(testCtx(), first))

	loaded, err := repo.FindByID(testCtx(), group.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LatestMessageID)
	assert.Equal(t, first.ID, *loaded.LatestMessageID)

	second := &model.Message{GroupID: group.ID, UserID: alice.ID, Content: "again", MessageType: "text"}
	require.NoError(t, repo.CreateMessage(testCtx(), second))

	loaded, err = repo.FindByID(testCtx(), group.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LatestMessageID)
	assert.Equal(t, second.ID, *loaded.LatestMessageID)
	require.NotNil(t, loaded.LatestMessage)
	assert.Equal(t, "again", loaded.LatestMessage.Content)
}

func TestGroupRepository_ListMessagesAscendingOrder(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGroupRepository(db)

	alice := createUser(t, db, "alice", nil)
	group := seedGroup(t, db, "standup")

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"one", "two", "three"} {
		msg := &model.Message{
			GroupID:     group.ID,
			UserID:      alice.ID,
			Content:     content,
			MessageType: "text",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(msg).Error)
	}

	messages, err := repo.ListMessages(testCtx(), group.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "two", messages[1].Content)
	assert.Equal(t, "three", messages[2].Content)
	assert.True(t, !messages[1].CreatedAt.Before(messages[0].CreatedAt))
	assert.True(t, !messages[2].CreatedAt.Before(messages[1].CreatedAt))
}

func TestGroupRepository_LastReadTracking(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGroupRepository(db)

	alice := createUser(t, db, "alice", nil)
	group := seedGroup(t, db, "standup")
	require.NoError(t, db.Create(&model.UserGroup{UserID: alice.ID, GroupID: group.ID}).Error)

	message := &model.Message{GroupID: group.ID, UserID: alice.ID, Content: "hello", MessageType: "text"}
	require.NoError(t, repo.CreateMessage(testCtx(), message))

	require.NoError(t, repo.UpdateLastRead(testCtx(), alice.ID, group.ID, message.ID))

	membership, err := repo.FindMembership(testCtx(), alice.ID, group.ID)
	require.NoError(t, err)
	require.NotNil(t, membership.LastReadMessageID)
	assert.Equal(t, message.ID, *membership.LastReadMessageID)
}

func TestGroupRepository_DeleteClearsPointersAndKeepsTodo(t *testing.T) {
	db := newTestDB(t)
	groupRepo := repository.NewGroupRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	alice := createUser(t, db, "alice", nil)

	todo := &model.TodoItem{Title: "Ship v1", UserID: &alice.ID, ParticipantCount: 1}
	group := &model.Group{Name: "Ship v1-ab12"}
	require.NoError(t, todoRepo.CreateWithGroup(testCtx(), todo, group, []uint{alice.ID}))

	message := &model.Message{GroupID: group.ID, UserID: alice.ID, Content: "hello", MessageType: "text"}
	require.NoError(t, groupRepo.CreateMessage(testCtx(), message))
	require.NoError(t, groupRepo.UpdateLastRead(testCtx(), alice.ID, group.ID, message.ID))

	require.NoError(t, groupRepo.Delete(testCtx(), group.ID))

	assert.Equal(t, int64(0), count[model.Group](t, db, ""))
	assert.Equal(t, int64(0), count[model.Message](t, db, ""))
	assert.Equal(t, int64(0), count[model.UserGroup](t, db, ""))

	// The todo holds no foreign key to the group and survives its deletion.
	var survivor model.TodoItem
	require.NoError(t, db.First(&survivor, todo.ID).Error)
	assert.Equal(t, "Ship v1", survivor.Title)
}
