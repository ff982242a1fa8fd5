package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/internal/repository"
	"todopro/pkg/apperror"
	"todopro/pkg/token"
)

// MessageBroadcaster pushes a freshly persisted message out to live
// subscribers. The zero value (nil) broadcasts nowhere.
type MessageBroadcaster interface {
	BroadcastMessage(groupID uint, message *dto.MessageResponse)
}

type GroupService interface {
	PostMessage(ctx context.Context, actor token.Identity, groupID uint, input dto.PostMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, groupID uint) ([]dto.MessageResponse, error)
	MarkRead(ctx context.Context, actor token.Identity, groupID uint, input dto.MarkReadRequest) error
	MyGroups(ctx context.Context, actor token.Identity) ([]dto.GroupSummary, error)
	SetBroadcaster(b MessageBroadcaster)
}

type groupService struct {
	groups      repository.GroupRepository
	rdb         *redis.Client
	rateLimit   time.Duration
	sanitizer   *bluemonday.Policy
	broadcaster MessageBroadcaster
}

// NewGroupService builds the chat operations. rdb may be nil, which disables
// rate limiting entirely.
func NewGroupService(groups repository.GroupRepository, rdb *redis.Client, rateLimit time.Duration) GroupService {
	return &groupService{
		groups:    groups,
		rdb:       rdb,
		rateLimit: rateLimit,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *groupService) SetBroadcaster(b MessageBroadcaster) {
	s.broadcaster = b
}

// PostMessage appends a message to the group and moves the latest-message
// pointer in the same transaction. Membership is deliberately not checked:
// any authenticated user may post into any existing group.
func (s *groupService) PostMessage(ctx context.Context, actor token.Identity, groupID uint, input dto.PostMessageRequest) (*dto.MessageResponse, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("group not found")
		}
		return nil, err
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, actor.UserID, "post_message", s.rateLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.New(http.StatusTooManyRequests, "posting too fast", apperror.ErrRateLimitExceeded)
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(input.Content))
	if content == "" {
		return nil, apperror.Validation("message must not be empty")
	}

	message := &model.Message{
		GroupID:     groupID,
		UserID:      actor.UserID,
		Content:     content,
		MessageType: "text",
	}

	if err := s.groups.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	resp := &dto.MessageResponse{
		ID:          message.ID,
		Content:     message.Content,
		MessageType: message.MessageType,
		CreatedAt:   message.CreatedAt,
		UserID:      message.UserID,
		UserName:    actor.Name,
		UserAccount: actor.Account,
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(groupID, resp)
	}

	return resp, nil
}

// ListMessages returns the group's messages in ascending creation order, the
// way a chat view renders them.
func (s *groupService) ListMessages(ctx context.Context, groupID uint) ([]dto.MessageResponse, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("group not found")
		}
		return nil, err
	}

	messages, err := s.groups.ListMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, *messageResponse(message))
	}
	return out, nil
}

// MarkRead records the caller's read position in a group they belong to. The
// message must exist in that group.
func (s *groupService) MarkRead(ctx context.Context, actor token.Identity, groupID uint, input dto.MarkReadRequest) error {
	if _, err := s.groups.FindMembership(ctx, actor.UserID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("membership not found")
		}
		return err
	}

	if _, err := s.groups.FindMessageInGroup(ctx, input.MessageID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Validation("message does not belong to this group")
		}
		return err
	}

	return s.groups.UpdateLastRead(ctx, actor.UserID, groupID, input.MessageID)
}

// MyGroups lists the caller's memberships with an unread flag computed from
// the latest-message and last-read pointers.
func (s *groupService) MyGroups(ctx context.Context, actor token.Identity) ([]dto.GroupSummary, error) {
	memberships, err := s.groups.MembershipsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.GroupSummary, 0, len(memberships))
	for _, membership := range memberships {
		if membership.Group == nil {
			continue
		}

		summary := dto.GroupSummary{
			ID:         membership.Group.ID,
			Name:       membership.Group.Name,
			TodoItemID: membership.Group.TodoItemID,
			JoinedAt:   membership.JoinedAt,
		}

		latestID := membership.Group.LatestMessageID
		if latestID != nil {
			summary.Unread = membership.LastReadMessageID == nil ||
				*membership.LastReadMessageID != *latestID

			if latest, err := s.groups.FindMessageInGroup(ctx, *latestID, membership.Group.ID); err == nil {
				summary.LatestMessage = messageResponse(latest)
			}
		}

		out = append(out, summary)
	}
	return out, nil
}

func messageResponse(message *model.Message) *dto.MessageResponse {
	resp := &dto.MessageResponse{
		ID:          message.ID,
		Content:     message.Content,
		MessageType: message.MessageType,
		CreatedAt:   message.CreatedAt,
		UserID:      message.UserID,
	}
	if message.User != nil {
		resp.UserName = message.User.Name
		resp.UserAccount = message.User.Account
	}
	return resp
}
