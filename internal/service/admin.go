package service

import (
	"context"
	"errors"
	"fmt"

	"parley.app/server/internal/store"
)

// UsageStats is the privileged aggregate view across every scope.
type UsageStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalMessages      int64 `json:"totalMessages"`
	TotalConversations int64 `json:"totalConversations"`
}

type AdminService interface {
	// Stats loads the caller's user record, checks the admin role and
	// returns system-wide totals. ErrForbidden for non-admins.
	Stats(ctx context.Context, userID int64) (*UsageStats, error)
}

type adminService struct {
	users    store.UserStore
	messages store.MessageStore
}

func NewAdminService(users store.UserStore, messages store.MessageStore) AdminService {
	return &adminService{users: users, messages: messages}
}

func (s *adminService) Stats(ctx context.Context, userID int64) (*UsageStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	totalMessages, err := s.messages.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting messages: %w", err)
	}

	totalConversations, err := s.messages.CountDistinctConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting conversations: %w", err)
	}

	return &UsageStats{
		TotalUsers:         totalUsers,
		TotalMessages:      totalMessages,
		TotalConversations: totalConversations,
	}, nil
}
