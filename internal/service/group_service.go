package service

import (
	"context"
	"log/slog"

	"github.com/potluckapp/potluck/internal/apperr"
	"github.com/potluckapp/potluck/internal/models"
	"github.com/potluckapp/potluck/internal/storage"
)

// GroupService manages group creation, invite-code issuance and
// redemption, and role-gated membership changes.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// UpdateGroupInput carries a partial group update. Nil fields keep their
// prior value.
type UpdateGroupInput struct {
	Name        *string
	Description *string
}

// CreateGroup creates a group with a fresh invite code and makes the
// creator its admin, atomically.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name string, description *string) (*models.Group, error) {
	slog.Info("CreateGroup request received", "creator_id", creatorID, "name", name)

	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "group name is required")
	}

	group := models.NewGroup(name, description, creatorID)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "invite_code", group.InviteCode)
	return group, nil
}

// JoinGroup redeems an invite code. The code is a capability token:
// possessing it is the only requirement to join.
func (s *GroupService) JoinGroup(ctx context.Context, userID, inviteCode string) (*models.Group, error) {
	slog.Info("JoinGroup request received", "user_id", userID)

	if inviteCode == "" {
		return nil, apperr.New(apperr.KindValidation, "invite code is required")
	}

	group, err := s.store.GetGroupByInviteCode(ctx, models.NormalizeInviteCode(inviteCode))
	if err != nil {
		slog.Error("JoinGroup lookup failed", "error", err)
		return nil, err
	}
	if group == nil {
		return nil, apperr.New(apperr.KindNotFound, "invalid invite code")
	}

	membership := models.NewMembership(userID, group.ID, models.RoleMember)
	if err := s.store.CreateMembership(ctx, membership); err != nil {
		slog.Warn("JoinGroup failed", "user_id", userID, "group_id", group.ID, "error", err)
		return nil, err
	}

	slog.Info("User joined group", "user_id", userID, "group_id", group.ID)
	return group, nil
}

// LeaveGroup removes the caller's membership. The sole admin of a group
// may not leave; they must hand off the role or delete the group first,
// so no group is left with members but nobody able to administer it.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	slog.Info("LeaveGroup request received", "user_id", userID, "group_id", groupID)

	membership, err := s.store.GetMembership(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperr.New(apperr.KindNotFound, "you are not a member of this group")
	}

	if membership.Role == models.RoleAdmin {
		admins, err := s.store.CountAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins == 1 {
			return apperr.New(apperr.KindPolicy,
				"cannot leave group as the only admin; transfer the admin role first or delete the group")
		}
	}

	if err := s.store.DeleteMembership(ctx, userID, groupID); err != nil {
		slog.Error("LeaveGroup failed", "user_id", userID, "group_id", groupID, "error", err)
		return err
	}

	slog.Info("User left group", "user_id", userID, "group_id", groupID)
	return nil
}

// UpdateGroup applies a partial update to a group's name/description.
// Admin only.
func (s *GroupService) UpdateGroup(ctx context.Context, callerID, groupID string, in UpdateGroupInput) error {
	slog.Info("UpdateGroup request received", "caller_id", callerID, "group_id", groupID)

	if err := s.requireAdmin(ctx, callerID, groupID); err != nil {
		return err
	}

	if err := s.store.UpdateGroup(ctx, groupID, in.Name, in.Description); err != nil {
		slog.Error("UpdateGroup failed", "group_id", groupID, "error", err)
		return err
	}

	slog.Info("Group updated", "group_id", groupID)
	return nil
}

// RegenerateInviteCode replaces the group's invite code, invalidating
// the old one. Admin only. Returns the new code.
func (s *GroupService) RegenerateInviteCode(ctx context.Context, callerID, groupID string) (string, error) {
	slog.Info("RegenerateInviteCode request received", "caller_id", callerID, "group_id", groupID)

	if err := s.requireAdmin(ctx, callerID, groupID); err != nil {
		return "", err
	}

	code := models.NewInviteCode()
	if err := s.store.SetInviteCode(ctx, groupID, code); err != nil {
		slog.Error("RegenerateInviteCode failed", "group_id", groupID, "error", err)
		return "", err
	}

	slog.Info("Invite code regenerated", "group_id", groupID)
	return code, nil
}

// ListGroupsForUser returns all groups the user belongs to, annotated
// with role and live counts, most recently joined first.
func (s *GroupService) ListGroupsForUser(ctx context.Context, userID string) ([]*models.GroupSummary, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroupsForUser failed", "user_id", userID, "error", err)
		return nil, err
	}
	return groups, nil
}

// GetGroupDetail returns group metadata plus the full roster. Members only.
func (s *GroupService) GetGroupDetail(ctx context.Context, callerID, groupID string) (*models.GroupDetail, error) {
	group, err := s.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.New(apperr.KindNotFound, "group not found")
	}

	membership, err := s.store.GetMembership(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperr.New(apperr.KindAuthorization, "you are not a member of this group")
	}

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupDetail roster query failed", "group_id", groupID, "error", err)
		return nil, err
	}

	return &models.GroupDetail{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		InviteCode:  group.InviteCode,
		CreatedAt:   group.CreatedAt,
		Role:        membership.Role,
		Members:     members,
	}, nil
}

// requireAdmin fails with an authorization error unless the caller is an
// admin member of the group.
func (s *GroupService) requireAdmin(ctx context.Context, callerID, groupID string) error {
	membership, err := s.store.GetMembership(ctx, callerID, groupID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role != models.RoleAdmin {
		return apperr.New(apperr.KindAuthorization, "only admins can perform this action")
	}
	return nil
}
