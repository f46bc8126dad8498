package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Membership roles. A group must retain at least one admin while it has
// any members.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Group represents a recipe-sharing group joined via invite code.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Sunday Potluck").
	Name string `json:"name"`

	// Description is an optional free-text blurb.
	Description *string `json:"description"`

	// InviteCode is the short, unique, upper-case token that grants
	// join rights. Possession of the code is the only requirement.
	InviteCode string `json:"inviteCode"`

	// CreatedBy is the ID of the user who created the group.
	CreatedBy string `json:"-"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// NewGroup creates a Group with a fresh ID, invite code and timestamp.
func NewGroup(name string, description *string, createdBy string) *Group {
	return &Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		InviteCode:  NewInviteCode(),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().Unix(),
	}
}

// NewInviteCode generates a short invite code: the first segment of a
// random UUID, upper-cased. The token space (16^8) is large enough to
// treat collisions as practically impossible.
func NewInviteCode() string {
	return strings.ToUpper(strings.SplitN(uuid.New().String(), "-", 2)[0])
}

// NormalizeInviteCode upper-cases a user-supplied code so lookups are
// case-insensitive.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Membership links a user to a group with a role.
type Membership struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	GroupID  string `json:"groupId"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

// NewMembership creates a Membership with a fresh ID and join timestamp.
func NewMembership(userID, groupID, role string) *Membership {
	return &Membership{
		ID:       uuid.New().String(),
		UserID:   userID,
		GroupID:  groupID,
		Role:     role,
		JoinedAt: time.Now().Unix(),
	}
}

// GroupSummary is a group as seen in the caller's group list: the group
// plus the caller's role and live counts.
type GroupSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	InviteCode  string  `json:"inviteCode"`
	Role        string  `json:"role"`
	MemberCount int     `json:"memberCount"`
	RecipeCount int     `json:"recipeCount"`
	JoinedAt    int64   `json:"joinedAt"`
	CreatedAt   int64   `json:"createdAt"`
}

// Member is one roster entry in a group detail view.
type Member struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	Role        string  `json:"role"`
	JoinedAt    int64   `json:"joinedAt"`
}

// GroupDetail is the full view of a group for one of its members.
type GroupDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	InviteCode  string   `json:"inviteCode"`
	CreatedAt   int64    `json:"createdAt"`
	Role        string   `json:"role"`
	Members     []Member `json:"members"`
}
