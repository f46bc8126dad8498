package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/potluckapp/potluck/internal/apperr"
	"github.com/potluckapp/potluck/internal/models"
)

// CreateGroup persists a group and the creator's admin membership in a
// single transaction, so a group can never exist without an admin.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, invite_code, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Description, group.InviteCode, group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	membership := models.NewMembership(group.CreatedBy, group.ID, models.RoleAdmin)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO memberships (id, user_id, group_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
		membership.ID, membership.UserID, membership.GroupID, membership.Role, membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroupByID retrieves a group by its ID.
func (s *SQLiteStore) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	return s.getGroup(ctx, "id", id)
}

// GetGroupByInviteCode retrieves a group by its invite code. Codes are
// stored upper-case; callers normalize before lookup.
func (s *SQLiteStore) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	return s.getGroup(ctx, "invite_code", code)
}

func (s *SQLiteStore) getGroup(ctx context.Context, column, value string) (*models.Group, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, invite_code, created_by, created_at
		FROM groups
		WHERE %s = ?
	`, column)

	group := &models.Group{}
	var createdBy sql.NullString
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.InviteCode,
		&createdBy,
		&group.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Group not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedBy = createdBy.String

	return group, nil
}

// UpdateGroup applies a partial update. COALESCE keeps the stored value
// for any nil field.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, groupID string, name, description *string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE groups SET name = COALESCE(?, name), description = COALESCE(?, description) WHERE id = ?",
		name, description, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

// SetInviteCode replaces the group's invite code.
func (s *SQLiteStore) SetInviteCode(ctx context.Context, groupID, code string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE groups SET invite_code = ? WHERE id = ?",
		code, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to set invite code: %w", err)
	}
	return nil
}

// CreateMembership inserts a membership. The (user_id, group_id) unique
// index turns a double join into a conflict error atomically.
func (s *SQLiteStore) CreateMembership(ctx context.Context, membership *models.Membership) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO memberships (id, user_id, group_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
		membership.ID, membership.UserID, membership.GroupID, membership.Role, membership.JoinedAt,
	)
	if isUniqueViolation(err) {
		return apperr.New(apperr.KindConflict, "already a member of this group")
	}
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// GetMembership retrieves the membership of a user in a group.
func (s *SQLiteStore) GetMembership(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	query := `
		SELECT id, user_id, group_id, role, joined_at
		FROM memberships
		WHERE user_id = ? AND group_id = ?
	`

	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx, query, userID, groupID).Scan(
		&m.ID,
		&m.UserID,
		&m.GroupID,
		&m.Role,
		&m.JoinedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Not a member
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// DeleteMembership removes a user from a group.
func (s *SQLiteStore) DeleteMembership(ctx context.Context, userID, groupID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM memberships WHERE user_id = ? AND group_id = ?",
		userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

// CountAdmins returns the number of admin members in a group.
func (s *SQLiteStore) CountAdmins(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE group_id = ? AND role = ?",
		groupID, models.RoleAdmin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// ListGroupsForUser returns the user's groups with their role and live
// member/recipe counts, most recently joined first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.GroupSummary, error) {
	query := `
		SELECT g.id, g.name, g.description, g.invite_code, g.created_at, m.role, m.joined_at,
			(SELECT COUNT(*) FROM memberships WHERE group_id = g.id) AS member_count,
			(SELECT COUNT(*) FROM recipes WHERE group_id = g.id) AS recipe_count
		FROM groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY m.joined_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.GroupSummary
	for rows.Next() {
		g := &models.GroupSummary{}
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Description,
			&g.InviteCode,
			&g.CreatedAt,
			&g.Role,
			&g.JoinedAt,
			&g.MemberCount,
			&g.RecipeCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// ListGroupMembers returns the group roster ordered by join time ascending.
func (s *SQLiteStore) ListGroupMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	query := `
		SELECT u.id, u.display_name, u.avatar_url, m.role, m.joined_at
		FROM users u
		JOIN memberships m ON m.user_id = u.id
		WHERE m.group_id = ?
		ORDER BY m.joined_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.AvatarURL, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
