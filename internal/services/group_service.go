package services

import (
	"context"
	"database/sql"

	"rndvx/internal/models"
	"rndvx/pkg/utils"
)

type GroupService struct {
	DB *sql.DB
}

func fetchGroup(ctx context.Context, db *sql.DB, groupID int) (models.Group, error) {
	var g models.Group
	err := db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at, updated_at FROM user_groups WHERE id = ?
	`, groupID).Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return g, NotFound("group not found")
	}
	if err != nil {
		return g, utils.ErrorHandler(err, "failed to fetch group")
	}
	return g, nil
}

func memberRole(ctx context.Context, db *sql.DB, groupID, userID int) (string, error) {
	var role string
	err := db.QueryRowContext(ctx, `
		SELECT role FROM group_members WHERE group_id = ? AND user_id = ?
	`, groupID, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", utils.ErrorHandler(err, "failed to check membership")
	}
	return role, nil
}

func (s *GroupService) loadDetail(ctx context.Context, g models.Group) (models.GroupDetail, error) {
	detail := models.GroupDetail{Group: g}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, u.id, u.name, u.email
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at ASC, gm.id ASC
	`, g.ID)
	if err != nil {
		return detail, utils.ErrorHandler(err, "failed to fetch group members")
	}
	defer rows.Close()

	detail.Members = make([]models.GroupMemberDetail, 0)
	for rows.Next() {
		var m models.GroupMemberDetail
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Name, &m.User.Email); err != nil {
			return detail, utils.ErrorHandler(err, "failed to scan group member")
		}
		detail.Members = append(detail.Members, m)
	}
	if err := rows.Err(); err != nil {
		return detail, utils.ErrorHandler(err, "failed to iterate group members")
	}
	return detail, nil
}

// List returns the groups the user belongs to, newest first.
func (s *GroupService) List(ctx context.Context, userID int) ([]models.GroupDetail, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT g.id, g.name, g.owner_id, g.created_at, g.updated_at
		FROM user_groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC, g.id DESC
	`, userID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to list groups")
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan group")
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to iterate groups")
	}

	details := make([]models.GroupDetail, 0, len(groups))
	for _, g := range groups {
		d, err := s.loadDetail(ctx, g)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *GroupService) Get(ctx context.Context, groupID, userID int) (models.GroupDetail, error) {
	g, err := fetchGroup(ctx, s.DB, groupID)
	if err != nil {
		return models.GroupDetail{}, err
	}

	role, err := memberRole(ctx, s.DB, groupID, userID)
	if err != nil {
		return models.GroupDetail{}, err
	}
	if role == "" {
		return models.GroupDetail{}, Forbidden("you are not a member of this group")
	}

	return s.loadDetail(ctx, g)
}

// Create inserts the group and its OWNER membership row in one transaction.
func (s *GroupService) Create(ctx context.Context, ownerID int, name string) (models.GroupDetail, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.GroupDetail{}, utils.ErrorHandler(err, "failed to start transaction")
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO user_groups (name, owner_id) VALUES (?, ?)`, name, ownerID)
	if err != nil {
		tx.Rollback()
		return models.GroupDetail{}, utils.ErrorHandler(err, "failed to create group")
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return models.GroupDetail{}, utils.ErrorHandler(err, "failed to get group id")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)
	`, id, ownerID, models.RoleOwner)
	if err != nil {
		tx.Rollback()
		return models.GroupDetail{}, utils.ErrorHandler(err, "failed to assign group owner")
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return models.GroupDetail{}, utils.ErrorHandler(err, "failed to commit transaction")
	}

	g, err := fetchGroup(ctx, s.DB, int(id))
	if err != nil {
		return models.GroupDetail{}, err
	}
	return s.loadDetail(ctx, g)
}

func (s *GroupService) Update(ctx context.Context, groupID, userID int, name string) (models.GroupDetail, error) {
	g, err := fetchGroup(ctx, s.DB, groupID)
	if err != nil {
		return models.GroupDetail{}, err
	}

	role, err := memberRole(ctx, s.DB, groupID, userID)
	if err != nil {
		return models.GroupDetail{}, err
	}
	if role != models.RoleOwner && role != models.RoleAdmin {
		return models.GroupDetail{}, Forbidden("only group admins can update the group")
	}

	if _, err := s.DB.ExecContext(ctx, `UPDATE user_groups SET name = ? WHERE id = ?`, name, groupID); err != nil {
		return models.GroupDetail{}, utils.ErrorHandler(err, "failed to update group")
	}

	g.Name = name
	return s.loadDetail(ctx, g)
}

func (s *GroupService) Delete(ctx context.Context, groupID, userID int) error {
	g, err := fetchGroup(ctx, s.DB, groupID)
	if err != nil {
		return err
	}
	if g.OwnerID != userID {
		return Forbidden("only the group owner can delete the group")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return utils.ErrorHandler(err, "failed to start transaction")
	}

	for _, stmt := range []string{
		`DELETE FROM group_members WHERE group_id = ?`,
		`DELETE FROM invites WHERE group_id = ?`,
		`DELETE FROM user_groups WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, groupID); err != nil {
			tx.Rollback()
			return utils.ErrorHandler(err, "failed to delete group")
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return utils.ErrorHandler(err, "failed to commit transaction")
	}
	return nil
}

// AddMember upserts a membership with ADMIN or MEMBER role; OWNER is never assignable.
func (s *GroupService) AddMember(ctx context.Context, groupID, requesterID, targetUserID int, role string) (models.GroupMemberDetail, error) {
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return models.GroupMemberDetail{}, Invalid("role must be ADMIN or MEMBER")
	}

	if _, err := fetchGroup(ctx, s.DB, groupID); err != nil {
		return models.GroupMemberDetail{}, err
	}

	requesterRole, err := memberRole(ctx, s.DB, groupID, requesterID)
	if err != nil {
		return models.GroupMemberDetail{}, err
	}
	if requesterRole != models.RoleOwner && requesterRole != models.RoleAdmin {
		return models.GroupMemberDetail{}, Forbidden("only group admins can add members")
	}

	var user models.UserSummary
	err = s.DB.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, targetUserID).
		Scan(&user.ID, &user.Name, &user.Email)
	if err == sql.ErrNoRows {
		return models.GroupMemberDetail{}, NotFound("user not found")
	}
	if err != nil {
		return models.GroupMemberDetail{}, utils.ErrorHandler(err, "failed to fetch user")
	}

	existingRole, err := memberRole(ctx, s.DB, groupID, targetUserID)
	if err != nil {
		return models.GroupMemberDetail{}, err
	}
	if existingRole == models.RoleOwner {
		return models.GroupMemberDetail{}, Invalid("cannot change the owner role")
	}

	if existingRole == "" {
		_, err = s.DB.ExecContext(ctx, `
			INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)
		`, groupID, targetUserID, role)
	} else {
		_, err = s.DB.ExecContext(ctx, `
			UPDATE group_members SET role = ? WHERE group_id = ? AND user_id = ?
		`, role, groupID, targetUserID)
	}
	if err != nil {
		return models.GroupMemberDetail{}, utils.ErrorHandler(err, "failed to add group member")
	}

	return s.fetchMemberDetail(ctx, groupID, targetUserID)
}

// UpdateMemberRole is owner-only and can never mint a second OWNER.
func (s *GroupService) UpdateMemberRole(ctx context.Context, groupID, requesterID, memberID int, role string) (models.GroupMemberDetail, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return models.GroupMemberDetail{}, Invalid("role must be ADMIN or MEMBER")
	}

	g, err := fetchGroup(ctx, s.DB, groupID)
	if err != nil {
		return models.GroupMemberDetail{}, err
	}
	if g.OwnerID != requesterID {
		return models.GroupMemberDetail{}, Forbidden("only the group owner can change roles")
	}
	if memberID == requesterID {
		return models.GroupMemberDetail{}, Invalid("cannot change your own role")
	}

	existingRole, err := memberRole(ctx, s.DB, groupID, memberID)
	if err != nil {
		return models.GroupMemberDetail{}, err
	}
	if existingRole == "" {
		return models.GroupMemberDetail{}, NotFound("member not found in group")
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE group_members SET role = ? WHERE group_id = ? AND user_id = ?
	`, role, groupID, memberID)
	if err != nil {
		return models.GroupMemberDetail{}, utils.ErrorHandler(err, "failed to update member role")
	}

	return s.fetchMemberDetail(ctx, groupID, memberID)
}

// RemoveMember allows self-removal or removal by OWNER/ADMIN; the owner is unremovable.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, memberID int) error {
	g, err := fetchGroup(ctx, s.DB, groupID)
	if err != nil {
		return err
	}

	requesterRole, err := memberRole(ctx, s.DB, groupID, requesterID)
	if err != nil {
		return err
	}

	isSelf := requesterID == memberID
	isOwnerOrAdmin := requesterRole == models.RoleOwner || requesterRole == models.RoleAdmin
	if !isSelf && !isOwnerOrAdmin {
		return Forbidden("you do not have permission to remove this member")
	}
	if memberID == g.OwnerID {
		return Invalid("cannot remove the group owner")
	}

	existingRole, err := memberRole(ctx, s.DB, groupID, memberID)
	if err != nil {
		return err
	}
	if existingRole == "" {
		return NotFound("member not found in group")
	}

	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ? AND user_id = ?
	`, groupID, memberID)
	if err != nil {
		return utils.ErrorHandler(err, "failed to remove member")
	}
	return nil
}

func (s *GroupService) fetchMemberDetail(ctx context.Context, groupID, userID int) (models.GroupMemberDetail, error) {
	var m models.GroupMemberDetail
	err := s.DB.QueryRowContext(ctx, `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, u.id, u.name, u.email
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ? AND gm.user_id = ?
	`, groupID, userID).Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt,
		&m.User.ID, &m.User.Name, &m.User.Email)
	if err != nil {
		return m, utils.ErrorHandler(err, "failed to fetch group member")
	}
	return m, nil
}
