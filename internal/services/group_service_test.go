package services

import (
	"net/http"
	"testing"

	"rndvx/internal/models"

	"github.com/matryer/is"
)

func TestCreateGroupAssignsOwner(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")

	group, err := svc.Create(testCtx, owner, "Hiking Club")
	is.NoErr(err)
	is.Equal(group.Name, "Hiking Club")
	is.Equal(group.OwnerID, owner)
	is.Equal(len(group.Members), 1)
	is.Equal(group.Members[0].Role, models.RoleOwner)
	is.Equal(group.Members[0].UserID, owner)
}

func TestGetGroupRequiresMembership(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	outsider := seedUser(t, db, "sam@example.com", "Sam")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	group, err := svc.Get(testCtx, groupID, owner)
	is.NoErr(err)
	is.Equal(group.Name, "Hiking Club")

	_, err = svc.Get(testCtx, groupID, outsider)
	is.Equal(domainStatus(t, err), http.StatusForbidden)

	_, err = svc.Get(testCtx, 999, owner)
	is.Equal(domainStatus(t, err), http.StatusNotFound)
}

func TestUpdateGroupRequiresAdmin(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	admin := seedUser(t, db, "bob@example.com", "Bob")
	member := seedUser(t, db, "cat@example.com", "Cat")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	_, err := db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, admin, models.RoleAdmin)
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, member, models.RoleMember)
	is.NoErr(err)

	group, err := svc.Update(testCtx, groupID, admin, "Trail Runners")
	is.NoErr(err)
	is.Equal(group.Name, "Trail Runners")

	_, err = svc.Update(testCtx, groupID, member, "Nope")
	is.Equal(domainStatus(t, err), http.StatusForbidden)
}

func TestAddMemberRules(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	member := seedUser(t, db, "bob@example.com", "Bob")
	newcomer := seedUser(t, db, "cat@example.com", "Cat")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	added, err := svc.AddMember(testCtx, groupID, owner, member, "")
	is.NoErr(err)
	is.Equal(added.Role, models.RoleMember)

	// A plain member cannot add others.
	_, err = svc.AddMember(testCtx, groupID, member, newcomer, models.RoleMember)
	is.Equal(domainStatus(t, err), http.StatusForbidden)

	// OWNER is never assignable through this path.
	_, err = svc.AddMember(testCtx, groupID, owner, newcomer, models.RoleOwner)
	is.Equal(domainStatus(t, err), http.StatusBadRequest)

	// Re-adding the owner cannot touch the OWNER role.
	_, err = svc.AddMember(testCtx, groupID, owner, owner, models.RoleMember)
	is.Equal(domainStatus(t, err), http.StatusBadRequest)

	_, err = svc.AddMember(testCtx, groupID, owner, 999, models.RoleMember)
	is.Equal(domainStatus(t, err), http.StatusNotFound)

	// Adding an existing member updates the role in place.
	promoted, err := svc.AddMember(testCtx, groupID, owner, member, models.RoleAdmin)
	is.NoErr(err)
	is.Equal(promoted.Role, models.RoleAdmin)
}

func TestUpdateMemberRoleIsOwnerOnly(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	admin := seedUser(t, db, "bob@example.com", "Bob")
	member := seedUser(t, db, "cat@example.com", "Cat")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	_, err := db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, admin, models.RoleAdmin)
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, member, models.RoleMember)
	is.NoErr(err)

	_, err = svc.UpdateMemberRole(testCtx, groupID, admin, member, models.RoleAdmin)
	is.Equal(domainStatus(t, err), http.StatusForbidden)

	updated, err := svc.UpdateMemberRole(testCtx, groupID, owner, member, models.RoleAdmin)
	is.NoErr(err)
	is.Equal(updated.Role, models.RoleAdmin)

	_, err = svc.UpdateMemberRole(testCtx, groupID, owner, owner, models.RoleMember)
	is.Equal(domainStatus(t, err), http.StatusBadRequest)

	outsider := seedUser(t, db, "dan@example.com", "Dan")
	_, err = svc.UpdateMemberRole(testCtx, groupID, owner, outsider, models.RoleMember)
	is.Equal(domainStatus(t, err), http.StatusNotFound)
}

func TestRemoveMemberRules(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	memberA := seedUser(t, db, "bob@example.com", "Bob")
	memberB := seedUser(t, db, "cat@example.com", "Cat")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	for _, uid := range []int{memberA, memberB} {
		_, err := db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
			groupID, uid, models.RoleMember)
		is.NoErr(err)
	}

	// A member cannot remove another member.
	err := svc.RemoveMember(testCtx, groupID, memberA, memberB)
	is.Equal(domainStatus(t, err), http.StatusForbidden)

	// The owner is unremovable, even by themselves.
	err = svc.RemoveMember(testCtx, groupID, owner, owner)
	is.Equal(domainStatus(t, err), http.StatusBadRequest)

	// Self-removal is always allowed for non-owners.
	err = svc.RemoveMember(testCtx, groupID, memberA, memberA)
	is.NoErr(err)

	err = svc.RemoveMember(testCtx, groupID, owner, memberB)
	is.NoErr(err)

	err = svc.RemoveMember(testCtx, groupID, owner, memberB)
	is.Equal(domainStatus(t, err), http.StatusNotFound)
}

func TestDeleteGroupIsOwnerOnlyAndCascades(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	member := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	_, err := db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, member, models.RoleMember)
	is.NoErr(err)
	_, err = db.Exec(`
		INSERT INTO invites (token, sender_id, invitee_email, group_id) VALUES (?, ?, ?, ?)
	`, "tok-cascade", owner, "cat@example.com", groupID)
	is.NoErr(err)

	err = svc.Delete(testCtx, groupID, member)
	is.Equal(domainStatus(t, err), http.StatusForbidden)

	err = svc.Delete(testCtx, groupID, owner)
	is.NoErr(err)

	for _, q := range []string{
		`SELECT COUNT(*) FROM user_groups WHERE id = ?`,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ?`,
		`SELECT COUNT(*) FROM invites WHERE group_id = ?`,
	} {
		var count int
		is.NoErr(db.QueryRow(q, groupID).Scan(&count))
		is.Equal(count, 0)
	}
}

func TestListGroupsForMember(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &GroupService{DB: db}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	member := seedUser(t, db, "bob@example.com", "Bob")
	groupA := seedGroup(t, db, owner, "Hiking Club")
	seedGroup(t, db, owner, "Book Club")

	_, err := db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupA, member, models.RoleMember)
	is.NoErr(err)

	ownerGroups, err := svc.List(testCtx, owner)
	is.NoErr(err)
	is.Equal(len(ownerGroups), 2)

	memberGroups, err := svc.List(testCtx, member)
	is.NoErr(err)
	is.Equal(len(memberGroups), 1)
	is.Equal(memberGroups[0].Name, "Hiking Club")
}
