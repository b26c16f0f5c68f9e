package services

import (
	"context"
	"strings"
	"testing"

	"gearguard/models"
	"gearguard/testutil"
	"gearguard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamDirectoryCreateTeam(t *testing.T) {
	db := testutil.NewDB(t)
	teams := NewTeamDirectory(db)
	ctx := context.Background()

	team, err := teams.CreateTeam(ctx, "  IT Support ")
	require.NoError(t, err)
	assert.Equal(t, "IT Support", team.Name)

	_, err = teams.CreateTeam(ctx, "IT Support")
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	_, err = teams.CreateTeam(ctx, "   ")
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	accented, err := teams.CreateTeam(ctx, strings.Repeat("é", 100))
	require.NoError(t, err, "length counts characters, not bytes")
	assert.Equal(t, strings.Repeat("é", 100), accented.Name)

	_, err = teams.CreateTeam(ctx, strings.Repeat("é", 101))
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestTeamDirectoryAddMemberIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	teams := NewTeamDirectory(db)
	ctx := context.Background()
	team := testutil.CreateTeam(t, db, "Mechanical")
	tech := testutil.CreateUser(t, db, "Tom", "tom@example.com", models.RoleTechnician)

	require.NoError(t, teams.AddMember(ctx, tech.ID, team.ID))
	require.NoError(t, teams.AddMember(ctx, tech.ID, team.ID))

	var count int64
	require.NoError(t, db.Model(&models.TeamMember{}).Where("user_id = ? AND team_id = ?", tech.ID, team.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTeamDirectoryAddMemberMissing(t *testing.T) {
	db := testutil.NewDB(t)
	teams := NewTeamDirectory(db)
	ctx := context.Background()
	team := testutil.CreateTeam(t, db, "Mechanical")
	tech := testutil.CreateUser(t, db, "Tom", "tom@example.com", models.RoleTechnician)

	assert.True(t, utils.IsKind(teams.AddMember(ctx, tech.ID, 999), utils.KindNotFound))
	assert.True(t, utils.IsKind(teams.AddMember(ctx, 999, team.ID), utils.KindNotFound))
	assert.True(t, utils.IsKind(teams.AddMember(ctx, 0, team.ID), utils.KindValidation))
}

func TestTeamDirectoryListTeams(t *testing.T) {
	db := testutil.NewDB(t)
	teams := NewTeamDirectory(db)
	ctx := context.Background()

	it := testutil.CreateTeam(t, db, "IT")
	empty := testutil.CreateTeam(t, db, "Electrical")
	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com", models.RoleTechnician)
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com", models.RoleTechnician)
	require.NoError(t, teams.AddMember(ctx, alice.ID, it.ID))
	require.NoError(t, teams.AddMember(ctx, bob.ID, it.ID))

	list, err := teams.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, it.ID, list[0].ID)
	assert.Equal(t, int64(2), list[0].TechnicianCount)
	require.NotNil(t, list[0].DefaultTechnicianID)
	assert.Contains(t, []uint{alice.ID, bob.ID}, *list[0].DefaultTechnicianID)

	assert.Equal(t, empty.ID, list[1].ID)
	assert.Zero(t, list[1].TechnicianCount)
	assert.Nil(t, list[1].DefaultTechnicianID)
}

func TestTeamMembershipsFollowUserDeletion(t *testing.T) {
	db := testutil.NewDB(t)
	teams := NewTeamDirectory(db)
	ctx := context.Background()
	team := testutil.CreateTeam(t, db, "IT")
	tech := testutil.CreateUser(t, db, "Tom", "tom@example.com", models.RoleTechnician)
	require.NoError(t, teams.AddMember(ctx, tech.ID, team.ID))

	require.NoError(t, NewUserService(db, testutil.NewFakeMailer()).DeleteAccount(ctx, tech))

	list, err := teams.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].TechnicianCount)
}
