// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"gearguard/config"
	"gearguard/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database with foreign keys on.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db, "", ""))
	return db
}

// CreateUser inserts an account with the given role and Password.
func CreateUser(t testing.TB, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Name: name, Email: email, PasswordHash: string(hashed), Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Password is the plaintext password of users made by CreateUser.
const Password = "Secret#123"

func CreateTeam(t testing.TB, db *gorm.DB, name string) *models.Team {
	t.Helper()
	team := &models.Team{Name: name}
	require.NoError(t, db.Create(team).Error)
	return team
}

func CreateEquipment(t testing.TB, db *gorm.DB, name, category string, teamID *uint) *models.Equipment {
	t.Helper()
	equipment := &models.Equipment{Name: name, Category: category, TeamID: teamID}
	require.NoError(t, db.Omit("Team").Create(equipment).Error)
	return equipment
}

// FakeMailer records sent mail instead of delivering it.
type FakeMailer struct {
	ResetCodes      map[string]string
	PasswordChanged []string
	Err             error
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{ResetCodes: make(map[string]string)}
}

func (m *FakeMailer) SendResetCode(to, name, code string) error {
	if m.Err != nil {
		return m.Err
	}
	m.ResetCodes[to] = code
	return nil
}

func (m *FakeMailer) SendPasswordChanged(to, name string) error {
	if m.Err != nil {
		return m.Err
	}
	m.PasswordChanged = append(m.PasswordChanged, to)
	return nil
}
