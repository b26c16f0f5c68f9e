package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gearguard/models"
	"gearguard/testutil"
	"gearguard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceSignupAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	auth := NewAuthService(db, testutil.NewFakeMailer())
	ctx := context.Background()

	user, err := auth.Signup(ctx, SignupInput{Name: "Eve", Email: " Eve@Example.com ", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.Equal(t, "eve@example.com", user.Email)
	assert.NotEqual(t, "Str0ng!pass", user.PasswordHash)

	_, err = auth.Signup(ctx, SignupInput{Name: "Eve", Email: "eve@example.com", Password: "Str0ng!pass"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	got, err := auth.Login(ctx, LoginInput{Email: "EVE@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = auth.Login(ctx, LoginInput{Email: "eve@example.com", Password: "wrong"})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Equal(t, "Invalid email or password", appErr.Message)

	_, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Str0ng!pass"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestAuthServiceSignupValidation(t *testing.T) {
	db := testutil.NewDB(t)
	auth := NewAuthService(db, testutil.NewFakeMailer())
	ctx := context.Background()

	cases := []struct {
		name    string
		in      SignupInput
		message string
	}{
		{"missing fields", SignupInput{Email: "a@example.com"}, "All fields are required."},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "Str0ng!pass"}, "Please enter a valid email address."},
		{"weak password", SignupInput{Name: "A", Email: "a@example.com", Password: "weakpass"}, "Password requirements are not met."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Signup(ctx, tc.in)
			appErr, ok := utils.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, utils.KindValidation, appErr.Kind)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestAuthServicePasswordResetFlow(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := testutil.NewFakeMailer()
	auth := NewAuthService(db, mailer)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)

	err := auth.ForgotPassword(ctx, ForgotPasswordInput{Email: "ghost@example.com"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	require.NoError(t, auth.ForgotPassword(ctx, ForgotPasswordInput{Email: user.Email}))
	code := mailer.ResetCodes[user.Email]
	require.Len(t, code, utils.OTPLength)

	_, err = auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: "000000x"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	token, err := auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: code})
	require.NoError(t, err)
	assert.Len(t, token, 64)

	err = auth.ResetPassword(ctx, ResetPasswordInput{Email: user.Email, NewPassword: "weak", ResetToken: token})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	err = auth.ResetPassword(ctx, ResetPasswordInput{Email: user.Email, NewPassword: "N3w!Password", ResetToken: "bogus"})
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))

	require.NoError(t, auth.ResetPassword(ctx, ResetPasswordInput{Email: user.Email, NewPassword: "N3w!Password", ResetToken: token}))
	assert.Equal(t, []string{user.Email}, mailer.PasswordChanged)

	_, err = auth.Login(ctx, LoginInput{Email: user.Email, Password: "N3w!Password"})
	require.NoError(t, err)

	var remaining int64
	require.NoError(t, db.Model(&models.PasswordResetCode{}).Where("email = ?", user.Email).Count(&remaining).Error)
	assert.Zero(t, remaining)

	err = auth.ResetPassword(ctx, ResetPasswordInput{Email: user.Email, NewPassword: "An0ther!pass", ResetToken: token})
	assert.True(t, utils.IsKind(err, utils.KindAuthorization), "reset tokens are single use")
}

func TestAuthServiceOnlyNewestCodeCounts(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := testutil.NewFakeMailer()
	now := time.Now()
	auth := NewAuthService(db, mailer).WithClock(func() time.Time { return now })
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)

	require.NoError(t, auth.ForgotPassword(ctx, ForgotPasswordInput{Email: user.Email}))
	oldCode := mailer.ResetCodes[user.Email]
	now = now.Add(time.Minute)
	require.NoError(t, auth.ForgotPassword(ctx, ForgotPasswordInput{Email: user.Email}))
	newCode := mailer.ResetCodes[user.Email]

	if oldCode != newCode {
		_, err := auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: oldCode})
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	}
	_, err := auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: newCode})
	require.NoError(t, err)
}

func TestAuthServiceSupersededTokenCannotReset(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := testutil.NewFakeMailer()
	now := time.Now()
	auth := NewAuthService(db, mailer).WithClock(func() time.Time { return now })
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)

	require.NoError(t, auth.ForgotPassword(ctx, ForgotPasswordInput{Email: user.Email}))
	oldToken, err := auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: mailer.ResetCodes[user.Email]})
	require.NoError(t, err)

	now = now.Add(time.Minute)
	require.NoError(t, auth.ForgotPassword(ctx, ForgotPasswordInput{Email: user.Email}))

	err = auth.ResetPassword(ctx, ResetPasswordInput{Email: user.Email, NewPassword: "N3w!Password", ResetToken: oldToken})
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))
	_, err = auth.Login(ctx, LoginInput{Email: user.Email, Password: testutil.Password})
	require.NoError(t, err, "password must be unchanged")

	newToken, err := auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: mailer.ResetCodes[user.Email]})
	require.NoError(t, err)
	require.NoError(t, auth.ResetPassword(ctx, ResetPasswordInput{Email: user.Email, NewPassword: "N3w!Password", ResetToken: newToken}))
}

func TestAuthServiceExpiredCode(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := testutil.NewFakeMailer()
	now := time.Now()
	auth := NewAuthService(db, mailer).WithClock(func() time.Time { return now })
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)

	require.NoError(t, auth.ForgotPassword(ctx, ForgotPasswordInput{Email: user.Email}))
	now = now.Add(models.ResetCodeTTL + time.Second)

	_, err := auth.VerifyOTP(ctx, VerifyOTPInput{Email: user.Email, Code: mailer.ResetCodes[user.Email]})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	removed, err := auth.SweepExpiredResetCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestAuthServiceForgotPasswordMailFailure(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := testutil.NewFakeMailer()
	mailer.Err = errors.New("smtp down")
	auth := NewAuthService(db, mailer)
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)

	err := auth.ForgotPassword(context.Background(), ForgotPasswordInput{Email: user.Email})
	assert.True(t, utils.IsKind(err, utils.KindInternal))
}

func TestAuthServiceAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	auth := NewAuthService(db, testutil.NewFakeMailer())
	user := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)

	got, err := auth.Authenticate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = auth.Authenticate(context.Background(), 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
