package account_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/profile"
	"github.com/trezcool/haven/services/email"
	"github.com/trezcool/haven/storage/database/inmem"
	"github.com/trezcool/haven/tests"
)

type fixture struct {
	db       *inmemdb.DB
	svc      *account.Service
	profiles profile.Repository
	mailSvc  *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger()
	testutil.Setup(conf, logger)

	db := inmemdb.Open()
	profiles := inmemdb.NewProfileRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	svc := account.NewService(db, inmemdb.NewAccountRepository(db), profile.NewProvisioner(profiles), mailSvc, conf)
	return fixture{db: db, svc: svc, profiles: profiles, mailSvc: mailSvc}
}

func newAccount(fullName, email string, role account.Role) account.NewAccount {
	return account.NewAccount{FullName: fullName, Email: email, Password: testutil.Password, Role: role}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	for _, role := range []account.Role{account.RoleYouth, account.RoleMentor, account.RoleDonor, account.RoleAdmin} {
		role := role
		t.Run(string(role), func(t *testing.T) {
			acc, err := f.svc.Create(ctx, newAccount("Amani "+string(role), string(role)+"@test.cd", role))
			require.NoError(t, err)
			assert.Equal(t, role, acc.Role)
			assert.NoError(t, acc.CheckPassword(testutil.Password))

			p, err := f.profiles.GetProfile(ctx, role, acc.ID)
			if role == account.RoleAdmin {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, role, p.Role())
			assert.Equal(t, acc.ID, p.Owner())

			for _, other := range []account.Role{account.RoleYouth, account.RoleMentor, account.RoleDonor} {
				if other == role {
					continue
				}
				_, err = f.profiles.GetProfile(ctx, other, acc.ID)
				assert.Equal(t, profile.ErrNotFound, errors.Cause(err), "%s profile of a %s account", other, role)
			}
		})
	}

	t.Run("welcome email", func(t *testing.T) {
		f.mailSvc.Reset()
		acc, err := f.svc.Create(ctx, newAccount("Neema Baraka", "neema@test.cd", account.RoleMentor))
		require.NoError(t, err)

		sent := f.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, acc.Email, sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Neema Baraka")
		assert.Contains(t, sent[0].TextContent, "Mentor")
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.svc.Create(ctx, newAccount("Other", "YOUTH@test.cd", account.RoleYouth))
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
		vErr := errors.Cause(err).(*core.ValidationError)
		assert.Equal(t, account.ErrEmailExists, vErr.Err)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.svc.Create(ctx, newAccount("Other", "other@test.cd", "superhero"))
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_Create_rollsBackOnProvisioningFailure(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig()
	db := inmemdb.Open()
	repo := inmemdb.NewAccountRepository(db)
	svc := account.NewService(db, repo, failingProvisioner{}, nil, conf)

	_, err := svc.Create(ctx, newAccount("Amani Juma", "amani@test.cd", account.RoleYouth))
	require.Error(t, err)

	_, err = svc.GetByEmail(ctx, "amani@test.cd")
	assert.Equal(t, account.ErrNotFound, err)
}

type failingProvisioner struct{}

func (failingProvisioner) Provision(context.Context, account.Account) error {
	return errors.New("provisioning failed")
}

func (failingProvisioner) Reconcile(context.Context, account.Account, account.Role) error {
	return errors.New("provisioning failed")
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	acc, err := f.svc.Create(ctx, newAccount("Amani Juma", "amani@test.cd", account.RoleYouth))
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "nobody@test.cd", pwd: testutil.Password, wantErr: account.ErrInvalidCredentials},
		{name: "wrong password", email: acc.Email, pwd: "Wr0ng!pass", wantErr: account.ErrInvalidCredentials},
		{name: "email is case insensitive", email: strings.ToUpper(acc.Email), pwd: testutil.Password},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, acc.ID, got.ID)
			assert.NotNil(t, got.LastLogin)
		})
	}
}

func TestService_SetMentor(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	youth, err := f.svc.Create(ctx, newAccount("Amani Juma", "amani@test.cd", account.RoleYouth))
	require.NoError(t, err)
	mentor, err := f.svc.Create(ctx, newAccount("Neema Baraka", "neema@test.cd", account.RoleMentor))
	require.NoError(t, err)
	donor, err := f.svc.Create(ctx, newAccount("Jabari Okello", "jabari@test.cd", account.RoleDonor))
	require.NoError(t, err)

	got, err := f.svc.SetMentor(ctx, youth.ID, mentor.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MentorID)
	assert.Equal(t, mentor.ID, *got.MentorID)

	_, err = f.svc.SetMentor(ctx, youth.ID, donor.ID)
	assert.True(t, core.IsValidationError(err), "a donor cannot mentor")

	_, err = f.svc.SetMentor(ctx, mentor.ID, mentor.ID)
	assert.True(t, core.IsValidationError(err), "only youth have mentors")

	got, err = f.svc.SetMentor(ctx, youth.ID, "")
	require.NoError(t, err)
	assert.Nil(t, got.MentorID)
}

func TestService_ChangeRole(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	youth, err := f.svc.Create(ctx, newAccount("Amani Juma", "amani@test.cd", account.RoleYouth))
	require.NoError(t, err)
	mentor, err := f.svc.Create(ctx, newAccount("Neema Baraka", "neema@test.cd", account.RoleMentor))
	require.NoError(t, err)
	_, err = f.svc.SetMentor(ctx, youth.ID, mentor.ID)
	require.NoError(t, err)

	t.Run("mentor becomes donor", func(t *testing.T) {
		got, err := f.svc.ChangeRole(ctx, mentor.ID, account.RoleDonor)
		require.NoError(t, err)
		assert.Equal(t, account.RoleDonor, got.Role)

		_, err = f.profiles.GetProfile(ctx, account.RoleMentor, mentor.ID)
		assert.Equal(t, profile.ErrNotFound, err)
		_, err = f.profiles.GetProfile(ctx, account.RoleDonor, mentor.ID)
		assert.NoError(t, err)

		mentee, err := f.svc.GetByID(ctx, youth.ID)
		require.NoError(t, err)
		assert.Nil(t, mentee.MentorID)
	})

	t.Run("youth becomes admin", func(t *testing.T) {
		got, err := f.svc.ChangeRole(ctx, youth.ID, account.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())
		_, err = f.profiles.GetProfile(ctx, account.RoleYouth, youth.ID)
		assert.Equal(t, profile.ErrNotFound, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.svc.ChangeRole(ctx, youth.ID, "superhero")
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_SetPassword(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	acc, err := f.svc.Create(ctx, newAccount("Amani Juma", "amani@test.cd", account.RoleYouth))
	require.NoError(t, err)

	_, err = f.svc.SetPassword(ctx, acc.Email, "short")
	assert.True(t, core.IsValidationError(err))

	_, err = f.svc.SetPassword(ctx, acc.Email, "N3w!Secret#x")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, acc.Email, "N3w!Secret#x")
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	acc, err := f.svc.Create(ctx, newAccount("Amani Juma", "amani@test.cd", account.RoleYouth))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, acc.ID))
	_, err = f.svc.GetByID(ctx, acc.ID)
	assert.Equal(t, account.ErrNotFound, err)
	assert.Equal(t, account.ErrNotFound, f.svc.Delete(ctx, "not-a-uuid"))
}
