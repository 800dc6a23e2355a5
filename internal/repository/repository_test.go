package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"flyerhub/internal/model"
	"flyerhub/internal/testutil"
)

func seedCompanies(t *testing.T, repos Repositories, names ...string) []model.Company {
	t.Helper()
	out := make([]model.Company, 0, len(names))
	for _, name := range names {
		c := model.Company{Name: name}
		require.NoError(t, repos.Companies.Create(context.Background(), &c))
		out = append(out, c)
	}
	return out
}

func TestCompanyRepository_ListAndExists(t *testing.T) {
	ctx := context.Background()
	repos := New(testutil.NewDB(t))

	companies := seedCompanies(t, repos, "Company A", "Company B")

	list, err := repos.Companies.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Company A", list[0].Name)
	assert.Equal(t, "Company B", list[1].Name)

	ok, err := repos.Companies.Exists(ctx, companies[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Companies.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_FindByEmailJoinsCompany(t *testing.T) {
	ctx := context.Background()
	repos := New(testutil.NewDB(t))
	companies := seedCompanies(t, repos, "Company A")

	require.NoError(t, repos.Users.Create(ctx, &model.User{Email: "admin@flyer.com", Password: "x", Role: model.RoleAdmin}))
	require.NoError(t, repos.Users.Create(ctx, &model.User{
		Email: "companyA@flyer.com", Password: "y", Role: model.RoleCompany, CompanyID: &companies[0].ID,
	}))

	users, err := repos.Users.FindByEmail(ctx, "companyA@flyer.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].Company)
	assert.Equal(t, "Company A", users[0].Company.Name)

	users, err = repos.Users.FindByEmail(ctx, "admin@flyer.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].Company)

	users, err = repos.Users.FindByEmail(ctx, "nobody@flyer.com")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_RejectsBrokenRoleInvariant(t *testing.T) {
	ctx := context.Background()
	repos := New(testutil.NewDB(t))
	companies := seedCompanies(t, repos, "Company A")

	err := repos.Users.Create(ctx, &model.User{Email: "c@flyer.com", Password: "p", Role: model.RoleCompany})
	assert.ErrorIs(t, err, model.ErrCompanyRequired)

	err = repos.Users.Create(ctx, &model.User{Email: "a@flyer.com", Password: "p", Role: model.RoleAdmin, CompanyID: &companies[0].ID})
	assert.ErrorIs(t, err, model.ErrAdminHasCompany)
}

func TestFlyerRepository_ListNewestFirstWithWindow(t *testing.T) {
	ctx := context.Background()
	repos := New(testutil.NewDB(t))
	companies := seedCompanies(t, repos, "Company A", "Company B")
	a, b := companies[0].ID, companies[1].ID

	mk := func(title string, company uint, at time.Time) model.Flyer {
		f := model.Flyer{Title: title, ImagePath: "/uploads/" + title + ".png", CompanyID: company, CreatedAt: at}
		require.NoError(t, repos.Flyers.Create(ctx, &f))
		return f
	}
	mk("jan", a, time.Date(2025, time.January, 31, 23, 59, 0, 0, time.UTC))
	mk("feb-early", a, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	mk("feb-late", a, time.Date(2025, time.February, 20, 12, 0, 0, 0, time.UTC))
	mk("march", a, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	mk("other", b, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))

	all, err := repos.Flyers.ListByCompany(ctx, a, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"march", "feb-late", "feb-early", "jan"}, titles(all))

	feb, err := repos.Flyers.ListByCompany(ctx, a, &TimeWindow{
		From: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"feb-late", "feb-early"}, titles(feb))

	none, err := repos.Flyers.ListByCompany(ctx, 424242, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFlyerRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repos := New(testutil.NewDB(t))
	companies := seedCompanies(t, repos, "Company A")

	f := model.Flyer{Title: "Sale", ImagePath: "/uploads/x.png", CompanyID: companies[0].ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Flyers.Create(ctx, &f))

	require.NoError(t, repos.Flyers.Delete(ctx, f.ID))

	_, err := repos.Flyers.FindByID(ctx, f.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, errors.Is(repos.Flyers.Delete(ctx, f.ID), gorm.ErrRecordNotFound))
}

func TestTransactor_RollsBack(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	repos := New(gormDB)
	boom := errors.New("boom")

	err := NewTransactor(gormDB).WithTransaction(ctx, func(ctx context.Context, tx Repositories) error {
		if err := tx.Companies.Create(ctx, &model.Company{Name: "Doomed"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := repos.Companies.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func titles(flyers []model.Flyer) []string {
	out := make([]string, len(flyers))
	for i, f := range flyers {
		out[i] = f.Title
	}
	return out
}
