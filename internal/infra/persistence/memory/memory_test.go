package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/shell"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Check(password, hash string) bool    { return hash == "hashed:"+password }

var seedTime = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func seededDB(t *testing.T) *DB {
	t.Helper()

	db, err := newSeededDB(context.Background(), plainHasher{}, slog.New(slog.NewTextHandler(io.Discard, nil)), seedTime)
	require.NoError(t, err)

	return db
}

func TestSeed_LoadsDemoDataset(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	creator, err := users.FindByID(ctx, "creator-01")
	require.NoError(t, err)
	assert.Equal(t, "Alex Designs", creator.Name)
	assert.Equal(t, "hashed:password123", creator.PasswordHash)
	require.NotNil(t, creator.LandingPage)
	assert.Len(t, creator.LandingPage.Sections, 2)
	assert.Equal(t, 30.0, creator.CommissionRate())

	students, err := users.ListByRole(ctx, entity.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, students, 7)
	for _, s := range students {
		assert.Nil(t, s.CreatorProfile)
	}

	affiliate, err := users.FindByAffiliateID(ctx, "sam-promo")
	require.NoError(t, err)
	assert.Equal(t, "affiliate-01", affiliate.ID)

	products, err := NewProductRepository(db).ListByCreator(ctx, "creator-01")
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, entity.ProductCourse, products[0].Type())
	assert.Len(t, products[0].Lessons(), 2)
	assert.Equal(t, entity.ProductDigital, products[1].Type())
	assert.Len(t, products[1].Resources(), 2)
	assert.Equal(t, seedTime, products[0].Reviews[0].Date)

	sales, err := NewSaleRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 12)
	assert.Equal(t, seedTime, sales[0].Date)
	assert.Equal(t, seedTime.AddDate(0, -1, 0), sales[3].Date)

	owned, err := NewSaleRepository(db).ListByCreator(ctx, "creator-01")
	require.NoError(t, err)
	assert.Len(t, owned, 12)

	clicks, err := NewAffiliateRepository(db).ListClicks(ctx, "sam-promo")
	require.NoError(t, err)
	require.Len(t, clicks, 6)
	assert.Nil(t, clicks[1].ProductID)
	assert.Equal(t, seedTime.Add(-3*time.Hour), clicks[1].Date)

	affSales, err := NewAffiliateRepository(db).ListSales(ctx, "sam-promo")
	require.NoError(t, err)
	assert.Equal(t, seedTime.Add(-60*time.Hour), affSales[1].Date)

	notifications, err := NewNotificationRepository(db).ListByUser(ctx, "creator-01")
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	assert.Equal(t, `You made a new sale for "Ultimate Figma Masterclass"!`, notifications[0].Message)
	assert.True(t, notifications[2].Read)
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "", want: seedTime},
		{in: "0s", want: seedTime},
		{in: "90m", want: seedTime.Add(-90 * time.Minute)},
		{in: "2.5d", want: seedTime.Add(-60 * time.Hour)},
		{in: "3mo", want: seedTime.AddDate(0, -3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := parseAge(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.before(seedTime))
		})
	}

	_, err := parseAge("soon")
	assert.Error(t, err)
}

func TestUserRepository(t *testing.T) {
	db := NewEmptyDB()
	repo := NewUserRepository(db)
	ctx := context.Background()

	student := &entity.User{ID: "u1", Name: "Jane", Email: "Jane@Example.com", Role: entity.RoleStudent}
	require.NoError(t, repo.Create(ctx, student))

	found, err := repo.FindByEmail(ctx, "  jane@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)

	err = repo.Create(ctx, &entity.User{ID: "u2", Email: "JANE@example.com", Role: entity.RoleStudent})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	err = repo.Create(ctx, &entity.User{ID: "u3", Email: "x@example.com", Role: entity.RoleCreator})
	assert.Error(t, err, "creator without profile violates the one-role invariant")

	found.Name = "Jane Doe"
	require.NoError(t, repo.Update(ctx, found))
	again, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", again.Name)

	assert.ErrorIs(t, repo.Update(ctx, &entity.User{ID: "ghost", Role: entity.RoleStudent}), repository.ErrUserNotFound)
	_, err = repo.FindByAffiliateID(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func course(id, creatorID, name string) *entity.Product {
	return &entity.Product{
		ID: id, CreatorID: creatorID, Name: name, Currency: entity.CurrencyUSD,
		Content: entity.CourseContent{Lessons: []entity.Lesson{{ID: "l1", Title: "Intro"}}},
	}
}

func TestProductRepository_UpsertOrdersAndIsolates(t *testing.T) {
	repo := NewProductRepository(NewEmptyDB())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, course("a", "c1", "A")))
	require.NoError(t, repo.Upsert(ctx, course("b", "c1", "B")))
	require.NoError(t, repo.Upsert(ctx, course("x", "c2", "X")))

	list, err := repo.ListByCreator(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "new products are prepended")

	updated := course("a", "c1", "A v2")
	require.NoError(t, repo.Upsert(ctx, updated))
	list, _ = repo.ListByCreator(ctx, "c1")
	assert.Equal(t, []string{"b", "a"}, []string{list[0].ID, list[1].ID}, "updates keep position")
	assert.Equal(t, "A v2", list[1].Name)

	list[1].Name = "mutated by caller"
	fresh, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A v2", fresh.Name)

	byIDs, err := repo.ListByIDs(ctx, []string{"x", "gone", "a"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, "x", byIDs[0].ID)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), repository.ErrProductNotFound)
	_, err = repo.FindByID(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	assert.Error(t, repo.Upsert(ctx, &entity.Product{ID: "bad", Name: "No content", Currency: entity.CurrencyUSD}))
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := NewEmptyDB()
	tm := NewTransactionManager(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		require.NoError(t, f.NewProductRepository().Upsert(ctx, course("a", "c1", "A")))
		require.NoError(t, f.NewSaleRepository().Create(ctx, entity.Sale{ID: "s1", ProductID: "a"}))

		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewProductRepository(db).FindByID(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	sales, _ := NewSaleRepository(db).List(ctx)
	assert.Empty(t, sales)

	err = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.NewSaleRepository().Create(ctx, entity.Sale{ID: "s2", ProductID: "a", StudentID: "u"})
	})
	require.NoError(t, err)
	sales, _ = NewSaleRepository(db).ListByStudent(ctx, "u")
	assert.Len(t, sales, 1)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	repo := NewNotificationRepository(NewEmptyDB())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, entity.Notification{ID: "n1", UserID: "u1"}))
	require.NoError(t, repo.Create(ctx, entity.Notification{ID: "n2", UserID: "u1"}))
	require.NoError(t, repo.Create(ctx, entity.Notification{ID: "n3", UserID: "u2"}))

	assert.ErrorIs(t, repo.MarkRead(ctx, "u2", "n1"), repository.ErrNotificationNotFound)
	require.NoError(t, repo.MarkRead(ctx, "u1", "n1"))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)
	assert.False(t, list[0].Read)
	assert.True(t, list[1].Read)

	require.NoError(t, repo.MarkAllRead(ctx, "u1"))
	list, _ = repo.ListByUser(ctx, "u1")
	assert.True(t, list[0].Read)
	other, _ := repo.ListByUser(ctx, "u2")
	assert.False(t, other[0].Read)
}

func TestProgressAndSessionRepositories(t *testing.T) {
	db := NewEmptyDB()
	ctx := context.Background()

	progress := NewProgressRepository(db)
	p, err := progress.Get(ctx, "u1", "1")
	require.NoError(t, err)
	assert.Empty(t, p.Completed)

	p.Completed["l1"] = true
	require.NoError(t, progress.Save(ctx, p))
	p.Completed["l2"] = true

	stored, err := progress.Get(ctx, "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"l1": true}, stored.Completed)

	sessions := NewSessionRepository(db)
	_, err = sessions.Find(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	require.NoError(t, sessions.Save(ctx, shell.NewSession("s1", seedTime)))
	s, err := sessions.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, shell.PageHome, s.Page)

	require.NoError(t, sessions.Delete(ctx, "s1"))
	_, err = sessions.Find(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestTemplateRepository(t *testing.T) {
	repo, err := NewTemplateRepository()
	require.NoError(t, err)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"default", "minimalist", "creative"}, []string{list[0].ID, list[1].ID, list[2].ID})

	minimalist, err := repo.FindByID(ctx, "minimalist")
	require.NoError(t, err)
	require.Len(t, minimalist.Sections, 4)
	faq, ok := minimalist.Sections[3].Content.(entity.FAQContent)
	require.True(t, ok)
	assert.Len(t, faq.Items, 3)

	minimalist.Sections = nil
	again, _ := repo.FindByID(ctx, "minimalist")
	assert.Len(t, again.Sections, 4)

	_, err = repo.FindByID(ctx, "brutalist")
	assert.ErrorIs(t, err, repository.ErrTemplateNotFound)
}
