package seed

import (
	"context"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeed_CreatesRequestedData(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{Users: 6, Posts: 10, MaxLikesPerPost: 6, MaxCommentsPerPost: 3, Seed: 42})

	sum, err := f.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 10, sum.Posts)
	assert.Equal(t, int64(sum.Users), count(t, db, &models.User{}))
	assert.Equal(t, int64(sum.Posts), count(t, db, &models.Post{}))
	assert.Equal(t, int64(sum.Likes), count(t, db, &models.Like{}))
	assert.Equal(t, int64(sum.Comments), count(t, db, &models.Comment{}))

	// No post has more likes than there are users.
	var maxLikes int64
	require.NoError(t, db.Raw(
		"SELECT COALESCE(MAX(c), 0) FROM (SELECT COUNT(*) AS c FROM likes GROUP BY post_id) AS per_post",
	).Scan(&maxLikes).Error)
	assert.LessOrEqual(t, maxLikes, int64(6))
}

func TestSeed_UsersAreRegularAndCanSignIn(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{Users: 3, Seed: 7})
	_, err := f.Seed(context.Background())
	require.NoError(t, err)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 3)
	for _, u := range users {
		assert.Equal(t, models.RoleUser, u.Role)
		assert.NotContains(t, u.Username, " ")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))
	}
}

func TestFactory_LikeTwiceIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{Seed: 1})
	ctx := context.Background()

	u, err := f.CreateUser(ctx, 1)
	require.NoError(t, err)
	p, err := f.CreatePost(ctx, u)
	require.NoError(t, err)

	ok, err := f.Like(ctx, u, p)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Like(ctx, u, p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), count(t, db, &models.Like{}))
}

func TestSeed_RequiresUsers(t *testing.T) {
	_, err := NewFactory(setupTestDB(t), Options{Posts: 3}).Seed(context.Background())
	require.Error(t, err)
}

func TestClearAll(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{Users: 2, Posts: 3, MaxLikesPerPost: 2, MaxCommentsPerPost: 2, Seed: 3})
	_, err := f.Seed(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.ClearAll(context.Background()))
	for _, m := range []any{&models.User{}, &models.Post{}, &models.Like{}, &models.Comment{}} {
		assert.Zero(t, count(t, db, m))
	}
}
