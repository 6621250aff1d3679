package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/levelup-todo-api/internal/database"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, database.AddIndexes(db))
	return db
}

func setupMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestMarkCompleted_OnlyOnce(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	repo := NewTaskRepository(db)

	user := createUser(t, db, "alice")
	task := &models.Task{UserID: user.ID, Title: "Write report", Category: gamification.CategoryWork}
	task.ApplyDifficulty(gamification.DifficultyHard)
	require.NoError(t, repo.Create(ctx, task))

	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	ok, err := repo.MarkCompleted(ctx, task.ID, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkCompleted(ctx, task.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(at))

	count, err := repo.CountCompleted(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTaskList_FiltersAndOwnership(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	repo := NewTaskRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	june := func(day int) *time.Time {
		d := time.Date(2025, 6, day, 18, 0, 0, 0, time.UTC)
		return &d
	}
	seed := []models.Task{
		{UserID: alice.ID, Title: "a", Category: gamification.CategoryWork, DueDate: june(12)},
		{UserID: alice.ID, Title: "b", Category: gamification.CategoryHealth, DueDate: june(3)},
		{UserID: alice.ID, Title: "c", Category: gamification.CategoryWork},
		{UserID: bob.ID, Title: "d", Category: gamification.CategoryWork, DueDate: june(5)},
	}
	for i := range seed {
		seed[i].ApplyDifficulty(gamification.DifficultyEasy)
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	tasks, total, err := repo.List(ctx, TaskFilter{UserID: alice.ID, SortByDueDate: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})

	work := gamification.CategoryWork
	tasks, total, err = repo.List(ctx, TaskFilter{UserID: alice.ID, Category: &work})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, tasks, 2)

	tasks, _, err = repo.List(ctx, TaskFilter{UserID: alice.ID, DueDateFrom: june(1), DueDateTo: june(10)})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Title)

	tasks, total, err = repo.List(ctx, TaskFilter{UserID: alice.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tasks, 1)
}

func TestInsertIfAbsent_IsIdempotent(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	repo := NewAchievementRepository(db)

	user := createUser(t, db, "alice")
	newRow := func() *models.EarnedAchievement {
		return &models.EarnedAchievement{
			UserID:    user.ID,
			Kind:      gamification.AchievementFirstTodo,
			Title:     "First Steps",
			XPBonus:   10,
			CoinBonus: 5,
			EarnedAt:  time.Now(),
		}
	}

	inserted, err := repo.InsertIfAbsent(ctx, newRow())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, newRow())
	require.NoError(t, err)
	assert.False(t, inserted)

	earned, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestProfile_GetOrCreateAndApplyReward(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	user := createUser(t, db, "alice")

	first, err := repo.GetOrCreate(ctx, user.ID, "alice")
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, user.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, first.Level)

	var profile *models.Profile
	err = NewTransactor(db).WithinTransaction(ctx, func(repos Repositories) error {
		for _, xp := range []int{96, 48} {
			var err error
			profile, err = repos.Profiles.ApplyReward(ctx, &models.RewardEvent{
				UserID: user.ID,
				Source: models.RewardSourceTaskCompletion,
				OnTime: true,
				XP:     xp,
				Coins:  xp / 2,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 144, profile.XP)
	assert.Equal(t, 72, profile.Coins)
	assert.Equal(t, 2, profile.Level)

	totals, err := repo.LedgerTotals(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, gamification.Reward{XP: 144, Coins: 72}, totals)

	future := time.Now().Add(time.Hour)
	totals, err = repo.LedgerTotals(ctx, user.ID, &future)
	require.NoError(t, err)
	assert.Equal(t, gamification.Reward{}, totals)

	events, total, err := repo.ListRewardEvents(ctx, user.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, events, 2)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	_, err := NewProfileRepository(db).GetOrCreate(ctx, user.ID, "alice")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = NewTransactor(db).WithinTransaction(ctx, func(repos Repositories) error {
		if _, err := repos.Profiles.ApplyReward(ctx, &models.RewardEvent{
			UserID: user.ID,
			Source: models.RewardSourceTaskCompletion,
			XP:     40,
			Coins:  20,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	profile, err := NewProfileRepository(db).FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.XP)

	var events int64
	require.NoError(t, db.Model(&models.RewardEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestDeleteOwned_IgnoresOtherUsers(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	repo := NewTaskRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	mine := &models.Task{UserID: alice.ID, Title: "mine", Category: gamification.CategoryWork}
	theirs := &models.Task{UserID: bob.ID, Title: "theirs", Category: gamification.CategoryWork}
	mine.ApplyDifficulty(gamification.DifficultyEasy)
	theirs.ApplyDifficulty(gamification.DifficultyEasy)
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, theirs))

	deleted, err := repo.DeleteOwned(ctx, alice.ID, []uint64{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, theirs.ID)
	assert.NoError(t, err)
	_, err = repo.FindByID(ctx, mine.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindByUserID_SurfacesStoreErrors(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectQuery("SELECT \\* FROM `profiles` WHERE user_id = \\?").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := NewProfileRepository(db).FindByUserID(context.Background(), 7)
	require.Error(t, err)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReward_RollsBackWhenIncrementFails(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `reward_events`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `profiles` SET").
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	err := NewTransactor(db).WithinTransaction(context.Background(), func(repos Repositories) error {
		_, err := repos.Profiles.ApplyReward(context.Background(), &models.RewardEvent{
			UserID: 7,
			Source: models.RewardSourceTaskCompletion,
			XP:     12,
			Coins:  5,
		})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock wait timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
