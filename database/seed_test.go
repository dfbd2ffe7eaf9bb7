package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecomputer struct{ calls int }

func (r *countingRecomputer) RecomputeAll(ctx context.Context) (int, error) {
	r.calls++
	return 0, nil
}

func TestSeedAllIsIdempotent(t *testing.T) {
	store, err := OpenSQLite(fmt.Sprintf("file:seed_%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	db := store.GetDB()

	stats := &countingRecomputer{}
	seeder := NewSeeder(db, stats, utils.NewNopLogger())
	opts := SeedOptions{AdminEmail: "admin@example.com", AdminPassword: "secret123", Demo: true}

	require.NoError(t, seeder.SeedAll(context.Background(), opts))
	require.NoError(t, seeder.SeedAll(context.Background(), opts))
	assert.Equal(t, 2, stats.calls)

	var admin model.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, auth.VerifyPassword(admin.PasswordHash, "secret123"))

	var users, courses, lessons int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Course{}).Count(&courses).Error)
	require.NoError(t, db.Model(&model.Lesson{}).Count(&lessons).Error)
	assert.Equal(t, int64(3), users)
	assert.Equal(t, int64(1), courses)
	assert.Equal(t, int64(4), lessons)
}

func TestSeedAdminSkippedWithoutCredentials(t *testing.T) {
	store, err := OpenSQLite(fmt.Sprintf("file:seed_%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	seeder := NewSeeder(store.GetDB(), &countingRecomputer{}, utils.NewNopLogger())
	require.NoError(t, seeder.SeedAdminUser(context.Background(), SeedOptions{}))

	var count int64
	require.NoError(t, store.GetDB().Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
