package services

import (
	"context"
	"testing"
	"time"

	"gym_manager/internal/models"
	"gym_manager/internal/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := redis.Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCreatePlanValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.store, nil, 0)

	cases := map[string]PlanInput{
		"blank name":    {Name: " ", DurationDays: 30, Price: 10},
		"zero duration": {Name: "X", DurationDays: 0, Price: 10},
		"negative":      {Name: "X", DurationDays: 30, Price: -1},
		"bad status":    {Name: "X", DurationDays: 30, Price: 10, Status: "draft"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), in)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	plan, err := svc.CreatePlan(context.Background(), PlanInput{Name: " Student ", DurationDays: 30, Price: 19.999, Features: []string{"Pool"}})
	require.NoError(t, err)
	assert.Equal(t, "Student", plan.Name)
	assert.Equal(t, 20.0, plan.Price)
	assert.Equal(t, string(models.PlanActive), plan.Status)

	loaded, err := svc.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pool"}, []string(loaded.Features))
}

func TestActivePlansAreCachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	cache, mr := newRedisCache(t)
	svc := NewPlanService(f.store, cache, time.Minute)
	ctx := context.Background()

	monthly, err := svc.CreatePlan(ctx, PlanInput{Name: "Monthly", DurationDays: 30, Price: 30})
	require.NoError(t, err)

	plans, err := svc.ListActivePlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, mr.Exists("temp:"+activePlansCacheKey))

	// A write behind the service's back is hidden by the cache...
	require.NoError(t, f.store.Plans.Create(ctx, &models.MembershipPlan{Name: "Sneaky", DurationDays: 1, Price: 1, Status: string(models.PlanActive)}))
	plans, err = svc.ListActivePlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	// ...until a service write invalidates it.
	_, err = svc.BulkSetStatus(ctx, []uint{monthly.ID}, string(models.PlanInactive))
	require.NoError(t, err)
	assert.False(t, mr.Exists("temp:"+activePlansCacheKey))

	plans, err = svc.ListActivePlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Sneaky", plans[0].Name)
}

func TestActivePlansFallBackWhenCacheIsDown(t *testing.T) {
	f := newFixture(t)
	cache, mr := newRedisCache(t)
	svc := NewPlanService(f.store, cache, time.Minute)
	f.plan(t, "Monthly", 30, 30)

	mr.Close()
	plans, err := svc.ListActivePlans(context.Background())
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestUpdatePlanKeepsMemberDates(t *testing.T) {
	f := newFixture(t)
	plan := f.plan(t, "Monthly", 30, 30)
	member := f.member(t, plan, date(2024, 1, 1))
	svc := NewPlanService(f.store, nil, 0)

	updated, err := svc.UpdatePlan(context.Background(), plan.ID, PlanInput{Name: "Monthly+", DurationDays: 45, Price: 40})
	require.NoError(t, err)
	assert.Equal(t, 45, updated.DurationDays)

	reloaded, err := f.store.Members.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", reloaded.MembershipEnd.Format("2006-01-02"))

	_, err = svc.UpdatePlan(context.Background(), 999, PlanInput{Name: "X", DurationDays: 1})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDuplicatePlan(t *testing.T) {
	f := newFixture(t)
	plan := f.plan(t, "Premium", 30, 49.99)
	svc := NewPlanService(f.store, nil, 0)

	dup, err := svc.DuplicatePlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.NotEqual(t, plan.ID, dup.ID)
	assert.Equal(t, "Premium (Copy)", dup.Name)
	assert.Equal(t, string(models.PlanInactive), dup.Status)
	assert.Equal(t, plan.DurationDays, dup.DurationDays)
	assert.Equal(t, plan.Price, dup.Price)
	assert.Equal(t, []string(plan.Features), []string(dup.Features))
}

func TestDeletePlanInUse(t *testing.T) {
	f := newFixture(t)
	used := f.plan(t, "Monthly", 30, 30)
	unused := f.plan(t, "Weekly", 7, 10)
	f.member(t, used, date(2024, 1, 1))
	svc := NewPlanService(f.store, nil, 0)
	ctx := context.Background()

	err := svc.DeletePlan(ctx, used.ID)
	var ie *InvalidStateError
	require.ErrorAs(t, err, &ie)
	_, err = svc.GetPlan(ctx, used.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.DeletePlan(ctx, unused.ID))
	var nf *NotFoundError
	assert.ErrorAs(t, svc.DeletePlan(ctx, unused.ID), &nf)
}

func TestBulkDeleteReportsSkippedPlans(t *testing.T) {
	f := newFixture(t)
	used := f.plan(t, "Monthly", 30, 30)
	a := f.plan(t, "A", 7, 10)
	b := f.plan(t, "B", 7, 10)
	f.member(t, used, date(2024, 1, 1))
	svc := NewPlanService(f.store, nil, 0)

	result, err := svc.BulkDelete(context.Background(), []uint{a.ID, used.ID, 999, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, result.Deleted)
	assert.Len(t, result.Skipped, 2)
	assert.Contains(t, result.Skipped[used.ID], "assigned to 1 member")
	assert.Contains(t, result.Skipped[999], "not found")

	_, err = svc.BulkDelete(context.Background(), nil)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBulkDeleteAbortsOnDatastoreFailure(t *testing.T) {
	f := newFixture(t)
	a := f.plan(t, "A", 7, 10)
	svc := NewPlanService(f.store, nil, 0)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	result, err := svc.BulkDelete(context.Background(), []uint{a.ID})
	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.Nil(t, result)
}

func TestListPlansByStatus(t *testing.T) {
	f := newFixture(t)
	f.plan(t, "A", 7, 10)
	b := f.plan(t, "B", 7, 10)
	svc := NewPlanService(f.store, nil, 0)
	ctx := context.Background()

	updated, err := svc.BulkSetStatus(ctx, []uint{b.ID}, string(models.PlanInactive))
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	inactive, err := svc.ListPlans(ctx, string(models.PlanInactive))
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "B", inactive[0].Name)

	all, err := svc.ListPlans(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListPlans(ctx, "archived")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
