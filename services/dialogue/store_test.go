package dialogue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotelbot/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisBackend) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisBackend(client, ttl)
}

func backends(t *testing.T) map[string]StateBackend {
	_, rb := setupMiniRedis(t, time.Hour)
	return map[string]StateBackend{
		"memory": NewMemoryBackend(),
		"redis":  rb,
	}
}

func TestStateBackends(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := backend.Load(ctx, "u1")
			assert.ErrorIs(t, err, ErrStateNotFound)

			st := models.NewConversationState("u1", testToday)
			created, err := backend.Create(ctx, st)
			require.NoError(t, err)
			assert.True(t, created)

			created, err = backend.Create(ctx, models.NewConversationState("u1", testToday))
			require.NoError(t, err)
			assert.False(t, created)

			r := stay(1, 2)
			st.CurrentIntent = models.IntentBooking
			st.Slots.Dates = &r
			st.Slots.Guest = &models.GuestInfo{Name: "Jane", Email: "jane@example.com", Adults: 2}
			require.NoError(t, backend.Save(ctx, st))

			loaded, err := backend.Load(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, models.IntentBooking, loaded.CurrentIntent)
			require.NotNil(t, loaded.Slots.Dates)
			assert.True(t, loaded.Slots.Dates.CheckIn.Equal(r.CheckIn))
			assert.Equal(t, 2, loaded.Slots.Guest.Adults)

			require.NoError(t, backend.Delete(ctx, "u1"))
			_, err = backend.Load(ctx, "u1")
			assert.ErrorIs(t, err, ErrStateNotFound)
		})
	}
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	st := models.NewConversationState("u1", testToday)
	st.Slots.Guest = &models.GuestInfo{Name: "Jane"}
	require.NoError(t, b.Save(ctx, st))

	st.Slots.Guest.Name = "mutated"
	loaded, err := b.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", loaded.Slots.Guest.Name)

	loaded.CurrentIntent = models.IntentBooking
	again, _ := b.Load(ctx, "u1")
	assert.Equal(t, models.IntentNone, again.CurrentIntent)
}

func TestRedisBackend_KeyAndTTL(t *testing.T) {
	mr, rb := setupMiniRedis(t, 30*time.Minute)
	ctx := context.Background()
	require.NoError(t, rb.Save(ctx, models.NewConversationState("ig-123", testToday)))

	assert.True(t, mr.Exists("hotelbot:conv:ig-123"))
	assert.Equal(t, 30*time.Minute, mr.TTL("hotelbot:conv:ig-123"))

	mr.FastForward(31 * time.Minute)
	_, err := rb.Load(ctx, "ig-123")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStore_LoadOrCreateIsAtomicPerUser(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStateStore(backend)
			ctx := context.Background()

			var wg sync.WaitGroup
			created := make([]time.Time, 20)
			for i := range created {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					st, err := store.LoadOrCreate(ctx, "same-user")
					if assert.NoError(t, err) {
						created[i] = st.CreatedAt
					}
				}(i)
			}
			wg.Wait()

			for _, c := range created[1:] {
				assert.True(t, c.Equal(created[0]))
			}
		})
	}
}

func TestStateStore_LockSerialisesOneUserOnly(t *testing.T) {
	store := NewStateStore(NewMemoryBackend())
	ctx := context.Background()

	unlockA, err := store.Lock(ctx, "a")
	require.NoError(t, err)

	// A different user is not blocked.
	unlockB, err := store.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()

	// The same user waits until released.
	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		unlock, err := store.Lock(ctx, "a")
		if err == nil {
			acquired.Store(true)
			unlock()
		}
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, acquired.Load())
	unlockA()
	<-done
	assert.True(t, acquired.Load())

	store.mu.Lock()
	assert.Empty(t, store.locks)
	store.mu.Unlock()
}

func TestStateStore_LockHonoursContext(t *testing.T) {
	store := NewStateStore(NewMemoryBackend())
	unlock, err := store.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = store.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStateStore_SaveStampsUpdatedAt(t *testing.T) {
	store := NewStateStore(NewMemoryBackend())
	stamp := testToday.Add(5 * time.Hour)
	store.now = func() time.Time { return stamp }

	st, err := store.LoadOrCreate(context.Background(), "u")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), st))

	got, err := store.Get(context.Background(), "u")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(stamp))
}
