package form_test

import (
	"context"
	"testing"

	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDraftStore(t *testing.T) {
	testhelpers.RequireContainers(t, testhelpers.ContainerOptions{Redis: true})

	tc, err := testhelpers.CreateTestContainers(t, testhelpers.ContainerOptions{Redis: true})
	require.NoError(t, err)
	t.Cleanup(func() { tc.Terminate(t) })

	client := redis.NewClient(&redis.Options{Addr: tc.RedisAddr})
	t.Cleanup(func() { _ = client.Close() })

	store := form.NewRedisDraftStore(client)
	ctx := context.Background()

	_, _, err = store.Load(ctx, "tester")
	assert.ErrorIs(t, err, form.ErrDraftNotFound)

	v1, err := store.Save(ctx, "tester", form.Values{"applicationName": "first"}, nil)
	require.NoError(t, err)
	v2, err := store.Save(ctx, "tester", form.Values{"applicationName": "second"}, nil)
	require.NoError(t, err)
	assert.Equal(t, v1+1, v2)

	values, version, err := store.Load(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, v2, version)
	assert.Equal(t, "second", values["applicationName"])

	stale := v1
	_, err = store.Save(ctx, "tester", form.Values{"applicationName": "stale"}, &stale)
	assert.ErrorIs(t, err, form.ErrVersion)

	current := v2
	v3, err := store.Save(ctx, "tester", form.Values{"applicationName": "third"}, &current)
	require.NoError(t, err)
	assert.Equal(t, v2+1, v3)

	exists, err := client.Exists(ctx, form.DraftKeyPrefix+"tester").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, exists)
}
