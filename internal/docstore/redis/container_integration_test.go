//go:build integration

package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	docredis "expenses/internal/docstore/redis"
	"expenses/pkg/platform/sentinel"
	"expenses/pkg/testutil/containers"
)

type RedisContainerSuite struct {
	suite.Suite
	redis     *containers.RedisContainer
	container *docredis.Container
}

func TestRedisContainerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisContainerSuite))
}

func (s *RedisContainerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.container = docredis.New(s.redis.Client.Client, "expenses")
}

func (s *RedisContainerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisContainerSuite) TestCreateReadConflict() {
	ctx := context.Background()
	s.Require().NoError(s.container.Create(ctx, "a", "a", []byte(`{"id":"a"}`)))

	body, err := s.container.Read(ctx, "a", "a")
	s.Require().NoError(err)
	s.JSONEq(`{"id":"a"}`, string(body))

	err = s.container.Create(ctx, "a", "a", []byte(`{}`))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *RedisContainerSuite) TestReadMissing() {
	_, err := s.container.Read(context.Background(), "missing", "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisContainerSuite) TestListKeepsCreationOrder() {
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		s.Require().NoError(s.container.Create(ctx, id, id, []byte(`"`+id+`"`)))
	}
	s.Require().NoError(s.container.Upsert(ctx, "c", "c", []byte(`"c2"`)))

	bodies, err := s.container.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(bodies, 3)
	s.Equal(`"c2"`, string(bodies[0]))
	s.Equal(`"a"`, string(bodies[1]))
	s.Equal(`"b"`, string(bodies[2]))
}

func (s *RedisContainerSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.container.Create(ctx, "a", "a", []byte(`{}`)))
	s.Require().NoError(s.container.Delete(ctx, "a", "a"))
	s.Require().NoError(s.container.Delete(ctx, "a", "a"))

	bodies, err := s.container.ListAll(ctx)
	s.Require().NoError(err)
	s.Empty(bodies)
}

func (s *RedisContainerSuite) TestHealth() {
	s.NoError(s.container.Health(context.Background()))
}

func (s *RedisContainerSuite) TestConflictLeavesIndexUntouched() {
	ctx := context.Background()
	s.Require().NoError(s.container.Create(ctx, "a", "a", []byte(`"first"`)))
	s.Require().ErrorIs(s.container.Create(ctx, "a", "a", []byte(`"second"`)), sentinel.ErrConflict)

	n, err := s.redis.Client.ZCard(ctx, "docs:{expenses}:index").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	bodies, err := s.container.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(bodies, 1)
	s.Equal(`"first"`, string(bodies[0]))
}

func (s *RedisContainerSuite) TestUpsertOfNewDocumentIsListed() {
	ctx := context.Background()
	s.Require().NoError(s.container.Upsert(ctx, "a", "a", []byte(`"a"`)))
	s.Require().NoError(s.container.Create(ctx, "b", "b", []byte(`"b"`)))
	s.Require().NoError(s.container.Upsert(ctx, "a", "a", []byte(`"a2"`)))

	bodies, err := s.container.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(bodies, 2)
	s.Equal(`"a2"`, string(bodies[0]))
	s.Equal(`"b"`, string(bodies[1]))
}
