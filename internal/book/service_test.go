package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUUID = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"

func newTestService(t *testing.T) (*Service, *MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := NewMockRepository(ctrl)
	return NewService(repo, UUIDCodec{}, nil), repo
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Find(gomock.Any(), Predicate{}).Return(nil, nil)

		books, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("translated predicate", func(t *testing.T) {
		svc, repo := newTestService(t)
		want := Translate(FilterSpec{{From: ptr(10), To: ptr(20)}})
		repo.EXPECT().Find(gomock.Any(), want).Return([]Book{{ID: testUUID, Name: "Dune"}}, nil)

		books, err := svc.List(ctx, `[{"from":10,"to":20}]`)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("bad filters never reach storage", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.List(ctx, `[{"from":"x"}]`)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindFilter, e.Kind)
		assert.Equal(t, "Invalid filters", e.Message)
		assert.ErrorIs(t, e.Err, ErrInvalidFilterFormat)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo := newTestService(t)
		cause := errors.New("connection reset")
		repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, cause)

		_, err := svc.List(ctx, nil)
		assert.Equal(t, KindStorage, KindOf(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().FindByID(gomock.Any(), testUUID).Return(Book{ID: testUUID, Name: "Dune"}, nil)

		b, err := svc.Get(ctx, testUUID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Name)
	})

	t.Run("canonicalizes before lookup", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().FindByID(gomock.Any(), testUUID).Return(Book{ID: testUUID}, nil)

		_, err := svc.Get(ctx, "3F2504E0-4F89-11D3-9A0C-0305E82C3301")
		require.NoError(t, err)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Get(ctx, "123")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().FindByID(gomock.Any(), testUUID).Return(Book{}, ErrNotFound)

		_, err := svc.Get(ctx, testUUID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().FindByID(gomock.Any(), testUUID).Return(Book{}, context.DeadlineExceeded)

		_, err := svc.Get(ctx, testUUID)
		assert.Equal(t, KindStorage, KindOf(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestService_CreateOrUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Insert(gomock.Any(), Book{
			Name: "Dune", Author: "Frank Herbert", Description: "Sci-fi", Price: 15, Image: "dune.jpg",
		}).Return(testUUID, nil)

		id, created, err := svc.CreateOrUpdate(ctx, validPayload())
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, testUUID, id)
	})

	t.Run("upsert with id", func(t *testing.T) {
		svc, repo := newTestService(t)
		p := validPayload()
		p["id"] = testUUID
		p["price"] = 18.0
		repo.EXPECT().Upsert(gomock.Any(), testUUID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, b Book) error {
				assert.Equal(t, 18.0, b.Price)
				assert.Equal(t, testUUID, b.ID)
				return nil
			})

		id, created, err := svc.CreateOrUpdate(ctx, p)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, testUUID, id)
	})

	t.Run("validation failure never reaches storage", func(t *testing.T) {
		svc, _ := newTestService(t)
		p := validPayload()
		p["price"] = -1

		_, _, err := svc.CreateOrUpdate(ctx, p)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindValidation, e.Kind)
		assert.Equal(t, "price", e.Field)
		assert.Equal(t, "Price is required and must be a non-negative number", e.Message)
	})

	t.Run("non-object payload", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _, err := svc.CreateOrUpdate(ctx, []any{})
		assert.Equal(t, KindValidation, KindOf(err))
		assert.ErrorIs(t, errors.Unwrap(err), ErrInvalidPayload)
	})

	t.Run("malformed id never reaches storage", func(t *testing.T) {
		svc, _ := newTestService(t)
		p := validPayload()
		p["id"] = "123"

		_, _, err := svc.CreateOrUpdate(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("numeric id rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		p := validPayload()
		p["id"] = 42.0

		_, _, err := svc.CreateOrUpdate(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("insert failure", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

		_, _, err := svc.CreateOrUpdate(ctx, validPayload())
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindStorage, e.Kind)
		assert.Equal(t, "create", e.Op)
	})
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Delete(gomock.Any(), testUUID).Return(int64(1), nil)
		assert.NoError(t, svc.Remove(ctx, testUUID))
	})

	t.Run("nothing deleted", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Delete(gomock.Any(), testUUID).Return(int64(0), nil)

		err := svc.Remove(ctx, testUUID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _ := newTestService(t)
		assert.ErrorIs(t, svc.Remove(ctx, "not-an-id"), ErrInvalidID)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Delete(gomock.Any(), testUUID).Return(int64(0), errors.New("timeout"))

		err := svc.Remove(ctx, testUUID)
		assert.Equal(t, KindStorage, KindOf(err))
	})
}
