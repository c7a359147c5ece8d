package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract drives a Service over a real, empty store. foreignID
// is well formed for some other engine and must be rejected.
func runRepositoryContract(t *testing.T, newService func(t *testing.T) *Service, foreignID string) {
	ctx := context.Background()

	seed := func(t *testing.T, svc *Service, name, author string, price float64) string {
		t.Helper()
		p := validPayload()
		p["name"] = name
		p["author"] = author
		p["price"] = price
		id, created, err := svc.CreateOrUpdate(ctx, p)
		require.NoError(t, err)
		require.True(t, created)
		return id
	}

	names := func(books []Book) []string {
		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.Name
		}
		return out
	}

	t.Run("lifecycle", func(t *testing.T) {
		svc := newService(t)

		id, created, err := svc.CreateOrUpdate(ctx, validPayload())
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, id)

		books, err := svc.List(ctx, `[{"from":10,"to":20}]`)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, Book{
			ID: id, Name: "Dune", Author: "Frank Herbert", Description: "Sci-fi", Price: 15, Image: "dune.jpg",
		}, books[0])

		update := validPayload()
		update["id"] = id
		update["price"] = 18.0
		update["stock"] = 4
		gotID, created, err := svc.CreateOrUpdate(ctx, update)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, id, gotID)

		b, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 18.0, b.Price)
		require.NotNil(t, b.Stock)
		assert.Equal(t, 4, *b.Stock)

		all, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, svc.Remove(ctx, id))
		assert.ErrorIs(t, svc.Remove(ctx, id), ErrNotFound)

		_, err = svc.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("upsert of absent id inserts", func(t *testing.T) {
		svc := newService(t)
		id := seed(t, svc, "Placeholder", "Nobody", 1)
		require.NoError(t, svc.Remove(ctx, id))

		p := validPayload()
		p["id"] = id
		gotID, created, err := svc.CreateOrUpdate(ctx, p)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, id, gotID)

		b, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Name)
	})

	t.Run("filter semantics", func(t *testing.T) {
		svc := newService(t)
		seed(t, svc, "Dune", "Frank Herbert", 15)
		seed(t, svc, "Cheap Reads", "Anon", 3)
		seed(t, svc, "Atlas", "Ursula Le Guin", 25)

		tests := []struct {
			name    string
			filters string
			want    []string
		}{
			{"no groups", `[]`, []string{"Atlas", "Cheap Reads", "Dune"}},
			{"closed range", `[{"from":10,"to":20}]`, []string{"Dune"}},
			{"inclusive bounds", `[{"from":15,"to":15}]`, []string{"Dune"}},
			{"either side", `[{"from":20},{"to":5}]`, []string{"Atlas", "Cheap Reads"}},
			{"only empty groups", `[{},{}]`, []string{"Atlas", "Cheap Reads", "Dune"}},
			{"empty group adds nothing", `[{"to":5},{}]`, []string{"Cheap Reads"}},
			{"name substring", `[{"name":"un"}]`, []string{"Dune"}},
			{"case sensitive", `[{"name":"dune"}]`, []string{}},
			{"author and range", `[{"author":"Guin","from":20}]`, []string{"Atlas"}},
			{"author and range miss", `[{"author":"Guin","to":20}]`, []string{}},
			{"regex characters are literal", `[{"name":"D.ne"}]`, []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				books, err := svc.List(ctx, tt.filters)
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(books))
			})
		}
	})

	t.Run("malformed ids", func(t *testing.T) {
		svc := newService(t)
		for _, id := range []string{"123", "", foreignID} {
			_, err := svc.Get(ctx, id)
			assert.ErrorIs(t, err, ErrInvalidID, id)
			assert.ErrorIs(t, svc.Remove(ctx, id), ErrInvalidID, id)
		}
	})
}
