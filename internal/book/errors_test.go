package book

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", notFound("abc"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidID)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestError_String(t *testing.T) {
	cause := errors.New("connection refused")
	assert.Equal(t, "list: storage failure: connection refused",
		storageFailure("list", "", cause).Error())
	assert.Equal(t, "not found id=abc: Book not found", notFound("abc").Error())

	e := validationError(invalidField("price", "Price is required and must be a non-negative number"))
	assert.Equal(t, "validation error (price): Price is required and must be a non-negative number", e.Error())
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, storageFailure("get", "x", cause), cause)
}

func TestIDCodecs(t *testing.T) {
	t.Run("uuid", func(t *testing.T) {
		id, ok := UUIDCodec{}.Canonical("3F2504E0-4F89-11D3-9A0C-0305E82C3301")
		assert.True(t, ok)
		assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", id)

		for _, bad := range []string{"", "123", "507f1f77bcf86cd799439011", "zzzzzzzz-4f89-11d3-9a0c-0305e82c3301"} {
			_, ok := UUIDCodec{}.Canonical(bad)
			assert.False(t, ok, bad)
		}
	})

	t.Run("object id", func(t *testing.T) {
		id, ok := ObjectIDCodec{}.Canonical("507F1F77BCF86CD799439011")
		assert.True(t, ok)
		assert.Equal(t, "507f1f77bcf86cd799439011", id)

		for _, bad := range []string{"", "123", "507f1f77bcf86cd79943901g", "3f2504e0-4f89-11d3-9a0c-0305e82c3301"} {
			_, ok := ObjectIDCodec{}.Canonical(bad)
			assert.False(t, ok, bad)
		}
	})
}
