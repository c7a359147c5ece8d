package book

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateCandidate checks a decoded request body and returns the typed
// record. Checks run in a fixed order and the first failure is returned.
// A present id is passed through unchecked; its format belongs to the
// storage engine.
func ValidateCandidate(payload any) (Book, error) {
	obj, ok := payload.(map[string]any)
	if !ok || obj == nil {
		return Book{}, ErrInvalidPayload
	}

	var (
		b   Book
		err error
	)
	if b.Name, err = requiredString(obj, "name", "Name is required"); err != nil {
		return Book{}, err
	}
	if b.Author, err = requiredString(obj, "author", "Author is required"); err != nil {
		return Book{}, err
	}
	if b.Description, err = requiredString(obj, "description", "Description is required"); err != nil {
		return Book{}, err
	}

	price, ok := toFloat(obj["price"])
	if !ok || validate.Var(price, "gte=0") != nil {
		return Book{}, invalidField("price", "Price is required and must be a non-negative number")
	}
	b.Price = price

	image, ok := obj["image"].(string)
	if !ok || !utf8.ValidString(image) {
		return Book{}, invalidField("image", "Image must be a string")
	}
	b.Image = image

	if v, present := obj["stock"]; present && v != nil {
		n, ok := toFloat(v)
		if !ok || n != math.Trunc(n) || n > math.MaxInt32 || validate.Var(n, "gte=0") != nil {
			return Book{}, invalidField("stock", "Stock must be a non-negative integer")
		}
		stock := int(n)
		b.Stock = &stock
	}

	switch id := obj["id"].(type) {
	case nil:
	case string:
		b.ID = id
	default:
		b.ID = fmt.Sprint(id)
	}
	return b, nil
}

func requiredString(obj map[string]any, field, message string) (string, error) {
	s, ok := obj[field].(string)
	if !ok || !utf8.ValidString(s) || validate.Var(strings.TrimSpace(s), "required") != nil {
		return "", invalidField(field, message)
	}
	return s, nil
}
