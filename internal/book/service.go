package book

import (
	"context"
	"log/slog"
)

// Service provides the catalogue operations. Validation failures are
// detected before any storage call.
type Service struct {
	repo   Repository
	ids    IDCodec
	logger *slog.Logger
}

// NewService creates a new book service.
func NewService(repo Repository, ids IDCodec, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ids: ids, logger: logger}
}

// List returns the books matching rawFilters (see ParseFilters).
func (s *Service) List(ctx context.Context, rawFilters any) ([]Book, error) {
	spec, err := ParseFilters(rawFilters)
	if err != nil {
		return nil, &Error{Kind: KindFilter, Message: "Invalid filters", Err: err}
	}
	books, err := s.repo.Find(ctx, Translate(spec))
	if err != nil {
		return nil, s.storageFailure(ctx, "list", "", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	canonical, ok := s.ids.Canonical(id)
	if !ok {
		return Book{}, invalidID(id)
	}
	b, err := s.repo.FindByID(ctx, canonical)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return Book{}, notFound(canonical)
		}
		return Book{}, s.storageFailure(ctx, "get", canonical, err)
	}
	return b, nil
}

// CreateOrUpdate validates payload and stores it. A payload carrying an id
// is upserted under that id; otherwise a new record is inserted and
// created is true.
func (s *Service) CreateOrUpdate(ctx context.Context, payload any) (id string, created bool, err error) {
	b, err := ValidateCandidate(payload)
	if err != nil {
		return "", false, validationError(err)
	}

	if b.ID == "" {
		id, err := s.repo.Insert(ctx, b)
		if err != nil {
			return "", false, s.storageFailure(ctx, "create", "", err)
		}
		s.logger.DebugContext(ctx, "book created", "id", id)
		return id, true, nil
	}

	canonical, ok := s.ids.Canonical(b.ID)
	if !ok {
		return "", false, invalidID(b.ID)
	}
	b.ID = canonical
	if err := s.repo.Upsert(ctx, canonical, b); err != nil {
		return "", false, s.storageFailure(ctx, "update", canonical, err)
	}
	s.logger.DebugContext(ctx, "book upserted", "id", canonical)
	return canonical, false, nil
}

// Remove deletes the book with the given id.
func (s *Service) Remove(ctx context.Context, id string) error {
	canonical, ok := s.ids.Canonical(id)
	if !ok {
		return invalidID(id)
	}
	n, err := s.repo.Delete(ctx, canonical)
	if err != nil {
		return s.storageFailure(ctx, "delete", canonical, err)
	}
	if n == 0 {
		return notFound(canonical)
	}
	return nil
}

func (s *Service) storageFailure(ctx context.Context, op, id string, err error) error {
	s.logger.ErrorContext(ctx, "storage call failed", "op", op, "id", id, "error", err)
	return storageFailure(op, id, err)
}

func validationError(err error) error {
	e := &Error{Kind: KindValidation, Message: "Invalid book", Err: err}
	if fe, ok := err.(*Error); ok {
		e.Field = fe.Field
		e.Message = fe.Message
	}
	return e
}
