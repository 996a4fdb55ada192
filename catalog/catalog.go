// Package catalog is the books resource served behind the access guard.
// It keeps books in memory.
package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrBookNotFound indicates no book has the requested id.
	ErrBookNotFound = errors.New("catalog: book not found")

	// ErrInvalidBook indicates a book failed validation.
	ErrInvalidBook = errors.New("catalog: invalid book")
)

// Book is a catalog entry.
type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Pages    int    `json:"numberOfPages"`
	Language string `json:"language"`
}

// Languages lists the supported book languages.
var Languages = []string{"en", "fr"}

// Validate reports whether b can be stored.
func (b Book) Validate() error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	case b.Pages < 1:
		return fmt.Errorf("%w: numberOfPages must be positive", ErrInvalidBook)
	case !slices.Contains(Languages, b.Language):
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidBook, b.Language)
	}
	return nil
}

// Service stores books.
type Service struct {
	mu     sync.RWMutex
	books  map[int64]Book
	nextID int64
}

// NewService creates an empty catalog.
func NewService() *Service {
	return &Service{books: make(map[int64]Book)}
}

// List returns all books ordered by id. A non-empty search matches title or
// author case-insensitively.
func (s *Service) List(_ context.Context, search string) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Book) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Get returns the book with id.
func (s *Service) Get(_ context.Context, id int64) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return Book{}, fmt.Errorf("%w: %d", ErrBookNotFound, id)
	}
	return b, nil
}

// Create validates and stores b under a fresh id.
func (s *Service) Create(_ context.Context, b Book) (Book, error) {
	if err := b.Validate(); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	b.ID = s.nextID
	s.books[b.ID] = b
	return b, nil
}

// Delete removes the book with id.
func (s *Service) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return fmt.Errorf("%w: %d", ErrBookNotFound, id)
	}
	delete(s.books, id)
	return nil
}
