package catalog

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestBook_Validate(t *testing.T) {
	tests := []struct {
		name    string
		book    Book
		wantErr bool
	}{
		{name: "valid", book: Book{Title: "Dune", Author: "Herbert", Pages: 412, Language: "en"}},
		{name: "missing title", book: Book{Title: " ", Pages: 10, Language: "en"}, wantErr: true},
		{name: "zero pages", book: Book{Title: "T", Pages: 0, Language: "fr"}, wantErr: true},
		{name: "unsupported language", book: Book{Title: "T", Pages: 1, Language: "de"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.book.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBook) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidBook)
			}
		})
	}
}

func TestService_Lifecycle(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	dune, err := s.Create(ctx, Book{Title: "Dune", Author: "Frank Herbert", Pages: 412, Language: "en"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(ctx, Book{Title: "L'Étranger", Author: "Camus", Pages: 159, Language: "fr"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got := s.List(ctx, ""); len(got) != 2 || got[0].ID != dune.ID {
		t.Fatalf("List() = %+v, want 2 books ordered by id", got)
	}
	if got := s.List(ctx, "herbert"); len(got) != 1 || got[0].Title != "Dune" {
		t.Errorf("List(herbert) = %+v, want Dune", got)
	}

	got, err := s.Get(ctx, dune.ID)
	if err != nil || got.Title != "Dune" {
		t.Errorf("Get() = %+v, %v", got, err)
	}

	if err := s.Delete(ctx, dune.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, dune.ID); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("Get() after delete error = %v, want %v", err, ErrBookNotFound)
	}
	if err := s.Delete(ctx, dune.ID); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, ErrBookNotFound)
	}
}

func TestList_OrderedByIDAtExtremes(t *testing.T) {
	s := NewService()
	for _, id := range []int64{math.MaxInt64, 1, math.MinInt64 + 1} {
		s.books[id] = Book{ID: id, Title: "t", Pages: 1, Language: "en"}
	}

	got := s.List(context.Background(), "")
	want := []int64{math.MinInt64 + 1, 1, math.MaxInt64}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d books, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
}
