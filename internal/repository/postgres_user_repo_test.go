package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestNewPostgresUserRepo_ImplementsUserRepository(t *testing.T) {
	var repo interface{} = NewPostgresUserRepo(nil)
	if _, ok := repo.(UserRepository); !ok {
		t.Fatal("PostgresUserRepo should implement UserRepository")
	}
}

func TestIsUniqueViolation_PqUniqueViolation_ReturnsTrue(t *testing.T) {
	err := &pq.Error{Code: "23505"}
	if !IsUniqueViolation(err) {
		t.Error("pq error 23505 should be detected as unique violation")
	}
}

func TestIsUniqueViolation_WrappedError_ReturnsTrue(t *testing.T) {
	// リポジトリ層でラップされたエラーでも検出できること
	err := fmt.Errorf("failed to insert user: %w", &pq.Error{Code: "23505"})
	if !IsUniqueViolation(err) {
		t.Error("wrapped pq error 23505 should be detected as unique violation")
	}
}

func TestIsUniqueViolation_OtherErrors_ReturnsFalse(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"plain error", errors.New("connection reset")},
		{"other pq code", &pq.Error{Code: "23503"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if IsUniqueViolation(tc.err) {
				t.Errorf("IsUniqueViolation(%v) should be false", tc.err)
			}
		})
	}
}
