package user

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/gauth/internal/auth"
	"github.com/hitoshi/gauth/internal/model"
	"github.com/hitoshi/gauth/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error

	findCalls   int
	createCalls int
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.findCalls++
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// --- テスト ---

func testProfile() *auth.Profile {
	return &auth.Profile{
		GoogleID: "google-id-1",
		Email:    "hanako@example.com",
		Name:     "Hanako",
		Picture:  "https://example.com/p.png",
	}
}

func TestFindOrCreate_ExistingUser_ReturnsWithoutCreate(t *testing.T) {
	stored := &model.User{
		ID:       "user-1",
		Email:    "hanako@example.com",
		GoogleID: "google-id-1",
		Name:     "旧姓のままの名前",
		Picture:  "https://example.com/old.png",
	}
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return stored, nil
		},
	}
	svc := NewService(repo)

	// プロバイダー側ではname/pictureが変わっている
	profile := testProfile()
	profile.Name = "新しい名前"

	user, created, err := svc.FindOrCreate(context.Background(), profile)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	if created {
		t.Error("existing user should not be reported as created")
	}
	if repo.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", repo.createCalls)
	}
	// 既存レコードはプロバイダーの値で上書きしないこと
	if user.Name != "旧姓のままの名前" {
		t.Errorf("name = %q, should keep stored value", user.Name)
	}
	if user.Picture != "https://example.com/old.png" {
		t.Errorf("picture = %q, should keep stored value", user.Picture)
	}
}

func TestFindOrCreate_NewUser_CreatesWithProfileFields(t *testing.T) {
	var inserted *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			inserted = user
			return nil
		},
	}
	svc := NewService(repo)

	user, created, err := svc.FindOrCreate(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	if !created {
		t.Error("new user should be reported as created")
	}
	if inserted == nil {
		t.Fatal("create should be called")
	}
	if user.ID == "" {
		t.Error("new user should have generated ID")
	}
	if user.Email != "hanako@example.com" {
		t.Errorf("email = %q, want %q", user.Email, "hanako@example.com")
	}
	if user.GoogleID != "google-id-1" {
		t.Errorf("google_id = %q, want %q", user.GoogleID, "google-id-1")
	}
	if user.Name != "Hanako" {
		t.Errorf("name = %q, want %q", user.Name, "Hanako")
	}
	if user.Picture != "https://example.com/p.png" {
		t.Errorf("picture = %q, want %q", user.Picture, "https://example.com/p.png")
	}
	// OAuthアカウントにはパスワードを設定しないこと
	if user.Password != "" {
		t.Errorf("password = %q, want empty for oauth account", user.Password)
	}
	if user.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestFindOrCreate_NilProfile_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	if _, _, err := svc.FindOrCreate(context.Background(), nil); err == nil {
		t.Fatal("nil profile should return error")
	}
}

func TestFindOrCreate_EmptyEmail_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	profile := testProfile()
	profile.Email = ""
	if _, _, err := svc.FindOrCreate(context.Background(), profile); err == nil {
		t.Fatal("empty email should return error")
	}
}

func TestFindOrCreate_UniqueViolation_RetriesLookupOnce(t *testing.T) {
	// 同時初回ログイン: 最初の検索では見つからないが、INSERTで一意制約違反になり、
	// 再検索で先着リクエストが作成したレコードが見つかる。
	winner := &model.User{ID: "user-winner", Email: "hanako@example.com"}
	repo := &mockUserRepo{}
	repo.findByEmailFn = func(ctx context.Context, email string) (*model.User, error) {
		if repo.findCalls == 1 {
			return nil, nil
		}
		return winner, nil
	}
	repo.createFn = func(ctx context.Context, user *model.User) error {
		return &pq.Error{Code: "23505"}
	}
	svc := NewService(repo)

	user, created, err := svc.FindOrCreate(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	if created {
		t.Error("losing request should not be reported as created")
	}
	if user.ID != "user-winner" {
		t.Errorf("user ID = %q, want winner record", user.ID)
	}
	if repo.findCalls != 2 {
		t.Errorf("find calls = %d, want 2 (initial + retry)", repo.findCalls)
	}
}

func TestFindOrCreate_UniqueViolationButRetryMisses_ReturnsError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return &pq.Error{Code: "23505"}
		},
	}
	svc := NewService(repo)

	if _, _, err := svc.FindOrCreate(context.Background(), testProfile()); err == nil {
		t.Fatal("unique violation with missing retry record should return error")
	}
}

func TestFindOrCreate_NonUniqueViolationCreateError_ReturnsError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("connection reset")
		},
	}
	svc := NewService(repo)

	_, _, err := svc.FindOrCreate(context.Background(), testProfile())
	if err == nil {
		t.Fatal("create failure should return error")
	}
	// 一意制約違反以外では再検索しないこと
	if repo.findCalls != 1 {
		t.Errorf("find calls = %d, want 1", repo.findCalls)
	}
}

func TestFindOrCreate_FindFails_ReturnsError(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewService(repo)

	if _, _, err := svc.FindOrCreate(context.Background(), testProfile()); err == nil {
		t.Fatal("find failure should return error")
	}
	if repo.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", repo.createCalls)
	}
}
