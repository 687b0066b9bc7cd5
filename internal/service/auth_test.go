package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/course-platform/internal/apperror"
	"github.com/sakif/course-platform/internal/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *UserService, *auth.TokenService) {
	t.Helper()
	users := newFakeUserRepo()
	passwords := auth.NewPasswordServiceForTest()
	tokens := testTokenService(t)
	logger := testLogger()

	authSvc := NewAuthService(users, tokens, passwords, logger)
	userSvc := NewUserService(users, &fakeInteractionRepo{}, passwords, logger)
	return authSvc, userSvc, tokens
}

// =========================================================================
// PASSWORD LOGIN TESTS
// =========================================================================

func TestLogin(t *testing.T) {
	authSvc, userSvc, tokens := newTestAuthService(t)
	user := registerTestUser(t, userSvc, "alice")

	result, err := authSvc.Login(context.Background(), "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if result.User.ID != user.ID {
		t.Errorf("result user = %q, want %q", result.User.ID, user.ID)
	}
	if result.Token == "" {
		t.Fatal("Login() returned an empty token")
	}

	// the issued token must resolve back to the user
	subject, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() on issued token error = %v", err)
	}
	if subject != user.ID {
		t.Errorf("token subject = %q, want %q", subject, user.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	authSvc, userSvc, _ := newTestAuthService(t)
	registerTestUser(t, userSvc, "bob")

	_, err := authSvc.Login(context.Background(), "bob", "not the password")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	// the hash lookup runs before the password check, so an unknown
	// username is NotFound, not Unauthorized
	authSvc, _, _ := newTestAuthService(t)

	_, err := authSvc.Login(context.Background(), "nobody", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Login() error = %v, want ErrNotFound", err)
	}
}

func TestLogin_GitHubOnlyAccount(t *testing.T) {
	authSvc, _, _ := newTestAuthService(t)

	ghUser := &auth.GitHubUser{ID: 77, Login: "octocat", Email: "octo@example.com"}
	if _, err := authSvc.LoginWithGitHub(context.Background(), ghUser); err != nil {
		t.Fatalf("LoginWithGitHub() error = %v", err)
	}

	_, err := authSvc.Login(context.Background(), "octocat", "anything")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Login() on GitHub-only account error = %v, want ErrUnauthorized", err)
	}
}

// =========================================================================
// GITHUB LOGIN TESTS
// =========================================================================

func TestLoginWithGitHub(t *testing.T) {
	authSvc, _, tokens := newTestAuthService(t)

	ghUser := &auth.GitHubUser{ID: 42, Login: "hubber", Email: "hubber@example.com"}

	result, err := authSvc.LoginWithGitHub(context.Background(), ghUser)
	if err != nil {
		t.Fatalf("LoginWithGitHub() error = %v", err)
	}

	if result.User.Username != "hubber" {
		t.Errorf("username = %q, want %q", result.User.Username, "hubber")
	}
	if result.User.GitHubID != 42 {
		t.Errorf("githubID = %d, want 42", result.User.GitHubID)
	}

	subject, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() on issued token error = %v", err)
	}
	if subject != result.User.ID {
		t.Errorf("token subject = %q, want %q", subject, result.User.ID)
	}
}

func TestLoginWithGitHub_Idempotent(t *testing.T) {
	authSvc, _, _ := newTestAuthService(t)

	ghUser := &auth.GitHubUser{ID: 42, Login: "hubber", Email: "hubber@example.com"}

	first, err := authSvc.LoginWithGitHub(context.Background(), ghUser)
	if err != nil {
		t.Fatalf("first LoginWithGitHub() error = %v", err)
	}
	second, err := authSvc.LoginWithGitHub(context.Background(), ghUser)
	if err != nil {
		t.Fatalf("second LoginWithGitHub() error = %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Errorf("repeat GitHub login created a new account: %q vs %q", first.User.ID, second.User.ID)
	}
}

func TestLoginWithGitHub_UsernameCollision(t *testing.T) {
	// a local account already owns the GitHub login name; the GitHub
	// account falls back to "<login>-<githubID>"
	authSvc, userSvc, _ := newTestAuthService(t)
	local := registerTestUser(t, userSvc, "taken")

	ghUser := &auth.GitHubUser{ID: 9001, Login: "taken", Email: "gh@example.com"}

	result, err := authSvc.LoginWithGitHub(context.Background(), ghUser)
	if err != nil {
		t.Fatalf("LoginWithGitHub() error = %v", err)
	}

	if result.User.ID == local.ID {
		t.Fatal("GitHub login must not take over the local account")
	}
	if result.User.Username != "taken-9001" {
		t.Errorf("username = %q, want %q", result.User.Username, "taken-9001")
	}
}

func TestLoginWithGitHub_NilProfile(t *testing.T) {
	authSvc, _, _ := newTestAuthService(t)

	if _, err := authSvc.LoginWithGitHub(context.Background(), nil); err == nil {
		t.Fatal("LoginWithGitHub(nil) expected an error")
	}
}
