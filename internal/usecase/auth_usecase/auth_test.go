package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"agritrace/internal/domain/model"
	"agritrace/internal/infra/memory"
	"agritrace/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mock: AccountRepository
// =====================

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, a *model.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

var _ repository.AccountRepository = (*MockAccountRepository)(nil)

// =====================
// Helper
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqID struct{ n int }

func (g *seqID) NewID() string {
	g.n++
	return []string{"", "acc-1", "acc-2", "acc-3"}[g.n]
}

var testNow = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

// bcryptは最小コストで速くする
func newUsecases(t *testing.T) (*RegisterUsecase, *LoginUsecase) {
	t.Helper()
	store := memory.NewStore()
	issuer, err := NewJWTIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	reg := NewRegisterUsecase(store.Accounts(), NewBcryptPasswordHasher(4), &seqID{}, fixedClock{testNow})
	login := NewLoginUsecase(store.Accounts(), NewBcryptPasswordVerifier(), issuer, fixedClock{testNow})
	return reg, login
}

// =====================
// Register
// =====================

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	reg, _ := newUsecases(t)

	out, err := reg.Execute(ctx, RegisterInput{
		Email:       "farmer@example.com",
		Password:    "green-apples-2024",
		Role:        model.RoleFarmer,
		DisplayName: " Valley Farm ",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", out.Account.ID)
	assert.Equal(t, model.RoleFarmer, out.Account.Role)
	assert.Equal(t, "Valley Farm", out.Account.DisplayName)
	assert.Empty(t, out.Account.PasswordHash)
	assert.True(t, out.Account.CreatedAt.Equal(testNow))
}

func TestRegister_DefaultRoleIsCustomer(t *testing.T) {
	reg, _ := newUsecases(t)

	out, err := reg.Execute(context.Background(), RegisterInput{Email: "c@example.com", Password: "long-enough-pass"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, out.Account.Role)
}

func TestRegister_Validation(t *testing.T) {
	reg, _ := newUsecases(t)

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "long-enough-pass"}, ErrInvalidEmailFormat},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short"}, ErrPasswordTooShort},
		{"weak password", RegisterInput{Email: "a@example.com", Password: "Password1234"}, ErrWeakPassword},
		{"bad role", RegisterInput{Email: "a@example.com", Password: "long-enough-pass", Role: "ADMIN"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Execute(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	reg, _ := newUsecases(t)

	_, err := reg.Execute(ctx, RegisterInput{Email: "dup@example.com", Password: "long-enough-pass"})
	require.NoError(t, err)

	_, err = reg.Execute(ctx, RegisterInput{Email: "dup@example.com", Password: "another-long-pass"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegister_ConflictOnCreate(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	accounts.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, repository.ErrAccountNotFound)
	accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Account) bool {
		return a.Email == "race@example.com" && a.PasswordHash != ""
	})).Return(repository.ErrConflict)

	reg := NewRegisterUsecase(accounts, NewBcryptPasswordHasher(4), &seqID{}, fixedClock{testNow})
	_, err := reg.Execute(ctx, RegisterInput{Email: "race@example.com", Password: "long-enough-pass"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	accounts.AssertExpectations(t)
}

func TestRegister_RepositoryError(t *testing.T) {
	accounts := new(MockAccountRepository)
	boom := errors.New("db down")
	accounts.On("FindByEmail", mock.Anything, "x@example.com").Return(nil, boom)

	reg := NewRegisterUsecase(accounts, NewBcryptPasswordHasher(4), &seqID{}, fixedClock{testNow})
	_, err := reg.Execute(context.Background(), RegisterInput{Email: "x@example.com", Password: "long-enough-pass"})
	assert.ErrorIs(t, err, boom)
}

// =====================
// Login
// =====================

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	reg, login := newUsecases(t)

	_, err := reg.Execute(ctx, RegisterInput{Email: "r@example.com", Password: "fresh-mart-2024", Role: model.RoleRetailer})
	require.NoError(t, err)

	out, err := login.Execute(ctx, LoginInput{Email: "r@example.com", Password: "fresh-mart-2024"})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", out.Account.ID)
	assert.Empty(t, out.Account.PasswordHash)
	assert.Equal(t, 3600, out.Token.ExpiresIn)

	// sub と role がトークンに入っている
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(out.Token.AccessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims["sub"])
	assert.Equal(t, "RETAILER", claims["role"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	reg, login := newUsecases(t)

	_, err := reg.Execute(ctx, RegisterInput{Email: "r@example.com", Password: "fresh-mart-2024"})
	require.NoError(t, err)

	_, err = login.Execute(ctx, LoginInput{Email: "r@example.com", Password: "wrong-password!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = login.Execute(ctx, LoginInput{Email: "nobody@example.com", Password: "fresh-mart-2024"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewJWTIssuer_RequiresSecret(t *testing.T) {
	_, err := NewJWTIssuer("", time.Minute)
	assert.Error(t, err)
}
