package auth

import (
	"testing"

	"drively-backend/internal/constants"
	"drively-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func TestRegisterUser(t *testing.T) {
	db := setupDB(t)
	u, err := RegisterUser(db, RegisterInput{
		Fullname: "Ada Renter",
		Email:    "ada@example.com",
		Password: "secret123!",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.Renter, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123!")))

	_, err = RegisterUser(db, RegisterInput{Fullname: "Dup", Email: "ada@example.com", Password: "secret123!"})
	assert.Equal(t, ErrEmailTaken, err)
}

func TestRegisterUser_Validation(t *testing.T) {
	db := setupDB(t)
	_, err := RegisterUser(db, RegisterInput{Fullname: "A", Email: "", Password: "x"})
	assert.Equal(t, ErrEmailPasswordRequired, err)
	_, err = RegisterUser(db, RegisterInput{Fullname: "", Email: "a@b.com", Password: "x"})
	assert.Equal(t, ErrFullnameRequired, err)
	_, err = RegisterUser(db, RegisterInput{Fullname: "A", Email: "not-an-email", Password: "secret123!"})
	assert.Equal(t, ErrInvalidEmail, err)
	_, err = RegisterUser(db, RegisterInput{Fullname: "A", Email: "a@b.com", Password: "short1!"})
	assert.Equal(t, ErrWeakPassword, err)
	_, err = RegisterUser(db, RegisterInput{Fullname: "A", Email: "a@b.com", Password: "letters only here"})
	assert.Equal(t, ErrWeakPassword, err)
	_, err = RegisterUser(db, RegisterInput{Fullname: "A", Email: "a@b.com", Password: "secret123!", Role: constants.Operator})
	assert.Equal(t, ErrInvalidRole, err)
}

func TestLoginUser(t *testing.T) {
	db := setupDB(t)
	_, err := RegisterUser(db, RegisterInput{
		Fullname: "Bo Owner",
		Email:    "bo@example.com",
		Password: "hunter2!hunter2",
		Role:     constants.Owner,
	})
	require.NoError(t, err)

	u, err := LoginUser(db, LoginInput{Email: "bo@example.com", Password: "hunter2!hunter2"})
	require.NoError(t, err)
	assert.Equal(t, constants.Owner, u.Role)

	_, err = LoginUser(db, LoginInput{Email: "bo@example.com", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)
	_, err = LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, ErrInvalidEmail, err)
	_, err = LoginUser(db, LoginInput{Email: "", Password: ""})
	assert.Equal(t, ErrEmailPasswordRequired, err)
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"fullname": "Test",
		"email":    "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":  "550e8400-e29b-41d4-a716-446655440000",
		"fullname": "Test User",
		"email":    "test@example.com",
		"role":     "renter",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "Test User", u.Fullname)
	assert.Equal(t, "test@example.com", u.Email)
	assert.Equal(t, "renter", u.Role)
}
