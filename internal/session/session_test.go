package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	userID := primitive.NewObjectID()
	user := &entity.User{
		ID:       userID,
		Username: "alice",
		Email:    "alice@example.com",
		Provider: entity.ProviderCredentials,
	}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email)
	require.NotNil(t, claims.Username)
	assert.Equal(t, "alice", *claims.Username)
	assert.Equal(t, "credentials", claims.Provider)
}

func TestManager_NilUsernameForUnnamedAccount(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	user := &entity.User{
		ID:       primitive.NewObjectID(),
		Email:    "alice@example.com",
		Provider: entity.ProviderGoogle,
	}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Nil(t, claims.Username)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	user := &entity.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}

	token, err := m.Issue(user)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)
	user := &entity.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
