package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvider_CanTransition(t *testing.T) {
	assert.True(t, ProviderCredentials.CanTransition(ProviderHybrid))

	assert.False(t, ProviderGoogle.CanTransition(ProviderHybrid))
	assert.False(t, ProviderHybrid.CanTransition(ProviderCredentials))
	assert.False(t, ProviderHybrid.CanTransition(ProviderGoogle))
	assert.False(t, ProviderCredentials.CanTransition(ProviderGoogle))
	assert.False(t, ProviderGoogle.CanTransition(ProviderCredentials))
}

func TestUser_HasPassword(t *testing.T) {
	assert.False(t, (&User{}).HasPassword())
	assert.True(t, (&User{Password: "$2a$10$hash"}).HasPassword())
}
