package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPMailerService_IncompleteConfig(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	testCases := []struct {
		name     string
		host     string
		username string
		password string
	}{
		{name: "Missing Host", username: "user", password: "fakepassword"},
		{name: "Missing Username", host: "smtp.example.com", password: "fakepassword"},
		{name: "Missing Password", host: "smtp.example.com", username: "user"},
		{name: "All Missing"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewSMTPMailerService(tc.host, 587, tc.username, tc.password, "sender@example.com", "MyTodo", logger)

			err := svc.SendSignupCode("recipient@example.com", "alice", "123456")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SMTP configuration is incomplete")

			err = svc.SendPasswordResetCode("recipient@example.com", "alice", "123456")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SMTP configuration is incomplete")
		})
	}
}
