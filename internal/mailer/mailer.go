package mailer

// Mailer delivers one-time verification codes. Implementations return an
// error on delivery failure; the caller surfaces it to the user instead of
// retrying.
type Mailer interface {
	SendSignupCode(toEmail, toName, code string) error
	SendPasswordResetCode(toEmail, toName, code string) error
}

const (
	signupSubject = "Verify Your Email Address"
	resetSubject  = "Your Password Reset Code"
)
