package mailer

import "fmt"

// PasswordReset is the message carrying a reset link. resetURL already contains the token.
func PasswordReset(to, resetURL string) Message {
	return Message{
		To:      to,
		Subject: "Jobboard password recovery",
		Body: fmt.Sprintf("Your password reset link is as follows:\n\n%s\n\n"+
			"If you have not requested this email, then ignore it.", resetURL),
	}
}
