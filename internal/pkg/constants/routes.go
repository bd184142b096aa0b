package constants

// Static route constants
const (
	ActivateRoute       = "/activate"
	ForgotPasswordRoute = "/forgot-password"
	ResetPasswordRoute  = "/reset-password"
	InterviewRoute      = "/interview"
	WebhookRoute        = "/webhooks/razorpay"
)
