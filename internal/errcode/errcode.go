package errcode

// Error code convention:
// - 0: no error
// - 4xxx: caller errors, safe to surface and not worth retrying as-is
// - 5xxx: system errors, safe to retry because nothing was partially applied
const (
	OK               = 0
	ValidationFailed = 4000
	Unauthorized     = 4001
	NotFound         = 4004
	Conflict         = 4009
	RateLimited      = 4029
	SystemError      = 5000
	GenerationFailed = 5020
	Unavailable      = 5030
)
