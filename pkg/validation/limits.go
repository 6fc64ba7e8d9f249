package validation

// HTTP body limits
const (
	// MaxBodySize caps JSON request bodies (64 KB).
	MaxBodySize = 64 * 1024

	// MaxUploadSize caps multipart uploads forwarded to conversion services (50 MB).
	MaxUploadSize = 50 << 20
)

// String element length limits
const (
	// MaxPathLength bounds a requested post-login path.
	MaxPathLength = 2048

	// MaxEmailLength bounds login e-mail addresses.
	MaxEmailLength = 254

	// MaxPasswordLength matches bcrypt's input limit.
	MaxPasswordLength = 72

	// MaxMenuLength bounds usage log menu identifiers.
	MaxMenuLength = 200
)
