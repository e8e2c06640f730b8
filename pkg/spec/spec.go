package spec

var (
	// Each 64 random characters
	r1 = "k3Vd8RwQy1ZnT6pLx0McF5sHb9GjE2uA7iOq4KtD1XeW8vNz5YrP0mSg6BhJ3lC2"
	r2 = "U7fR2tK9yW4qL1pZ8xV3cN6mB0aS5dG7hJ2kE9rT4uI1oP6wQ3zX8vY5nM0bH7jF"
	r3 = "A1sD2fG3hJ4kL5zX6cV7bN8mQ9wE0rT1yU2iO3pP4aS5dF6gH7jK8lZ9xC0vB1nM"

	// MasterKey is r1+r2+r3, locker encryption only
	MasterKey = r1 + r2 + r3
)

const (
	// === IDENTITY & VERSIONING ===
	Version = "1.0.0"

	// === MAGIC NUMBERS (SEALED ASSETS) ===
	SealedMagic = "REAMPA01"
	LockerMagic = "RMPKEY01"

	// === SECURITY & ENGINE SPECS ===
	RandomPasswordLen = 32
	NonceSize         = 12
	SampleRate        = 48000
	Channels          = 2
	FrameMillis       = 20

	Salt = "SALT"

	// === SEALED ASSET TAGS ===
	KeyLocker = "KEYS" // master-encrypted asset password
	AudioData = "AUDI" // length-prefixed encrypted opus frames
	MetaData  = "META" // trailing JSON descriptor

	// === MIME TYPES ===
	MimeMP4    = "audio/mp4"
	MimeOGG    = "audio/ogg"
	MimeMP3    = "audio/mpeg"
	MimeWAV    = "audio/wav"
	MimeFLAC   = "audio/flac"
	MimeSealed = "audio/x-reamp"

	// === EMBEDDING PAGE ===
	PayloadMarker = "application/x-reamp"
)

// PreferredMimes is the fixed source preference order used by the
// track loader before falling back to declaration order.
var PreferredMimes = [...]string{MimeMP4, MimeOGG, MimeMP3}
