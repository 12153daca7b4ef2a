package commands

// CLI-specific constants
const (
	// DefaultPanelPort is the localhost port the panel bridge binds.
	DefaultPanelPort = 8711

	// DefaultTranscriptLimit caps `transcript list` output.
	DefaultTranscriptLimit = 20

	// TimestampFormat renders transcript timestamps.
	TimestampFormat = "2006-01-02 15:04"
)

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrTranscriptUnavailable    = "transcript store unavailable"
	ErrQueryRequired            = "--query required"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoTranscript       = "No transcript recorded yet."
)
