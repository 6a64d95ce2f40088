package config

const (
	defaultBaseURL              = "http://localhost:3001"
	defaultEndpointPath         = "/api/analyze-video"
	defaultDefaultFPS           = 1.0
	defaultMinFPS               = 0.1
	defaultMaxFPS               = 10.0
	defaultPlayerBinary         = "mpv"
	defaultProbeBinary          = "ffprobe"
	defaultPlayerVolume         = 0.8
	defaultPlayerSocketDir      = "~/.cache/sportanalyzer/player"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// DefaultPrompt is submitted when the user leaves the prompt blank.
const DefaultPrompt = `This is me playing basketball slowed down.
Tell me how many shots I made tell me how many lay ups I made tell me how many three-pointers I made
tell me how many shots I missed and tell me from where I made shots as well and tell me the steps on
which made the shot and missed the shot
On every shot. Give me feedback like you're Michael Jordan.
go at 1 fps`

// DefaultAcceptedExtensions lists the video containers accepted for analysis.
func DefaultAcceptedExtensions() []string {
	return []string{".mp4", ".avi", ".mov", ".mkv", ".webm"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL:      defaultBaseURL,
			EndpointPath: defaultEndpointPath,
		},
		Analysis: Analysis{
			DefaultPrompt:      DefaultPrompt,
			DefaultFPS:         defaultDefaultFPS,
			MinFPS:             defaultMinFPS,
			MaxFPS:             defaultMaxFPS,
			AcceptedExtensions: DefaultAcceptedExtensions(),
			ProbeBinary:        defaultProbeBinary,
		},
		Player: Player{
			Binary:        defaultPlayerBinary,
			DefaultVolume: defaultPlayerVolume,
			SocketDir:     defaultPlayerSocketDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Complete:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
