package ffmpeg

// MediaInfo contains metadata about a media file
type MediaInfo struct {
	FilePath     string
	Duration     float64 // seconds
	Width        int
	Height       int
	FPS          float64
	Bitrate      int64
	VideoCodec   string
	HasAudio     bool
	AudioCodec   string
	AudioBitrate int64
	SampleRate   int
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is a callback for progress updates during ffmpeg operations
type ProgressFunc func(*Progress)

// RunOptions configures one ffmpeg invocation
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Input is one ordered input binding of an invocation. Loop inputs feed a
// still image as a frame stream for LoopDuration seconds; Format selects a
// demuxer ("lavfi" for synthetic sources).
type Input struct {
	Path         string
	Format       string
	Loop         bool
	LoopDuration float64
}

// EncodeOptions assembles a full compositing invocation: ordered inputs, one
// filter graph, explicit stream mappings and encoding parameters. An empty
// AudioLabel encodes video only.
type EncodeOptions struct {
	Inputs      []Input
	FilterGraph string
	VideoLabel  string
	AudioLabel  string
	Output      string

	FPS             float64
	VideoCodec      string
	VideoBitrate    string
	CRF             int
	Preset          string
	PixelFormat     string
	AudioCodec      string
	AudioBitrate    string
	AudioChannels   int
	AudioSampleRate int

	ProgressHandler ProgressFunc
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)
