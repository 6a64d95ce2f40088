package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBinary is used when no ffprobe path is configured.
const DefaultBinary = "ffprobe"

// Info summarizes the first video stream and container of a probed file.
type Info struct {
	DurationSeconds float64
	Width           int
	Height          int
	VideoCodec      string
	FrameRate       float64
	Container       string
}

type output struct {
	Streams []struct {
		CodecName    string `json:"codec_name"`
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Inspect executes ffprobe against path and decodes the JSON response.
func Inspect(ctx context.Context, binary, path string) (Info, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("probe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	raw, err := cmd.CombinedOutput()
	if err != nil {
		return Info{}, fmt.Errorf("probe inspect: %w: %s", err, strings.TrimSpace(string(raw)))
	}
	return Parse(raw)
}

// Parse decodes ffprobe JSON output into Info.
func Parse(raw []byte) (Info, error) {
	var decoded output
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Info{}, fmt.Errorf("probe parse: %w", err)
	}
	info := Info{
		DurationSeconds: parseFloat(decoded.Format.Duration),
		Container:       strings.TrimSpace(decoded.Format.FormatName),
	}
	for _, stream := range decoded.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		info.VideoCodec = stream.CodecName
		info.FrameRate = parseRate(stream.AvgFrameRate)
		if info.DurationSeconds == 0 {
			info.DurationSeconds = parseFloat(stream.Duration)
		}
		break
	}
	return info, nil
}

// HasVideo reports whether a video stream was found.
func (i Info) HasVideo() bool {
	return i.Width > 0 && i.Height > 0
}

// EstimatedFrames returns how many frames the service will sample at fps, or 0
// when the duration is unknown.
func (i Info) EstimatedFrames(fps float64) int {
	if i.DurationSeconds <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(i.DurationSeconds * fps))
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

// parseRate handles ffprobe's "num/den" rationals.
func parseRate(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return parseFloat(value)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
