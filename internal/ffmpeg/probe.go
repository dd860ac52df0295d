package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/floostack/transcoder/ffmpeg"
	"github.com/hbomb79/smartmedia/pkg/logger"
)

var log = logger.Get("FFprobe")

type ProbeStatus string

const (
	StatusSuccess ProbeStatus = "success"
	StatusFailed  ProbeStatus = "failed"
)

type (
	// Config contains the configuration for the ffprobe binary
	// used to inspect media files.
	Config struct {
		FfprobeBinaryPath string `yaml:"ffprobe_binary" env:"FORMAT_FFPROBE_BINARY_PATH" env-default:"/usr/bin/ffprobe"`
	}

	VideoStream struct {
		CodecName   string `json:"codecname"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		AspectRatio string `json:"aspectratio,omitempty"`
		FrameRate   string `json:"framerate,omitempty"`
		Bitrate     string `json:"bitrate,omitempty"`
	}

	AudioStream struct {
		CodecName  string `json:"codecname"`
		SampleRate string `json:"samplerate,omitempty"`
		Channels   int    `json:"channels,omitempty"`
		Bitrate    string `json:"bitrate,omitempty"`
	}

	// ProbeData is the media information we extract from the
	// raw ffprobe output.
	ProbeData struct {
		FormatName        string        `json:"formatname"`
		FormatLongName    string        `json:"formatlongname"`
		Duration          float64       `json:"duration"`
		Bitrate           int64         `json:"bitrate"`
		Size              int64         `json:"size"`
		ProbeScore        int           `json:"probescore"`
		TotalStreams      int           `json:"totalstreams"`
		TotalVideoStreams int           `json:"totalvideostreams"`
		TotalAudioStreams int           `json:"totalaudiostreams"`
		VideoStreams      []VideoStream `json:"videostreams"`
		AudioStreams      []AudioStream `json:"audiostreams"`
	}

	// ProbeResult is the envelope returned for every probed file. A result
	// with a StatusFailed status is a failure specific to the file (unreadable,
	// not media, corrupt); it carries a human readable Reason and no Data.
	ProbeResult struct {
		Status ProbeStatus
		Reason string
		Data   *ProbeData
	}

	// Prober inspects media files on disk using ffprobe.
	Prober struct {
		config Config
	}

	ffprobeOutput struct {
		Format *struct {
			FormatName     string `json:"format_name"`
			FormatLongName string `json:"format_long_name"`
			Duration       string `json:"duration"`
			Size           string `json:"size"`
			BitRate        string `json:"bit_rate"`
			ProbeScore     int    `json:"probe_score"`
		} `json:"format"`
		Streams []struct {
			CodecType          string `json:"codec_type"`
			CodecName          string `json:"codec_name"`
			Width              int    `json:"width"`
			Height             int    `json:"height"`
			DisplayAspectRatio string `json:"display_aspect_ratio"`
			AvgFrameRate       string `json:"avg_frame_rate"`
			BitRate            string `json:"bit_rate"`
			SampleRate         string `json:"sample_rate"`
			Channels           int    `json:"channels"`
		} `json:"streams"`
	}
)

var ErrProbeUnavailable = errors.New("ffprobe is unavailable")

func NewProber(config Config) *Prober {
	return &Prober{config: config}
}

// GetMediaMetadata runs ffprobe against the file at the path provided. Problems
// with the file itself are reported via a StatusFailed result, whereas problems
// with the probe itself (missing binary, cancelled context) are returned as
// an error as they will affect every subsequent file too.
func (prober *Prober) GetMediaMetadata(ctx context.Context, path string) (*ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(prober.config.FfprobeBinaryPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProbeUnavailable, err)
	}

	if _, err := os.Stat(path); err != nil {
		return failedResult(fmt.Sprintf("file could not be read: %s", err)), nil
	}

	cfg := ffmpeg.Config{FfprobeBinPath: prober.config.FfprobeBinaryPath}
	metadata, err := ffmpeg.New(&cfg).Input(path).GetMetadata()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: %s", ErrProbeUnavailable, execErr)
		}

		log.Warnf("ffprobe inspection of %s failed: %s\n", path, err)
		return failedResult("FFProbe inspection failed"), nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return failedResult("JSON Encoding failed"), nil
	}

	return DecodeProbeOutput(raw), nil
}

// DecodeProbeOutput extracts the relevant media information from
// raw ffprobe JSON output (as produced by '-of json -show_format -show_streams').
func DecodeProbeOutput(raw []byte) *ProbeResult {
	var output ffprobeOutput
	if err := json.Unmarshal(raw, &output); err != nil || output.Format == nil {
		return failedResult("JSON Decoding failed")
	}

	data := &ProbeData{
		FormatName:     output.Format.FormatName,
		FormatLongName: output.Format.FormatLongName,
		Duration:       parseFloat(output.Format.Duration),
		Bitrate:        parseInt(output.Format.BitRate),
		Size:           parseInt(output.Format.Size),
		ProbeScore:     output.Format.ProbeScore,
		TotalStreams:   len(output.Streams),
		VideoStreams:   make([]VideoStream, 0),
		AudioStreams:   make([]AudioStream, 0),
	}

	// Files can have multiple streams, not just one audio and one video.
	for _, stream := range output.Streams {
		switch stream.CodecType {
		case "video":
			data.TotalVideoStreams++
			data.VideoStreams = append(data.VideoStreams, VideoStream{
				CodecName:   stream.CodecName,
				Width:       stream.Width,
				Height:      stream.Height,
				AspectRatio: stream.DisplayAspectRatio,
				FrameRate:   stream.AvgFrameRate,
				Bitrate:     stream.BitRate,
			})
		case "audio":
			data.TotalAudioStreams++
			data.AudioStreams = append(data.AudioStreams, AudioStream{
				CodecName:  stream.CodecName,
				SampleRate: stream.SampleRate,
				Channels:   stream.Channels,
				Bitrate:    stream.BitRate,
			})
		}
	}

	return &ProbeResult{Status: StatusSuccess, Reason: "FFProbe inspection succeeded", Data: data}
}

func failedResult(reason string) *ProbeResult {
	return &ProbeResult{Status: StatusFailed, Reason: reason}
}

func parseFloat(input string) float64 {
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0
	}

	return v
}

func parseInt(input string) int64 {
	v, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return int64(parseFloat(input))
	}

	return v
}
