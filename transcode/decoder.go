package transcode

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/beatgrid/beatgrid/logging"
)

// AudioData represents decoded audio data: mono normalized samples plus the
// source sample rate.
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // channel count of the source before downmix
	Duration   time.Duration `json:"duration"`
}

// Decode reads a WAV file into mono normalized float samples. Multi-channel
// sources are downmixed by averaging. maxSeconds caps the decoded duration;
// zero or negative decodes the whole file. Unreadable files, non-WAV input
// and files yielding no samples are errors.
func Decode(path string, maxSeconds float64) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcode: open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("transcode: %s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("transcode: decode %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("transcode: %s contains no audio samples", path)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		return nil, fmt.Errorf("transcode: %s reports invalid sample rate %d", path, sampleRate)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(bitDepth-1))

	frames := len(buf.Data) / channels
	if maxSeconds > 0 {
		if maxFrames := int(maxSeconds * float64(sampleRate)); frames > maxFrames {
			frames = maxFrames
		}
	}
	if frames == 0 {
		return nil, fmt.Errorf("transcode: %s contains no audio samples", path)
	}

	pcm := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) * scale
		}
		pcm[i] = sum / float64(channels)
	}

	logging.GetGlobalLogger().Debug("decoded audio file", logging.Fields{
		"path":        path,
		"sample_rate": sampleRate,
		"channels":    channels,
		"frames":      frames,
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second)),
	}, nil
}

// Encode writes mono samples to a 16-bit PCM WAV file, clamping to [-1, 1].
func Encode(path string, data *AudioData) error {
	if data == nil || len(data.PCM) == 0 {
		return fmt.Errorf("transcode: nothing to encode")
	}
	if data.SampleRate <= 0 {
		return fmt.Errorf("transcode: invalid sample rate %d", data.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("transcode: create %s: %w", path, err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, data.SampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: data.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(data.PCM)),
	}
	for i, s := range data.PCM {
		clamped := math.Max(-1, math.Min(1, s))
		buf.Data[i] = int(clamped * 32767)
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("transcode: write %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("transcode: finalize %s: %w", path, err)
	}

	return nil
}
