package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Prober extracts a metadata record for a file path. Implementations are
// injected into the scanner so the query engine can be tested with
// synthetic records.
type Prober interface {
	Probe(ctx context.Context, path string) (*Metadata, error)
}

// FFProbe extracts metadata by running the ffprobe binary. The zero value
// is ready to use.
type FFProbe struct{}

// probe JSON document shapes, trimmed to the fields we read.
type probeDocument struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// Probe runs ffprobe on the file and converts its JSON output into a
// Metadata record. Any missing or unparseable attribute is an error for the
// whole file, never a silent zero.
func (FFProbe) Probe(ctx context.Context, path string) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"--", path)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffprobe failed: %w\nffprobe output: %s", err, firstLine(stderr.String()))
	}
	if len(bytes.TrimSpace(output)) == 0 {
		return nil, fmt.Errorf("ffprobe returned no output")
	}

	return parseProbeDocument(path, output)
}

// parseProbeDocument converts raw ffprobe JSON into a Metadata record.
// Split out from Probe so it can be tested against captured documents
// without an ffprobe binary.
func parseProbeDocument(path string, raw []byte) (*Metadata, error) {
	var doc probeDocument
	if err := gojson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	md := &Metadata{
		Filename:  filepath.Base(path),
		Container: strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}

	var err error
	if md.Duration, err = parseProbeFloat("duration", doc.Format.Duration); err != nil {
		return nil, err
	}
	if md.Size, err = parseProbeInt("size", doc.Format.Size); err != nil {
		return nil, err
	}
	if md.Bitrate, err = parseProbeInt("bit_rate", doc.Format.BitRate); err != nil {
		return nil, err
	}

	stream := videoStream(doc.Streams)
	if stream == nil {
		return nil, fmt.Errorf("no video stream in ffprobe metadata")
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("video stream has no dimensions")
	}
	md.Width = stream.Width
	md.Height = stream.Height

	if md.Framerate, err = parseFramerate(stream); err != nil {
		return nil, err
	}

	return md, nil
}

// videoStream returns the first video stream, or nil.
func videoStream(streams []probeStream) *probeStream {
	for i := range streams {
		if streams[i].CodecType == "video" {
			return &streams[i]
		}
	}
	return nil
}

// parseFramerate resolves the stream framerate from r_frame_rate, falling
// back to avg_frame_rate. ffprobe reports both as rationals ("30000/1001").
func parseFramerate(stream *probeStream) (float64, error) {
	for _, raw := range []string{stream.RFrameRate, stream.AvgFrameRate} {
		if fr, ok := parseRational(raw); ok {
			return fr, nil
		}
	}
	return 0, fmt.Errorf("video stream has no usable framerate (r_frame_rate=%q)", stream.RFrameRate)
}

// parseRational parses "num/den" or a plain decimal. A missing value or a
// zero denominator is not usable.
func parseRational(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	numStr, denStr, isRatio := strings.Cut(raw, "/")
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}
	if !isRatio {
		return num, num > 0
	}

	den, err := strconv.ParseFloat(denStr, 64)
	if err != nil || den == 0 {
		return 0, false
	}
	fr := num / den
	return fr, fr > 0
}

func parseProbeFloat(field, raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("no %s in ffprobe metadata", field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %q: %w", field, raw, err)
	}
	return v, nil
}

func parseProbeInt(field, raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("no %s in ffprobe metadata", field)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %q: %w", field, raw, err)
	}
	return v, nil
}

// firstLine trims a multi-line tool output down to its first line.
func firstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0])
	}
	return "no additional information available"
}
