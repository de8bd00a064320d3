package video

// Metadata holds the technical attributes of one probed video file.
// A record is produced fresh for each probe and never cached across runs.
type Metadata struct {
	Filename  string  // base name, no directory
	Container string  // lowercase container identifier, e.g. "mp4"
	Duration  float64 // seconds
	Size      int64   // bytes
	Bitrate   int64   // bits per second
	Width     int     // pixels
	Height    int     // pixels
	Framerate float64 // frames per second
}
