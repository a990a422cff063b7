// Package filesource provides a frame source over a local MP4 file.
//
// Metadata comes from parsing the container with mp4ff; pixel decode runs
// through an ffmpeg child process. The source keeps a virtual playback
// cursor, so Present confirms instantly, and it implements the bulk decode
// capability: one ffmpeg pass extracts a whole time range, which is the
// low-level extraction strategy for file-backed clips.
package filesource

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"

	"github.com/Eyevinn/mp4ff/mp4"
	"golang.org/x/image/draw"

	"github.com/user/gifclip/pkg/ports"
)

// Source implements ports.FrameSource and ports.BulkDecoder for MP4 files.
type Source struct {
	path       string
	ffmpegPath string
	info       ports.SourceInfo
	cursor     float64 // virtual playback position in seconds
	opened     bool
}

// New creates a Source for the given MP4 file.
func New(path string) *Source {
	return &Source{path: path}
}

// Available reports whether ffmpeg can be found for pixel decode.
func Available() bool {
	_, err := findFFmpeg("")
	return err == nil
}

// Open probes the container and locates ffmpeg. It must be called before any
// other method.
func (s *Source) Open(ctx context.Context, ffmpegPath string) error {
	resolved, err := findFFmpeg(ffmpegPath)
	if err != nil {
		return err
	}
	s.ffmpegPath = resolved

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := probe(f)
	if err != nil {
		return fmt.Errorf("probe %s: %w", s.path, err)
	}
	s.info = info
	s.opened = true
	return nil
}

// Info returns the container's dimensions and duration.
func (s *Source) Info(ctx context.Context) (ports.SourceInfo, error) {
	if !s.opened {
		return ports.SourceInfo{}, fmt.Errorf("filesource: not opened")
	}
	return s.info, nil
}

// SaveState snapshots the virtual cursor. Files have no live playback to
// pause, so the state is always paused.
func (s *Source) SaveState(ctx context.Context) (ports.SourceState, error) {
	return ports.SourceState{Position: s.cursor, Paused: true}, nil
}

// RestoreState restores the virtual cursor.
func (s *Source) RestoreState(ctx context.Context, state ports.SourceState) error {
	s.cursor = state.Position
	return nil
}

// Present moves the virtual cursor. Decode happens lazily on readback.
func (s *Source) Present(ctx context.Context, timestamp float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cursor = timestamp
	return nil
}

// ReadPixels decodes the single frame at the cursor position.
func (s *Source) ReadPixels(ctx context.Context, width, height int) (*ports.PixelBuffer, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.6f", s.cursor),
		"-i", s.path,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "image2pipe", "-vcodec", "png", "-",
	}
	out, err := s.runFFmpeg(ctx, args)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode frame at %.3fs: %w", s.cursor, err)
	}
	return toBuffer(img, width, height), nil
}

// DecodeRange extracts frames for a whole time range in one ffmpeg pass.
func (s *Source) DecodeRange(ctx context.Context, start, end, frameRate float64, width, height int) ([]*ports.PixelBuffer, error) {
	if !s.opened {
		return nil, fmt.Errorf("filesource: not opened")
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.6f", start),
		"-to", fmt.Sprintf("%.6f", end),
		"-i", s.path,
		"-vf", fmt.Sprintf("fps=%g,scale=%d:%d", frameRate, width, height),
		"-f", "image2pipe", "-vcodec", "png", "-",
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	// PNG chunks are length-prefixed, so successive png.Decode calls on
	// one buffered reader split the concatenated stream exactly.
	var buffers []*ports.PixelBuffer
	reader := bufio.NewReader(stdout)
	for {
		img, derr := png.Decode(reader)
		if derr != nil {
			if derr == io.EOF || derr == io.ErrUnexpectedEOF {
				break
			}
			if _, perr := reader.Peek(1); perr == io.EOF {
				break
			}
			cmd.Process.Kill()
			cmd.Wait()
			return nil, fmt.Errorf("decode piped frame %d: %w", len(buffers), derr)
		}
		buffers = append(buffers, toBuffer(img, width, height))
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}

	want := int((end - start) * frameRate)
	if rem := (end - start) * frameRate; float64(want) < rem {
		want++
	}
	if len(buffers) < want {
		return nil, fmt.Errorf("decoded %d frames, want %d", len(buffers), want)
	}
	// fps filter rounding can emit one extra frame past the range.
	return buffers[:want], nil
}

// Close releases source resources. The decode processes are per-call, so
// there is nothing persistent to tear down.
func (s *Source) Close() error {
	s.opened = false
	return nil
}

func (s *Source) runFFmpeg(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// toBuffer converts any decoded image into an RGBA pixel buffer at the
// requested dimensions. ffmpeg already scaled; this only normalizes the
// pixel format and guards against off-by-one scaling output.
func toBuffer(img image.Image, width, height int) *ports.PixelBuffer {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Dx() == width && rgba.Rect.Dy() == height {
		return ports.FromRGBA(rgba)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return ports.FromRGBA(dst)
}

// probe parses the MP4 container for dimensions and duration.
func probe(reader io.ReadSeeker) (ports.SourceInfo, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return ports.SourceInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil || moov.Mvhd == nil {
		return ports.SourceInfo{}, fmt.Errorf("no movie header")
	}

	info := ports.SourceInfo{}
	if moov.Mvhd.Timescale > 0 {
		info.Duration = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Tkhd != nil {
			// Track header dimensions are 16.16 fixed point.
			info.Width = int(trak.Tkhd.Width >> 16)
			info.Height = int(trak.Tkhd.Height >> 16)
		}
		break
	}

	if info.Width <= 0 || info.Height <= 0 {
		return ports.SourceInfo{}, fmt.Errorf("no video track found")
	}
	return info, nil
}

var (
	_ ports.FrameSource = (*Source)(nil)
	_ ports.BulkDecoder = (*Source)(nil)
)
