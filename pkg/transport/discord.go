package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"layeh.com/gopus"
)

const (
	sampleRate   = 48000
	channels     = 2
	frameSamples = 960                              // 20ms at 48kHz
	frameBytes   = frameSamples * channels * 2      // s16le
	pcmSamples   = frameSamples * channels          // samples per encode call
	maxRestarts  = 3
	readTimeout  = 5 * time.Second
)

// VoiceTransport streams audio into one Discord voice connection. ffmpeg
// decodes the source URL to raw PCM, gopus packs it into 20ms Opus frames,
// and the frames go out over the voice websocket. Transient stream faults
// get a bounded number of in-place restarts before an EventErrored surfaces.
type VoiceTransport struct {
	vc     *discordgo.VoiceConnection
	sink   Sink
	logger *zap.Logger

	mu      sync.Mutex
	nextID  Handle
	current *stream
}

type stream struct {
	handle  Handle
	ctx     context.Context
	cancel  context.CancelFunc
	paused  atomic.Bool
	encoder *gopus.Encoder
}

// NewVoiceTransport wraps an established voice connection. Events flow to
// the sink from transport goroutines.
func NewVoiceTransport(vc *discordgo.VoiceConnection, sink Sink, logger *zap.Logger) *VoiceTransport {
	return &VoiceTransport{
		vc:     vc,
		sink:   sink,
		logger: logger.With(zap.String("component", "voice"), zap.String("guild_id", vc.GuildID)),
	}
}

func (t *VoiceTransport) BeginStream(ctx context.Context, sourceURL string) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		t.current.cancel()
		t.current = nil
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return 0, fmt.Errorf("creating opus encoder: %w", err)
	}
	encoder.SetBitrate(128000)

	streamCtx, cancel := context.WithCancel(ctx)
	t.nextID++
	st := &stream{
		handle:  t.nextID,
		ctx:     streamCtx,
		cancel:  cancel,
		encoder: encoder,
	}
	t.current = st

	go t.run(st, sourceURL)
	return st.handle, nil
}

func (t *VoiceTransport) Stop(handle Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && t.current.handle == handle {
		t.current.cancel()
		t.current = nil
	}
}

func (t *VoiceTransport) SetPaused(handle Handle, paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && t.current.handle == handle {
		t.current.paused.Store(paused)
		t.vc.Speaking(!paused)
	}
}

func (t *VoiceTransport) Close() {
	t.mu.Lock()
	if t.current != nil {
		t.current.cancel()
		t.current = nil
	}
	t.mu.Unlock()
	t.vc.Speaking(false)
	t.vc.Disconnect()
}

// run drives one stream to completion, restarting in place on recoverable
// faults. Exactly one event is emitted per stream unless it was cancelled.
func (t *VoiceTransport) run(st *stream, sourceURL string) {
	var lastErr error
	for attempt := 0; attempt <= maxRestarts; attempt++ {
		if st.ctx.Err() != nil {
			return
		}
		if attempt > 0 {
			t.logger.Warn("restarting stream",
				zap.Int("attempt", attempt), zap.Int("max", maxRestarts), zap.Error(lastErr))
			time.Sleep(2 * time.Second)
		}

		err := t.streamOnce(st, sourceURL)
		if err == nil {
			if st.ctx.Err() == nil {
				t.emit(Event{Type: EventFinished, Handle: st.handle})
			}
			return
		}
		lastErr = err
		if !recoverable(err) {
			break
		}
	}

	if st.ctx.Err() == nil {
		t.logger.Error("stream failed", zap.Error(lastErr))
		t.emit(Event{Type: EventErrored, Handle: st.handle, Err: lastErr})
	}
}

func (t *VoiceTransport) emit(ev Event) {
	if t.sink != nil {
		t.sink(ev)
	}
}

// streamOnce runs a single ffmpeg process to EOF. A nil return means the
// source played to its end or the context was cancelled.
func (t *VoiceTransport) streamOnce(st *stream, sourceURL string) error {
	cmd := exec.CommandContext(st.ctx, "ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", sourceURL,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprint(sampleRate),
		"-ac", fmt.Sprint(channels),
		"-bufsize", "64k",
		"-")

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}
	go drain(stderr)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
	}()

	if err := t.waitForVoiceReady(st.ctx); err != nil {
		return err
	}

	t.vc.Speaking(true)
	defer t.vc.Speaking(false)

	return t.pumpFrames(st, stdout)
}

// pumpFrames reads PCM off ffmpeg, encodes and ships 20ms Opus frames.
func (t *VoiceTransport) pumpFrames(st *stream, reader io.Reader) error {
	buffer := make([]byte, frameBytes)

	for {
		if st.ctx.Err() != nil {
			return nil
		}
		if st.paused.Load() {
			select {
			case <-st.ctx.Done():
				return nil
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}

		n, err := readFrame(st.ctx, reader, buffer)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		samples := bytesToInt16(buffer[:n])
		if len(samples) < pcmSamples {
			padded := make([]int16, pcmSamples)
			copy(padded, samples)
			samples = padded
		}

		opusData, err := st.encoder.Encode(samples, frameSamples, frameBytes)
		if err != nil {
			t.logger.Warn("opus encode failed, dropping frame", zap.Error(err))
			continue
		}

		select {
		case t.vc.OpusSend <- opusData:
		case <-st.ctx.Done():
			return nil
		case <-time.After(100 * time.Millisecond):
			t.logger.Warn("opus send channel blocked, skipping frame")
		}
	}
}

// readFrame reads one PCM frame with a timeout so a hung source surfaces as
// a recoverable error instead of wedging the stream.
func readFrame(ctx context.Context, reader io.Reader, buffer []byte) (int, error) {
	done := make(chan int, 1)
	fail := make(chan error, 1)
	go func() {
		n, err := io.ReadFull(reader, buffer)
		if err != nil {
			fail <- err
			return
		}
		done <- n
	}()

	select {
	case n := <-done:
		return n, nil
	case err := <-fail:
		return 0, err
	case <-ctx.Done():
		return 0, io.EOF
	case <-time.After(readTimeout):
		return 0, fmt.Errorf("timeout reading pcm data")
	}
}

func recoverable(err error) bool {
	msg := err.Error()
	for _, s := range []string{
		"timeout reading pcm data",
		"timeout waiting for voice connection",
		"connection reset",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (t *VoiceTransport) waitForVoiceReady(ctx context.Context) error {
	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("timeout waiting for voice connection")
		case <-ticker.C:
			if t.vc.Ready {
				return nil
			}
		}
	}
}

func drain(r io.ReadCloser) {
	defer r.Close()
	buf := make([]byte, 1024)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
	}
}

func bytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}
