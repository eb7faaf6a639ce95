// Command granulate drives the granular synthesis engine from the command
// line: load a source WAV file, stream live audio out, and log telemetry.
// It does not record from the microphone.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/polygrain/synth/engine"
	"github.com/polygrain/synth/internal/audiosource"
	"github.com/polygrain/synth/internal/playback"
)

const blockFrames = 128

func main() {
	var (
		sourcePath = pflag.StringP("source", "s", "", "path to a WAV file to granulate")
		configPath = pflag.StringP("config", "c", "", "path to a YAML engine config")
		sampleRate = pflag.Float64P("sample-rate", "r", 48000, "output sample rate (Hz)")
		density    = pflag.Float32P("density", "d", 10, "cursor A grain density (grains/s)")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
		help       = pflag.BoolP("help", "h", false, "display this help text")
	)

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "granulate - realtime polyphonic granular synthesizer")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := granular.Config{SR: *sampleRate}
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		loaded.SR = *sampleRate
		cfg = loaded
	}

	eng, err := granular.NewEngine(cfg)
	if err != nil {
		logger.Error("engine construction failed", "err", err)
		os.Exit(1)
	}

	if *sourcePath != "" {
		buf, err := audiosource.LoadWAV(*sourcePath)
		if err != nil {
			logger.Error("failed to load source", "path", *sourcePath, "err", err)
			os.Exit(1)
		}
		logger.Info("loaded source", "path", *sourcePath, "frames", buf.Frames, "channels", buf.Channels)
		eng.PushMessage(granular.Message{Type: granular.MsgSetBuffer, Buffer: buf})
		eng.PushMessage(granular.Message{Type: granular.MsgSetLoudnessMap, Loudness: granular.ComputeLoudnessMap(buf, int(cfg.SR)/20)})
	} else {
		logger.Warn("no --source given, engine will output silence until a buffer is supplied")
	}

	params := granular.DefaultCursorParams()
	params.Density = *density
	eng.PushMessage(granular.Message{Type: granular.MsgSetParamsFor, Cursor: 0, Params: params})
	eng.PushMessage(granular.Message{Type: granular.MsgSetPlaying, Playing: true})

	player, err := playback.NewPlayer(int(*sampleRate))
	if err != nil {
		logger.Error("failed to open audio output", "err", err)
		os.Exit(1)
	}
	defer player.Close()

	player.SetSource(eng)
	player.Start()
	logger.Info("streaming", "sample_rate", *sampleRate, "block_frames", blockFrames)

	reportTelemetry(logger, eng)
}

func loadConfig(path string) (granular.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return granular.Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	var cfg granular.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return granular.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// reportTelemetry polls the engine's outbox at roughly the UI refresh rate
// and logs what it finds, plus a one-time notice if the limiter ring has
// grown, running forever (it is the program's main loop
// once audio is streaming).
func reportTelemetry(logger *log.Logger, eng *granular.Engine) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	resizeLogged := false
	for range ticker.C {
		if !resizeLogged && eng.Stats().RingResized {
			logger.Warn("limiter look-ahead ring resized for a larger block")
			resizeLogged = true
		}
		eng.DrainTelemetry(func(t granular.Telemetry) {
			switch t.Type {
			case granular.TelTelemetry:
				logger.Debug("telemetry", "tp_db", t.TPDB, "gr_db", t.GRDB)
			case granular.TelReady:
				logger.Info("ready")
			}
		})
	}
}
