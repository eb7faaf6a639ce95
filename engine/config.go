package granular

// LimiterConfig holds the look-ahead true-peak limiter's construction
// parameters, per spec.md §6.
type LimiterConfig struct {
	LookaheadMS float32 `yaml:"lookahead_ms"`
	Ceiling     float32 `yaml:"ceiling"`
	ReleaseMS   float32 `yaml:"release_ms"`
	MasterTrim  float32 `yaml:"master_trim"`
	Extra       int     `yaml:"extra"`
}

// DefaultLimiterConfig returns the §6 defaults.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		LookaheadMS: 3,
		Ceiling:     0.98,
		ReleaseMS:   50,
		MasterTrim:  0.80,
		Extra:       256,
	}
}

// Config is the engine construction config, per spec.md §6. SR is the only
// required field; everything else has a documented default applied by
// NewEngine when zero.
type Config struct {
	SR            float64       `yaml:"sr"`
	MaxGrains     int           `yaml:"max_grains"`
	EnvTable      int           `yaml:"env_table"`
	FilterTauMS   float32       `yaml:"filter_tau_ms"`
	Limiter       LimiterConfig `yaml:"limiter"`
	KillTailMS    float32       `yaml:"kill_tail_ms"`
	GainTauMS     float32       `yaml:"gain_tau_ms"`
	MaxSpawnBlock int           `yaml:"max_spawn_per_block"` // 0 = auto, per spec.md §4.4
}

const (
	defaultMaxGrains   = 1024
	defaultEnvTable    = 1024
	defaultFilterTauMS = 25
	defaultKillTailMS  = 28
	defaultGainTauMS   = 20
)

// withDefaults returns a copy of cfg with zero-valued optional fields
// replaced by spec.md §6 defaults. Does not touch SR.
func (cfg Config) withDefaults() Config {
	if cfg.MaxGrains == 0 {
		cfg.MaxGrains = defaultMaxGrains
	}
	if cfg.EnvTable == 0 {
		cfg.EnvTable = defaultEnvTable
	}
	if cfg.FilterTauMS == 0 {
		cfg.FilterTauMS = defaultFilterTauMS
	}
	if cfg.KillTailMS == 0 {
		cfg.KillTailMS = defaultKillTailMS
	}
	if cfg.GainTauMS == 0 {
		cfg.GainTauMS = defaultGainTauMS
	}
	zero := LimiterConfig{}
	if cfg.Limiter == zero {
		cfg.Limiter = DefaultLimiterConfig()
	} else {
		d := DefaultLimiterConfig()
		if cfg.Limiter.LookaheadMS == 0 {
			cfg.Limiter.LookaheadMS = d.LookaheadMS
		}
		if cfg.Limiter.Ceiling == 0 {
			cfg.Limiter.Ceiling = d.Ceiling
		}
		if cfg.Limiter.ReleaseMS == 0 {
			cfg.Limiter.ReleaseMS = d.ReleaseMS
		}
		if cfg.Limiter.MasterTrim == 0 {
			cfg.Limiter.MasterTrim = d.MasterTrim
		}
		if cfg.Limiter.Extra == 0 {
			cfg.Limiter.Extra = d.Extra
		}
	}
	return cfg
}

// validate checks the Fatal conditions of spec.md §4.10 plus every other
// optional field withDefaults leaves in cfg, per SPEC_FULL.md's promise that
// NewEngine validates the full Config, not just §4.10's three conditions. A
// negative tau or release feeds math.Exp/math.Log a flipped sign and can
// drive the one-pole smoothing or the limiter's envelope toward Inf/NaN, so
// those are refused here rather than left to fault downstream.
func (cfg Config) validate() error {
	if cfg.SR <= 0 {
		return &ConfigError{Field: "sr", Msg: "must be > 0"}
	}
	if cfg.MaxGrains < 1 {
		return &ConfigError{Field: "max_grains", Msg: "must be >= 1"}
	}
	if cfg.EnvTable < 2 {
		return &ConfigError{Field: "env_table", Msg: "must be >= 2"}
	}
	if cfg.FilterTauMS <= 0 {
		return &ConfigError{Field: "filter_tau_ms", Msg: "must be > 0"}
	}
	if cfg.KillTailMS < 0 {
		return &ConfigError{Field: "kill_tail_ms", Msg: "must be >= 0"}
	}
	if cfg.GainTauMS <= 0 {
		return &ConfigError{Field: "gain_tau_ms", Msg: "must be > 0"}
	}
	if cfg.MaxSpawnBlock < 0 {
		return &ConfigError{Field: "max_spawn_per_block", Msg: "must be >= 0"}
	}
	if cfg.Limiter.LookaheadMS < 0 {
		return &ConfigError{Field: "limiter.lookahead_ms", Msg: "must be >= 0"}
	}
	if cfg.Limiter.Ceiling <= 0 {
		return &ConfigError{Field: "limiter.ceiling", Msg: "must be > 0"}
	}
	if cfg.Limiter.ReleaseMS <= 0 {
		return &ConfigError{Field: "limiter.release_ms", Msg: "must be > 0"}
	}
	if cfg.Limiter.MasterTrim <= 0 {
		return &ConfigError{Field: "limiter.master_trim", Msg: "must be > 0"}
	}
	if cfg.Limiter.Extra < 0 {
		return &ConfigError{Field: "limiter.extra", Msg: "must be >= 0"}
	}
	return nil
}
