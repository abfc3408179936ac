// Package ops loads and validates the simulation configuration.
package ops

import (
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/agent"
)

// FileConfig mirrors the JSON config layout. Prices arrive as decimal
// strings and resolve to float64 for the core.
type FileConfig struct {
	Steps        int           `json:"steps"`
	Seed         int64         `json:"seed"`
	StartingCash float64       `json:"startingCash"`
	Agents       []AgentConfig `json:"agents"`
	Report       ReportConfig  `json:"report"`
	Tape         TapeConfig    `json:"tape"`
}

// AgentConfig describes one group of identical agents.
type AgentConfig struct {
	Type  string `json:"type"` // noise | maker
	Count int    `json:"count"`

	PriceMin    decimal.Decimal `json:"priceMin"`
	PriceMax    decimal.Decimal `json:"priceMax"`
	QtyMin      int64           `json:"qtyMin"`
	QtyMax      int64           `json:"qtyMax"`
	MarketRatio float64         `json:"marketRatio"`

	ReferencePrice decimal.Decimal `json:"referencePrice"`
	Spread         decimal.Decimal `json:"spread"`
	Quantity       int64           `json:"quantity"`
}

// ReportConfig selects the reporting sinks.
type ReportConfig struct {
	CSVPath  string          `json:"csvPath"`
	Console  bool            `json:"console"`
	Postgres *PostgresConfig `json:"postgres"`
}

// PostgresConfig describes the optional Postgres sink.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// TapeConfig describes the optional fill tape.
type TapeConfig struct {
	Path string `json:"path"`
}

// AgentType is a resolved strategy kind.
type AgentType uint8

const (
	AgentNoise AgentType = iota
	AgentMaker
)

// AgentSpec is one resolved agent group.
type AgentSpec struct {
	Type  AgentType
	Count int
	Noise agent.NoiseConfig
	Maker agent.MakerConfig
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Steps        int
	Seed         int64
	StartingCash float64
	Agents       []AgentSpec
	Report       ReportConfig
	Tape         TapeConfig
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse resolves raw JSON config bytes.
func Parse(data []byte) (Loaded, error) {
	var cfg FileConfig
	if err := sonic.ConfigFastest.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "decode config")
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Steps <= 0 {
		return Loaded{}, errors.New("steps must be > 0")
	}
	if cfg.StartingCash < 0 {
		return Loaded{}, errors.New("startingCash must be >= 0")
	}
	if len(cfg.Agents) == 0 {
		return Loaded{}, errors.New("at least one agent group required")
	}

	specs := make([]AgentSpec, 0, len(cfg.Agents))
	for i, ac := range cfg.Agents {
		spec, err := resolveAgent(ac)
		if err != nil {
			return Loaded{}, errors.Wrapf(err, "agent group %d", i)
		}
		specs = append(specs, spec)
	}

	if pg := cfg.Report.Postgres; pg != nil && pg.Database == "" {
		return Loaded{}, errors.New("postgres sink requires a database name")
	}

	return Loaded{
		Steps:        cfg.Steps,
		Seed:         cfg.Seed,
		StartingCash: cfg.StartingCash,
		Agents:       specs,
		Report:       cfg.Report,
		Tape:         cfg.Tape,
	}, nil
}

func resolveAgent(ac AgentConfig) (AgentSpec, error) {
	if ac.Count <= 0 {
		return AgentSpec{}, errors.New("count must be > 0")
	}

	switch ac.Type {
	case "noise":
		priceMin, err := toFloat(ac.PriceMin)
		if err != nil {
			return AgentSpec{}, errors.Wrap(err, "priceMin")
		}
		priceMax, err := toFloat(ac.PriceMax)
		if err != nil {
			return AgentSpec{}, errors.Wrap(err, "priceMax")
		}
		if priceMin != 0 && priceMax != 0 && priceMax <= priceMin {
			return AgentSpec{}, errors.New("priceMax must be > priceMin")
		}
		if ac.MarketRatio < 0 || ac.MarketRatio > 1 {
			return AgentSpec{}, errors.New("marketRatio must be in [0,1]")
		}
		return AgentSpec{
			Type:  AgentNoise,
			Count: ac.Count,
			Noise: agent.NoiseConfig{
				PriceMin:    priceMin,
				PriceMax:    priceMax,
				QtyMin:      ac.QtyMin,
				QtyMax:      ac.QtyMax,
				MarketRatio: ac.MarketRatio,
			},
		}, nil

	case "maker":
		ref, err := toFloat(ac.ReferencePrice)
		if err != nil {
			return AgentSpec{}, errors.Wrap(err, "referencePrice")
		}
		spread, err := toFloat(ac.Spread)
		if err != nil {
			return AgentSpec{}, errors.Wrap(err, "spread")
		}
		if spread < 0 {
			return AgentSpec{}, errors.New("spread must be >= 0")
		}
		return AgentSpec{
			Type:  AgentMaker,
			Count: ac.Count,
			Maker: agent.MakerConfig{
				ReferencePrice: ref,
				Spread:         spread,
				Quantity:       ac.Quantity,
			},
		}, nil

	default:
		return AgentSpec{}, errors.Errorf("unknown agent type %q", ac.Type)
	}
}

func toFloat(d decimal.Decimal) (float64, error) {
	s := d.String()
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse decimal %q", s)
	}
	return v, nil
}
