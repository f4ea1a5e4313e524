package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SequenceFormat controls how human-readable references are rendered.
type SequenceFormat struct {
	Prefix  string `mapstructure:"prefix"`
	Padding int    `mapstructure:"padding"`
}

// StockConfig is the operational policy for tanks and supply numbering.
type StockConfig struct {
	DefaultTankName     string                    `mapstructure:"defaultTankName"`
	DefaultTankCapacity float64                   `mapstructure:"defaultTankCapacity"`
	LowLevelPercent     float64                   `mapstructure:"lowLevelPercent"`
	Sequences           map[string]SequenceFormat `mapstructure:"sequences"`
}

// SupplySequenceKey is the sequence used for supply event references.
const SupplySequenceKey = "fuel.supply"

func DefaultStockConfig() StockConfig {
	return StockConfig{
		DefaultTankName:     "Main Tank",
		DefaultTankCapacity: 6000,
		LowLevelPercent:     20,
		Sequences: map[string]SequenceFormat{
			SupplySequenceKey: {Prefix: "SUP/", Padding: 5},
		},
	}
}

// StockConfigHolder serves the current stock policy and hot-reloads it when
// the file changes on disk.
type StockConfigHolder struct {
	current atomic.Value // holds StockConfig
}

func NewStockConfigHolder() (*StockConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("stock")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fuelstock/config") // Volume-mounted config
	v.AddConfigPath("/etc/fuelstock")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("FUELSTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStockConfig()
	v.SetDefault("stock.defaultTankName", defaults.DefaultTankName)
	v.SetDefault("stock.defaultTankCapacity", defaults.DefaultTankCapacity)
	v.SetDefault("stock.lowLevelPercent", defaults.LowLevelPercent)
	v.SetDefault("stock.sequences", defaults.Sequences)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg StockConfig
	if err := v.UnmarshalKey("stock", &cfg); err != nil {
		return nil, err
	}
	if err := validateStockConfig(cfg); err != nil {
		return nil, err
	}

	holder := &StockConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StockConfig
		if err := v.UnmarshalKey("stock", &updated); err != nil {
			log.Printf("[stock-config] reload failed: %v", err)
			return
		}
		if err := validateStockConfig(updated); err != nil {
			log.Printf("[stock-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[stock-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *StockConfigHolder) Get() StockConfig {
	return h.current.Load().(StockConfig)
}

func validateStockConfig(cfg StockConfig) error {
	if cfg.DefaultTankCapacity <= 0 {
		return errors.New("stock config: defaultTankCapacity must be positive")
	}
	if cfg.LowLevelPercent < 0 || cfg.LowLevelPercent > 100 {
		return errors.New("stock config: lowLevelPercent must be within 0..100")
	}
	for key, format := range cfg.Sequences {
		if format.Padding <= 0 {
			return errors.New("stock config: sequence " + key + " padding must be positive")
		}
	}
	return nil
}
