package bench

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/benz9527/xstl/lib/infra"
	"github.com/benz9527/xstl/lib/xlog"
	"github.com/benz9527/xstl/observability"
)

type ContainerKind string

const (
	MapKind          ContainerKind = "map"
	MultiMapKind     ContainerKind = "multimap"
	SetKind          ContainerKind = "set"
	MultiSetKind     ContainerKind = "multiset"
	HashMapKind      ContainerKind = "hash_map"
	HashMultiMapKind ContainerKind = "hash_multimap"
	HashSetKind      ContainerKind = "hash_set"
	HashMultiSetKind ContainerKind = "hash_multiset"
)

// AllContainerKinds lists the kinds in the default case order.
var AllContainerKinds = []ContainerKind{
	MapKind, MultiMapKind, SetKind, MultiSetKind,
	HashMapKind, HashMultiMapKind, HashSetKind, HashMultiSetKind,
}

type AllocatorKind string

const (
	ArenaAllocator AllocatorKind = "arena"
	HeapAllocator  AllocatorKind = "heap"
)

const (
	defaultCaseSize   = 10_000
	defaultArenaChunk = 64
	defaultTimeout    = 5 * time.Minute
)

type LogConfig struct {
	Level   string `yaml:"level"`
	Encoder string `yaml:"encoder"`
}

type MetricsConfig struct {
	Exporter string        `yaml:"exporter"`
	Addr     string        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
}

type CaseConfig struct {
	Name       string        `yaml:"name"`
	Container  ContainerKind `yaml:"container"`
	Size       int           `yaml:"size"`
	KeySpace   int           `yaml:"keySpace"`
	Rounds     int           `yaml:"rounds"`
	Allocator  AllocatorKind `yaml:"allocator"`
	ArenaChunk int           `yaml:"arenaChunk"`
	NodeLimit  int64         `yaml:"nodeLimit"`
	Buckets    uint64        `yaml:"buckets"`
	UseHint    bool          `yaml:"useHint"`
}

type Config struct {
	Name    string        `yaml:"name"`
	Workers int           `yaml:"workers"`
	Seed    uint64        `yaml:"seed"`
	Timeout time.Duration `yaml:"timeout"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Cases   []CaseConfig  `yaml:"cases"`
}

// DefaultConfig runs every container kind once with the default size.
func DefaultConfig() *Config {
	cfg := &Config{Name: "default"}
	for _, kind := range AllContainerKinds {
		cfg.Cases = append(cfg.Cases, CaseConfig{Container: kind})
	}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	if c.Metrics.Exporter == "" {
		c.Metrics.Exporter = string(observability.NoopExporter)
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = 10 * time.Second
	}
	for i := range c.Cases {
		cc := &c.Cases[i]
		cc.Container = ContainerKind(strings.ToLower(strings.TrimSpace(string(cc.Container))))
		if cc.Size == 0 {
			cc.Size = defaultCaseSize
		}
		if cc.Rounds == 0 {
			cc.Rounds = 1
		}
		if cc.Allocator == "" {
			cc.Allocator = ArenaAllocator
		}
		if cc.ArenaChunk == 0 {
			cc.ArenaChunk = defaultArenaChunk
		}
		if cc.Name == "" {
			cc.Name = fmt.Sprintf("%s-%d#%d", cc.Container, cc.Size, i)
		}
	}
}

func (c *Config) Validate() error {
	var merr error
	if c.Workers < 0 {
		merr = multierr.Append(merr, fmt.Errorf("workers %d is negative", c.Workers))
	}
	if _, ok := xlog.ParseLogEncoderType(c.Log.Encoder); !ok {
		merr = multierr.Append(merr, fmt.Errorf("unknown log encoder %q", c.Log.Encoder))
	}
	if _, err := observability.ParseMetricsExporterType(c.Metrics.Exporter); err != nil {
		merr = multierr.Append(merr, err)
	}
	if len(c.Cases) == 0 {
		merr = multierr.Append(merr, fmt.Errorf("no cases"))
	}
	names := make(map[string]struct{}, len(c.Cases))
	for i, cc := range c.Cases {
		if _, ok := drivers[cc.Container]; !ok {
			merr = multierr.Append(merr, fmt.Errorf("case %d: unknown container %q", i, cc.Container))
		}
		if cc.Size < 0 {
			merr = multierr.Append(merr, fmt.Errorf("case %d: size %d is negative", i, cc.Size))
		}
		if cc.KeySpace < 0 {
			merr = multierr.Append(merr, fmt.Errorf("case %d: key space %d is negative", i, cc.KeySpace))
		}
		if cc.Rounds < 0 {
			merr = multierr.Append(merr, fmt.Errorf("case %d: rounds %d is negative", i, cc.Rounds))
		}
		if cc.Allocator != ArenaAllocator && cc.Allocator != HeapAllocator {
			merr = multierr.Append(merr, fmt.Errorf("case %d: unknown allocator %q", i, cc.Allocator))
		}
		if cc.NodeLimit < 0 {
			merr = multierr.Append(merr, fmt.Errorf("case %d: node limit %d is negative", i, cc.NodeLimit))
		}
		if _, dup := names[cc.Name]; dup {
			merr = multierr.Append(merr, fmt.Errorf("case %d: duplicated name %q", i, cc.Name))
		}
		names[cc.Name] = struct{}{}
	}
	if merr != nil {
		return infra.WrapErrorStackWithMessage(merr, "[bench] invalid config")
	}
	return nil
}

// ParseConfig decodes the YAML, fills the defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] decode config")
	}
	if len(cfg.Cases) == 0 {
		cfg.Cases = DefaultConfig().Cases
		for i := range cfg.Cases {
			cfg.Cases[i].Name = ""
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] read config "+path)
	}
	return ParseConfig(data)
}
