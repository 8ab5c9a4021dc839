// Package geometry describes the shape of a simulated cache and derives the
// address bit-widths from it.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidGeometry is wrapped by every validation failure.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// DefaultTagBits is the tag width of the reference model. Tags wider than
// this lose their high bits.
const DefaultTagBits = 20

// MaxTotalBlocks bounds the number of lines a cache may have. Every line is
// allocated up front.
const MaxTotalBlocks = 1 << 24

// Config holds the user-facing cache parameters.
type Config struct {
	// TotalSize is the cache capacity in bytes.
	TotalSize int `json:"total_size" yaml:"total_size"`

	// BlockSize is the number of bytes per block. Must be a power of two.
	BlockSize int `json:"block_size" yaml:"block_size"`

	// LinesPerSet is the associativity.
	LinesPerSet int `json:"lines_per_set" yaml:"lines_per_set"`

	// TagBits is the maximum tag width. Decoded tags are masked to this
	// many bits. 0 keeps every remaining address bit.
	TagBits int `json:"tag_bits" yaml:"tag_bits"`

	// MaxAddresses caps the number of addresses accepted for a single
	// run. 0 means unlimited.
	MaxAddresses int `json:"max_addresses" yaml:"max_addresses"`
}

// DefaultConfig returns a small 2-way cache with the reference tag width.
func DefaultConfig() *Config {
	return &Config{
		TotalSize:   16,
		BlockSize:   4,
		LinesPerSet: 2,
		TagBits:     DefaultTagBits,
	}
}

// LoadConfig loads a Config from a JSON file, or a YAML file when the
// extension is .yaml or .yml. Fields missing from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse cache config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate checks that the configuration describes a buildable cache.
func (c *Config) Validate() error {
	if c.TotalSize <= 0 {
		return fmt.Errorf("%w: total_size must be > 0", ErrInvalidGeometry)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be > 0", ErrInvalidGeometry)
	}
	if c.LinesPerSet <= 0 {
		return fmt.Errorf("%w: lines_per_set must be > 0", ErrInvalidGeometry)
	}
	if !isPowerOfTwo(c.BlockSize) {
		return fmt.Errorf("%w: block_size %d is not a power of two",
			ErrInvalidGeometry, c.BlockSize)
	}

	if c.TotalSize%c.BlockSize != 0 {
		return fmt.Errorf("%w: total_size %d is not a multiple of block_size %d",
			ErrInvalidGeometry, c.TotalSize, c.BlockSize)
	}

	totalBlocks := c.TotalSize / c.BlockSize
	if totalBlocks > MaxTotalBlocks {
		return fmt.Errorf("%w: %d blocks exceed the limit of %d",
			ErrInvalidGeometry, totalBlocks, MaxTotalBlocks)
	}
	if totalBlocks%c.LinesPerSet != 0 {
		return fmt.Errorf("%w: %d blocks do not divide into sets of %d lines",
			ErrInvalidGeometry, totalBlocks, c.LinesPerSet)
	}

	numSets := totalBlocks / c.LinesPerSet
	if numSets == 0 {
		return fmt.Errorf("%w: geometry yields zero sets", ErrInvalidGeometry)
	}
	if !isPowerOfTwo(numSets) {
		return fmt.Errorf("%w: number of sets %d is not a power of two",
			ErrInvalidGeometry, numSets)
	}

	if c.TagBits < 0 || c.TagBits > 64 {
		return fmt.Errorf("%w: tag_bits must be in [0, 64]", ErrInvalidGeometry)
	}
	if log2(c.BlockSize)+log2(numSets) > 64 {
		return fmt.Errorf("%w: offset and set bits exceed 64", ErrInvalidGeometry)
	}

	if c.MaxAddresses < 0 {
		return fmt.Errorf("%w: max_addresses must be >= 0", ErrInvalidGeometry)
	}

	return nil
}

// Derive validates the configuration and computes the geometry.
func (c *Config) Derive() (Geometry, error) {
	if err := c.Validate(); err != nil {
		return Geometry{}, err
	}

	totalBlocks := c.TotalSize / c.BlockSize
	numSets := totalBlocks / c.LinesPerSet

	return Geometry{
		BlockSize:   c.BlockSize,
		Ways:        c.LinesPerSet,
		NumSets:     numSets,
		TotalBlocks: totalBlocks,
		OffsetBits:  log2(c.BlockSize),
		SetBits:     log2(numSets),
		TagBits:     c.TagBits,
	}, nil
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

func log2(v int) int {
	return bits.TrailingZeros(uint(v))
}
