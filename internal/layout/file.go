package layout

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFile reads a custom venue table from a YAML, JSON or TOML file and validates it.
//
//	name: studio
//	continuous_numbering: true
//	rows:
//	  - row: A
//	    left:   {from: 1, to: 4}
//	    center: {from: 5, to: 10}
//	    right:  {from: 11, to: 14}
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read layout file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse layout file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Resolve picks the venue table for a process: a layout file wins over a built-in name.
func Resolve(name, file string) (Config, error) {
	if file != "" {
		return LoadFile(file)
	}
	cfg, err := Lookup(name)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
