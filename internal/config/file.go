package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fibcost/internal/errors"
)

// FileConfig is the YAML configuration file layout. Absent keys leave the
// corresponding setting untouched.
//
//	n: 32
//	algo: recursive
//	timeout: 2m
//	server:
//	  enabled: true
//	  port: "9090"
//	  max_recursive_n: 30
//	log_level: debug
type FileConfig struct {
	N        *int          `yaml:"n"`
	Algo     *string       `yaml:"algo"`
	Timeout  *yamlDuration `yaml:"timeout"`
	Details  *bool         `yaml:"details"`
	JSON     *bool         `yaml:"json"`
	Sweep    *bool         `yaml:"sweep"`
	NoColor  *bool         `yaml:"no_color"`
	Output   *string       `yaml:"output"`
	LogLevel *string       `yaml:"log_level"`
	Server   *serverFile   `yaml:"server"`
}

type serverFile struct {
	Enabled       *bool   `yaml:"enabled"`
	Port          *string `yaml:"port"`
	MaxRecursiveN *int    `yaml:"max_recursive_n"`
}

// yamlDuration decodes Go duration strings such as "90s".
type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = yamlDuration(parsed)
	return nil
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected so that typos surface as errors.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("cannot read config file: %v", err)
	}
	return decodeFile(data, path)
}

func decodeFile(data []byte, path string) (FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, apperrors.NewConfigError("invalid config file %s: %v", path, err)
	}
	return fc, nil
}

// applyTo copies file values into config for settings whose flag was not
// given on the command line.
func (fc FileConfig) applyTo(config *AppConfig, fs *flag.FlagSet) {
	setInt(&config.N, fc.N, !isFlagSet(fs, "n"))
	setString(&config.Algo, fc.Algo, !isFlagSet(fs, "algo"))
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		config.Timeout = time.Duration(*fc.Timeout)
	}
	setBool(&config.Details, fc.Details, !isFlagSet(fs, "d", "details"))
	setBool(&config.JSONOutput, fc.JSON, !isFlagSet(fs, "json"))
	setBool(&config.Sweep, fc.Sweep, !isFlagSet(fs, "sweep"))
	setBool(&config.NoColor, fc.NoColor, !isFlagSet(fs, "no-color"))
	setString(&config.OutputFile, fc.Output, !isFlagSet(fs, "output", "o"))
	setString(&config.LogLevel, fc.LogLevel, !isFlagSet(fs, "log-level"))
	if fc.Server != nil {
		setBool(&config.ServerMode, fc.Server.Enabled, !isFlagSet(fs, "server"))
		setString(&config.Port, fc.Server.Port, !isFlagSet(fs, "port"))
		setInt(&config.MaxRecursiveN, fc.Server.MaxRecursiveN, !isFlagSet(fs, "max-recursive-n"))
	}
}

func setInt(dst *int, src *int, ok bool) {
	if src != nil && ok {
		*dst = *src
	}
}

func setString(dst *string, src *string, ok bool) {
	if src != nil && ok {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool, ok bool) {
	if src != nil && ok {
		*dst = *src
	}
}
