package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LMS2OMR"

// Config holds runtime settings. Every field can come from a flag, an
// LMS2OMR_* environment variable or a .env file, in that order of precedence.
type Config struct {
	Env          string `mapstructure:"env" validate:"oneof=DEV TEST PROD"`
	Debug        bool   `mapstructure:"debug"`
	OutputDir    string `mapstructure:"out"`
	StartDir     string `mapstructure:"start_dir" validate:"required"`
	LogFile      string `mapstructure:"log_file"`
	RollbarToken string `mapstructure:"rollbar_token"`

	// Headless mode runs when Primary is set.
	Primary string `mapstructure:"primary"`
	Absent  string `mapstructure:"absent" validate:"omitempty,excluded_without=Primary"`

	Version bool `mapstructure:"version"`
}

// Headless reports whether a conversion was requested from the command line.
func (c *Config) Headless() bool {
	return c.Primary != ""
}

// Flags declares the command line surface.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lms2omr", pflag.ContinueOnError)
	fs.String("primary", "", "LMS scores report (csv, xls or xlsx); runs without the TUI")
	fs.String("absent", "", "optional roster of students who did not attempt the exam")
	fs.String("out", "", "directory for OMR_Upload_Format.xlsx (default: next to the primary sheet)")
	fs.String("start-dir", "", "directory the file picker opens in (default: current directory)")
	fs.String("log-file", "", "log file path")
	fs.Bool("debug", false, "verbose logging")
	fs.BoolP("version", "v", false, "print version and exit")
	return fs
}

// Load reads .env (if present), the environment and args, then validates.
func Load(args []string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	v.SetDefault("env", "DEV")
	v.SetDefault("debug", false)
	v.SetDefault("out", "")
	v.SetDefault("start_dir", cwd)
	v.SetDefault("log_file", "lms2omr.log")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("primary", "")
	v.SetDefault("absent", "")
	v.SetDefault("version", false)

	for key, flag := range map[string]string{
		"primary":   "primary",
		"absent":    "absent",
		"out":       "out",
		"start_dir": "start-dir",
		"log_file":  "log-file",
		"debug":     "debug",
		"version":   "version",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", flag)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	conf.Env = strings.ToUpper(conf.Env)

	if err := Validate(conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks struct tags and that configured directories exist.
func Validate(conf *Config) error {
	if err := validator.New().Struct(conf); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	for name, dir := range map[string]string{"out": conf.OutputDir, "start_dir": conf.StartDir} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return errors.Errorf("invalid configuration: %s %q is not a directory", name, dir)
		}
	}
	return nil
}

// loadDotEnv loads ./.env when it exists. Variables already set win.
func loadDotEnv() error {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	path := filepath.Join(cwd, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}
