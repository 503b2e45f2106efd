// Package config merges the player's settings from a TOML file, a .env
// file, GOAW_* environment variables and command line flags, later sources
// winning.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/davetcode/goaw/resource"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFile   = "goaw.toml"
	DefaultDotEnv = ".env"

	EditionAnotherWorld   = "another-world"
	EditionOutOfThisWorld = "out-of-this-world"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DataDir            string `toml:"data_dir"`
	StartPart          uint16 `toml:"start_part"`
	Edition            string `toml:"edition"`
	KeepCopyProtection bool   `toml:"keep_copy_protection"`
	FrameHz            int    `toml:"frame_hz"`
	LogLevel           string `toml:"log_level"`
	LogFile            string `toml:"log_file"`
	StringsFile        string `toml:"strings_file"`
	ScreenWidth        int    `toml:"screen_width"`
}

func Default() Config {
	return Config{
		DataDir:     ".",
		Edition:     EditionAnotherWorld,
		FrameHz:     50,
		LogLevel:    "info",
		LogFile:     "goaw.log",
		ScreenWidth: 160,
	}
}

type sources struct {
	file   string
	dotenv string
}

func bindFlags(name string, c *Config, s *sources) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&s.file, "config", s.file, "TOML configuration file")
	flags.StringVar(&s.dotenv, "env", s.dotenv, "file of GOAW_* variables")
	flags.StringVar(&c.DataDir, "data", c.DataDir, "directory holding MEMLIST.BIN and the BANK files")
	flags.Func("part", "part to start at, 16000-16009", func(v string) error {
		n, err := strconv.ParseUint(v, 10, 16)
		c.StartPart = uint16(n)
		return err
	})
	flags.StringVar(&c.Edition, "edition", c.Edition, "another-world or out-of-this-world")
	flags.BoolVar(&c.KeepCopyProtection, "protection", c.KeepCopyProtection, "start at the copy protection screen")
	flags.IntVar(&c.FrameHz, "hz", c.FrameHz, "display ticks per second")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "logrus level")
	flags.StringVar(&c.LogFile, "log", c.LogFile, "log file, the terminal belongs to the player")
	flags.StringVar(&c.StringsFile, "strings", c.StringsFile, "TOML file of string overrides")
	flags.IntVar(&c.ScreenWidth, "width", c.ScreenWidth, "terminal columns used for the picture")
	return flags
}

// Load - Builds the configuration for args. lookup reads the process
// environment, usually os.LookupEnv.
func Load(name string, args []string, lookup func(string) (string, bool)) (Config, error) {
	s := sources{file: DefaultFile, dotenv: DefaultDotEnv}

	// First pass only finds the files, flags are applied again last
	var scratch Config
	pre := bindFlags(name, &scratch, &s)
	pre.SetOutput(io.Discard)
	if err := pre.Parse(args); err != nil {
		return Config{}, err
	}
	explicit := map[string]bool{}
	pre.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	c := Default()
	if err := c.readFile(s.file, explicit["config"]); err != nil {
		return Config{}, err
	}

	dotenv, err := godotenv.Read(s.dotenv)
	if err != nil && (explicit["env"] || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, fmt.Errorf("reading %s: %w", s.dotenv, err)
	}
	if err := c.ApplyEnv(func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return Config{}, err
	}

	if err := bindFlags(name, &c, &s).Parse(args); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c *Config) readFile(path string, required bool) error {
	_, err := toml.DecodeFile(path, c)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !required:
		return nil
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}
}

// ApplyEnv - Overrides settings from GOAW_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GOAW_DATA":      &c.DataDir,
		"GOAW_EDITION":   &c.Edition,
		"GOAW_LOG_LEVEL": &c.LogLevel,
		"GOAW_LOG_FILE":  &c.LogFile,
		"GOAW_STRINGS":   &c.StringsFile,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GOAW_FRAME_HZ": &c.FrameHz,
		"GOAW_WIDTH":    &c.ScreenWidth,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("GOAW_PART"); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("GOAW_PART: %w", err)
		}
		c.StartPart = uint16(n)
	}
	if v, ok := lookup("GOAW_KEEP_COPY_PROTECTION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GOAW_KEEP_COPY_PROTECTION: %w", err)
		}
		c.KeepCopyProtection = b
	}
	return nil
}

func (c Config) Validate() error {
	if c.Edition != EditionAnotherWorld && c.Edition != EditionOutOfThisWorld {
		return fmt.Errorf("%w: unknown edition %q", ErrInvalid, c.Edition)
	}
	if c.StartPart != 0 && !resource.PartID(c.StartPart).Valid() {
		return fmt.Errorf("%w: %w %d", ErrInvalid, resource.ErrInvalidPart, c.StartPart)
	}
	if c.FrameHz <= 0 {
		return fmt.Errorf("%w: frame_hz must be positive", ErrInvalid)
	}
	if c.ScreenWidth < 40 {
		return fmt.Errorf("%w: screen_width must be at least 40", ErrInvalid)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c Config) OutOfThisWorld() bool { return c.Edition == EditionOutOfThisWorld }

// Part - The part to start at, zero when the game should pick.
func (c Config) Part() resource.PartID { return resource.PartID(c.StartPart) }

// Strings - The built in string table with the overrides file applied.
func (c Config) Strings() (resource.Strings, error) {
	s := resource.EnglishStrings()
	if c.StringsFile == "" {
		return s, nil
	}
	f, err := os.Open(c.StringsFile)
	if err != nil {
		return nil, fmt.Errorf("opening strings: %w", err)
	}
	defer f.Close() // nolint:errcheck
	return s.WithOverrides(f)
}
