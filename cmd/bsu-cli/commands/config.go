package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"studentbsu/internal/components/configutil"
	"studentbsu/internal/components/telemetry"
	"studentbsu/internal/scrapers/bsu"
	"time"
)

const defaultRequestsPerSecond = 2

type TokensConfig struct {
	Login    *bsu.FormTokens `json:"login"`
	Progress *bsu.FormTokens `json:"progress"`
}

type Config struct {
	Surname     string `json:"surname"`
	StudentId   string `json:"student_id"`
	ContractNum string `json:"contract_num"`

	BaseUrl        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// 0 falls back to defaultRequestsPerSecond, a negative value disables
	// rate limiting
	RequestsPerSecond float64 `json:"requests_per_second"`
	UserAgent         string  `json:"user_agent"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`

	// program and arguments, the captcha image path is appended
	CaptchaCommand []string `json:"captcha_command"`
	CaptchaDir     string   `json:"captcha_dir"`
	DumpDir        string   `json:"dump_dir"`

	Tokens TokensConfig         `json:"tokens"`
	Otlp   telemetry.OtlpConfig `json:"otlp"`
}

// Overrides are the values given on the command line, empty fields are
// left alone.
type Overrides struct {
	Surname        string
	StudentId      string
	ContractNum    string
	CaptchaCommand string
	DumpDir        string
}

// LoadConfig reads the config at `path`. With `recursive` set a relative
// path is also looked up in every parent of the working directory. A missing
// file is not an error since everything can also be passed through flags.
func LoadConfig(path string, recursive bool, overrides Overrides) (Config, error) {
	var cfg Config
	var err error
	if recursive && !filepath.IsAbs(path) {
		cfg, err = configutil.ReadRecursively[Config](path)
	} else {
		cfg, err = configutil.ReadConfig[Config](path)
	}
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg.apply(overrides)
	return cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.Surname != "" {
		c.Surname = o.Surname
	}
	if o.StudentId != "" {
		c.StudentId = o.StudentId
	}
	if o.ContractNum != "" {
		c.ContractNum = o.ContractNum
	}
	if o.CaptchaCommand != "" {
		c.CaptchaCommand = strings.Fields(o.CaptchaCommand)
	}
	if o.DumpDir != "" {
		c.DumpDir = o.DumpDir
	}
}

func (c Config) Identity() bsu.Identity {
	return bsu.Identity{
		Surname:     c.Surname,
		StudentId:   c.StudentId,
		ContractNum: c.ContractNum,
	}
}

// SessionOptions maps the config onto bsu.SessionOptions, leaving the
// captcha solver, telemetry and output for the caller.
func (c Config) SessionOptions() bsu.SessionOptions {
	rps := c.RequestsPerSecond
	switch {
	case rps == 0:
		rps = defaultRequestsPerSecond
	case rps < 0:
		rps = 0
	}

	opts := bsu.SessionOptions{
		BaseUrl:           c.BaseUrl,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: rps,
		UserAgent:         c.UserAgent,
		CloudflareBypass:  c.CloudflareBypass,
		LoginTokens:       c.Tokens.Login,
		ProgressTokens:    c.Tokens.Progress,
		CaptchaDir:        c.CaptchaDir,
	}
	if len(c.CaptchaCommand) > 0 {
		opts.CaptchaSolver = bsu.CommandSolver{
			Name: c.CaptchaCommand[0],
			Args: c.CaptchaCommand[1:],
		}
	}
	return opts
}
