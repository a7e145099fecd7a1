package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var bitratePattern = regexp.MustCompile(`^\d+k$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAccount(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateUploads(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.UsersDir == "" {
		return errors.New("paths.users_dir must be set")
	}
	if c.Paths.DatabasePath == "" {
		return errors.New("paths.database_path must be set")
	}
	if c.Paths.Bind == "" {
		return errors.New("paths.bind must be set")
	}
	return nil
}

func (c *Config) validateAccount() error {
	email := strings.TrimSpace(c.Account.Email)
	if email == "" {
		return errors.New("account.email must be set")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("account.email %q is not an email address", email)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.SampleRate <= 0 {
		return errors.New("encoder.sample_rate must be positive")
	}
	if c.Encoder.Channels < 1 || c.Encoder.Channels > 2 {
		return errors.New("encoder.channels must be 1 or 2")
	}
	if !bitratePattern.MatchString(c.Encoder.Bitrate) {
		return fmt.Errorf("encoder.bitrate %q must look like \"192k\"", c.Encoder.Bitrate)
	}
	if c.Encoder.VideoTimeout <= 0 {
		return errors.New("encoder.video_timeout must be positive")
	}
	return nil
}

func (c *Config) validateUploads() error {
	if c.Uploads.MaxUploadMiB <= 0 {
		return errors.New("uploads.max_upload_mib must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
