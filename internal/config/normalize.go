package config

import "strings"

func (c *Config) normalize() error {
	var err error

	if c.Paths.UsersDir, err = expandPath(c.Paths.UsersDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return err
	}

	c.Paths.Bind = strings.TrimSpace(c.Paths.Bind)
	c.Account.Email = strings.ToLower(strings.TrimSpace(c.Account.Email))
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	c.Encoder.Bitrate = strings.TrimSpace(c.Encoder.Bitrate)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}
