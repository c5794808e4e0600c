package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/asaskevich/govalidator"

	"github.com/digitorus/pdfcertify/locale"
)

// DefaultLocation is the config file used when none is given.
var DefaultLocation = "./pdfcertify.toml"

// Config is the root of the config
type Config struct {
	Title     string `toml:"title"`
	Suffix    string `toml:"suffix"`
	Locale    string `toml:"locale" valid:"in(es|en)"`
	DateStyle string `toml:"date_style" valid:"in(abbreviated|iso)"`

	Labels Labels `toml:"labels"`
	Page   Page   `toml:"page"`
	Fonts  Fonts  `toml:"fonts"`
	Auth   Auth   `toml:"auth"`
}

// Labels of the three lines below the title.
type Labels struct {
	Signer string `toml:"signer"`
	Date   string `toml:"date"`
	Pages  string `toml:"pages"`
}

// Page geometry, in points.
type Page struct {
	FallbackWidth  float64 `toml:"fallback_width" valid:"range(1|14400)"`
	FallbackHeight float64 `toml:"fallback_height" valid:"range(1|14400)"`
	Margin         float64 `toml:"margin" valid:"range(1|720)"`
}

// Fonts are optional TrueType font files. Empty means the standard
// Helvetica fonts.
type Fonts struct {
	Regular string `toml:"regular"`
	Bold    string `toml:"bold"`
}

// Auth holds the single user allowed to certify documents. An empty user
// disables authentication.
type Auth struct {
	User         string `toml:"user" valid:"printableascii"`
	PasswordHash string `toml:"password_hash"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Title:     "Certificado de copia",
		Suffix:    "_con_hoja_final",
		Locale:    "es",
		DateStyle: "abbreviated",
		Labels: Labels{
			Signer: "FIRMA",
			Date:   "FECHA",
			Pages:  "NÚMERO DE PÁGINAS",
		},
		Page: Page{
			FallbackWidth:  595,
			FallbackHeight: 842,
			Margin:         36,
		},
	}
}

// ValidateFields validates all the fields of the config
func (c Config) ValidateFields() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		return err
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix: %q must not contain path separators", c.Suffix)
	}
	if c.Auth.User != "" && c.Auth.PasswordHash == "" {
		return errors.New("auth.password_hash: required when auth.user is set")
	}
	return nil
}

// Months returns the month table of the configured locale.
func (c Config) Months() (locale.Months, error) {
	return locale.Lookup(c.Locale)
}

// Style returns the configured date style.
func (c Config) Style() (locale.Style, error) {
	return locale.ParseStyle(c.DateStyle)
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data string) (Config, error) {
	c := Default()
	if _, err := toml.Decode(data, &c); err != nil {
		return Config{}, fmt.Errorf("config is not valid TOML: %w", err)
	}
	return c, c.validate()
}

// Load reads the config file at path on top of the defaults. A missing file
// at DefaultLocation yields the defaults; any other missing file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultLocation
	}

	c := Default()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultLocation {
			return c, nil
		}
		return Config{}, fmt.Errorf("config file is missing: %s", path)
	}

	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("config is not valid TOML: %w", err)
	}
	return c, c.validate()
}

func (c Config) validate() error {
	if err := c.ValidateFields(); err != nil {
		return fmt.Errorf("config is not valid: %w", err)
	}
	return nil
}
