package app

import (
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/JiscSD/rdss-datacite-transcoder/schema"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const defaultConfig = `# RDSS DataCite Transcoder

################################## LOGGING ####################################

[logging]

#
# Logging verbosity level.
# Supported values: "DEBUG", "INFO", "WARN", "ERROR", "FATAL" or "PANIC".
#
level = "INFO"

################################## SCHEMA #####################################

[schema]

#
# DataCite schema version used when none is requested.
# Supported values: "4.5" or "4.6".
#
default_version = "4.6"

#
# Document validation supports three modes:
#
#   validation_mode="strict"
#   Documents that fail validation are not publishable.
#   The validation errors are reported to the caller.
#
#   validation_mode="warnings"
#   Documents that fail validation are still published.
#   The validation errors are logged in WARN mode.
#
#   validation_mode="disabled"
#   Document validation will not be performed.
#
validation_mode = "strict"

################################## LEGACY #####################################

[legacy]

#
# Path to the legacy SQLite database, opened read-only.
# Legacy imports are disabled when empty.
#
database = ""

#
# Optional YAML document mapping legacy role codes to roles, e.g.
#
#   roles:
#     curator: data-curator
#
# The bundled mapping is used when empty.
#
roles_file = ""

#
# Upper bound of a legacy import, and of the time spent retrying to open the
# database.
#
timeout = "30s"
max_elapsed_time = "10s"

################################## SERVER #####################################

[server]

addr = ":6060"

################################## AWS ########################################

[aws]

s3_profile = ""
s3_endpoint = ""
`

var validationModes = []string{ValidationModeStrict, ValidationModeWarnings, ValidationModeDisabled}

type Config struct {
	v *viper.Viper

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Schema struct {
		DefaultVersion string `mapstructure:"default_version"`
		ValidationMode string `mapstructure:"validation_mode"`
	} `mapstructure:"schema"`

	Legacy struct {
		Database       string        `mapstructure:"database"`
		RolesFile      string        `mapstructure:"roles_file"`
		Timeout        time.Duration `mapstructure:"timeout"`
		MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`
	} `mapstructure:"legacy"`

	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	AWS struct {
		S3Profile  string `mapstructure:"s3_profile"`
		S3Endpoint string `mapstructure:"s3_endpoint"`
	} `mapstructure:"aws"`
}

func (c Config) Validate() error {
	if !contains(schema.SupportedVersions, c.Schema.DefaultVersion) {
		return errors.Errorf("unsupported schema.default_version %q", c.Schema.DefaultVersion)
	}
	if !contains(validationModes, c.Schema.ValidationMode) {
		return errors.Errorf("unknown schema.validation_mode %q", c.Schema.ValidationMode)
	}
	if c.Legacy.Timeout < 0 || c.Legacy.MaxElapsedTime < 0 {
		return errors.New("legacy durations cannot be negative")
	}
	return nil
}

func (c Config) String() string {
	tmpfile, err := ioutil.TempFile("", "config.*.toml")
	if err != nil {
		return err.Error()
	}
	defer os.Remove(tmpfile.Name())
	defer tmpfile.Close()
	err = c.v.WriteConfigAs(tmpfile.Name())
	if err != nil {
		return err.Error()
	}
	blob, err := ioutil.ReadAll(tmpfile)
	if err != nil {
		return err.Error()
	}
	return string(blob)
}

func loadConfig(c *Config) error {
	v := viper.New()

	v.SetEnvPrefix("RDSS_DATACITE_TRANSCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rdss-datacite-transcoder")
	v.SetConfigType("toml")
	v.AddConfigPath("$HOME/.config/")
	v.AddConfigPath("/etc/rdss/")

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read our default configuration.
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		panic(err) // Not in the user path.
	}

	// Include configuration file provided by the user.
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return errors.Wrap(err, "configuration unmarshaling failed")
	}

	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "config did not pass validation")
	}

	c.v = v

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
