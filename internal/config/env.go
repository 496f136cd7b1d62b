package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// EnvPrefix is the prefix of every environment variable read by picalc,
// e.g. PICALC_DIGITS, PICALC_ALGO, PICALC_MARGIN_BITS, PICALC_FFT_THRESHOLD.
const EnvPrefix = "PICALC"

// newViper layers the parsed flag set over PICALC_* environment variables
// and, when --config (or PICALC_CONFIG) names one, a config file. Keys are
// the long flag names; dashes map to underscores in environment names.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, apperrors.WrapConfigError(err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.ConfigError{
				Message: "cannot read config file " + path + ": " + err.Error(),
				Cause:   err,
			}
		}
	}
	return v, nil
}
