//go:build !js

package options

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// _setupViper has nothing to overlay outside the browser.
func _setupViper(v *viper.Viper, flagSet *pflag.FlagSet) {}
