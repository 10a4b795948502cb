//go:build js

package options

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// storageKey is the localStorage item holding a JSON object of settings.
const storageKey = "maskfield"

var lsEnv map[string]any

func init() {
	// Override Getenv for JS environment to use localStorage
	Getenv = func(key string) string {
		if lsEnv != nil {
			if value, ok := lsEnv[key]; ok {
				return fmt.Sprintf("%v", value)
			}
		}
		return ""
	}
}

// _setupViper overlays localStorage and then URL query parameters onto v.
func _setupViper(v *viper.Viper, flagSet *pflag.FlagSet) {
	lsEnv = make(map[string]any)
	storage := js.Global().Get("localStorage")
	if !storage.IsUndefined() && !storage.IsNull() {
		lsConfig := storage.Call("getItem", storageKey)
		if lsConfig.Type() == js.TypeString && lsConfig.String() != "" {
			config := map[string]any{}
			if err := json.Unmarshal([]byte(lsConfig.String()), &config); err != nil {
				fmt.Println("maskfield: error unmarshalling localStorage JSON:", err)
			} else {
				for key, value := range config {
					v.Set(key, value)
					lsEnv[key] = value
				}
			}
		}
	}

	// Read URL params and set them in Viper (overriding localStorage)
	location := js.Global().Get("location")
	if location.IsUndefined() {
		return
	}
	search := location.Get("search")
	if search.Type() != js.TypeString {
		return
	}
	urlParams := js.Global().Get("URLSearchParams").New(search)

	for _, k := range v.AllKeys() {
		if urlParams.Call("has", k).Bool() {
			if val := urlParams.Call("get", k); val.Type() == js.TypeString {
				v.Set(k, val.String())
			}
		}
	}

	flagSet.VisitAll(func(f *pflag.Flag) {
		if !urlParams.Call("has", f.Name).Bool() {
			return
		}
		val := urlParams.Call("get", f.Name)
		if val.Type() != js.TypeString {
			return
		}
		if err := flagSet.Set(f.Name, val.String()); err != nil {
			fmt.Printf("maskfield: error setting flag %s from URL param: %v\n", f.Name, err)
		}
		v.Set(f.Name, val.String())
	})
}
