//go:build js

// Command maskfield-wasm masks password fields in the page that loads it.
//
// Fields listed in the "fields" setting are masked once the document is ready.
// Settings come from the "maskfield" localStorage item (a JSON object) and from the
// page's query string, e.g. ?fields=password&symbol=•. The page can also call
//
//	maskedPassword(id, symbol) bool
//	unmaskPassword(id) bool
package main

import (
	"fmt"
	"os"
	"syscall/js"
	"time"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tmc/maskfield/dom/jsdom"
	"github.com/tmc/maskfield/options"
	"github.com/tmc/maskfield/widget"
)

// sweepInterval is how often bindings of removed fields are dropped.
const sweepInterval = 10 * time.Second

func main() {
	fs := pflag.NewFlagSet("maskfield-wasm", pflag.ContinueOnError)
	d := options.Default()
	fs.String("symbol", d.Symbol, "Mask symbol")
	fs.StringSlice("fields", nil, "Ids of inputs to mask")
	fs.Duration("poll-interval", d.PollInterval, "Caret check interval")
	fs.String("confine", d.Confine, "Caret rule")
	fs.String("literal-policy", d.LiteralPolicy, "Literal policy")
	fs.String("shadow-suffix", d.ShadowSuffix, "Suffix of the hidden field's id")
	fs.String("masked-class", d.MaskedClass, "Class added to the visible field")
	fs.Bool("verbose", false, "Verbose output")
	fs.Bool("debug", false, "Debug output")

	cfg, err := options.LoadConfig("", os.Stderr, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "maskfield: using defaults:", err)
		cfg = options.Default()
	}
	log := newLogger(cfg)

	doc := jsdom.New()
	reg := widget.NewRegistry(widget.Options{
		PollInterval:  cfg.PollInterval,
		Rule:          cfg.Rule(),
		LiteralPolicy: cfg.Policy(),
		ShadowSuffix:  cfg.ShadowSuffix,
		MaskedClass:   cfg.MaskedClass,
		Logger:        log,
	})

	js.Global().Set("maskedPassword", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 || args[0].Type() != js.TypeString {
			return false
		}
		symbol := cfg.MaskSymbol()
		if len(args) > 1 && args[1].Type() == js.TypeString {
			symbol = 0
			if r, _ := utf8.DecodeRuneInString(args[1].String()); r != utf8.RuneError {
				symbol = r
			}
		}
		_, ok := reg.Install(doc, args[0].String(), symbol)
		return ok
	}))
	js.Global().Set("unmaskPassword", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 || args[0].Type() != js.TypeString {
			return false
		}
		return reg.Remove(args[0].String())
	}))

	doc.OnReady(func() {
		for _, id := range cfg.Fields {
			if _, ok := reg.Install(doc, id, cfg.MaskSymbol()); !ok {
				log.Warnw("could not mask field", "id", id)
			}
		}
	})

	go func() {
		for range time.Tick(sweepInterval) {
			if n := reg.Sweep(doc); n > 0 {
				log.Infow("dropped bindings of removed fields", "count", n)
			}
		}
	}()

	select {}
}

// newLogger logs to the browser console through stderr.
func newLogger(cfg *options.Config) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if cfg.Verbose {
		level = zapcore.InfoLevel
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar().Named("maskfield")
}
