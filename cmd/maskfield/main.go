// Command maskfield reads a password through a masked field, or rewrites the
// password inputs of an HTML page into masked field pairs.
//
// Usage:
//
//	maskfield [flags]
//
// Flags:
//
//	-s, --symbol string            Mask symbol (default "*")
//	-p, --prompt string            Prompt text (default "Password: ")
//	    --line                     Use a single readline prompt instead of the full-screen one
//	    --status                   Show a status bar and key help under the prompt
//	-r, --rewrite string           Rewrite password inputs in an HTML file ('-' for stdin) and print the result
//	-f, --fields strings           Ids of inputs to mask when rewriting (default: every password input with an id)
//	    --poll-interval duration   Caret check interval (default 100ms)
//	    --confine string           Caret rule: "selection" or "caret" (default "selection")
//	    --literal-policy string    Mask symbols typed past the end: "tail" keeps them, "drop" discards them (default "tail")
//	    --shadow-suffix string     Suffix of the hidden field's id (default "-unmasked")
//	    --masked-class string      Class added to the visible field (default "masked")
//	    --config string            Path to the configuration file
//	-v, --verbose                  Verbose output
//	    --debug                    Debug output
//	-h, --help                     Display help information
//
// On a terminal maskfield prompts for a password, showing only mask symbols, and
// prints the value on stdout. When stdin is not a terminal one line is read from it
// and reconciled as a single edit of an empty field.
//
// Settings may also come from a config file (./config.yaml, $HOME/.maskfield/config.yaml,
// /etc/maskfield/config.yaml) or MASKFIELD_* environment variables. Flags take precedence.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tmc/maskfield"
	"github.com/tmc/maskfield/dom/htmldoc"
	"github.com/tmc/maskfield/interactive"
	"github.com/tmc/maskfield/options"
	"github.com/tmc/maskfield/widget"
)

func main() {
	opts, fs, err := initFlags(os.Args, os.Stdin)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, fs); err != nil {
		if errors.Is(err, interactive.ErrInterrupted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "maskfield:", err)
		os.Exit(1)
	}
}

func initFlags(args []string, stdin io.Reader) (options.RunOptions, *pflag.FlagSet, error) {
	opts := options.RunOptions{
		Config: options.Default(),
		Stdin:  stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	name := "maskfield"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	d := options.Default()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.StringP("symbol", "s", d.Symbol, "Mask symbol")
	fs.StringVarP(&opts.Prompt, "prompt", "p", interactive.DefaultPrompt, "Prompt text")
	fs.BoolVar(&opts.LineMode, "line", false, "Use a single readline prompt instead of the full-screen one")
	fs.BoolVar(&opts.Status, "status", false, "Show a status bar and key help under the prompt")
	fs.StringVarP(&opts.Rewrite, "rewrite", "r", "", "Rewrite password inputs in an HTML file ('-' for stdin) and print the result")
	fs.StringSliceP("fields", "f", nil, "Ids of inputs to mask when rewriting (default: every password input with an id)")
	fs.Duration("poll-interval", d.PollInterval, "Caret check interval")
	fs.String("confine", d.Confine, `Caret rule: "selection" or "caret"`)
	fs.String("literal-policy", d.LiteralPolicy, `Mask symbols typed past the end: "tail" keeps them, "drop" discards them`)
	fs.String("shadow-suffix", d.ShadowSuffix, "Suffix of the hidden field's id")
	fs.String("masked-class", d.MaskedClass, "Class added to the visible field")
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to the configuration file")
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.Bool("debug", false, "Debug output")
	help := fs.BoolP("help", "h", false, "Display help information")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "maskfield reads a password through a masked field")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", name)
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr, `
Examples:
	$ pw=$(maskfield -s '•')
	$ maskfield --rewrite login.html -f password > masked.html`)
	}
	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	if *help {
		fs.Usage()
		return opts, fs, pflag.ErrHelp
	}
	return opts, fs, nil
}

func run(ctx context.Context, opts options.RunOptions, fs *pflag.FlagSet) error {
	cfg, err := options.LoadConfig(opts.ConfigPath, opts.Stderr, fs)
	if err != nil {
		return err
	}
	opts.Config = cfg

	logger, err := NewLogger(opts.Stderr, cfg.Verbose, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	switch {
	case opts.Rewrite != "":
		return rewrite(opts, logger)
	case isTerminal(opts.Stdin):
		return prompt(ctx, opts, logger)
	default:
		return readPiped(opts, logger)
	}
}

// prompt reads the value interactively and prints it on stdout.
func prompt(ctx context.Context, opts options.RunOptions, logger *zap.SugaredLogger) error {
	sess, err := interactive.NewSession(interactive.Config{
		Prompt:        opts.Prompt,
		Symbol:        opts.MaskSymbol(),
		Rule:          opts.Rule(),
		LiteralPolicy: opts.Policy(),
		PollInterval:  opts.PollInterval,
		LineMode:      opts.LineMode,
		ShowStatus:    opts.Status,
		Stdin:         opts.Stdin,
		Stdout:        opts.Stderr,
		Stderr:        opts.Stderr,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	value, err := sess.Run(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(opts.Stdout, value)
	return err
}

// readPiped treats one line of stdin as text entered into an empty field in a single edit.
func readPiped(opts options.RunOptions, logger *zap.SugaredLogger) error {
	line, err := bufio.NewReader(opts.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error reading from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")

	m := maskfield.NewMasker(opts.MaskSymbol(),
		maskfield.WithLiteralPolicy(opts.Policy()),
		maskfield.WithLogger(logger))
	display := m.Update(line)
	logger.Debugw("reconciled piped input", "runes", m.Len())

	fmt.Fprintf(opts.Stderr, "%s%s\n", opts.Prompt, display)
	_, err = fmt.Fprintln(opts.Stdout, m.Value())
	return err
}

// rewrite masks password inputs in an HTML page and prints the page.
func rewrite(opts options.RunOptions, logger *zap.SugaredLogger) error {
	r := opts.Stdin
	if opts.Rewrite != "-" {
		f, err := os.Open(opts.Rewrite)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	doc, err := htmldoc.Parse(r)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", opts.Rewrite, err)
	}

	ids := opts.Fields
	if len(ids) == 0 {
		ids = passwordInputs(doc, logger)
	}

	reg := widget.NewRegistry(widget.Options{
		PollInterval:  opts.PollInterval,
		Rule:          opts.Rule(),
		LiteralPolicy: opts.Policy(),
		ShadowSuffix:  opts.ShadowSuffix,
		MaskedClass:   opts.MaskedClass,
		Logger:        logger,
	})
	defer reg.Close()

	var failed []string
	for _, id := range ids {
		if _, ok := reg.Install(doc, id, opts.MaskSymbol()); !ok {
			failed = append(failed, id)
		}
	}
	if err := doc.Render(opts.Stdout); err != nil {
		return err
	}
	fmt.Fprintln(opts.Stdout)
	if len(failed) > 0 {
		return fmt.Errorf("could not mask %s", strings.Join(failed, ", "))
	}
	return nil
}

// passwordInputs returns the ids of the document's password inputs.
func passwordInputs(doc *htmldoc.Document, logger *zap.SugaredLogger) []string {
	var ids []string
	for _, el := range doc.ElementsByTagName("input") {
		if t, _ := el.Attribute("type"); !strings.EqualFold(t, "password") {
			continue
		}
		if el.ID() == "" {
			logger.Warnw("skipping password input without id")
			continue
		}
		ids = append(ids, el.ID())
	}
	return ids
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
