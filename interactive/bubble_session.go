package interactive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tmc/maskfield/ui/help"
	"github.com/tmc/maskfield/ui/keymap"
	"github.com/tmc/maskfield/ui/maskinput"
	"github.com/tmc/maskfield/ui/statusbar"
)

var _ Session = (*BubbleSession)(nil)

// BubbleSession prompts with a Bubble Tea program around a maskinput.Model.
type BubbleSession struct {
	config  Config
	log     *zap.SugaredLogger
	program *tea.Program
}

// NewBubbleSession creates a new Bubble Tea based session.
func NewBubbleSession(cfg Config) (*BubbleSession, error) {
	return &BubbleSession{config: cfg, log: cfg.logger().Named("bubble")}, nil
}

// promptModel is the program's top level model.
type promptModel struct {
	input      maskinput.Model
	help       help.Model
	keyMap     keymap.KeyMap
	focus      tea.Cmd
	showStatus bool
	width      int

	value string
	err   error
	done  bool
}

func newPromptModel(cfg Config, log *zap.SugaredLogger) promptModel {
	km := keymap.DefaultKeyMap()
	in := maskinput.New(cfg.Symbol,
		maskinput.WithRule(cfg.Rule),
		maskinput.WithInterval(cfg.PollInterval),
		maskinput.WithLiteralPolicy(cfg.LiteralPolicy),
		maskinput.WithKeyMap(km),
		maskinput.WithLogger(log))
	in.SetPrompt(cfg.prompt())
	in.SetPlaceholder(cfg.Placeholder)
	m := promptModel{
		input:      in,
		help:       help.New(km),
		keyMap:     km,
		showStatus: cfg.ShowStatus,
	}
	m.focus = m.input.Focus()
	return m
}

func (m promptModel) Init() tea.Cmd {
	return tea.Batch(m.input.Init(), m.focus)
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case maskinput.SubmitMsg:
		m.value, m.done = msg.Value, true
		return m, tea.Quit
	case maskinput.CancelMsg:
		m.err, m.done = ErrInterrupted, true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help, _ = m.help.Update(msg)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.ToggleHelp) {
			m.help, _ = m.help.Update(msg)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	if !m.showStatus {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(statusbar.Render(m.width, statusbar.StatusData{
		Mode:   "masked",
		Length: m.input.Len(),
		Symbol: m.input.Symbol(),
		Err:    m.input.Err,
	}))
	b.WriteString("\n")
	b.WriteString(m.help.View())
	return b.String()
}

// Run starts the program and returns the submitted value.
func (s *BubbleSession) Run(ctx context.Context) (string, error) {
	var options []tea.ProgramOption
	if s.config.Stdin != nil {
		options = append(options, tea.WithInput(s.config.Stdin))
	}
	var out io.Writer = os.Stderr
	if s.config.Stdout != nil {
		out = s.config.Stdout
	}
	options = append(options, tea.WithOutput(out))

	s.program = tea.NewProgram(newPromptModel(s.config, s.log), options...)

	type result struct {
		model tea.Model
		err   error
	}
	progDone := make(chan result, 1)
	go func() {
		m, err := s.program.Run()
		progDone <- result{m, err}
	}()

	select {
	case <-ctx.Done():
		s.log.Debug("context cancelled, quitting program")
		s.program.Quit()
		<-progDone
		return "", ctx.Err()
	case r := <-progDone:
		if r.err != nil {
			return "", fmt.Errorf("prompt: %w", r.err)
		}
		return finalValue(r.model)
	}
}

func finalValue(model tea.Model) (string, error) {
	m, ok := model.(promptModel)
	if !ok || !m.done {
		return "", ErrInterrupted
	}
	if m.err != nil {
		return "", m.err
	}
	return m.value, nil
}
