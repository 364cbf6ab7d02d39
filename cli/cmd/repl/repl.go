package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/tpl"
	"github.com/ardnew/neutral/value"
)

// editSchemaMsg is sent when the schema edit produced a new schema.
type editSchemaMsg struct{ schema *value.Value }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit failed for any other reason.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	defaultWidth = 80
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help               Print this cruft
  schema [json|yaml] Print the schema
  errors             Print the errors of the last render
  result             Print the full result of the last render
  set KEY=JSON       Set a data key; nested keys use ->
  lang TAG           Set the current language
  load FILE          Merge a JSON or YAML schema file
  render FILE        Render a template file
  edit               Edit the schema in $EDITOR
  clear              Clear screen
  quit               Exit REPL

Usage:
  Type template source to render it, e.g. {:;__hello-nts:}
  Block names complete after {: and data keys complete inside blocks
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between render and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to browse command history from either mode
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode is the interpretation of a submitted line.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// tag is the history file prefix of the mode.
func (m inputMode) tag() string {
	if m == modeCtrl {
		return "C:"
	}

	return "E:"
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

func (m inputMode) prompt() string {
	if m == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

// echo formats a submitted line the way it was typed.
func (m inputMode) echo(input string) string {
	return m.prompt() + inputStyle.Render(input)
}

// modeInput is the saved input line of a mode while the other is active.
type modeInput struct {
	text   string
	cursor int
}

// altNav is the state saved when Alt+Up/Down starts browsing command
// history, restored when browsing runs off either end.
type altNav struct {
	active bool
	mode   inputMode
	modeInput
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	tp         *tpl.Template
	logger     log.Logger
	history    *History
	historyIdx int
	last       *tpl.Result // result of the latest render, if any

	matches    fuzzy.Matches // current fuzzy match results
	candidates []string      // backing candidate list
	wordStart  int           // byte offset of current word start
	wordEnd    int           // byte offset of current word end
	suggIdx    int           // selected candidate index
	tabActive  bool          // whether user is tab-cycling
	preTab     modeInput     // input before tab-cycling began
	alt        altNav
	saved      [2]modeInput  // per-mode input while the other mode is active
	width      int
	quitting   bool
	mode       inputMode
}

// Run starts the REPL over tp. Each line typed in render mode replaces the
// template source and renders it against the schema of tp, which persists
// across lines. An empty historyPath keeps history in memory.
func Run(
	ctx context.Context,
	tp *tpl.Template,
	historyPath string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("history", historyPath),
		slog.Int("schema_keys", tp.Schema().Len()),
	)

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(
			ctx,
			"could not load history",
			slog.String("path", historyPath),
			slog.String("error", err.Error()),
		)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, tp, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func newModel(
	ctx context.Context,
	tp *tpl.Template,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		tp:         tp,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editSchemaMsg:
		if err := m.tp.SetSchema(msg.schema); err != nil {
			return m, tea.Println(errorStyle.Render("🗴 — error: " + err.Error()))
		}

		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("schema_keys", msg.schema.Len()),
		)

		return m, tea.Println(resultStyle.Render("✔ — schema updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 — edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 — error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint returns the line shown below the input.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type template source or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	if m.mode == modeEval {
		name, inBlock, atName := blockContext(input, m.input.Position())
		if inBlock && !atName {
			if u, ok := usage[name]; ok {
				return hintStyle.Render(u)
			}
		}
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive = false
		m.alt.active = false
		m.historyIdx = m.history.Len()
		m.setInput("")

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.alt.active = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.refreshMatches(true)

		return m, nil

	case tea.KeyTab:
		m.cycle(1)

		return m, nil

	case tea.KeyShiftTab:
		m.cycle(-1)

		return m, nil

	case tea.KeyUp:
		if msg.Alt {
			m.browseCtrl(-1)
		} else {
			m.historyPrev()
		}

		return m, nil

	case tea.KeyDown:
		if msg.Alt {
			m.browseCtrl(1)
		} else {
			m.historyNext()
		}

		return m, nil

	case tea.KeyShiftUp:
		m.historyInMode(-1)

		return m, nil

	case tea.KeyShiftDown:
		m.historyInMode(1)

		return m, nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTab.text)
			m.input.SetCursor(m.preTab.cursor)
			m.refreshMatches(false)

			return m, nil
		}

		m.alt.active = false

		if m.mode == modeEval {
			m.switchTo(modeCtrl)
		} else {
			m.switchTo(modeEval)
		}

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirming a candidate.
	var cmd tea.Cmd

	m.tabActive = false
	m.alt.active = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end. A single
// candidate is accepted at once.
func (m *model) cycle(step int) {
	n := len(m.matches)
	if n == 0 {
		return
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTab = modeInput{m.input.Value(), m.input.Position()}

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceWord(m.matches[m.suggIdx].Str)
}

// replaceWord substitutes the word under the cursor and moves the cursor to
// its end.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refreshMatches recomputes fuzzy matches for the current input. When
// autoConfirm is true and the typed word already equals the sole candidate,
// the candidate is accepted.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// setInput replaces the input line and moves the cursor to its end.
func (m *model) setInput(s string) {
	m.input.SetValue(s)
	m.input.SetCursor(len(s))
	m.refreshMatches(false)
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]modeInput{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(
			m.ctxFunc(),
			"could not save history",
			slog.String("error", err.Error()),
		)
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl render", slog.String("input", input))

	m.tp.SetSource(input)

	return m, tea.Sequence(append(
		[]tea.Cmd{tea.Println(modeEval.echo(input))},
		m.render()...,
	)...)
}

// render runs a pass over the current source and returns the commands that
// print its output and status.
func (m *model) render() []tea.Cmd {
	out := m.tp.Render(m.ctxFunc())
	res := m.tp.Result()
	m.last = &res

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl render result",
		slog.String("status", res.Status),
		slog.Int("errors", len(res.Errors)),
		slog.Duration("elapsed", res.Elapsed),
	)

	cmds := []tea.Cmd{tea.Println(resultStyle.Render(out))}

	if line := statusLine(res); line != "" {
		cmds = append(cmds, tea.Println(line))
	}

	return cmds
}

// statusLine summarizes a result that is not a clean 200.
func statusLine(res tpl.Result) string {
	var parts []string

	if res.Status != "200" {
		s := res.Status + " " + res.Text
		if res.Param != "" {
			s += ": " + res.Param
		}

		parts = append(parts, errorStyle.Render(s))
	}

	if n := len(res.Errors); n > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d error(s)", n))+
			hintStyle.Render(" (type errors in command mode)"))
	}

	return strings.Join(parts, hintStyle.Render(" · "))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return m, nil
	}

	echo := tea.Println(modeCtrl.echo(input))
	name, args := fields[0], fields[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.editSchema())

	case "r", "render":
		if len(args) != 1 {
			return m, tea.Sequence(echo, printError(ErrUsage, "render FILE"))
		}

		if err := m.tp.SetFile(args[0]); err != nil {
			return m, tea.Sequence(echo, printError(err, ""))
		}

		return m, tea.Sequence(append([]tea.Cmd{echo}, m.render()...)...)
	}

	out, err := m.runCommand(name, args)
	if err != nil {
		return m, tea.Sequence(echo, printError(err, ""))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

func printError(err error, detail string) tea.Cmd {
	msg := "error: " + err.Error()
	if detail != "" {
		msg += ": " + detail
	}

	return tea.Println(errorStyle.Render(msg))
}

// runCommand executes a command that only prints text.
func (m *model) runCommand(name string, args []string) (string, error) {
	switch name {
	case "h", "help", "?":
		return helpMessage, nil

	case "schema":
		return formatSchema(m.tp.Schema(), args)

	case "errors":
		if m.last == nil || len(m.last.Errors) == 0 {
			return hintStyle.Render("no errors"), nil
		}

		return errorStyle.Render(strings.Join(m.last.Errors, "\n")), nil

	case "result":
		if m.last == nil {
			return hintStyle.Render("nothing rendered yet"), nil
		}

		return m.last.String(), nil

	case "set":
		if len(args) == 0 {
			return "", fmt.Errorf("%w: set KEY=JSON", ErrUsage)
		}

		// Values may contain spaces.
		if err := setData(m.tp, strings.Join(args, " ")); err != nil {
			return "", err
		}

		return resultStyle.Render("✔ — data updated"), nil

	case "lang":
		if len(args) == 0 {
			return "current language: " + m.tp.Schema().Text("inherit->locale->current"), nil
		}

		tag, err := setLang(m.tp, args[0])
		if err != nil {
			return "", err
		}

		return resultStyle.Render("✔ — language " + tag), nil

	case "load":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: load FILE", ErrUsage)
		}

		if err := m.tp.MergeSchemaFile(args[0]); err != nil {
			return "", err
		}

		return resultStyle.Render("✔ — schema merged"), nil
	}

	return "", fmt.Errorf("unknown command: %s (try 'help')", name)
}

// formatSchema encodes schema as indented JSON, or YAML when asked.
func formatSchema(schema *value.Value, args []string) (string, error) {
	format := "json"
	if len(args) > 0 {
		format = args[0]
	}

	switch format {
	case "json":
		b, err := schema.Indent("", "  ")

		return string(b), err

	case "yaml":
		b, err := yaml.Marshal(schema)

		return strings.TrimSuffix(string(b), "\n"), err
	}

	return "", fmt.Errorf("%w: schema [json|yaml]", ErrUsage)
}

// setData stores the JSON value of a "key=json" pair under the data key,
// which may be nested with "->". A value that is not JSON is stored as a
// string.
func setData(tp *tpl.Template, kv string) error {
	key, raw, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)

	if !ok || key == "" {
		return fmt.Errorf("%w: set KEY=JSON", ErrUsage)
	}

	v, err := value.Parse([]byte(raw))
	if err != nil {
		v = value.String(raw)
	}

	path := append([]string{"data"}, strings.Split(key, value.ArrayToken)...)
	over := value.Object()
	over.SetPath(path[:len(path)-1]...).Set(path[len(path)-1], v)

	return tp.MergeSchema(over)
}

// setLang validates a BCP 47 tag and makes it the current language as
// typed, since locale keys are matched literally.
func setLang(tp *tpl.Template, tag string) (string, error) {
	if _, err := language.Parse(tag); err != nil {
		return "", err
	}

	over := value.Object()
	over.SetPath("inherit", "locale").Set("current", value.String(tag))

	return tag, tp.MergeSchema(over)
}

func (m model) editSchema() tea.Cmd {
	cmd := &editSchemaCommand{
		schema:  m.tp.Schema(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.newSchema == nil:
			return editCancelledMsg{}
		}

		return editSchemaMsg{schema: cmd.newSchema}
	})
}

// seek moves through history by step and loads the first entry keep
// accepts, switching to its mode. It reports whether one was found.
func (m *model) seek(step int, keep func(HistoryEntry) bool) bool {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		e, err := m.history.Entry(i)
		if err != nil || !keep(e) {
			continue
		}

		m.historyIdx = i

		if m.mode != e.Mode {
			m.switchTo(e.Mode)
		}

		m.setInput(e.Line)

		return true
	}

	return false
}

func anyEntry(HistoryEntry) bool { return true }

func (m *model) historyPrev() { m.seek(-1, anyEntry) }

func (m *model) historyNext() {
	if !m.seek(1, anyEntry) {
		m.historyIdx = m.history.Len()
		m.setInput("")
	}
}

// historyInMode navigates only the entries of the current mode.
func (m *model) historyInMode(step int) {
	mode := m.mode

	found := m.seek(step, func(e HistoryEntry) bool { return e.Mode == mode })
	if !found && step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("")
	}
}

// browseCtrl navigates command history from either mode. Running off
// either end restores the line and mode browsing started from.
func (m *model) browseCtrl(step int) {
	if !m.alt.active {
		m.alt = altNav{
			active:    true,
			mode:      m.mode,
			modeInput: modeInput{m.input.Value(), m.input.Position()},
		}

		m.switchTo(modeCtrl)
	}

	if m.seek(step, func(e HistoryEntry) bool { return e.Mode == modeCtrl }) {
		return
	}

	m.alt.active = false
	m.switchTo(m.alt.mode)
	m.input.SetValue(m.alt.text)
	m.input.SetCursor(m.alt.cursor)
	m.historyIdx = m.history.Len()
	m.refreshMatches(false)
}

// switchTo changes the input mode, keeping each mode's line.
func (m *model) switchTo(mode inputMode) {
	if mode == m.mode {
		return
	}

	m.saved[m.mode] = modeInput{m.input.Value(), m.input.Position()}
	m.mode = mode

	m.input.Prompt = mode.prompt()
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	m.refreshMatches(false)
}
