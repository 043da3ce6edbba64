package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tatianab/virtual-lab/internal/chem"
	"github.com/tatianab/virtual-lab/internal/config"
	"github.com/tatianab/virtual-lab/internal/engine"
	"github.com/tatianab/virtual-lab/internal/narrator"
	"github.com/tatianab/virtual-lab/internal/voice"
)

type sessionState int

const (
	stateLobby sessionState = iota
	statePicker
	stateWorkspace
	stateError
)

type labChoice struct {
	name string
	open bool
}

var labs = []labChoice{
	{name: "Chemistry", open: true},
	{name: "Physics"},
	{name: "Biology"},
}

var settingItems = []string{
	"Voice commands",
	"High contrast",
	"Reduced motion",
	"Font size",
	"Audio feedback",
	"Easing",
}

const (
	nudge        = 0.1 // workspace units per arrow key press
	historyLines = 4
	maxHistory   = 100
	explainLimit = 20 * time.Second
)

// grip is the container currently held, by mouse or keyboard.
type grip struct {
	id    string
	mouse bool
	// ndc is the mouse pointer in normalised device coordinates.
	ndc mgl64.Vec2
	// target is where a keyboard grab is steering the container.
	target mgl64.Vec3
}

type model struct {
	state        sessionState
	settingsOpen bool

	cfg       *config.Config
	settings  config.Settings
	lab       *chem.Lab
	ws        *engine.Workspace
	presenter *statusPresenter
	narrator  narrator.Narrator
	log       logrus.FieldLogger

	scene    scene
	styles   styles
	keys     keyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model

	lobbyCursor    int
	pickerCursor   int
	settingsCursor int
	chemicals      []string
	selected       []string
	focus          int
	grab           *grip
	tickGen        int

	status      string
	history     []string
	result      *engine.ReactionEvent
	explanation string

	err    error
	width  int
	height int
}

func NewModel(cfg *config.Config, lab *chem.Lab, narr narrator.Narrator, log logrus.FieldLogger) model {
	presenter := &statusPresenter{}
	settings := cfg.Settings

	ti := textinput.New()
	ti.Placeholder = "say a command, e.g. 'pour HCl'"
	ti.CharLimit = 80
	ti.Width = sceneWidth - 4

	return model{
		state:     stateLobby,
		cfg:       cfg,
		settings:  settings,
		lab:       lab,
		ws:        engine.NewWorkspace(lab, presenter, log, workspaceOptions(settings)),
		presenter: presenter,
		narrator:  narr,
		log:       log,
		scene:     newScene(sceneWidth, sceneHeight),
		styles:    newStyles(settings.HighContrast),
		keys:      newKeyMap(),
		help:      help.New(),
		input:     ti,
		viewport:  viewport.New(sceneWidth+2, historyLines),
		chemicals: lab.Registry.IDs(),
		status:    "Welcome to the Virtual Science Lab.",
	}
}

func workspaceOptions(s config.Settings) engine.Options {
	opts := engine.DefaultOptions()
	if easing, err := engine.ParseEasing(s.Easing); err == nil {
		opts.Easing = easing
	}
	opts.ReducedMotion = s.ReducedMotion
	return opts
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type tickMsg struct {
	gen int
}

type explainedMsg struct {
	session uuid.UUID
	text    string
	err     error
}

func (m model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.cfg.TickInterval(), func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if msg.gen != m.tickGen || m.state != stateWorkspace {
			return m, nil
		}
		return m.step()

	case explainedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("lab assistant unavailable, showing the built-in description")
		}
		if m.result != nil && m.result.SessionID == msg.session {
			m.explanation = msg.text
		}
		return m, nil

	case tea.MouseMsg:
		if m.state == stateWorkspace && !m.settingsOpen {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.handleInput(msg)
		}
		if m.settingsOpen {
			m.handleSettingsKey(msg)
			return m, nil
		}
		switch m.state {
		case stateLobby:
			return m.handleLobbyKey(msg)
		case statePicker:
			return m.handlePickerKey(msg)
		case stateWorkspace:
			return m.handleWorkspaceKey(msg)
		case stateError:
			if msg.Type == tea.KeyEsc || key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// step runs one simulation tick and schedules the next.
func (m model) step() (tea.Model, tea.Cmd) {
	if m.grab != nil {
		if p, ok := m.grabPointer(); ok {
			if err := m.ws.DragMove(m.grab.id, p); err != nil {
				m.log.WithError(err).Debug("dropping stale grab")
				m.grab = nil
			}
		}
	}
	m.ws.Tick(m.cfg.TickInterval())
	cmd := m.collect()
	return m, tea.Batch(m.tick(), cmd)
}

func (m model) grabPointer() (mgl64.Vec3, bool) {
	if !m.grab.mouse {
		return m.grab.target, true
	}
	c, ok := m.ws.Container(m.grab.id)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return m.scene.camera.ProjectPointer(m.grab.ndc[0], m.grab.ndc[1], c.Position)
}

// collect folds the presenter's output into the model. A finished reaction
// opens the result panel and asks the narrator for an explanation.
func (m *model) collect() tea.Cmd {
	announcements, events := m.presenter.drain()
	for _, a := range announcements {
		m.announce(a)
	}

	var cmds []tea.Cmd
	for _, ev := range events {
		m.result = &ev
		req := m.request(ev)
		m.explanation = narrator.Describe(req)
		cmds = append(cmds, m.explain(ev.SessionID, req))
	}
	return tea.Batch(cmds...)
}

func (m *model) announce(message string) {
	m.history = append(m.history, message)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
	if m.settings.AudioFeedback {
		m.status = message
	}
}

// say always reaches the status line; it answers an explicit request.
func (m *model) say(message string) {
	m.announce(message)
	m.status = message
}

func (m model) request(ev engine.ReactionEvent) narrator.Request {
	names := make([]string, 0, len(ev.Chemicals))
	for _, id := range ev.Chemicals {
		names = append(names, m.displayName(id))
	}
	return narrator.Request{Chemicals: names, Result: ev.Result}
}

func (m model) explain(session uuid.UUID, req narrator.Request) tea.Cmd {
	n := m.narrator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), explainLimit)
		defer cancel()
		text, err := narrator.WithFallback(ctx, n, req)
		return explainedMsg{session: session, text: text, err: err}
	}
}

func (m model) displayName(id string) string {
	if c, ok := m.lab.Registry.Get(id); ok {
		return c.Name
	}
	return id
}

func (m model) handleLobbyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.lobbyCursor = (m.lobbyCursor + len(labs) - 1) % len(labs)
		m.announce(labLabel(labs[m.lobbyCursor]))
	case key.Matches(msg, m.keys.Down):
		m.lobbyCursor = (m.lobbyCursor + 1) % len(labs)
		m.announce(labLabel(labs[m.lobbyCursor]))
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Toggle):
		m.openLab()
	case key.Matches(msg, m.keys.Settings):
		m.toggleSettings()
	case key.Matches(msg, m.keys.Voice):
		cmd := m.focusInput()
		return m, cmd
	}
	return m, nil
}

func labLabel(l labChoice) string {
	if l.open {
		return l.name + " lab"
	}
	return l.name + " lab, coming soon"
}

func (m *model) openLab() {
	l := labs[m.lobbyCursor]
	if !l.open {
		m.say(fmt.Sprintf("The %s lab is coming soon.", l.name))
		return
	}
	m.state = statePicker
	m.announce(fmt.Sprintf("%s lab. Choose up to %d chemicals.", l.name, engine.MaxContainers))
}

func (m model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if len(m.chemicals) > 0 {
			m.pickerCursor = (m.pickerCursor + len(m.chemicals) - 1) % len(m.chemicals)
			m.announce(m.chemicalLabel(m.chemicals[m.pickerCursor]))
		}
	case key.Matches(msg, m.keys.Down):
		if len(m.chemicals) > 0 {
			m.pickerCursor = (m.pickerCursor + 1) % len(m.chemicals)
			m.announce(m.chemicalLabel(m.chemicals[m.pickerCursor]))
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(m.chemicals) > 0 {
			m.toggleSelection(m.chemicals[m.pickerCursor])
		}
	case key.Matches(msg, m.keys.Enter):
		cmd := m.enterWorkspace()
		return m, cmd
	case key.Matches(msg, m.keys.Back):
		m.state = stateLobby
		m.announce("Back in the lobby.")
	case key.Matches(msg, m.keys.Settings):
		m.toggleSettings()
	case key.Matches(msg, m.keys.Voice):
		cmd := m.focusInput()
		return m, cmd
	}
	return m, nil
}

func (m model) chemicalLabel(id string) string {
	c, ok := m.lab.Registry.Get(id)
	if !ok {
		return id
	}
	label := fmt.Sprintf("%s, %s", c.Name, c.State)
	if c.Hazard != "" && c.Hazard != "none" {
		label += ", " + c.Hazard
	}
	return label
}

func (m model) isSelected(id string) bool {
	for _, s := range m.selected {
		if s == id {
			return true
		}
	}
	return false
}

func (m *model) toggleSelection(id string) {
	for i, s := range m.selected {
		if s == id {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
			m.announce(m.displayName(id) + " deselected")
			return
		}
	}
	if len(m.selected) >= engine.MaxContainers {
		m.say(fmt.Sprintf("You can select at most %d chemicals.", engine.MaxContainers))
		return
	}
	m.selected = append(m.selected, id)
	m.announce(m.displayName(id) + " selected")
}

func (m *model) enterWorkspace() tea.Cmd {
	if len(m.selected) == 0 {
		m.say("No chemicals selected")
		return nil
	}
	if err := m.ws.Enter(m.selected); err != nil {
		m.err = err
		m.state = stateError
		return nil
	}
	m.state = stateWorkspace
	m.focus = 0
	m.grab = nil
	m.result = nil
	m.explanation = ""
	m.tickGen++
	return tea.Batch(m.collect(), m.tick())
}

func (m model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.release()
		placed := m.ws.Placed()
		if len(placed) > 0 {
			m.focus = (m.focus + 1) % len(placed)
			m.announce(m.focusLabel())
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.grab != nil {
			m.release()
		} else {
			m.grabFocused()
		}
	case key.Matches(msg, m.keys.Pour):
		m.pourFocused()
	case key.Matches(msg, m.keys.Up):
		m.nudge(mgl64.Vec3{0, nudge, 0})
	case key.Matches(msg, m.keys.Down):
		m.nudge(mgl64.Vec3{0, -nudge, 0})
	case key.Matches(msg, m.keys.Left):
		m.nudge(mgl64.Vec3{-nudge, 0, 0})
	case key.Matches(msg, m.keys.Right):
		m.nudge(mgl64.Vec3{nudge, 0, 0})
	case key.Matches(msg, m.keys.Reset):
		m.reset()
	case key.Matches(msg, m.keys.Describe):
		m.say(m.ws.Describe())
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.Settings):
		m.toggleSettings()
	case key.Matches(msg, m.keys.Voice):
		cmd := m.focusInput()
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	cmd := m.collect()
	return m, cmd
}

func (m model) focused() (string, bool) {
	placed := m.ws.Placed()
	if len(placed) == 0 {
		return "", false
	}
	return placed[m.focus%len(placed)], true
}

func (m model) focusLabel() string {
	id, ok := m.focused()
	if !ok {
		return "Nothing on the bench."
	}
	c, _ := m.ws.Container(id)
	return fmt.Sprintf("%s (%s - %d%%)", c.Name, c.Kind, int(c.Remaining*100+0.5))
}

func (m *model) focusOn(id string) {
	for i, p := range m.ws.Placed() {
		if p == id {
			m.focus = i
			return
		}
	}
}

func (m *model) grabFocused() bool {
	id, ok := m.focused()
	if !ok {
		return false
	}
	c, _ := m.ws.Container(id)
	if err := m.ws.DragStart(id, c.Position); err != nil {
		m.log.WithError(err).WithField("chemical", id).Warn("could not grab container")
		return false
	}
	m.grab = &grip{id: id, target: c.Position}
	return true
}

// pourFocused steers the focused container to the pour point and holds it
// there until released.
func (m *model) pourFocused() {
	if m.grab == nil && !m.grabFocused() {
		return
	}
	m.grab.mouse = false
	m.grab.target = engine.PourPoint()
}

func (m *model) nudge(d mgl64.Vec3) {
	if m.grab == nil || m.grab.mouse {
		return
	}
	m.grab.target = engine.ClampToWorkspace(m.grab.target.Add(d))
}

func (m *model) release() {
	if m.grab == nil {
		return
	}
	if err := m.ws.DragEnd(m.grab.id); err != nil {
		m.log.WithError(err).Debug("release without a drag")
	}
	m.grab = nil
}

func (m *model) reset() {
	m.grab = nil
	m.ws.Reset()
	m.result = nil
	m.explanation = ""
}

func (m *model) back() {
	m.release()
	m.state = statePicker
	m.announce("Back to the chemical shelf.")
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X-canvasOriginX, msg.Y-canvasOriginY
	x, y := m.scene.toNDC(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		focused, _ := m.focused()
		id, ok := m.scene.hit(m.ws.Snapshot(), focused, col, row)
		if !ok {
			return
		}
		m.release()
		m.focusOn(id)
		c, _ := m.ws.Container(id)
		p, ok := m.scene.camera.ProjectPointer(x, y, c.Position)
		if !ok {
			p = c.Position
		}
		if err := m.ws.DragStart(id, p); err != nil {
			m.log.WithError(err).WithField("chemical", id).Warn("could not grab container")
			return
		}
		m.grab = &grip{id: id, mouse: true, ndc: mgl64.Vec2{x, y}}

	case tea.MouseActionMotion:
		if m.grab != nil && m.grab.mouse {
			m.grab.ndc = mgl64.Vec2{x, y}
			return
		}
		if m.grab == nil {
			focused, _ := m.focused()
			if _, ok := m.scene.hit(m.ws.Snapshot(), focused, col, row); ok {
				m.presenter.SetCursor(engine.CursorGrab)
			} else {
				m.presenter.SetCursor(engine.CursorDefault)
			}
		}

	case tea.MouseActionRelease:
		if m.grab != nil && m.grab.mouse {
			m.release()
		}
	}
}

func (m *model) toggleSettings() {
	if m.settingsOpen {
		m.settingsOpen = false
		m.saveSettings()
		m.announce("Settings closed.")
		return
	}
	m.release()
	m.settingsOpen = true
	m.settingsCursor = 0
	m.announce("Accessibility settings.")
}

func (m *model) handleSettingsKey(msg tea.KeyMsg) {
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Settings), key.Matches(msg, m.keys.Back):
		m.toggleSettings()
	case key.Matches(msg, m.keys.Up):
		m.settingsCursor = (m.settingsCursor + len(settingItems) - 1) % len(settingItems)
		m.announce(m.settingLabel(m.settingsCursor))
	case key.Matches(msg, m.keys.Down):
		m.settingsCursor = (m.settingsCursor + 1) % len(settingItems)
		m.announce(m.settingLabel(m.settingsCursor))
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Enter):
		m.changeSetting(m.settingsCursor)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m model) settingValue(i int) string {
	s := m.settings
	switch i {
	case 0:
		return onOff(s.VoiceCommands)
	case 1:
		return onOff(s.HighContrast)
	case 2:
		return onOff(s.ReducedMotion)
	case 3:
		return s.FontSize
	case 4:
		return onOff(s.AudioFeedback)
	case 5:
		return s.Easing
	}
	return ""
}

func (m model) settingLabel(i int) string {
	return fmt.Sprintf("%s: %s", settingItems[i], m.settingValue(i))
}

func (m *model) changeSetting(i int) {
	s := &m.settings
	switch i {
	case 0:
		s.VoiceCommands = !s.VoiceCommands
	case 1:
		s.HighContrast = !s.HighContrast
	case 2:
		s.ReducedMotion = !s.ReducedMotion
	case 3:
		switch s.FontSize {
		case "small":
			s.FontSize = "medium"
		case "medium":
			s.FontSize = "large"
		default:
			s.FontSize = "small"
		}
	case 4:
		s.AudioFeedback = !s.AudioFeedback
	case 5:
		if s.Easing == engine.EaseFrame.String() {
			s.Easing = engine.EaseTime.String()
		} else {
			s.Easing = engine.EaseFrame.String()
		}
	}
	m.applySettings()
	m.say(m.settingLabel(i))
}

func (m *model) applySettings() {
	m.styles = newStyles(m.settings.HighContrast)
	m.ws.SetOptions(workspaceOptions(m.settings))
}

func (m *model) saveSettings() {
	if m.cfg.SettingsFile == "" {
		return
	}
	if err := config.SaveSettings(m.cfg.SettingsFile, m.settings); err != nil {
		m.log.WithError(err).Warn("could not save settings")
	}
}

func (m *model) focusInput() tea.Cmd {
	if !m.settings.VoiceCommands {
		m.say("Voice commands are off. Turn them on in settings.")
		return nil
	}
	m.release()
	m.input.Reset()
	return m.input.Focus()
}

func (m model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		text := m.input.Value()
		m.input.Reset()
		m.input.Blur()
		cmd, err := voice.Parse(text)
		if err != nil {
			m.say(fmt.Sprintf("Sorry, I did not understand %q.", text))
			return m, nil
		}
		m.log.WithField("command", cmd.Action).Debug("voice command")
		return m.applyCommand(cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) applyCommand(cmd voice.Command) (tea.Model, tea.Cmd) {
	switch cmd.Action {
	case voice.ActionQuit:
		return m, tea.Quit

	case voice.ActionSelect:
		if m.state != statePicker {
			m.say("Open the chemistry lab to choose chemicals.")
			break
		}
		id, ok := voice.Match(cmd.Target, m.candidates(m.chemicals))
		if !ok {
			m.say(fmt.Sprintf("There is no %s on the shelf.", cmd.Target))
			break
		}
		m.toggleSelection(id)

	case voice.ActionPour:
		if m.state != stateWorkspace {
			m.say("Enter the workspace first.")
			break
		}
		id, ok := voice.Match(cmd.Target, m.candidates(m.ws.Placed()))
		if !ok {
			m.say(fmt.Sprintf("%s is not on the bench.", cmd.Target))
			break
		}
		m.release()
		m.focusOn(id)
		m.pourFocused()

	case voice.ActionStop:
		m.release()

	case voice.ActionReset:
		if m.state == stateWorkspace {
			m.reset()
		}

	case voice.ActionBack:
		switch m.state {
		case stateWorkspace:
			m.back()
		case statePicker:
			m.state = stateLobby
			m.announce("Back in the lobby.")
		}

	case voice.ActionSettings:
		m.toggleSettings()

	case voice.ActionContrast:
		m.settings.HighContrast = cmd.On
		m.applySettings()
		m.say(m.settingLabel(1))

	case voice.ActionMotion:
		m.settings.ReducedMotion = cmd.On
		m.applySettings()
		m.say(m.settingLabel(2))

	case voice.ActionDescribe:
		if m.state == stateWorkspace {
			m.say(m.ws.Describe())
		}

	case voice.ActionEnter:
		switch m.state {
		case stateLobby:
			m.openLab()
		case statePicker:
			cmd := m.enterWorkspace()
			return m, cmd
		}
	}
	c := m.collect()
	return m, c
}

func (m model) candidates(ids []string) map[string]string {
	c := make(map[string]string, len(ids))
	for _, id := range ids {
		c[id] = m.displayName(id)
	}
	return c
}

func (m model) View() string {
	var s string

	switch {
	case m.state == stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
		return "\n" + s + "\n"
	case m.settingsOpen:
		s = m.renderSettings()
	case m.state == stateLobby:
		s = m.renderLobby()
	case m.state == statePicker:
		s = m.renderPicker()
	case m.state == stateWorkspace:
		s = m.renderWorkspace()
	}

	footer := []string{"", m.styles.status.Width(sceneWidth + 2 + panelWidth(m.settings.FontSize)).Render(m.status)}
	if m.input.Focused() {
		footer = append(footer, m.input.View())
	}
	footer = append(footer, m.styles.help.Render(m.help.View(m.keys)))

	return "\n" + lipgloss.JoinVertical(lipgloss.Left, append([]string{s}, footer...)...) + "\n"
}

func (m model) renderLobby() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("VIRTUAL SCIENCE LAB") + "\n\n")
	b.WriteString(m.styles.text.Render("Pick a lab:") + "\n\n")
	for i, l := range labs {
		line := "  " + l.name
		if !l.open {
			line += m.styles.muted.Render(" (coming soon)")
		}
		if i == m.lobbyCursor {
			line = m.styles.selected.Render("> " + l.name)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) renderPicker() string {
	var list strings.Builder
	list.WriteString(m.styles.title.Render("CHEMICAL SHELF") + "\n")
	list.WriteString(m.styles.muted.Render(fmt.Sprintf("Selected %d/%d", len(m.selected), engine.MaxContainers)) + "\n\n")
	for i, id := range m.chemicals {
		mark := "[ ]"
		if m.isSelected(id) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s)", mark, m.displayName(id), id)
		if i == m.pickerCursor {
			line = m.styles.selected.Render(line)
		}
		list.WriteString(line + "\n")
	}

	details := ""
	if len(m.chemicals) > 0 {
		details = m.renderChemical(m.chemicals[m.pickerCursor])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(sceneWidth+2).Render(list.String()),
		m.styles.panel.Width(panelWidth(m.settings.FontSize)).Render(details),
	)
}

func (m model) renderChemical(id string) string {
	c, ok := m.lab.Registry.Get(id)
	if !ok {
		return ""
	}
	color, _ := m.lab.Registry.Color(id)
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(color.Hex())).Render("    ")

	var b strings.Builder
	b.WriteString(m.styles.title.Render(strings.ToUpper(c.Name)) + "\n")
	fmt.Fprintf(&b, "%s %s\n", swatch, color.Hex())
	fmt.Fprintf(&b, "State: %s\n", c.State)
	if c.Hazard != "" {
		fmt.Fprintf(&b, "Hazard: %s\n", c.Hazard)
	}
	fmt.Fprintf(&b, "Container: %s\n\n", c.Kind())

	partners := m.lab.Reactions.Partners(id)
	b.WriteString(m.styles.title.Render("REACTS WITH") + "\n")
	if len(partners) == 0 {
		b.WriteString("(nothing known)\n")
	}
	for _, p := range partners {
		b.WriteString("- " + m.displayName(p) + "\n")
	}
	return b.String()
}

func cursorLabel(c engine.Cursor) string {
	switch c {
	case engine.CursorGrab:
		return "hand: open"
	case engine.CursorGrabbing:
		return "hand: holding"
	}
	return "hand: free"
}

func (m model) renderWorkspace() string {
	snap := m.ws.Snapshot()
	focused, _ := m.focused()

	header := m.styles.title.Render("MIXING WORKSPACE") + "  " + m.styles.muted.Render(cursorLabel(m.presenter.cursor))
	canvas := m.styles.canvas.Render(m.scene.render(snap, focused))
	left := lipgloss.JoinVertical(lipgloss.Left, canvas, m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderBench(snap)),
	)
}

func (m model) renderBench(snap engine.Snapshot) string {
	v := snap.Vessel
	var b strings.Builder

	b.WriteString(m.styles.title.Render("BEAKER") + "\n")
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(v.CurrentColor)).Render("      ")
	fmt.Fprintf(&b, "%s Beaker: %d%%\n", swatch, int(v.LiquidLevel*100+0.5))
	if v.Effervescence {
		b.WriteString(m.styles.badge.Render("fizzing") + " ")
	}
	if v.Precipitate {
		b.WriteString(m.styles.badge.Render("precipitate"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.styles.title.Render("BENCH") + "\n")
	for _, c := range snap.Containers {
		line := fmt.Sprintf("%s (%s - %d%%)", c.Name, c.Kind, int(c.Remaining*100+0.5))
		if !c.Known {
			line = m.styles.warning.Render(c.Name + " (unknown)")
		}
		if c.Dragged {
			line += " *"
		}
		b.WriteString(line + "\n")
	}

	if m.result != nil {
		b.WriteString("\n" + m.renderResult(*m.result))
	}

	return m.styles.panel.Width(panelWidth(m.settings.FontSize)).Height(sceneHeight + 2 + historyLines).Render(b.String())
}

func (m model) renderResult(ev engine.ReactionEvent) string {
	r := ev.Result
	var b strings.Builder
	b.WriteString(m.styles.title.Render("REACTION") + "\n")
	if c, err := chem.ParseColor(r.ColorChange); err == nil {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  ")
		fmt.Fprintf(&b, "%s %s\n", swatch, r.Observation)
	} else {
		b.WriteString(r.Observation + "\n")
	}
	if r.TemperatureChange != "" {
		fmt.Fprintf(&b, "Temperature: %s\n", r.TemperatureChange)
	}
	if r.Equation != "" {
		b.WriteString(r.Equation + "\n")
	}
	b.WriteString("\n" + m.explanation + "\n")
	return b.String()
}

func (m model) renderSettings() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("ACCESSIBILITY SETTINGS") + "\n\n")
	for i := range settingItems {
		line := m.settingLabel(i)
		if i == m.settingsCursor {
			line = m.styles.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.styles.muted.Render("space to change, esc to close"))
	return b.String()
}

func Run(cfg *config.Config, lab *chem.Lab, narr narrator.Narrator, log logrus.FieldLogger) error {
	p := tea.NewProgram(NewModel(cfg, lab, narr, log), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
