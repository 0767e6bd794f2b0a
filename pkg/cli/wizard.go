package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/history"
	"github.com/zdunecki/qrwizard/pkg/preview"
	"github.com/zdunecki/qrwizard/pkg/qrtypes"
	"github.com/zdunecki/qrwizard/pkg/session"
	"github.com/zdunecki/qrwizard/pkg/wizard"
)

// screen is a sub-state of the current wizard step.
type screen int

const (
	screenResume screen = iota
	screenList
	screenInput
	screenDone
)

type optionItem struct {
	title string
	desc  string
	value string
}

func (i optionItem) Title() string       { return i.title }
func (i optionItem) Description() string { return i.desc }
func (i optionItem) FilterValue() string { return i.title }

type previewMsg preview.Snapshot

type wizardModel struct {
	sess    *session.Session
	back    *history.Memory
	step    wizard.Step
	screen  screen
	list    list.Model
	input   textinput.Model
	spinner spinner.Model
	preview preview.Snapshot
	updates chan preview.Snapshot

	// content step
	fieldIndex int
	draft      map[string]any

	// design step
	designField string

	validationErr string
	savedPath     string
	cancelled     bool
	err           error
	width         int
	height        int
}

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	styleSubtitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	stylePrompt    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styleSummary   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	styleHighlight = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// RunWizard runs the interactive wizard on sess until the QR code is saved or
// the user quits. A quit keeps the persisted state for the next run. When
// stale is set the user is asked whether to resume first.
func RunWizard(sess *session.Session, stale bool) error {
	model := newWizardModel(sess, stale)
	unsubscribe := sess.Engine().Subscribe(func(s preview.Snapshot) {
		select {
		case model.updates <- s:
		default:
		}
	})
	defer unsubscribe()

	prog := tea.NewProgram(model, tea.WithAltScreen())
	result, err := prog.Run()
	if err != nil {
		return err
	}

	finalModel, ok := result.(wizardModel)
	if !ok {
		return fmt.Errorf("wizard failed to return results")
	}
	if finalModel.err != nil {
		return finalModel.err
	}
	if finalModel.savedPath != "" {
		fmt.Printf("✅ QR code saved to %s\n", finalModel.savedPath)
	} else if finalModel.cancelled {
		fmt.Println("Progress saved. Run qrwizard again to continue.")
	}
	return nil
}

func newWizardModel(sess *session.Session, stale bool) wizardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = stylePrompt

	m := wizardModel{
		sess:    sess,
		spinner: sp,
		preview: sess.Engine().Snapshot(),
		updates: make(chan preview.Snapshot, 16),
	}
	if mem, ok := sess.History().(*history.Memory); ok {
		m.back = mem
	}
	if stale {
		m.screen = screenResume
		m.list = newList("You have an unfinished QR code from more than a day ago", resumeItems())
		return m
	}
	m.enterStep()
	return m
}

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("252"))
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("205")).Bold(true)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(lipgloss.Color("244")).Italic(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("212")).Italic(true)
	l := list.New(items, delegate, 0, 0)
	l.Title = styleTitle.Render(title)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	return l
}

func (m wizardModel) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.spinner.Tick)
}

// listen waits for the next preview snapshot.
func (m wizardModel) listen() tea.Cmd {
	ch := m.updates
	return func() tea.Msg { return previewMsg(<-ch) }
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyListSize()
		if m.screen == screenInput {
			m.input.Width = msg.Width - 4
		}
	case previewMsg:
		m.preview = preview.Snapshot(msg)
		return m, m.listen()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "q":
			if m.screen != screenInput {
				m.cancelled = true
				return m, tea.Quit
			}
		case "esc":
			return m.navigate(-1)
		case "ctrl+f":
			return m.navigate(1)
		case "enter":
			if m.screen == screenInput {
				return m.handleInputSubmit()
			}
			return m.handleSelection()
		}
	}

	if m.screen == screenInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// navigate moves through history like a browser's back and forward buttons.
// The history adapter decides whether the landed-on step is allowed.
func (m wizardModel) navigate(delta int) (tea.Model, tea.Cmd) {
	if m.screen == screenResume {
		return m, nil
	}
	if m.back != nil {
		m.back.Go(delta)
	} else if delta < 0 {
		m.sess.Back()
	}
	m.enterStep()
	return m, nil
}

func (m wizardModel) View() string {
	if m.screen == screenDone {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.breadcrumbs() + "\n\n")
	if m.validationErr != "" {
		b.WriteString(styleError.Render("Validation: "+m.validationErr) + "\n\n")
	}

	switch m.screen {
	case screenInput:
		b.WriteString(styleSubtitle.Render(m.inputLabel()) + "\n\n" + m.input.View() + "\n\n")
		b.WriteString(stylePrompt.Render("Press Enter to continue, Esc to go back."))
	default:
		if m.step == wizard.StepPreview {
			b.WriteString(m.previewSummary() + "\n\n")
		}
		b.WriteString(m.list.View() + "\n\n")
		b.WriteString(stylePrompt.Render("Use ↑/↓ to move, Enter to select, Esc to go back, q to quit."))
	}
	return b.String()
}

func (m wizardModel) breadcrumbs() string {
	st := m.sess.Store().State()
	parts := make([]string, 0, len(wizard.Steps))
	for _, step := range wizard.Steps {
		label := step.Title()
		switch {
		case step == st.CurrentStep:
			label = styleHighlight.Render(label)
		case st.IsCompleted(step):
			label = styleSummary.Render(label)
		default:
			label = styleSubtitle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, styleSubtitle.Render(" › "))
}

func (m wizardModel) previewSummary() string {
	p := m.preview
	switch p.Status {
	case preview.StatusLoading:
		return m.spinner.View() + " Rendering preview..."
	case preview.StatusDisplayed:
		return styleSummary.Render(fmt.Sprintf("Preview ready (%d bytes, %s)", len(p.Artifact), p.Hash))
	case preview.StatusErrored:
		line := styleError.Render(p.Error)
		if p.Artifact != "" {
			line += "\n" + styleSubtitle.Render("Showing the last good preview.")
		}
		return line
	default:
		return styleSubtitle.Render("Nothing to preview yet.")
	}
}

// enterStep rebuilds the screen for the store's current step.
func (m *wizardModel) enterStep() {
	st := m.sess.Store().State()
	m.step = st.CurrentStep
	m.validationErr = ""
	m.designField = ""

	switch m.step {
	case wizard.StepType:
		m.showList("What should your QR code do?", typeItems(m.sess.Types()))
	case wizard.StepContent:
		m.draft = st.QRData
		m.fieldIndex = 0
		m.showField()
	case wizard.StepDesign:
		m.showList("Design", designMenuItems())
	case wizard.StepSticker:
		m.showList("Add a sticker?", stickerItems())
	case wizard.StepPreview:
		m.showList("Preview", previewItems())
	case wizard.StepDownload:
		name := "qr-code"
		if st.Metadata != nil && strings.TrimSpace(st.Metadata.Name) != "" {
			name = strings.TrimSpace(st.Metadata.Name)
		}
		m.setInput(name + ".svg")
		m.input.SetValue(name + ".svg")
	}
}

func (m *wizardModel) currentType() (qrtypes.Type, bool) {
	t, err := m.sess.Types().Get(m.sess.Store().State().QRType)
	return t, err == nil
}

// showField asks for the content field at fieldIndex, or submits the content
// when every field has been asked.
func (m *wizardModel) showField() {
	t, ok := m.currentType()
	if !ok {
		m.sess.Back()
		m.enterStep()
		return
	}
	if m.fieldIndex >= len(t.Fields) {
		m.submitContent()
		return
	}

	f := t.Fields[m.fieldIndex]
	switch f.Type {
	case qrtypes.FieldBoolean:
		m.showList(f.Name, booleanItems())
	case qrtypes.FieldChoice:
		m.showList(f.Name, choiceItems(f.Choices))
	default:
		m.setInput(f.Name)
		if v, ok := m.draft[f.ID].(string); ok {
			m.input.SetValue(v)
		}
	}
}

func (m *wizardModel) setField(value any) {
	t, ok := m.currentType()
	if !ok {
		return
	}
	if m.draft == nil {
		m.draft = map[string]any{}
	}
	m.draft[t.Fields[m.fieldIndex].ID] = value
	m.sess.Store().SetQRData(m.draft)
	m.fieldIndex++
	m.showField()
}

func (m *wizardModel) submitContent() {
	err := m.sess.Next()
	var verr *qrtypes.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		t, _ := m.currentType()
		m.fieldIndex = 0
		for i, f := range t.Fields {
			if f.ID == verr.Fields[0].Field {
				m.fieldIndex = i
				break
			}
		}
		m.showField()
		m.validationErr = verr.Error()
		return
	}
	if err != nil {
		m.validationErr = err.Error()
		return
	}
	m.enterStep()
}

func (m *wizardModel) showList(title string, items []list.Item) {
	m.screen = screenList
	m.list = newList(title, items)
	m.applyListSize()
}

func (m *wizardModel) setInput(placeholder string) {
	m.screen = screenInput
	m.input = textinput.New()
	m.input.Prompt = stylePrompt.Render("> ")
	m.input.Placeholder = placeholder
	m.input.Focus()
	if m.width > 0 {
		m.input.Width = m.width - 4
	}
}

func (m *wizardModel) applyListSize() {
	if m.width > 0 && m.height > 0 {
		m.list.SetSize(m.width, m.height-8)
	}
}

func (m wizardModel) inputLabel() string {
	switch m.step {
	case wizard.StepContent:
		if t, ok := m.currentType(); ok && m.fieldIndex < len(t.Fields) {
			f := t.Fields[m.fieldIndex]
			if f.Required {
				return f.Name + " (required):"
			}
			return f.Name + " (optional):"
		}
	case wizard.StepDesign:
		return "Foreground color (hex, e.g. #112233):"
	case wizard.StepDownload:
		return "Save the QR code as:"
	}
	return ""
}

func (m wizardModel) handleSelection() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(optionItem)
	if !ok {
		return m, nil
	}
	m.validationErr = ""

	if m.screen == screenResume {
		if item.value == "restart" {
			m.sess.Store().ClearPersistedState()
		}
		m.enterStep()
		return m, nil
	}

	switch m.step {
	case wizard.StepType:
		if err := m.sess.SelectType(item.value); err != nil {
			m.validationErr = err.Error()
			return m, nil
		}
		m.advance()
	case wizard.StepContent:
		t, ok := m.currentType()
		if ok && m.fieldIndex < len(t.Fields) && t.Fields[m.fieldIndex].Type == qrtypes.FieldBoolean {
			m.setField(item.value == "yes")
			return m, nil
		}
		m.setField(item.value)
	case wizard.StepDesign:
		m.handleDesign(item.value)
	case wizard.StepSticker:
		if item.value == "none" {
			m.sess.Store().SetStickerConfig(nil)
		} else {
			m.sess.Store().SetStickerConfig(&wizard.StickerConfig{
				Enabled:      true,
				Type:         item.value,
				Text:         design.DefaultText,
				PrimaryColor: design.DefaultForegroundColor,
				TextColor:    design.DefaultBackgroundColor,
			})
		}
		m.advance()
	case wizard.StepPreview:
		switch item.value {
		case "refresh":
			m.sess.Engine().Refresh()
		case "back":
			m.sess.Back()
			m.enterStep()
		default:
			if _, ok := m.sess.Engine().Artifact(); !ok {
				m.validationErr = "wait for a preview before continuing"
				return m, nil
			}
			m.advance()
		}
	}
	return m, nil
}

func (m *wizardModel) advance() {
	if err := m.sess.Next(); err != nil {
		m.validationErr = err.Error()
		return
	}
	m.enterStep()
}

func (m *wizardModel) handleDesign(value string) {
	store := m.sess.Store()
	switch m.designField {
	case "":
		switch value {
		case "continue":
			m.advance()
			return
		case "color":
			m.designField = value
			m.setInput(design.DefaultForegroundColor)
			return
		}
		m.designField = value
		m.showList(designTitle(value), designOptionItems(value))
		return
	case "module":
		store.UpdateDesignerConfig(&design.Config{ModuleShape: value})
	case "finder":
		store.UpdateDesignerConfig(&design.Config{Finder: value, FinderDot: value})
	case "background":
		bg := &design.Background{Type: design.BackgroundSolid, Color: design.DefaultBackgroundColor}
		if value == "transparent" {
			bg = &design.Background{Type: design.BackgroundTransparent}
		}
		store.UpdateDesignerConfig(&design.Config{BackgroundFill: bg})
	case "ecl":
		store.SetErrorCorrectionLevel(value)
	}
	m.designField = ""
	m.showList("Design", designMenuItems())
}

func (m wizardModel) handleInputSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	m.validationErr = ""

	switch m.step {
	case wizard.StepContent:
		m.setField(value)
	case wizard.StepDesign:
		if !hexColor.MatchString(value) {
			m.validationErr = "enter a hex color like #112233"
			return m, nil
		}
		m.sess.Store().UpdateDesignerConfig(&design.Config{
			ForegroundFill: &design.Fill{Type: design.FillSolid, Color: value},
		})
		m.designField = ""
		m.showList("Design", designMenuItems())
	case wizard.StepDownload:
		if value == "" {
			m.validationErr = "file name is required"
			return m, nil
		}
		if err := SaveDownload(m.sess, value); err != nil {
			m.validationErr = err.Error()
			return m, nil
		}
		m.savedPath = value
		m.screen = screenDone
		return m, tea.Quit
	}
	return m, nil
}

func resumeItems() []list.Item {
	return []list.Item{
		optionItem{title: "Resume", desc: "Continue where you left off", value: "resume"},
		optionItem{title: "Start over", desc: "Discard the saved progress", value: "restart"},
	}
}

func typeItems(r *qrtypes.Registry) []list.Item {
	types := r.List()
	items := make([]list.Item, 0, len(types))
	for _, t := range types {
		items = append(items, optionItem{title: t.Name, desc: t.Description, value: t.ID})
	}
	return items
}

func booleanItems() []list.Item {
	return []list.Item{
		optionItem{title: "yes", value: "yes"},
		optionItem{title: "no", value: "no"},
	}
}

func choiceItems(choices []qrtypes.Choice) []list.Item {
	items := make([]list.Item, 0, len(choices))
	for _, c := range choices {
		value := c.Value
		if value == "" {
			value = c.Name
		}
		items = append(items, optionItem{title: c.Name, value: value})
	}
	return items
}

func designMenuItems() []list.Item {
	return []list.Item{
		optionItem{title: "Module shape", desc: "How the data dots look", value: "module"},
		optionItem{title: "Finder shape", desc: "The three corner eyes", value: "finder"},
		optionItem{title: "Foreground color", desc: "Solid color of the code", value: "color"},
		optionItem{title: "Background", desc: "White or transparent", value: "background"},
		optionItem{title: "Error correction", desc: "Higher levels survive more damage", value: "ecl"},
		optionItem{title: "Continue", desc: "Go to stickers", value: "continue"},
	}
}

func designTitle(field string) string {
	switch field {
	case "module":
		return "Module shape"
	case "finder":
		return "Finder shape"
	case "background":
		return "Background"
	case "ecl":
		return "Error correction"
	}
	return "Design"
}

func designOptionItems(field string) []list.Item {
	switch field {
	case "module":
		return []list.Item{
			optionItem{title: "square", value: "square"},
			optionItem{title: "dots", value: "dots"},
			optionItem{title: "rounded", value: "rounded"},
			optionItem{title: "classy", value: "classy"},
		}
	case "finder":
		return []list.Item{
			optionItem{title: "square", value: "square"},
			optionItem{title: "rounded", value: "rounded"},
			optionItem{title: "circle", value: "circle"},
		}
	case "background":
		return []list.Item{
			optionItem{title: "white", value: "solid"},
			optionItem{title: "transparent", value: "transparent"},
		}
	case "ecl":
		return []list.Item{
			optionItem{title: "L", desc: "~7% recovery", value: "L"},
			optionItem{title: "M", desc: "~15% recovery", value: "M"},
			optionItem{title: "Q", desc: "~25% recovery", value: "Q"},
			optionItem{title: "H", desc: "~30% recovery, best with a logo", value: "H"},
		}
	}
	return nil
}

func stickerItems() []list.Item {
	return []list.Item{
		optionItem{title: "No sticker", desc: "Just the code", value: "none"},
		optionItem{title: "Scan me banner", desc: "A call to action under the code", value: "banner"},
		optionItem{title: "Round badge", desc: "Circular frame around the code", value: "badge"},
	}
}

func previewItems() []list.Item {
	return []list.Item{
		optionItem{title: "Continue", desc: "Save the QR code", value: "continue"},
		optionItem{title: "Refresh", desc: "Render the preview again", value: "refresh"},
		optionItem{title: "Back", desc: "Change the sticker", value: "back"},
	}
}
