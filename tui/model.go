// Package tui est la page de démonstration en terminal : trois boutons, un champ
// de message et la liste des notifications affichées par le navigateur virtuel.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"webpush-backend/client"
)

// actionTimeout borne la durée d'une action déclenchée depuis l'interface
const actionTimeout = 30 * time.Second

// Controller est la partie du contrôleur de page utilisée par l'interface
type Controller interface {
	Handle(ctx context.Context, action client.Action, input string) error
	State() client.AppState
}

// NotificationMsg signale une notification affichée par l'agent
type NotificationMsg struct {
	Title string
	Body  string
	// Open route le clic vers l'agent de notifications
	Open func(ctx context.Context) error
}

// -- messages --

type actionDoneMsg struct {
	action client.Action
	err    error
}

type notificationOpenedMsg struct {
	err error
}

// -- model --

type focus int

const (
	focusSubscribe focus = iota
	focusUnsubscribe
	focusInput
	focusSend
	focusNotifications
	focusCount
)

// Model est le modèle bubbletea de la page
type Model struct {
	controller Controller
	ui         client.UIState
	ready      bool
	pending    int

	focus         focus
	input         string
	notifications []NotificationMsg
	cursor        int
	status        string
	statusErr     bool

	width  int
	height int
}

// New crée le modèle. Les boutons restent inactifs jusqu'à la fin de l'initialisation.
// Init lance cette initialisation, d'où la commande en attente.
func New(controller Controller) Model {
	return Model{
		controller: controller,
		ui:         controller.State().UI,
		pending:    1,
		status:     "Initialisation...",
	}
}

func (m Model) Init() tea.Cmd {
	return m.run(client.ActionStart)
}

func (m Model) run(action client.Action) tea.Cmd {
	c := m.controller
	input := m.input
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{action: action, err: c.Handle(ctx, action, input)}
	}
}

func (m Model) open(n NotificationMsg) tea.Cmd {
	return func() tea.Msg {
		if n.Open == nil {
			return notificationOpenedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return notificationOpenedMsg{err: n.Open(ctx)}
	}
}

func (m Model) enabled(f focus) bool {
	switch f {
	case focusSubscribe:
		return m.ready && !m.ui.SubscribeDisabled
	case focusUnsubscribe:
		return m.ready && !m.ui.UnsubscribeDisabled
	case focusInput:
		return m.ready && !m.ui.SendInputDisabled
	case focusSend:
		return m.ready && !m.ui.SendButtonDisabled
	case focusNotifications:
		return len(m.notifications) > 0
	}
	return false
}

// moveFocus déplace le focus vers le prochain contrôle actif dans la direction donnée
func (m *Model) moveFocus(step int) {
	for i := 1; i <= int(focusCount); i++ {
		next := focus((int(m.focus) + step*i + int(focusCount)*i) % int(focusCount))
		if m.enabled(next) {
			m.focus = next
			return
		}
	}
}

// fixFocus quitte un contrôle devenu inactif
func (m *Model) fixFocus() {
	if !m.enabled(m.focus) {
		m.moveFocus(1)
	}
	if m.cursor >= len(m.notifications) {
		m.cursor = max(len(m.notifications)-1, 0)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case actionDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.ui = m.controller.State().UI
		if msg.action == client.ActionStart && msg.err == nil {
			m.ready = true
		}
		if msg.err != nil {
			status := fmt.Sprintf("%s error: %v", msg.action, msg.err)
			if !m.ready {
				status += " (r: réessayer)"
			}
			m.setStatus(status, true)
		} else {
			m.setStatus(doneStatus(msg.action, m.controller.State()), false)
		}
		m.fixFocus()

	case NotificationMsg:
		m.notifications = append(m.notifications, msg)
		m.fixFocus()

	case notificationOpenedMsg:
		if msg.err != nil {
			m.setStatus("notificationclick error: "+msg.err.Error(), true)
		} else {
			m.setStatus("Page mise au premier plan", false)
		}

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func doneStatus(action client.Action, state client.AppState) string {
	switch action {
	case client.ActionStart:
		if state.Subscribed {
			return "Prêt, abonné"
		}
		return "Prêt, non abonné"
	case client.ActionSubscribe:
		return "Abonné"
	case client.ActionUnsubscribe:
		return "Désabonné"
	case client.ActionSend:
		return "Message envoyé"
	}
	return ""
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		step := 1
		if key == "shift+tab" {
			step = -1
		}
		m.moveFocus(step)
		return m, nil
	}

	if m.focus == focusInput && m.enabled(focusInput) {
		if key == "enter" {
			return m.trigger(focusSend)
		}
		m.input = editRune(m.input, key)
		return m, nil
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		// Relance l'initialisation tant qu'elle n'a pas abouti
		if !m.ready && m.pending == 0 {
			m.pending++
			m.setStatus("Initialisation...", false)
			return m, m.run(client.ActionStart)
		}
	case "up", "k":
		if m.focus == focusNotifications && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.focus == focusNotifications && m.cursor < len(m.notifications)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.trigger(m.focus)
	}
	return m, nil
}

// trigger exécute le contrôle f s'il est actif
func (m Model) trigger(f focus) (tea.Model, tea.Cmd) {
	if !m.enabled(f) {
		return m, nil
	}

	switch f {
	case focusSubscribe:
		m.pending++
		return m, m.run(client.ActionSubscribe)
	case focusUnsubscribe:
		m.pending++
		return m, m.run(client.ActionUnsubscribe)
	case focusSend, focusInput:
		m.pending++
		return m, m.run(client.ActionSend)
	case focusNotifications:
		n := m.notifications[m.cursor]
		m.notifications = append(m.notifications[:m.cursor:m.cursor], m.notifications[m.cursor+1:]...)
		m.fixFocus()
		return m, m.open(n)
	}
	return m, nil
}

func (m Model) button(label string, f focus) string {
	switch {
	case !m.enabled(f):
		return buttonDisabledStyle.Render(label)
	case m.focus == f:
		return buttonFocusedStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(" " + titleStyle.Render("Push Notification Demo") + "\n")
	sep := strings.Repeat("─", max(m.width-2, 40))
	b.WriteString(" " + metaStyle.Render(sep) + "\n\n")

	fmt.Fprintf(&b, " %s %s\n\n", m.button("Subscribe", focusSubscribe), m.button("Unsubscribe", focusUnsubscribe))

	input := m.input
	switch {
	case !m.enabled(focusInput):
		input = dimStyle.Render(input)
	case m.focus == focusInput:
		input = selectedStyle.Render(input) + accentStyle.Render("█")
	default:
		input = normalStyle.Render(input)
	}
	fmt.Fprintf(&b, " %s %s %s\n\n", dimStyle.Render("Message:"), input, m.button("Send", focusSend))

	b.WriteString(" " + titleStyle.Render("Notifications") + "\n")
	if len(m.notifications) == 0 {
		b.WriteString(" " + dimStyle.Render("aucune notification") + "\n")
	}
	for i, n := range m.notifications {
		cursor := "  "
		title := normalStyle.Render(n.Title)
		if m.focus == focusNotifications && i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			title = selectedStyle.Render(n.Title)
		}
		fmt.Fprintf(&b, " %s🔔 %s  %s\n", cursor, title, dimStyle.Render(truncStr(n.Body, 60)))
	}

	b.WriteString("\n")
	if m.pending > 0 {
		b.WriteString(" " + dimStyle.Render("...") + "\n")
	}
	if m.status != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(" " + style.Render(m.status) + "\n")
	}
	help := "tab: focus · enter: activer · ↑/↓: notifications · q: quitter"
	if !m.ready && m.pending == 0 {
		help += " · r: réessayer"
	}
	b.WriteString(" " + metaStyle.Render(help) + "\n")

	return b.String()
}
