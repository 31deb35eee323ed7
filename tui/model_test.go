package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"webpush-backend/client"
)

type handledAction struct {
	action client.Action
	input  string
}

// fakeController simule le contrôleur : Subscribe et Unsubscribe basculent l'état
type fakeController struct {
	state   client.AppState
	handled []handledAction
	err     error
}

func newFakeController() *fakeController {
	return &fakeController{state: client.InitialState()}
}

func (c *fakeController) Handle(_ context.Context, action client.Action, input string) error {
	c.handled = append(c.handled, handledAction{action: action, input: input})
	if c.err != nil {
		return c.err
	}
	switch action {
	case client.ActionSubscribe:
		c.state = client.Reduce(c.state, client.SubscriptionConfirmed{})
	case client.ActionUnsubscribe:
		c.state = client.Reduce(c.state, client.SubscriptionRemoved{})
	}
	return nil
}

func (c *fakeController) State() client.AppState { return c.state }

// exec exécute la commande et réinjecte son message dans le modèle
func exec(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func startedModel(t *testing.T, c *fakeController) Model {
	t.Helper()
	m := New(c)
	return exec(t, m, m.Init())
}

func TestInitRunsStart(t *testing.T) {
	c := newFakeController()
	m := New(c)

	if m.enabled(focusSubscribe) {
		t.Error("expected buttons disabled before initialization")
	}

	m = exec(t, m, m.Init())
	if len(c.handled) != 1 || c.handled[0].action != client.ActionStart {
		t.Fatalf("expected ActionStart, got %+v", c.handled)
	}
	if !m.ready {
		t.Error("expected model ready after start")
	}
	if !m.enabled(focusSubscribe) || m.enabled(focusUnsubscribe) || m.enabled(focusSend) || m.enabled(focusInput) {
		t.Errorf("unexpected controls after start: %+v", m.ui)
	}
}

func TestButtonsFollowUIState(t *testing.T) {
	c := newFakeController()
	m := startedModel(t, c)

	m, cmd := press(m, "enter")
	m = exec(t, m, cmd)
	if c.handled[len(c.handled)-1].action != client.ActionSubscribe {
		t.Fatalf("expected ActionSubscribe, got %+v", c.handled)
	}
	if m.ui != client.UIFor(true) {
		t.Errorf("ui = %+v, want subscribed", m.ui)
	}
	if m.focus == focusSubscribe {
		t.Error("focus should leave the disabled subscribe button")
	}

	// Subscribe est désactivé : enter dessus ne fait rien
	m.focus = focusSubscribe
	if _, cmd := m.trigger(focusSubscribe); cmd != nil {
		t.Error("disabled subscribe button should not run an action")
	}

	m.focus = focusUnsubscribe
	m, cmd = press(m, "enter")
	m = exec(t, m, cmd)
	if m.ui != client.UIFor(false) {
		t.Errorf("ui = %+v, want unsubscribed", m.ui)
	}
	if strings.Contains(m.View(), "error") {
		t.Errorf("unexpected error in view:\n%s", m.View())
	}
}

func TestSendUsesInput(t *testing.T) {
	c := newFakeController()
	c.state = client.Reduce(c.state, client.SubscriptionConfirmed{})
	m := startedModel(t, c)

	m.focus = focusInput
	for _, key := range []string{"h", "i", "x", "backspace", "q"} {
		m, _ = press(m, key)
	}
	if m.input != "hiq" {
		t.Fatalf("input = %q, want %q", m.input, "hiq")
	}

	m, cmd := press(m, "enter")
	exec(t, m, cmd)

	last := c.handled[len(c.handled)-1]
	if last.action != client.ActionSend || last.input != "hiq" {
		t.Errorf("expected send of %q, got %+v", "hiq", last)
	}
}

func TestInputDisabledWhenUnsubscribed(t *testing.T) {
	c := newFakeController()
	m := startedModel(t, c)

	m.focus = focusInput
	m, _ = press(m, "a")
	if m.input != "" {
		t.Errorf("disabled input should ignore keys, got %q", m.input)
	}
}

func TestActionErrorShownInStatus(t *testing.T) {
	c := newFakeController()
	m := startedModel(t, c)
	c.err = errors.New("backend down")

	m, cmd := press(m, "enter")
	m = exec(t, m, cmd)

	if !m.statusErr || !strings.Contains(m.status, "Subscription error") {
		t.Errorf("status = %q, want subscription error", m.status)
	}
	if m.ui != client.UIFor(false) {
		t.Errorf("ui = %+v, want unchanged", m.ui)
	}
}

func TestRetryStartAfterFailure(t *testing.T) {
	c := newFakeController()
	c.err = errors.New("connection refused")
	m := New(c)
	m = exec(t, m, m.Init())

	if m.ready {
		t.Fatal("ready after a failed start")
	}
	if !m.statusErr || !strings.Contains(m.status, "r: réessayer") {
		t.Errorf("status = %q, want retry hint", m.status)
	}
	if m.enabled(focusSubscribe) {
		t.Error("subscribe enabled before start succeeded")
	}
	if !strings.Contains(m.View(), "r: réessayer") {
		t.Error("view does not mention the retry key")
	}

	// Le backend est maintenant disponible
	c.err = nil
	m, cmd := press(m, "r")
	if m.pending != 1 {
		t.Errorf("pending = %d, want 1", m.pending)
	}
	// Une seconde pression pendant l'initialisation ne relance rien
	if _, again := press(m, "r"); again != nil {
		t.Error("retry dispatched twice while start is pending")
	}
	m = exec(t, m, cmd)

	if !m.ready || m.statusErr {
		t.Errorf("ready = %v, status = %q after retry", m.ready, m.status)
	}
	if len(c.handled) != 2 || c.handled[0].action != client.ActionStart || c.handled[1].action != client.ActionStart {
		t.Errorf("handled = %+v, want two starts", c.handled)
	}
	if !m.enabled(focusSubscribe) {
		t.Error("subscribe disabled after a successful retry")
	}

	// Une fois prêt, r ne relance plus l'initialisation
	if _, cmd := press(m, "r"); cmd != nil {
		t.Error("retry dispatched after start succeeded")
	}
}

func TestNotificationClick(t *testing.T) {
	c := newFakeController()
	m := startedModel(t, c)

	var opened []string
	for _, title := range []string{"first", "second"} {
		title := title
		updated, _ := m.Update(NotificationMsg{
			Title: title,
			Body:  "body",
			Open: func(context.Context) error {
				opened = append(opened, title)
				return nil
			},
		})
		m = updated.(Model)
	}
	if !strings.Contains(m.View(), "second") {
		t.Fatalf("expected notifications in view:\n%s", m.View())
	}

	m.focus = focusNotifications
	m, _ = press(m, "down")
	m, cmd := press(m, "enter")
	m = exec(t, m, cmd)

	if len(opened) != 1 || opened[0] != "second" {
		t.Errorf("opened = %v, want [second]", opened)
	}
	if len(m.notifications) != 1 || m.notifications[0].Title != "first" {
		t.Errorf("notifications = %+v, want only first", m.notifications)
	}
	if m.status != "Page mise au premier plan" {
		t.Errorf("status = %q", m.status)
	}
}

func TestTabSkipsDisabledControls(t *testing.T) {
	c := newFakeController()
	m := startedModel(t, c)

	// Non abonné : seul Subscribe est actif
	m, _ = press(m, "tab")
	if m.focus != focusSubscribe {
		t.Errorf("focus = %d, want subscribe", m.focus)
	}

	c.state = client.Reduce(c.state, client.SubscriptionConfirmed{})
	m.ui = c.state.UI
	m.fixFocus()
	if m.focus != focusUnsubscribe {
		t.Fatalf("focus = %d, want unsubscribe", m.focus)
	}
	m, _ = press(m, "tab")
	if m.focus != focusInput {
		t.Errorf("focus = %d, want input", m.focus)
	}
	m, _ = press(m, "shift+tab")
	if m.focus != focusUnsubscribe {
		t.Errorf("focus = %d, want unsubscribe", m.focus)
	}
}

func TestQuit(t *testing.T) {
	m := startedModel(t, newFakeController())
	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestEditRune(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append", "hel", "l", "hell"},
		{"backspace multibyte", "café", "backspace", "caf"},
		{"ignore enter", "abc", "enter", "abc"},
		{"space", "a", " ", "a "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.start, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}

	long := strings.Repeat("x", maxInputLen)
	if got := editRune(long, "y"); got != long {
		t.Error("input should be clamped to maxInputLen")
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("hello", 10); got != "hello" {
		t.Errorf("truncStr = %q", got)
	}
	if got := truncStr("hello world", 6); got != "hello…" {
		t.Errorf("truncStr = %q", got)
	}
}
