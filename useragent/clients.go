package useragent

import (
	"context"
	"fmt"

	"webpush-backend/agent"
)

// Window est une page ouverte dans le navigateur
type Window struct {
	browser    *Browser
	url        string
	controlled bool
}

// URL retourne l'URL absolue de la page
func (w *Window) URL() string {
	return w.url
}

// Focus met la page au premier plan
func (w *Window) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := w.browser
	b.mu.Lock()
	b.focused = w
	b.mu.Unlock()
	b.log.Debug("fenêtre au premier plan")
	return nil
}

// Controlled indique si la page est contrôlée par le service worker
func (w *Window) Controlled() bool {
	w.browser.mu.Lock()
	defer w.browser.mu.Unlock()
	return w.controlled
}

// OpenPage ouvre une page de l'origine. Elle est contrôlée si un service worker est déjà actif.
func (b *Browser) OpenPage(ref string) (*Window, error) {
	u, err := b.resolve(ref)
	if err != nil || !b.sameOrigin(u) {
		return nil, fmt.Errorf("page %q hors de l'origine %s", ref, b.origin)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	w := &Window{browser: b, url: u.String(), controlled: b.registration != nil}
	b.windows = append(b.windows, w)
	b.focused = w
	return w, nil
}

// Windows retourne les pages ouvertes, dans l'ordre d'ouverture
func (b *Browser) Windows() []*Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Window(nil), b.windows...)
}

// FocusedWindow retourne la page au premier plan, nil si aucune
func (b *Browser) FocusedWindow() *Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused
}

// clients implémente agent.Clients
type clients Browser

func (c *clients) Claim(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := (*Browser)(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.windows {
		w.controlled = true
	}
	return nil
}

func (c *clients) MatchAll(ctx context.Context, opts agent.MatchOptions) ([]agent.WindowClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Type != "" && opts.Type != agent.ClientTypeWindow && opts.Type != "all" {
		return nil, nil
	}

	b := (*Browser)(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []agent.WindowClient
	for _, w := range b.windows {
		if w.controlled || opts.IncludeUncontrolled {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

func (c *clients) OpenWindow(ctx context.Context, ref string) (agent.WindowClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := (*Browser)(c).OpenPage(ref)
	if err != nil {
		return nil, err
	}
	return w, nil
}
