package useragent

import (
	"context"
	"fmt"
)

// Notification est une notification du centre de notifications
type Notification struct {
	browser *Browser
	id      int
	title   string
	body    string
	icon    string
}

func (n *Notification) ID() int { return n.id }
func (n *Notification) Title() string { return n.title }
func (n *Notification) Body() string { return n.body }
func (n *Notification) Icon() string { return n.icon }

// Close retire la notification du centre de notifications
func (n *Notification) Close() {
	b := n.browser
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, other := range b.notifications {
		if other == n {
			b.notifications = append(b.notifications[:i], b.notifications[i+1:]...)
			return
		}
	}
}

// Notifications retourne les notifications affichées, de la plus ancienne à la plus récente
func (b *Browser) Notifications() []*Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Notification(nil), b.notifications...)
}

// OnNotification enregistre une fonction appelée à chaque notification affichée
func (b *Browser) OnNotification(fn func(*Notification)) {
	b.mu.Lock()
	b.onNotification = fn
	b.mu.Unlock()
}

// Click simule un clic de l'utilisateur sur la notification
func (b *Browser) Click(ctx context.Context, n *Notification) error {
	reg := b.activeRegistration()
	if reg == nil {
		return ErrNotRegistered
	}
	if err := reg.agent.OnNotificationClick(ctx, n); err != nil {
		return fmt.Errorf("notificationclick: %w", err)
	}
	return nil
}

// Dismiss simule la fermeture de la notification par l'utilisateur
func (b *Browser) Dismiss(n *Notification) {
	n.Close()
	if reg := b.activeRegistration(); reg != nil {
		reg.agent.OnNotificationClose(n)
	}
}
