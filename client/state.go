package client

// UIState contient les quatre drapeaux "disabled" des contrôles de la page
type UIState struct {
	SubscribeDisabled   bool
	UnsubscribeDisabled bool
	SendInputDisabled   bool
	SendButtonDisabled  bool
}

// UIFor dérive l'état des contrôles de la présence d'un abonnement
func UIFor(subscribed bool) UIState {
	return UIState{
		SubscribeDisabled:   subscribed,
		UnsubscribeDisabled: !subscribed,
		SendInputDisabled:   !subscribed,
		SendButtonDisabled:  !subscribed,
	}
}

// AppState est l'état du contrôleur de page
type AppState struct {
	SigningKey []byte
	Subscribed bool
	UI         UIState
}

// InitialState : pas de clé, pas d'abonnement, bouton d'abonnement actif
func InitialState() AppState {
	return AppState{UI: UIFor(false)}
}

// Event est une transition de l'état
type Event interface {
	apply(AppState) AppState
}

// KeyFetched : la clé publique du serveur a été récupérée
type KeyFetched struct {
	Key []byte
}

// SubscriptionConfirmed : la plateforme et le backend connaissent l'abonnement
type SubscriptionConfirmed struct{}

// SubscriptionRemoved : la plateforme n'a plus d'abonnement
type SubscriptionRemoved struct{}

// SubscriptionUnsynced : la plateforme garde un abonnement que le backend ne connaît pas
type SubscriptionUnsynced struct{}

func (e KeyFetched) apply(s AppState) AppState {
	s.SigningKey = append([]byte(nil), e.Key...)
	return s
}

func (SubscriptionConfirmed) apply(s AppState) AppState {
	s.Subscribed = true
	s.UI = UIFor(true)
	return s
}

func (SubscriptionRemoved) apply(s AppState) AppState {
	s.Subscribed = false
	s.UI = UIFor(false)
	return s
}

// L'interface suit la plateforme : le désabonnement reste possible pour nettoyer
func (SubscriptionUnsynced) apply(s AppState) AppState {
	s.Subscribed = true
	s.UI = UIFor(true)
	return s
}

// Reduce calcule le nouvel état sans modifier l'ancien
func Reduce(state AppState, event Event) AppState {
	return event.apply(state)
}
