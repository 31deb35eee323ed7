package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"webpush-backend/models"
	"webpush-backend/utils"
)

type fakeSubscription struct {
	pm         *fakePushManager
	endpoint   string
	unsubOK    bool
	unsubErr   error
	unsubCalls int
}

func (s *fakeSubscription) Endpoint() string { return s.endpoint }

func (s *fakeSubscription) ToJSON() models.Subscription {
	return models.Subscription{
		Endpoint: s.endpoint,
		Keys:     models.SubscriptionKeys{P256dh: "p256dh", Auth: "auth"},
	}
}

func (s *fakeSubscription) Unsubscribe(ctx context.Context) (bool, error) {
	s.unsubCalls++
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.unsubErr != nil || !s.unsubOK {
		return false, s.unsubErr
	}
	s.pm.current = nil
	return true, nil
}

type fakePushManager struct {
	current        *fakeSubscription
	subscribeErr   error
	subscribeCalls int
	lastOpts       SubscribeOptions
	counter        int
}

func (pm *fakePushManager) GetSubscription(context.Context) (PushSubscription, error) {
	if pm.current == nil {
		return nil, nil
	}
	return pm.current, nil
}

func (pm *fakePushManager) Subscribe(_ context.Context, opts SubscribeOptions) (PushSubscription, error) {
	pm.subscribeCalls++
	pm.lastOpts = opts
	if pm.subscribeErr != nil {
		return nil, pm.subscribeErr
	}
	if pm.current == nil {
		pm.counter++
		pm.current = &fakeSubscription{pm: pm, endpoint: "https://push.example.com/" + string(rune('a'+pm.counter)), unsubOK: true}
	}
	return pm.current, nil
}

type fakeRegistration struct {
	pm *fakePushManager
}

func (r *fakeRegistration) PushManager() PushManager { return r.pm }

type fakeContainer struct {
	reg         *fakeRegistration
	registered  [][2]string
	registerErr error
}

func (c *fakeContainer) Register(_ context.Context, scriptURL, scope string) (ServiceWorkerRegistration, error) {
	if c.registerErr != nil {
		return nil, c.registerErr
	}
	c.registered = append(c.registered, [2]string{scriptURL, scope})
	return c.reg, nil
}

func (c *fakeContainer) Ready(context.Context) (ServiceWorkerRegistration, error) {
	return c.reg, nil
}

type fakePlatform struct {
	sw         *fakeContainer
	permission PermissionState
}

func (p *fakePlatform) ServiceWorker() ServiceWorkerContainer  { return p.sw }
func (p *fakePlatform) NotificationPermission() PermissionState { return p.permission }

func newFakePlatform() (*fakePlatform, *fakePushManager) {
	pm := &fakePushManager{}
	return &fakePlatform{
		sw:         &fakeContainer{reg: &fakeRegistration{pm: pm}},
		permission: PermissionGranted,
	}, pm
}

type fakeBackend struct {
	mu             sync.Mutex
	key            []byte
	keyErr         error
	subscriptions  map[string]bool
	subscribeErr   error
	unsubscribeErr error
	calls          []string
	sent           []models.PushMessage

	inFlight   int32
	overlapped int32
	delay      time.Duration

	// blockSubscribe fait attendre Subscribe jusqu'à l'expiration du contexte
	blockSubscribe bool
}

func newFakeBackend() *fakeBackend {
	key, err := utils.GenerateVAPIDKeys()
	if err != nil {
		panic(err)
	}
	raw, err := utils.UncompressedPublicKey(&key.PublicKey)
	if err != nil {
		panic(err)
	}
	return &fakeBackend{key: raw, subscriptions: map[string]bool{}}
}

func (b *fakeBackend) enter(call string) func() {
	if atomic.AddInt32(&b.inFlight, 1) > 1 {
		atomic.StoreInt32(&b.overlapped, 1)
	}
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return func() { atomic.AddInt32(&b.inFlight, -1) }
}

func (b *fakeBackend) callsSnapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) PublicSigningKey(context.Context) ([]byte, error) {
	defer b.enter("publicSigningKey")()
	if b.keyErr != nil {
		return nil, b.keyErr
	}
	return b.key, nil
}

func (b *fakeBackend) IsSubscribed(_ context.Context, endpoint string) (bool, error) {
	defer b.enter("isSubscribed")()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscriptions[endpoint], nil
}

func (b *fakeBackend) Subscribe(ctx context.Context, sub models.Subscription) error {
	defer b.enter("subscribe")()
	if b.blockSubscribe {
		<-ctx.Done()
		return ctx.Err()
	}
	if b.subscribeErr != nil {
		return b.subscribeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[sub.Endpoint] = true
	return nil
}

func (b *fakeBackend) Unsubscribe(_ context.Context, endpoint string) error {
	defer b.enter("unsubscribe")()
	if b.unsubscribeErr != nil {
		return b.unsubscribeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscriptions, endpoint)
	return nil
}

func (b *fakeBackend) Send(_ context.Context, msg models.PushMessage) error {
	defer b.enter("send")()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
	return nil
}

var errBackendDown = errors.New("backend indisponible")
