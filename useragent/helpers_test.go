package useragent

import (
	"context"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webpush-backend/client"
	"webpush-backend/utils"
	"webpush-backend/web"
)

// testBrowser regroupe un navigateur, son origine et son service push
type testBrowser struct {
	*Browser
	origin *httptest.Server
	push   *httptest.Server
}

func newTestBrowser(t *testing.T, permission client.PermissionState) *testBrowser {
	t.Helper()

	origin := httptest.NewServer(web.Handler())
	t.Cleanup(origin.Close)

	push := httptest.NewUnstartedServer(nil)
	b, err := New(Options{
		Origin:      origin.URL,
		PushBaseURL: "http://" + push.Listener.Addr().String(),
		Permission:  permission,
		Log:         zap.NewNop(),
	})
	require.NoError(t, err)
	push.Config.Handler = b.PushHandler()
	push.Start()
	t.Cleanup(push.Close)

	return &testBrowser{Browser: b, origin: origin, push: push}
}

func (tb *testBrowser) register(t *testing.T) {
	t.Helper()
	_, err := tb.ServiceWorker().Register(context.Background(), client.ServiceWorkerScript, client.ServiceWorkerScope)
	require.NoError(t, err)
}

// vapidKeys est une paire de clés de serveur d'application
type vapidKeys struct {
	public  string
	private string
	raw     []byte
}

func newVAPIDKeys(t *testing.T) vapidKeys {
	t.Helper()
	key, err := utils.GenerateVAPIDKeys()
	require.NoError(t, err)
	raw, err := utils.UncompressedPublicKey(&key.PublicKey)
	require.NoError(t, err)
	scalar, err := utils.PrivateKeyScalar(key)
	require.NoError(t, err)
	return vapidKeys{public: utils.EncodeBase64URL(raw), private: utils.EncodeBase64URL(scalar), raw: raw}
}

func (tb *testBrowser) subscribe(t *testing.T, keys vapidKeys) *Subscription {
	t.Helper()
	reg, err := tb.ServiceWorker().Ready(context.Background())
	require.NoError(t, err)
	sub, err := reg.PushManager().Subscribe(context.Background(), client.SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: keys.raw,
	})
	require.NoError(t, err)
	return sub.(*Subscription)
}

// sendPush envoie un message avec webpush-go et retourne le code HTTP du service push
func sendPush(t *testing.T, sub *Subscription, keys vapidKeys, payload []byte) int {
	t.Helper()
	json := sub.ToJSON()
	resp, err := webpush.SendNotificationWithContext(context.Background(), payload, &webpush.Subscription{
		Endpoint: json.Endpoint,
		Keys:     webpush.Keys{P256dh: json.Keys.P256dh, Auth: json.Keys.Auth},
	}, &webpush.Options{
		Subscriber:      "test@example.com",
		VAPIDPublicKey:  keys.public,
		VAPIDPrivateKey: keys.private,
		TTL:             180,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}
