package application

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/infrastructure/encryption"
	"theme-images-manager/internal/infrastructure/repository"
	"theme-images-manager/internal/ports"

	shopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// fakeShopify records calls and answers from canned data
type fakeShopify struct {
	mu sync.Mutex

	grant       *ports.TokenGrant
	exchangeErr error

	mainTheme  uint64
	themeCalls int

	assets []shopify.Asset
	raw    json.RawMessage

	listErr   error
	putErr    map[string]error
	deleteErr map[string]error

	put        []string
	deleted    []string
	webhooks   []string
	tokensSeen []string

	inFlight    int
	maxInFlight int
}

func newFakeShopify() *fakeShopify {
	return &fakeShopify{
		grant:     &ports.TokenGrant{AccessToken: "tok1", Scope: "write_themes"},
		mainTheme: 42,
		putErr:    map[string]error{},
		deleteErr: map[string]error{},
		raw:       json.RawMessage(`{"assets":[]}`),
	}
}

func (f *fakeShopify) seen(token string) {
	f.mu.Lock()
	f.tokensSeen = append(f.tokensSeen, token)
	f.mu.Unlock()
}

func (f *fakeShopify) enter() func() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	time.Sleep(time.Millisecond)
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func (f *fakeShopify) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?scope=" + strings.Join(scopes, ",") + "&state=" + state + "&redirect_uri=" + redirectURI, nil
}

func (f *fakeShopify) ExchangeToken(_ context.Context, shop string, _ string) (*ports.TokenGrant, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	g := *f.grant
	return &g, nil
}

func (f *fakeShopify) MainThemeID(_ context.Context, _ string, token string) (uint64, error) {
	f.seen(token)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themeCalls++
	return f.mainTheme, nil
}

func (f *fakeShopify) ListAssets(_ context.Context, _ string, token string, _ uint64) ([]shopify.Asset, error) {
	f.seen(token)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.assets, nil
}

func (f *fakeShopify) RawAssets(_ context.Context, _ string, token string, _ uint64) (json.RawMessage, error) {
	f.seen(token)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.raw, nil
}

func (f *fakeShopify) PutAsset(_ context.Context, _ string, token string, themeID uint64, asset shopify.Asset) (*shopify.Asset, error) {
	f.seen(token)
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putErr[asset.Key]; err != nil {
		return nil, err
	}
	f.put = append(f.put, asset.Key)
	return &shopify.Asset{Key: asset.Key, ContentType: "image/png", ThemeId: themeID}, nil
}

func (f *fakeShopify) DeleteAsset(_ context.Context, _ string, token string, _ uint64, key string) error {
	f.seen(token)
	defer f.enter()()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeShopify) CreateWebhook(_ context.Context, _ string, token string, topic string, _ string) (*shopify.Webhook, error) {
	f.seen(token)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks = append(f.webhooks, topic)
	return &shopify.Webhook{Topic: topic}, nil
}

// recordingObserver counts observer events
type recordingObserver struct {
	mu         sync.Mutex
	handshakes []string
	items      map[string]int
}

func (o *recordingObserver) ObserveHandshake(state string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handshakes = append(o.handshakes, state)
}

func (o *recordingObserver) ObserveBatchItem(operation string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.items == nil {
		o.items = map[string]int{}
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.items[operation+"/"+result]++
}

type testEnv struct {
	client       *fakeShopify
	shops        *repository.InMemoryShopRepository
	credentials  *CredentialStore
	integrations *IntegrationService
	assets       *AssetService
	observer     *recordingObserver
}

func newTestEnv(t *testing.T, cfg AssetServiceConfig) *testEnv {
	t.Helper()
	enc, err := encryption.NewService(testEncryptionKey)
	require.NoError(t, err)

	env := &testEnv{
		client:   newFakeShopify(),
		shops:    repository.NewInMemoryShopRepository(),
		observer: &recordingObserver{},
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	env.credentials = NewCredentialStore(env.shops, enc, zerolog.Nop())
	env.integrations = NewIntegrationService(repository.NewInMemoryIntegrationRepository(), zerolog.Nop())
	env.assets = NewAssetService(env.client, env.credentials, env.observer, cfg, zerolog.Nop())
	return env
}

func (e *testEnv) install(t *testing.T, shop, token string) {
	t.Helper()
	require.NoError(t, e.credentials.Save(context.Background(), shop, token, "write_themes"))
}

func unauthorized() error {
	return &domain.RemoteAPIError{Op: "put asset", Status: http.StatusUnauthorized}
}
