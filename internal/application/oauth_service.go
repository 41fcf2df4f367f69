package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/ports"

	"github.com/rs/zerolog"
)

// StateTTL bounds one install round trip
const StateTTL = 10 * time.Minute

// Webhook topics subscribed after every install
var installWebhookTopics = []string{"app/uninstalled", "themes/publish"}

// OAuthConfig holds the app credentials and install settings
type OAuthConfig struct {
	APIKey      string
	APISecret   string
	Scopes      []string
	RedirectURI string
	// WebhookURL receives app webhooks; empty skips subscription
	WebhookURL string
	// ShopDomainSuffix restricts which hostnames may install, e.g. myshopify.com
	ShopDomainSuffix string
}

// InstallRedirect is where the browser goes next and the nonce it must bring back
type InstallRedirect struct {
	URL   string
	State string
}

// CallbackResult is the outcome of a completed install
type CallbackResult struct {
	Shop       string
	SessionKey string
	Assets     json.RawMessage
}

// OAuthService runs the install handshake
type OAuthService struct {
	cfg          OAuthConfig
	client       ports.ShopifyClient
	credentials  *CredentialStore
	integrations *IntegrationService
	assets       *AssetService
	stateStore   ports.StateStore
	observer     ports.Observer
	logger       zerolog.Logger
	shopPattern  *regexp.Regexp
}

// NewOAuthService creates a new handshake service. stateStore may be nil, in
// which case the state cookie alone carries the nonce.
func NewOAuthService(
	cfg OAuthConfig,
	client ports.ShopifyClient,
	credentials *CredentialStore,
	integrations *IntegrationService,
	assets *AssetService,
	stateStore ports.StateStore,
	observer ports.Observer,
	logger zerolog.Logger,
) *OAuthService {
	if observer == nil {
		observer = nopObserver{}
	}
	suffix := cfg.ShopDomainSuffix
	if suffix == "" {
		suffix = "myshopify.com"
	}
	return &OAuthService{
		cfg:          cfg,
		client:       client,
		credentials:  credentials,
		integrations: integrations,
		assets:       assets,
		stateStore:   stateStore,
		observer:     observer,
		logger:       logger,
		shopPattern:  regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*\.` + regexp.QuoteMeta(suffix) + `$`),
	}
}

// ValidShop reports whether shop is a hostname allowed to install
func (s *OAuthService) ValidShop(shop string) bool {
	return s.shopPattern.MatchString(shop)
}

// BeginInstall issues a fresh state nonce and builds the authorize URL
func (s *OAuthService) BeginInstall(ctx context.Context, shop string) (*InstallRedirect, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, &domain.MissingParameterError{Params: []string{"shop"}}
	}
	if !s.ValidShop(shop) {
		return nil, &domain.InvalidShopError{Shop: shop}
	}

	state, err := newState()
	if err != nil {
		return nil, err
	}

	if s.stateStore != nil {
		now := time.Now()
		err := s.stateStore.Save(ctx, &domain.InstallState{
			State:     state,
			Shop:      shop,
			CreatedAt: now,
			ExpiresAt: now.Add(StateTTL),
		}, StateTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to save install state: %w", err)
		}
	}

	authURL, err := s.client.GenerateAuthURL(shop, s.cfg.Scopes, s.cfg.RedirectURI, state)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorize url: %w", err)
	}

	s.logger.Info().
		Str("shop", shop).
		Str("handshake", string(domain.HandshakeAwaitingCallback)).
		Msg("Redirecting to authorize")

	return &InstallRedirect{URL: authURL, State: state}, nil
}

// HandleCallback verifies the platform's redirect and completes the install.
// Checks run in a fixed order: state, required parameters, signature.
func (s *OAuthService) HandleCallback(ctx context.Context, query url.Values, cookieState string) (*CallbackResult, error) {
	shop := query.Get("shop")
	log := s.logger.With().Str("shop", shop).Logger()

	reject := func(err error) (*CallbackResult, error) {
		s.observer.ObserveHandshake(string(domain.HandshakeRejected))
		log.Warn().Err(err).Str("handshake", string(domain.HandshakeRejected)).Msg("Install callback rejected")
		return nil, err
	}

	queryState := query.Get("state")
	if cookieState == "" || subtle.ConstantTimeCompare([]byte(queryState), []byte(cookieState)) != 1 {
		return reject(&domain.StateMismatchError{})
	}

	var missing []string
	for _, p := range []string{"shop", "hmac", "code"} {
		if query.Get(p) == "" {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return reject(&domain.MissingParameterError{Params: missing})
	}

	if !VerifyQuery(s.cfg.APISecret, query) {
		return reject(&domain.HmacValidationError{})
	}
	if !s.ValidShop(shop) {
		return reject(&domain.InvalidShopError{Shop: shop})
	}

	if s.stateStore != nil {
		issued, err := s.stateStore.Consume(ctx, queryState)
		if err != nil {
			return nil, fmt.Errorf("failed to load install state: %w", err)
		}
		if issued == nil {
			return reject(&domain.StateMismatchError{Reason: "state expired or already used"})
		}
		if issued.Shop != shop {
			return reject(&domain.StateMismatchError{Reason: "state issued for another shop"})
		}
	}
	log.Debug().Str("handshake", string(domain.HandshakeVerified)).Msg("Install callback verified")

	grant, err := s.client.ExchangeToken(ctx, shop, query.Get("code"))
	if err != nil {
		return reject(err)
	}

	if err := s.credentials.Save(ctx, shop, grant.AccessToken, grant.Scope); err != nil {
		return nil, err
	}
	s.assets.InvalidateTheme(shop)

	integration, err := s.integrations.CreateIntegration(ctx, shop)
	if err != nil {
		return nil, err
	}

	s.observer.ObserveHandshake(string(domain.HandshakeTokenAcquired))
	log.Info().Str("handshake", string(domain.HandshakeTokenAcquired)).Msg("App installed")

	s.subscribeWebhooks(ctx, shop, grant.AccessToken)

	assets, err := s.assets.RawAssets(ctx, shop)
	if err != nil {
		return nil, err
	}

	return &CallbackResult{
		Shop:       shop,
		SessionKey: integration.Key,
		Assets:     assets,
	}, nil
}

// subscribeWebhooks registers install webhooks. Failures are logged and ignored.
func (s *OAuthService) subscribeWebhooks(ctx context.Context, shop, token string) {
	if s.cfg.WebhookURL == "" {
		return
	}
	for _, topic := range installWebhookTopics {
		if _, err := s.client.CreateWebhook(ctx, shop, token, topic, s.cfg.WebhookURL); err != nil {
			s.logger.Warn().Err(err).Str("shop", shop).Str("topic", topic).Msg("Failed to subscribe webhook")
			continue
		}
		s.logger.Debug().Str("shop", shop).Str("topic", topic).Msg("Subscribed webhook")
	}
}

// newState returns 16 random bytes, hex encoded
func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
