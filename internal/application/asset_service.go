package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/ports"

	shopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AssetService lists, uploads and deletes theme images for an installed shop
type AssetService struct {
	client      ports.ShopifyClient
	credentials *CredentialStore
	observer    ports.Observer
	logger      zerolog.Logger

	themeID     uint64
	concurrency int

	mu     sync.Mutex
	themes map[string]uint64
}

// AssetServiceConfig holds the gateway settings
type AssetServiceConfig struct {
	// ThemeID pins every shop to one theme; zero resolves each shop's main theme
	ThemeID     uint64
	Concurrency int
}

// NewAssetService creates a new asset gateway
func NewAssetService(
	client ports.ShopifyClient,
	credentials *CredentialStore,
	observer ports.Observer,
	cfg AssetServiceConfig,
	logger zerolog.Logger,
) *AssetService {
	if observer == nil {
		observer = nopObserver{}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &AssetService{
		client:      client,
		credentials: credentials,
		observer:    observer,
		logger:      logger,
		themeID:     cfg.ThemeID,
		concurrency: cfg.Concurrency,
		themes:      make(map[string]uint64),
	}
}

// themeFor returns the theme the gateway writes to for a shop
func (s *AssetService) themeFor(ctx context.Context, shop, token string) (uint64, error) {
	if s.themeID != 0 {
		return s.themeID, nil
	}

	s.mu.Lock()
	id, ok := s.themes[shop]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := s.client.MainThemeID(ctx, shop, token)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.themes[shop] = id
	s.mu.Unlock()
	s.logger.Debug().Str("shop", shop).Uint64("themeId", id).Msg("Resolved main theme")
	return id, nil
}

// InvalidateTheme drops the cached main theme of a shop
func (s *AssetService) InvalidateTheme(shop string) {
	s.mu.Lock()
	delete(s.themes, shop)
	s.mu.Unlock()
}

// session loads the token and theme for a gateway call
func (s *AssetService) session(ctx context.Context, shop string) (string, uint64, error) {
	token, err := s.credentials.AccessToken(ctx, shop)
	if err != nil {
		return "", 0, err
	}
	themeID, err := s.themeFor(ctx, shop, token)
	if err != nil {
		return "", 0, s.checkRevoked(ctx, shop, err)
	}
	return token, themeID, nil
}

// checkRevoked forgets the token when the platform no longer accepts it
func (s *AssetService) checkRevoked(ctx context.Context, shop string, err error) error {
	if !domain.IsUnauthorized(err) {
		return err
	}
	s.logger.Warn().Str("shop", shop).Msg("Access token rejected, revoking")
	if revokeErr := s.credentials.Revoke(ctx, shop); revokeErr != nil {
		s.logger.Error().Err(revokeErr).Str("shop", shop).Msg("Failed to revoke rejected token")
	}
	s.InvalidateTheme(shop)
	return domain.ErrShopNotInstalled
}

// RawAssets returns the theme's asset listing untouched
func (s *AssetService) RawAssets(ctx context.Context, shop string) (json.RawMessage, error) {
	token, themeID, err := s.session(ctx, shop)
	if err != nil {
		return nil, err
	}
	return s.rawAssets(ctx, shop, token, themeID)
}

func (s *AssetService) rawAssets(ctx context.Context, shop, token string, themeID uint64) (json.RawMessage, error) {
	raw, err := s.client.RawAssets(ctx, shop, token, themeID)
	if err != nil {
		return nil, s.checkRevoked(ctx, shop, err)
	}
	return raw, nil
}

// ListImages returns the gif, jpeg and png assets in platform order
func (s *AssetService) ListImages(ctx context.Context, shop string) ([]domain.Image, error) {
	token, themeID, err := s.session(ctx, shop)
	if err != nil {
		return nil, err
	}

	assets, err := s.client.ListAssets(ctx, shop, token, themeID)
	if err != nil {
		return nil, s.checkRevoked(ctx, shop, err)
	}

	images := make([]domain.Image, 0, len(assets))
	for _, asset := range assets {
		if !domain.IsImageContentType(asset.ContentType) {
			continue
		}
		images = append(images, imageFromAsset(asset))
	}
	return images, nil
}

// UploadImages puts every payload and waits for all of them. Outcomes are in
// input order; a failed item does not stop the others.
func (s *AssetService) UploadImages(ctx context.Context, shop string, payloads []domain.AssetPayload) ([]domain.AssetOutcome, error) {
	token, themeID, err := s.session(ctx, shop)
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.AssetOutcome, len(payloads))
	errs := make([]error, len(payloads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, payload := range payloads {
		outcomes[i] = domain.AssetOutcome{Key: payload.Key, Name: domain.AssetName(payload.Key)}
		g.Go(func() error {
			if err := validateAssetName(outcomes[i].Name); err != nil {
				errs[i] = err
				return nil
			}
			updated, err := s.client.PutAsset(gctx, shop, token, themeID, shopify.Asset{
				Key:        payload.Key,
				Attachment: payload.Attachment,
			})
			if err != nil {
				errs[i] = err
				return nil
			}
			img := imageFromAsset(*updated)
			outcomes[i].Asset = &img
			return nil
		})
	}
	_ = g.Wait()

	return s.finishBatch(ctx, shop, "upload", outcomes, errs)
}

// DeleteImages removes every named asset and waits for all of them
func (s *AssetService) DeleteImages(ctx context.Context, shop string, names []string) ([]domain.AssetOutcome, error) {
	token, themeID, err := s.session(ctx, shop)
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.AssetOutcome, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		outcomes[i] = domain.AssetOutcome{Key: domain.AssetKey(name), Name: name}
		g.Go(func() error {
			if err := validateAssetName(name); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = s.client.DeleteAsset(gctx, shop, token, themeID, outcomes[i].Key)
			return nil
		})
	}
	_ = g.Wait()

	return s.finishBatch(ctx, shop, "delete", outcomes, errs)
}

// finishBatch records per-item results. A rejected token fails the whole batch.
func (s *AssetService) finishBatch(ctx context.Context, shop, operation string, outcomes []domain.AssetOutcome, errs []error) ([]domain.AssetOutcome, error) {
	for i, err := range errs {
		s.observer.ObserveBatchItem(operation, err)
		if err == nil {
			continue
		}
		if domain.IsUnauthorized(err) {
			return nil, s.checkRevoked(ctx, shop, err)
		}
		outcomes[i].Error = err.Error()
		outcomes[i].Rejected = errors.Is(err, errInvalidAssetName)
		s.logger.Warn().
			Err(err).
			Str("shop", shop).
			Str("key", outcomes[i].Key).
			Msgf("Failed to %s asset", operation)
	}
	return outcomes, nil
}

var errInvalidAssetName = errors.New("invalid asset name")

func validateAssetName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w %q", errInvalidAssetName, name)
	}
	return nil
}

func imageFromAsset(asset shopify.Asset) domain.Image {
	return domain.Image{
		Key:         asset.Key,
		PublicURL:   asset.PublicURL,
		ContentType: asset.ContentType,
		Size:        asset.Size,
		ThemeID:     asset.ThemeId,
		CreatedAt:   asset.CreatedAt,
		UpdatedAt:   asset.UpdatedAt,
		Name:        domain.AssetName(asset.Key),
		Type:        asset.ContentType,
	}
}

type nopObserver struct{}

func (nopObserver) ObserveHandshake(string)        {}
func (nopObserver) ObserveBatchItem(string, error) {}
