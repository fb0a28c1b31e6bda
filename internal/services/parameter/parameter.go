// Package parameter хранит именованные параметры кооператива.
//
// Значения лежат в базе данных и кешируются в Redis. Параметр, не заданный в базе,
// принимает значение по умолчанию из конфига, поэтому джокеры без явной настройки выключены.
package parameter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/config"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

var (
	// ErrUnknownParameter параметр с таким ключом не существует.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrInvalidValue значение не подходит параметру.
	ErrInvalidValue = errors.New("invalid parameter value")
)

const cacheTTL = time.Hour

// Repository определяет методы для работы с параметрами в хранилище.
type Repository interface {
	GetParameter(ctx context.Context, key string) (string, error)
	SetParameter(ctx context.Context, key, value string) error
}

// Cache определяет методы кеша.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service чтение и изменение параметров.
type Service struct {
	repo     Repository
	cache    Cache
	defaults map[string]string
	log      *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(repo Repository, cache Cache, defaults config.Defaults, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		defaults: Defaults(defaults),
		log:      log,
	}
}

// Defaults значения параметров по умолчанию из конфига.
func Defaults(d config.Defaults) map[string]string {
	return map[string]string{
		models.ParamJokersEnabled:              strconv.FormatBool(d.JokersEnabled),
		models.ParamMaxJokersPerContract:       strconv.Itoa(d.MaxJokersPerContract),
		models.ParamJokerRestrictions:          d.JokerRestrictions,
		models.ParamPaymentDueDay:              strconv.Itoa(d.PaymentDueDay),
		models.ParamPickupLocationChangeNotice: strconv.Itoa(d.PickupLocationChangeDays),
		models.ParamDefaultNoticePeriod:        strconv.Itoa(d.DefaultNoticePeriod),
	}
}

func cacheKey(key string) string {
	return "parameter:" + key
}

// Get возвращает значение параметра.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	const op = "parameter.Get"
	if !slices.Contains(models.ParameterKeys, key) {
		return "", fmt.Errorf("%s: %w: %s", op, ErrUnknownParameter, key)
	}

	var cached models.Parameter
	found, err := s.cache.Get(ctx, cacheKey(key), &cached)
	if err != nil {
		s.log.Warn("failed to read parameter from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached.Value, nil
	}

	value, err := s.repo.GetParameter(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		value = s.defaults[key]
	case err != nil:
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, cacheKey(key), models.Parameter{Key: key, Value: value}, cacheTTL); err != nil {
		s.log.Warn("failed to cache parameter", slog.String("key", key), sl.Err(err))
	}
	return value, nil
}

// List возвращает все параметры с текущими значениями.
func (s *Service) List(ctx context.Context) ([]models.Parameter, error) {
	params := make([]models.Parameter, 0, len(models.ParameterKeys))
	for _, key := range models.ParameterKeys {
		value, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		params = append(params, models.Parameter{Key: key, Value: value})
	}
	return params, nil
}

// Set проверяет и сохраняет значение параметра.
// Некорректная строка ограничений джокеров отклоняется целиком.
func (s *Service) Set(ctx context.Context, key, value string) error {
	const op = "parameter.Set"
	if err := Validate(key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetParameter(ctx, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cacheKey(key)); err != nil {
		s.log.Warn("failed to invalidate parameter cache", slog.String("key", key), sl.Err(err))
	}
	s.log.Info("parameter updated", slog.String("key", key))
	return nil
}

// Validate проверяет значение параметра по его ключу.
func Validate(key, value string) error {
	switch key {
	case models.ParamJokersEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s must be a boolean", ErrInvalidValue, key)
		}
	case models.ParamMaxJokersPerContract, models.ParamPickupLocationChangeNotice, models.ParamDefaultNoticePeriod:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidValue, key)
		}
	case models.ParamPaymentDueDay:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 31 {
			return fmt.Errorf("%w: %s must be a day of month", ErrInvalidValue, key)
		}
	case models.ParamJokerRestrictions:
		if _, err := joker.ParseRestrictions(value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParameter, key)
	}
	return nil
}
