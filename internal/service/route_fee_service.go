package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"fabrication-workflow/config"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/pkg/apperror"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefix for cached fee quotes
	RedisFeeQuoteKeyPrefix = "fee:quote:"

	earthRadiusKm = 6371.0088
)

var ErrInvalidCoordinates = apperror.Validation("invalid_coordinates", "Latitude must be within ±90 and longitude within ±180")

// RouteFeeService estimates travel distance, ETA and the site-visit fee.
// Distance is the great-circle distance; quotes are cached in Redis by
// rounded coordinates. A nil or unreachable Redis only disables the cache.
type RouteFeeService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	cfg         config.FeeConfig
}

func NewRouteFeeService(redisClient *redis.Client, log *logrus.Logger, cfg config.FeeConfig) *RouteFeeService {
	if cfg.AverageSpeedKmh <= 0 {
		cfg.AverageSpeedKmh = 30
	}
	if cfg.CoordinatePlaces <= 0 {
		cfg.CoordinatePlaces = 4
	}
	return &RouteFeeService{
		redisClient: redisClient,
		log:         log,
		cfg:         cfg,
	}
}

func (s *RouteFeeService) ComputeDistanceAndFee(ctx context.Context, origin, dest entity.Coordinates) (*entity.FeeQuote, error) {
	if !validCoordinates(origin) || !validCoordinates(dest) {
		return nil, ErrInvalidCoordinates
	}

	key := s.cacheKey(origin, dest)
	if quote, ok := s.cached(ctx, key); ok {
		return quote, nil
	}

	distance := HaversineKm(origin, dest)
	distanceKm := math.Round(distance*100) / 100
	eta := int(math.Ceil(distance / s.cfg.AverageSpeedKmh * 60))

	distanceFee := s.cfg.PerKmFee.Mul(decimal.NewFromFloat(distanceKm)).Round(2)
	baseFee := s.cfg.BaseFee.Round(2)
	quote := &entity.FeeQuote{
		DistanceKm:  distanceKm,
		EtaMinutes:  eta,
		BaseFee:     baseFee,
		DistanceFee: distanceFee,
		TotalFee:    baseFee.Add(distanceFee),
	}

	s.store(ctx, key, quote)
	return quote, nil
}

// HaversineKm is the great-circle distance between two points
func HaversineKm(a, b entity.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func validCoordinates(c entity.Coordinates) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (s *RouteFeeService) cacheKey(origin, dest entity.Coordinates) string {
	round := func(f float64) string {
		return decimal.NewFromFloat(f).Round(s.cfg.CoordinatePlaces).String()
	}
	return fmt.Sprintf("%s%s,%s:%s,%s", RedisFeeQuoteKeyPrefix,
		round(origin.Latitude), round(origin.Longitude), round(dest.Latitude), round(dest.Longitude))
}

func (s *RouteFeeService) cached(ctx context.Context, key string) (*entity.FeeQuote, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warnf("Failed to read fee quote cache %s: %+v", key, err)
		}
		return nil, false
	}

	var quote entity.FeeQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		s.log.Warnf("Discarding unreadable fee quote cache %s: %+v", key, err)
		return nil, false
	}
	return &quote, true
}

func (s *RouteFeeService) store(ctx context.Context, key string, quote *entity.FeeQuote) {
	if s.redisClient == nil {
		return
	}
	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	ttl := s.cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.redisClient.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.log.Warnf("Failed to cache fee quote %s: %+v", key, err)
	}
}
