package service_test

import (
	"context"
	"testing"
	"time"

	"fabrication-workflow/config"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	office = entity.Coordinates{Latitude: 14.5995, Longitude: 120.9842}
	site   = entity.Coordinates{Latitude: 14.5547, Longitude: 121.0244}
)

func feeConfig() config.FeeConfig {
	return config.FeeConfig{
		BaseFee:  decimal.NewFromInt(500),
		PerKmFee: decimal.NewFromInt(25),
	}
}

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name string
		a, b entity.Coordinates
		want float64
	}{
		{"same point", office, office, 0},
		{"one degree of longitude on the equator", entity.Coordinates{}, entity.Coordinates{Longitude: 1}, 111.195},
		{"london to paris", entity.Coordinates{Latitude: 51.5074, Longitude: -0.1278}, entity.Coordinates{Latitude: 48.8566, Longitude: 2.3522}, 343.557},
		{"office to site", office, site, 6.598},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, service.HaversineKm(tt.a, tt.b), 0.01)
			assert.InDelta(t, tt.want, service.HaversineKm(tt.b, tt.a), 0.01)
		})
	}
}

func TestComputeDistanceAndFee(t *testing.T) {
	log, _ := testutil.NewLogger()
	svc := service.NewRouteFeeService(nil, log, feeConfig())

	quote, err := svc.ComputeDistanceAndFee(context.Background(), office, site)
	require.NoError(t, err)

	assert.Equal(t, 6.6, quote.DistanceKm)
	assert.Equal(t, 14, quote.EtaMinutes)
	assert.True(t, quote.BaseFee.Equal(decimal.NewFromInt(500)), "base fee %s", quote.BaseFee)
	assert.True(t, quote.DistanceFee.Equal(decimal.NewFromInt(165)), "distance fee %s", quote.DistanceFee)
	assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(665)), "total fee %s", quote.TotalFee)
}

func TestComputeDistanceAndFee_InvalidCoordinates(t *testing.T) {
	log, _ := testutil.NewLogger()
	svc := service.NewRouteFeeService(nil, log, feeConfig())

	for _, c := range []entity.Coordinates{
		{Latitude: 90.5, Longitude: 0},
		{Latitude: -91, Longitude: 0},
		{Latitude: 0, Longitude: 180.01},
		{Latitude: 0, Longitude: -200},
	} {
		_, err := svc.ComputeDistanceAndFee(context.Background(), office, c)
		assert.ErrorIs(t, err, service.ErrInvalidCoordinates, "%+v", c)
	}
}

func TestComputeDistanceAndFee_UnreachableCacheStillQuotes(t *testing.T) {
	log, hook := testutil.NewLogger()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	svc := service.NewRouteFeeService(client, log, feeConfig())
	quote, err := svc.ComputeDistanceAndFee(context.Background(), office, site)
	require.NoError(t, err)
	assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(665)))
	assert.NotEmpty(t, hook.AllEntries(), "cache failures are logged")
}
