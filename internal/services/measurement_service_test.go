package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMeasurementStore struct {
	items      map[int64]*models.BodyMeasurement
	lastFilter repository.MeasurementListFilter
}

func (s *stubMeasurementStore) GetByID(_ context.Context, id int64) (*models.BodyMeasurement, error) {
	if m, ok := s.items[id]; ok {
		return m, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubMeasurementStore) List(_ context.Context, filter repository.MeasurementListFilter, page repository.PageRequest) (models.Page[models.BodyMeasurement], error) {
	s.lastFilter = filter
	return repository.NewPage[models.BodyMeasurement](nil, page, 0), nil
}

func TestMeasurementOwnership(t *testing.T) {
	store := &stubMeasurementStore{items: map[int64]*models.BodyMeasurement{
		4: {ID: 4, UserID: 2, MetricType: "weight", Value: 81.5, Unit: "kg"},
	}}
	svc := NewMeasurementService(refusingDB{t}, store, NewAuditService(nil, nil, nil))
	ctx := context.Background()

	_, err := svc.Get(ctx, member(1), 4)
	requireStatus(t, err, http.StatusForbidden)

	got, err := svc.Get(ctx, member(2), 4)
	require.NoError(t, err)
	assert.Equal(t, 81.5, got.Value)

	requireStatus(t, svc.Delete(ctx, member(1), 4, models.RequestMeta{}), http.StatusForbidden)
	requireStatus(t, svc.Delete(ctx, member(1), 5, models.RequestMeta{}), http.StatusNotFound)

	other := int64(2)
	_, err = svc.Record(ctx, member(1), MeasurementInput{UserID: &other, MetricType: "weight", Value: 80, Unit: "kg"}, models.RequestMeta{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.List(ctx, member(1), repository.MeasurementListFilter{UserID: 2, MetricType: "weight"}, repository.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), store.lastFilter.UserID)
}
