package usecase_movie

import (
	"context"
	"errors"
	"testing"

	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	catalog_mocks "github.com/humanbelnik/kinoswap/matchroom/mocks/catalog"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type UsecaseMovieUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase *Usecase
	catalog *catalog_mocks.Catalog
	ctx     context.Context
}

func initResources(t provider.T) *resources {
	catalog := catalog_mocks.NewCatalog(t)
	return &resources{
		usecase: New(catalog),
		catalog: catalog,
		ctx:     context.Background(),
	}
}

type MovieMetaBuilder struct {
	mm model.MovieMeta
}

func NewMovieMetaBuilder() *MovieMetaBuilder {
	return &MovieMetaBuilder{
		mm: model.MovieMeta{
			ID:         603,
			PosterLink: "http://example.com/poster.jpg",
			Title:      "The Matrix",
			Genres:     []string{"Action", "Science Fiction"},
			Year:       1999,
			Rating:     8.2,
			Runtime:    136,
			Overview:   "Test overview",
		},
	}
}

func (b *MovieMetaBuilder) WithID(id model.TitleID) *MovieMetaBuilder {
	b.mm.ID = id
	return b
}

func (b *MovieMetaBuilder) Build() model.MovieMeta {
	return b.mm
}

func (suite *UsecaseMovieUnitSuite) TestPopular(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		offset      int
		limit       int
		setupMocks  func(r *resources)
		expectLen   int
		expectError error
	}{
		{
			name:   "Should return catalog page",
			offset: 0,
			limit:  2,
			setupMocks: func(r *resources) {
				r.catalog.On("Popular", r.ctx, 0, 2).Return([]model.MovieMeta{
					NewMovieMetaBuilder().Build(),
					NewMovieMetaBuilder().WithID(604).Build(),
				}, nil).Once()
			},
			expectLen: 2,
		},
		{
			name:   "Should clamp oversized limit",
			offset: 10,
			limit:  5000,
			setupMocks: func(r *resources) {
				r.catalog.On("Popular", r.ctx, 10, maxPopularLimit).Return([]model.MovieMeta{}, nil).Once()
			},
		},
		{
			name:        "Should reject negative offset",
			offset:      -1,
			limit:       10,
			setupMocks:  func(r *resources) {},
			expectError: ErrInvalidInput,
		},
		{
			name:        "Should reject zero limit",
			limit:       0,
			setupMocks:  func(r *resources) {},
			expectError: ErrInvalidInput,
		},
		{
			name:  "Should wrap catalog failure",
			limit: 10,
			setupMocks: func(r *resources) {
				r.catalog.On("Popular", r.ctx, 0, 10).Return(nil, errors.New("db down")).Once()
			},
			expectError: ErrFailedToLoadMeta,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			mm, err := r.usecase.Popular(r.ctx, tc.offset, tc.limit)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, mm, tc.expectLen)
		})
	}
}

func (suite *UsecaseMovieUnitSuite) TestGetMovieByID(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		id          model.TitleID
		setupMocks  func(r *resources)
		expectError error
	}{
		{
			name: "Should return movie",
			id:   603,
			setupMocks: func(r *resources) {
				r.catalog.On("ByID", r.ctx, model.TitleID(603)).Return(NewMovieMetaBuilder().Build(), nil).Once()
			},
		},
		{
			name: "Should pass not found through unwrapped",
			id:   42,
			setupMocks: func(r *resources) {
				r.catalog.On("ByID", r.ctx, model.TitleID(42)).Return(model.MovieMeta{}, ErrResourceNotFound).Once()
			},
			expectError: ErrResourceNotFound,
		},
		{
			name:        "Should reject non-positive id",
			id:          0,
			setupMocks:  func(r *resources) {},
			expectError: ErrInvalidInput,
		},
		{
			name: "Should wrap catalog failure",
			id:   603,
			setupMocks: func(r *resources) {
				r.catalog.On("ByID", r.ctx, model.TitleID(603)).Return(model.MovieMeta{}, errors.New("timeout")).Once()
			},
			expectError: ErrFailedToLoadMeta,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			mm, err := r.usecase.GetMovieByID(r.ctx, tc.id)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.id, mm.ID)
		})
	}
}

func TestUsecaseMovieUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseMovieUnitSuite))
}
