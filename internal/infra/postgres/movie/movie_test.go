package infra_postgres_movie

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_movie "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/movie"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type MovieInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	db         *sqlx.DB
	mock       sqlmock.Sqlmock
	repository *Repository
	ctx        context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return &resources{
		db:         sqlxDB,
		mock:       mock,
		repository: New(sqlxDB),
		ctx:        context.Background(),
	}
}

var movieColumns = []string{"id", "title", "year", "rating", "runtime", "genres", "overview", "poster_link"}

func movieRows() *sqlmock.Rows {
	return sqlmock.NewRows(movieColumns).
		AddRow(int64(603), "The Matrix", 1999, 8.2, 136, "{Action,\"Science Fiction\"}", "Neo wakes up", "http://example.com/603.jpg").
		AddRow(int64(27205), "Inception", 2010, 8.4, 148, "{Action}", "Dreams", "http://example.com/27205.jpg")
}

func (suite *MovieInfraUnitSuite) TestSeededPage(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources)
		expectIDs   []model.TitleID
		expectError bool
	}{
		{
			name: "Should map rows in query order",
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery(`ORDER BY md5\(id::text \|\| \$1::text\), id`).
					WithArgs(int64(42), 40, 20).
					WillReturnRows(movieRows())
			},
			expectIDs: []model.TitleID{603, 27205},
		},
		{
			name: "Should return empty page past the end",
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("FROM movies").
					WithArgs(int64(42), 40, 20).
					WillReturnRows(sqlmock.NewRows(movieColumns))
			},
			expectIDs: []model.TitleID{},
		},
		{
			name: "Should wrap query failure",
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("FROM movies").
					WithArgs(int64(42), 40, 20).
					WillReturnError(errors.New("connection refused"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			mm, err := r.repository.SeededPage(r.ctx, 42, 40, 20)

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "seeded page")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectIDs, model.IDs(mm))
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *MovieInfraUnitSuite) TestByID(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources)
		expectError error
	}{
		{
			name: "Should decode genres array",
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("WHERE id = \\$1").
					WithArgs(int64(603)).
					WillReturnRows(movieRows())
			},
		},
		{
			name: "Should map no rows to not found",
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("WHERE id = \\$1").
					WithArgs(int64(603)).
					WillReturnError(sql.ErrNoRows)
			},
			expectError: usecase_movie.ErrResourceNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			mm, err := r.repository.ByID(r.ctx, 603)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "The Matrix", mm.Title)
				assert.Equal(t, []string{"Action", "Science Fiction"}, mm.Genres)
				assert.Equal(t, 136, mm.Runtime)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *MovieInfraUnitSuite) TestCount(t provider.T) {
	t.Parallel()
	r := initResources(t)
	r.mock.ExpectQuery(`SELECT count\(\*\) FROM movies`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(95))

	n, err := r.repository.Count(r.ctx)

	assert.NoError(t, err)
	assert.Equal(t, 95, n)
	assert.NoError(t, r.mock.ExpectationsWereMet())
}

func (suite *MovieInfraUnitSuite) TestPopular(t provider.T) {
	t.Parallel()
	r := initResources(t)
	r.mock.ExpectQuery(`ORDER BY rating DESC, id`).
		WithArgs(0, 2).
		WillReturnRows(movieRows())

	mm, err := r.repository.Popular(r.ctx, 0, 2)

	assert.NoError(t, err)
	assert.Len(t, mm, 2)
	assert.NoError(t, r.mock.ExpectationsWereMet())
}

func TestMovieInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(MovieInfraUnitSuite))
}
