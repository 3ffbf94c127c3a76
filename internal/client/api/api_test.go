package client_api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type APIClientSuite struct {
	suite.Suite
}

func serve(t provider.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", "")
}

func (s *APIClientSuite) TestAdoptsIssuedToken(t provider.T) {
	var seen []string
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(tokenHeader))
		w.Header().Set(tokenHeader, "issued")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Ticket{Code: "ABC123", Pin: "0001", Slot: "A", Mode: "pair"})
	})

	ticket, err := c.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", ticket.Code)
	assert.Equal(t, "issued", c.Token())

	_, err = c.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "issued"}, seen)
}

func (s *APIClientSuite) TestJoinErrors(t provider.T) {
	cases := []struct {
		status int
		want   error
	}{
		{status: http.StatusNotFound, want: ErrNotFound},
		{status: http.StatusForbidden, want: ErrForbidden},
		{status: http.StatusConflict, want: ErrConflict},
		{status: http.StatusGone, want: ErrExpired},
		{status: http.StatusTeapot, want: ErrUnexpected},
	}

	for _, tc := range cases {
		c := serve(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/rooms/ABC123/join", r.URL.Path)
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(errorResponse{Message: "nope"})
		})

		_, err := c.JoinRoom(context.Background(), "ABC123", "0000")
		assert.ErrorIs(t, err, tc.want)
		assert.ErrorContains(t, err, "nope")
	}
}

func (s *APIClientSuite) TestSlotSourceQueue(t provider.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rooms/ABC123/slots/B/queue", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		assert.Equal(t, "tok", r.Header.Get(tokenHeader))
		_, _ = w.Write([]byte(`{"items":[{"title":{"id":7,"title":"Alien"},"source":"priority"}],"meta":{"hasMore":true,"nextOffset":15}}`))
	})
	c.token = "tok"

	page, err := c.Slot("ABC123", "B").Queue(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(7), page.Items[0].Title.ID)
	assert.Equal(t, "priority", page.Items[0].Source)
	assert.Equal(t, 15, page.Meta.NextOffset)
}

func (s *APIClientSuite) TestPopular(t provider.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/movies", r.URL.Path)
		_, _ = w.Write([]byte(`{"movies":[{"id":1,"title":"Heat"},{"id":2,"title":"Ronin"}]}`))
	})

	titles, err := c.Popular(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Len(t, titles, 2)
}

func (s *APIClientSuite) TestSlotSourceTitle(t provider.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/movies/603", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix"}`))
	})

	title, err := c.Slot("K7QX2M", "B").Title(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", title.Title)
}

func TestAPIClientSuite(t *testing.T) {
	suite.RunSuite(t, new(APIClientSuite))
}
