package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/citymunch/slack-bot/internal/model"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Search(ctx context.Context, text, userID string) (*model.SearchResult, error) {
	args := m.Called(ctx, text, userID)
	res, _ := args.Get(0).(*model.SearchResult)
	return res, args.Error(1)
}

func (m *mockService) ShowMore(ctx context.Context, searchID string) (string, bool, error) {
	args := m.Called(ctx, searchID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockService) SaveLocation(ctx context.Context, userID, name string) (*model.ResolvedLocation, error) {
	args := m.Called(ctx, userID, name)
	loc, _ := args.Get(0).(*model.ResolvedLocation)
	return loc, args.Error(1)
}

func (m *mockService) ShouldPromptForNotifications(ctx context.Context, userID string) bool {
	return m.Called(ctx, userID).Bool(0)
}

const testSearchID = "1b4e28ba-2fa1-4d3b-a3f5-ef19b5a7633b"

func serveRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestHealthEndpoint(t *testing.T) {
	h := newRouter(&mockService{}, closedChan())

	rr := serveRequest(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ready", body["catalog"])
}

func TestHealthEndpoint_CatalogLoading(t *testing.T) {
	h := newRouter(&mockService{}, make(chan struct{}))

	rr := serveRequest(t, h, http.MethodGet, "/health", nil)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "loading", body["catalog"])
}

func TestSearchEndpoint_Success(t *testing.T) {
	svc := &mockService{}
	svc.On("Search", mock.Anything, "chinese in old street", "U1").Return(&model.SearchResult{
		HasEvents:               true,
		Message:                 "page one",
		MessageAfterShowingMore: "page two",
		AddShowMoreButton:       true,
		SearchID:                testSearchID,
	}, nil)
	svc.On("ShouldPromptForNotifications", mock.Anything, "U1").Return(true)
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodPost, "/search", map[string]string{
		"text":    "chinese in old street",
		"user_id": "U1",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "page one", body["message"])
	assert.Equal(t, "page two", body["message_after_showing_more"])
	assert.Equal(t, true, body["add_show_more_button"])
	assert.Equal(t, testSearchID, body["search_id"])
	assert.Equal(t, true, body["prompt_notifications"])
	svc.AssertExpectations(t)
}

func TestSearchEndpoint_AnonymousSkipsPrompt(t *testing.T) {
	svc := &mockService{}
	svc.On("Search", mock.Anything, "", "").Return(&model.SearchResult{Message: "help"}, nil)
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodPost, "/search", map[string]string{"text": ""})

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["prompt_notifications"])
	svc.AssertNotCalled(t, "ShouldPromptForNotifications", mock.Anything, mock.Anything)
}

func TestSearchEndpoint_InvalidBody(t *testing.T) {
	h := newRouter(&mockService{}, closedChan())

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestSearchEndpoint_TextTooLong(t *testing.T) {
	h := newRouter(&mockService{}, closedChan())

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	rr := serveRequest(t, h, http.MethodPost, "/search", map[string]string{"text": string(long)})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "validation failed")
}

func TestSearchEndpoint_ErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{
			name:       "location",
			err:        model.NewSearchError(model.KindLocationNotFound, "no match for atlantis"),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   model.KindLocationNotFound.String(),
			wantMsg:    "Sorry, I don't understand the location",
		},
		{
			name:       "parse",
			err:        model.NewSearchError(model.KindParseFailure, "nothing matched"),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   model.KindParseFailure.String(),
			wantMsg:    "couldn't find anything on today",
		},
		{
			name:       "no offers",
			err:        model.NewSearchError(model.KindNoOffersFound, "nothing on"),
			wantStatus: http.StatusNotFound,
			wantKind:   model.KindNoOffersFound.String(),
			wantMsg:    "couldn't find anything on today",
		},
		{
			name:       "unknown",
			err:        errors.New("partner api down"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "couldn't find anything on today",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Search", mock.Anything, "query", "").Return(nil, tt.err)
			h := newRouter(svc, closedChan())

			rr := serveRequest(t, h, http.MethodPost, "/search", map[string]string{"text": "query"})

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Contains(t, body.Message, tt.wantMsg)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestShowMoreEndpoint(t *testing.T) {
	svc := &mockService{}
	svc.On("ShowMore", mock.Anything, testSearchID).Return("page two", true, nil)
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodGet, "/searches/"+testSearchID+"/more", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "page two", body["message"])
	assert.Equal(t, testSearchID, body["search_id"])
}

func TestShowMoreEndpoint_NotFound(t *testing.T) {
	svc := &mockService{}
	svc.On("ShowMore", mock.Anything, testSearchID).Return("", false, nil)
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodGet, "/searches/"+testSearchID+"/more", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShowMoreEndpoint_InvalidID(t *testing.T) {
	h := newRouter(&mockService{}, closedChan())

	rr := serveRequest(t, h, http.MethodGet, "/searches/not-a-uuid/more", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShowMoreEndpoint_StoreError(t *testing.T) {
	svc := &mockService{}
	svc.On("ShowMore", mock.Anything, testSearchID).Return("", false, errors.New("redis down"))
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodGet, "/searches/"+testSearchID+"/more", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestSaveLocationEndpoint(t *testing.T) {
	loc := &model.ResolvedLocation{Name: "Old Street", Center: &model.Point{Latitude: 51.52, Longitude: -0.08}}
	svc := &mockService{}
	svc.On("SaveLocation", mock.Anything, "U1", "work").Return(loc, nil)
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodPut, "/users/U1/saved-locations/work", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var body model.ResolvedLocation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Old Street", body.Name)
}

func TestSaveLocationEndpoint_UnknownName(t *testing.T) {
	h := newRouter(&mockService{}, closedChan())

	rr := serveRequest(t, h, http.MethodPut, "/users/U1/saved-locations/gym", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "home or work")
}

func TestSaveLocationEndpoint_NoHistory(t *testing.T) {
	svc := &mockService{}
	svc.On("SaveLocation", mock.Anything, "U1", "home").
		Return(nil, model.NewSearchError(model.KindNeedsLocation, "no location yet"))
	h := newRouter(svc, closedChan())

	rr := serveRequest(t, h, http.MethodPut, "/users/U1/saved-locations/home", nil)

	assert.Equal(t, http.StatusConflict, rr.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, model.KindNeedsLocation.String(), body.Kind)
	assert.Contains(t, body.Message, "your home")
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(&mockService{}, closedChan())

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
