// Package mocks provides test doubles for the citymunch client.
package mocks

import (
	"context"

	citymunch "github.com/citymunch/slack-bot/pkg/citymunch"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SearchHints provides a mock function with given fields: ctx
func (_m *MockClient) SearchHints(ctx context.Context) (*citymunch.SearchHints, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for SearchHints")
	}

	var r0 *citymunch.SearchHints
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*citymunch.SearchHints)
	}
	return r0, ret.Error(1)
}

// Geocode provides a mock function with given fields: ctx, placeName
func (_m *MockClient) Geocode(ctx context.Context, placeName string) (*citymunch.GeocodeResponse, error) {
	ret := _m.Called(ctx, placeName)

	if len(ret) == 0 {
		panic("no return value specified for Geocode")
	}

	var r0 *citymunch.GeocodeResponse
	if rf, ok := ret.Get(0).(func(context.Context, string) *citymunch.GeocodeResponse); ok {
		r0 = rf(ctx, placeName)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*citymunch.GeocodeResponse)
	}
	return r0, ret.Error(1)
}

// SearchRestaurants provides a mock function with given fields: ctx, q
func (_m *MockClient) SearchRestaurants(ctx context.Context, q citymunch.RestaurantQuery) (*citymunch.RestaurantSearchResponse, error) {
	ret := _m.Called(ctx, q)

	if len(ret) == 0 {
		panic("no return value specified for SearchRestaurants")
	}

	var r0 *citymunch.RestaurantSearchResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*citymunch.RestaurantSearchResponse)
	}
	return r0, ret.Error(1)
}

// ActiveEvents provides a mock function with given fields: ctx, q
func (_m *MockClient) ActiveEvents(ctx context.Context, q citymunch.EventQuery) (*citymunch.ActiveEventsResponse, error) {
	ret := _m.Called(ctx, q)

	if len(ret) == 0 {
		panic("no return value specified for ActiveEvents")
	}

	var r0 *citymunch.ActiveEventsResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*citymunch.ActiveEventsResponse)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
