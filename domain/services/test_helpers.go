package services

import (
	"contestbot/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestGuildID = int64(555555555)
	TestBotID   = int64(999999)
)

// newAcceptingPublisher returns an event publisher mock that accepts any event
func newAcceptingPublisher() *testhelpers.MockEventPublisher {
	publisher := &testhelpers.MockEventPublisher{}
	publisher.On("Publish", mock.Anything).Return(nil)
	return publisher
}

func int64Ptr(v int64) *int64 {
	return &v
}
