package blogservice

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

type MockMessageProducer struct {
	mock.Mock
}

func (m *MockMessageProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}
