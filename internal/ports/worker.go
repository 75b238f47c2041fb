package ports

import "context"

// Worker - фоновый компонент приложения (консьюмер Kafka, чистильщик корзин).
type Worker interface {
	Run(ctx context.Context) error
	Close() error
}
