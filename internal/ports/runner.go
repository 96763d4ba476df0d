package ports

import "context"

// Runner — фоновый компонент приложения (консьюмер, подписка, планировщик).
type Runner interface {
	Run(ctx context.Context) error
	Close() error
}
