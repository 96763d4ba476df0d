//go:generate mockgen -source=../order_store.go       -destination=./mock_order_store.go       -package=mocks
//go:generate mockgen -source=../aggregate_cache.go   -destination=./mock_aggregate_cache.go   -package=mocks
//go:generate mockgen -source=../broadcaster.go       -destination=./mock_broadcaster.go       -package=mocks
//go:generate mockgen -source=../sync_side_effects.go -destination=./mock_sync_side_effects.go -package=mocks
//go:generate mockgen -source=../stats_service.go     -destination=./mock_stats_service.go     -package=mocks
//go:generate mockgen -source=../validator.go         -destination=./mock_validator.go         -package=mocks
//go:generate mockgen -source=../runner.go            -destination=./mock_runner.go            -package=mocks
//go:generate mockgen -source=../logger.go            -destination=./mock_logger.go            -package=mocks

package mocks
