//go:generate mockgen -source=../cart_store.go       -destination=./mock_cart_store.go       -package=mocks
//go:generate mockgen -source=../cart_cache.go       -destination=./mock_cart_cache.go       -package=mocks
//go:generate mockgen -source=../cart_service.go     -destination=./mock_cart_service.go     -package=mocks
//go:generate mockgen -source=../product_catalog.go  -destination=./mock_product_catalog.go  -package=mocks
//go:generate mockgen -source=../catalog_updater.go  -destination=./mock_catalog_updater.go  -package=mocks
//go:generate mockgen -source=../validator.go        -destination=./mock_validator.go        -package=mocks
//go:generate mockgen -source=../logger.go           -destination=./mock_logger.go           -package=mocks
//go:generate mockgen -source=../worker.go           -destination=./mock_worker.go           -package=mocks
//go:generate mockgen -source=../auth.go             -destination=./mock_auth.go             -package=mocks

package mocks
