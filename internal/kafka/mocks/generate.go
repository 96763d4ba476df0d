//go:generate mockgen -source=../deps.go -destination=./mock_deps.go -package=mocks

package mocks
