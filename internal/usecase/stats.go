package usecase

import "github.com/Gunvolt24/statshub/internal/ports"

var _ ports.StatsService = (*Stats)(nil)

// Stats — фасад для транспорта: запись через SyncService, чтение через AggregateService.
type Stats struct {
	*SyncService
	*AggregateService
}

func NewStats(sync *SyncService, aggregates *AggregateService) *Stats {
	return &Stats{SyncService: sync, AggregateService: aggregates}
}
