package analytics

import (
	"context"
	"sort"

	"canary-bot/internal/modules/audit"
)

type Source interface {
	Recent(ctx context.Context, limit int) []audit.Entry
}

type Service struct {
	source Source
}

func New(source Source) *Service {
	return &Service{source: source}
}

type Count struct {
	Key   string
	Total int
}

type Report struct {
	Total    int
	ByAction []Count
	ByStaff  []Count
}

// Report summarizes the most recent limit staff actions; limit <= 0 covers
// the whole log.
func (s *Service) Report(ctx context.Context, limit int) Report {
	entries := s.source.Recent(ctx, limit)

	byAction := make(map[string]int)
	byStaff := make(map[string]int)
	for _, entry := range entries {
		byAction[entry.Action]++
		staff := entry.StaffName
		if staff == "" {
			staff = entry.StaffID
		}
		byStaff[staff]++
	}
	return Report{
		Total:    len(entries),
		ByAction: ranked(byAction),
		ByStaff:  ranked(byStaff),
	}
}

func ranked(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for key, total := range counts {
		out = append(out, Count{Key: key, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}
