package quiz

import (
	"context"
	"math"
)

type Overview struct {
	TotalModules     int   `json:"total_modules"`
	TotalQuestions   int64 `json:"total_questions"`
	TotalAttempts    int   `json:"total_attempts"`
	UniqueUsers      int   `json:"unique_users"`
	MockAttempts     int   `json:"mock_attempts"`
	RevisionAttempts int   `json:"revision_attempts"`
}

type ModuleStats struct {
	ModuleName       string  `json:"module_name"`
	Attempts         int     `json:"attempts"`
	MockAttempts     int     `json:"mock_attempts"`
	RevisionAttempts int     `json:"revision_attempts"`
	AverageScore     float64 `json:"average_score"`
}

type Stats struct {
	Overview    Overview      `json:"overview"`
	ModuleStats []ModuleStats `json:"module_stats"`
}

// ComputeStats aggregates all modules and attempts in process memory.
// Full scan, no caching; collections are assumed small.
func ComputeStats(ctx context.Context, store Store) (Stats, error) {
	modules, err := store.ListModules(ctx)
	if err != nil {
		return Stats{}, err
	}
	attempts, err := store.ListAttempts(ctx)
	if err != nil {
		return Stats{}, err
	}
	questionCount, err := store.CountQuestions(ctx)
	if err != nil {
		return Stats{}, err
	}

	users := map[string]struct{}{}
	mock, revision := 0, 0
	for _, a := range attempts {
		users[a.Username] = struct{}{}
		switch a.Type {
		case TypeMock:
			mock++
		case TypeRevision:
			revision++
		}
	}

	perModule := make([]ModuleStats, 0, len(modules))
	for _, m := range modules {
		ms := ModuleStats{ModuleName: m.Name}
		sum := 0.0
		for _, a := range attempts {
			if a.ModuleID != m.ID {
				continue
			}
			ms.Attempts++
			switch a.Type {
			case TypeMock:
				ms.MockAttempts++
				if a.Score != nil {
					sum += *a.Score
				}
			case TypeRevision:
				ms.RevisionAttempts++
			}
		}
		if ms.MockAttempts > 0 {
			ms.AverageScore = math.Round(sum/float64(ms.MockAttempts)*100) / 100
		}
		perModule = append(perModule, ms)
	}

	return Stats{
		Overview: Overview{
			TotalModules:     len(modules),
			TotalQuestions:   questionCount,
			TotalAttempts:    len(attempts),
			UniqueUsers:      len(users),
			MockAttempts:     mock,
			RevisionAttempts: revision,
		},
		ModuleStats: perModule,
	}, nil
}
