package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// AnalyticsRepo implementa repository.AnalyticsRepository.
type AnalyticsRepo struct{ view }

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

func (r *AnalyticsRepo) GetTransporterTotals(_ context.Context, transporterID string) (repository.TransporterTotals, error) {
	totals := repository.TransporterTotals{TotalDistance: decimal.Zero, TotalEmission: decimal.Zero}
	err := r.read(func(st *state) error {
		for _, t := range st.transports {
			if t.TransporterID != transporterID {
				continue
			}
			totals.TransportCount++
			totals.TotalDistance = totals.TotalDistance.Add(t.DistanceKm)
			totals.TotalEmission = totals.TotalEmission.Add(t.TransportEmission)
		}
		return nil
	})
	return totals, err
}

func (r *AnalyticsRepo) CountProducts(_ context.Context, manufacturerID string) (int, error) {
	n := 0
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.ManufacturerID == manufacturerID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *AnalyticsRepo) CountBatches(_ context.Context, manufacturerID string) (int, error) {
	n := 0
	err := r.read(func(st *state) error {
		for _, b := range st.batches {
			if st.products[b.ProductID].ManufacturerID == manufacturerID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// ProductBatchSummaries un registro por producto, ordenado por nombre.
func (r *AnalyticsRepo) ProductBatchSummaries(_ context.Context, manufacturerID string) ([]repository.ProductBatchSummary, error) {
	var out []repository.ProductBatchSummary
	err := r.read(func(st *state) error {
		index := make(map[string]int)
		for _, p := range st.products {
			if p.ManufacturerID != manufacturerID {
				continue
			}
			index[p.ID] = len(out)
			out = append(out, repository.ProductBatchSummary{ProductID: p.ID, ProductName: p.Name})
		}

		latest := make(map[string]string) // product_id → batch_id
		for _, b := range st.batches {
			i, ok := index[b.ProductID]
			if !ok {
				continue
			}
			out[i].BatchCount++
			cur, seen := latest[b.ProductID]
			if !seen || newerFirst(st, b.ID, b.CreatedAt, cur, st.batches[cur].CreatedAt) {
				latest[b.ProductID] = b.ID
			}
		}
		for productID, batchID := range latest {
			b := st.batches[batchID]
			s := &out[index[productID]]
			s.LastBatchID = &b.ID
			s.LastBatchCode = &b.BatchCode
			s.LastBatchCreatedAt = &b.CreatedAt
		}

		sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
		return nil
	})
	return out, err
}
