// Package memory implementa los repositorios sobre mapas en memoria.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado
// que solo se publica si la función termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

type state struct {
	seq        int64
	order      map[string]int64 // id → orden de inserción, desempata created_at
	products   map[string]entity.Product
	batches    map[string]entity.Batch
	scores     map[string]entity.Score
	transports map[string]entity.Transport
	labReports map[string]entity.LabReport
	audit      []entity.AuditLog
}

func newState() *state {
	return &state{
		order:      make(map[string]int64),
		products:   make(map[string]entity.Product),
		batches:    make(map[string]entity.Batch),
		scores:     make(map[string]entity.Score),
		transports: make(map[string]entity.Transport),
		labReports: make(map[string]entity.LabReport),
	}
}

func (st *state) clone() *state {
	c := &state{
		seq:        st.seq,
		order:      make(map[string]int64, len(st.order)),
		products:   make(map[string]entity.Product, len(st.products)),
		batches:    make(map[string]entity.Batch, len(st.batches)),
		scores:     make(map[string]entity.Score, len(st.scores)),
		transports: make(map[string]entity.Transport, len(st.transports)),
		labReports: make(map[string]entity.LabReport, len(st.labReports)),
		audit:      append([]entity.AuditLog(nil), st.audit...),
	}
	for k, v := range st.order {
		c.order[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.batches {
		c.batches[k] = v
	}
	for k, v := range st.scores {
		c.scores[k] = v
	}
	for k, v := range st.transports {
		c.transports[k] = v
	}
	for k, v := range st.labReports {
		c.labReports[k] = v
	}
	return c
}

func (st *state) track(id string) {
	st.seq++
	st.order[id] = st.seq
}

// Store almacén en memoria. Implementa todos los repositorios y los TxRunner de
// provenance y transport.
type Store struct {
	mu   sync.Mutex
	data *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{data: newState()}
}

// view acceso al estado: dentro de una tx usa la copia sin bloquear (el mutex ya está tomado).
type view struct {
	s  *Store
	tx *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.data)
}

// run ejecuta fn sobre una copia del estado y la publica si no hay error.
func (s *Store) run(ctx context.Context, fn func(v view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(view{s: s, tx: tx}); err != nil {
		return err
	}
	s.data = tx
	return nil
}

// RunBatch implementa provenance.TxRunner.
func (s *Store) RunBatch(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	scoreRepo repository.ScoreRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return s.run(ctx, func(v view) error {
		return fn(&ProductRepo{v}, &BatchRepo{v}, &ScoreRepo{v}, &AuditRepo{v})
	})
}

// RunTransport implementa transport.TxRunner.
func (s *Store) RunTransport(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	transportRepo repository.TransportRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return s.run(ctx, func(v view) error {
		return fn(&BatchRepo{v}, &TransportRepo{v}, &AuditRepo{v})
	})
}

func (s *Store) Products() *ProductRepo     { return &ProductRepo{view{s: s}} }
func (s *Store) Batches() *BatchRepo        { return &BatchRepo{view{s: s}} }
func (s *Store) Scores() *ScoreRepo         { return &ScoreRepo{view{s: s}} }
func (s *Store) Transports() *TransportRepo { return &TransportRepo{view{s: s}} }
func (s *Store) LabReports() *LabReportRepo { return &LabReportRepo{view{s: s}} }
func (s *Store) Audit() *AuditRepo          { return &AuditRepo{view{s: s}} }
func (s *Store) Analytics() *AnalyticsRepo  { return &AnalyticsRepo{view{s: s}} }

// AuditEntries copia de la bitácora en orden de inserción.
func (s *Store) AuditEntries() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditLog(nil), s.data.audit...)
}
