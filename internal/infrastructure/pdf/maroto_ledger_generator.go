// Package pdf genera el informe de trazabilidad de un lote para auditorías.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + Marca      │  Código de lote + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LOTE: Ubicación de fabricación / Estado de validación       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Origen | Destino | Km | Combustible | CO2e   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BALANCES por ubicación + ORÍGENES disponibles               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con la URL pública del lote                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/application/transport"
)

var _ transport.LedgerPDFGenerator = (*MarotoLedgerGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 27, Green: 94, Blue: 32}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLedgerGenerator implementa transport.LedgerPDFGenerator usando Maroto v2.
type MarotoLedgerGenerator struct{}

// NewMarotoLedgerGenerator construye el generador.
func NewMarotoLedgerGenerator() *MarotoLedgerGenerator { return &MarotoLedgerGenerator{} }

// GenerateLedgerPDF genera el PDF y devuelve sus bytes.
func (g *MarotoLedgerGenerator) GenerateLedgerPDF(_ context.Context, r *transport.LedgerReport) ([]byte, error) {
	if r == nil || r.Batch == nil {
		return nil, fmt.Errorf("pdf: informe vacío")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Trazabilidad del lote "+r.Batch.BatchCode, true).
		WithAuthor(nonEmpty(r.Batch.ProductBrand, r.Batch.ProductName), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(batchRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("MOVIMIENTOS"))
	m.AddRows(tableHeaderRow())
	m.AddRows(movementRows(r)...)
	m.AddRows(totalsRow(r))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("BALANCE POR UBICACIÓN"))
	m.AddRows(balanceRows(r)...)
	m.AddRows(originsRow(r))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto y marca (izq), código de lote y fecha del informe (der).
func headerRow(r *transport.LedgerReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(r.Batch.ProductName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Marca: "+nonEmpty(r.Batch.ProductBrand, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INFORME DE TRAZABILIDAD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(r.Batch.BatchCode, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func batchRow(r *transport.LedgerReport) core.Row {
	b := r.Batch
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Fabricado en: %s   |   Validación: %s   |   Materiales: %s",
				nonEmpty(b.ManufacturingLocation, "—"),
				string(b.ValidationStatus),
				nonEmpty(b.MaterialInfo, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Fecha", 2, align.Left),
		h("Origen", 3, align.Left),
		h("Destino", 3, align.Left),
		h("Km", 1, align.Right),
		h("Combustible", 1, align.Center),
		h("kg CO2e", 2, align.Right),
	)
}

// movementRows: un tramo por fila, en orden cronológico.
func movementRows(r *transport.LedgerReport) []core.Row {
	if len(r.Movements) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("El lote no registra tramos de transporte.", props.Text{
				Size: 8, Top: 1, Color: colorGray, Align: align.Center,
			}),
		))}
	}
	result := make([]core.Row, 0, len(r.Movements))
	for _, t := range r.Movements {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(t.CreatedAt.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(t.Origin, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(t.Destination, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(t.DistanceKm.StringFixed(1), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(t.FuelType, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(t.TransportEmission.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: distancia y emisión acumuladas del lote.
func totalsRow(r *transport.LedgerReport) core.Row {
	distance, emissions := decimal.Zero, decimal.Zero
	for _, t := range r.Movements {
		distance = distance.Add(t.DistanceKm)
		emissions = emissions.Add(t.TransportEmission)
	}
	label := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 2}
	value := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 2, Color: colorPrimary}

	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("Total: "+distance.StringFixed(1)+" km", label)),
		col.New(3).Add(text.New(emissions.StringFixed(2)+" kg CO2e", value)),
	)
}

func balanceRows(r *transport.LedgerReport) []core.Row {
	result := make([]core.Row, 0, len(r.Balances))
	for _, b := range r.Balances {
		result = append(result, row.New(6).Add(
			col.New(8).Add(text.New(b.Location, props.Text{Size: 8, Top: 1, Left: 2})),
			col.New(4).Add(text.New(fmt.Sprintf("%+d", b.Balance), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
		))
	}
	return result
}

func originsRow(r *transport.LedgerReport) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("Orígenes disponibles para el próximo envío:", props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 3,
		}),
		text.New(strings.Join(r.Origins.Origins, ", "), props.Text{Size: 8, Top: 8, Color: colorGray}),
	))
}

// footerRow: QR con la URL pública del lote.
func footerRow(r *transport.LedgerReport) core.Row {
	if r.QRURL == "" {
		return row.New(8)
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(r.QRURL, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanea el código para consultar la trazabilidad pública del lote.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(r.QRURL, props.Text{Size: 7, Top: 12, Left: 3, Color: colorPrimary}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
