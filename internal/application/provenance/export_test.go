package provenance

import "time"

// SetClock reemplaza el reloj del caso de uso en pruebas.
func (uc *RegisterBatchUseCase) SetClock(now func() time.Time) { uc.now = now }
