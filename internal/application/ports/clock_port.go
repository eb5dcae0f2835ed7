package ports

import "time"

// Clock fuente de tiempo inyectable; los tests fijan "hoy".
type Clock interface {
	Now() time.Time
}

// SystemClock reloj del sistema en UTC.
type SystemClock struct{}

// Now devuelve la hora actual en UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock reloj detenido en un instante.
type FixedClock struct {
	T time.Time
}

// Now devuelve el instante fijo.
func (c FixedClock) Now() time.Time { return c.T }
