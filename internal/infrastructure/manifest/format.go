// Package manifest renderiza el manifiesto de una carga en los formatos de descarga
// (CSV, XML canónico y PDF).
package manifest

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
)

const dateLayout = "2006-01-02"

// filename nombre de descarga: manifiesto_<número de carga>.<ext>.
func filename(m *dto.Manifest, ext string) string {
	num := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, m.LoadNumber)
	return "manifiesto_" + num + "." + ext
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func qty(d decimal.Decimal) string { return d.StringFixed(2) }

func weight(d decimal.Decimal) string { return d.StringFixed(3) }

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
