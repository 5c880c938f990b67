package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/renovapanel/renova/pkg/clients"
)

// planLine is one renewal option rendered into the reminder message.
type planLine struct {
	DurationMonths int
	PriceCentavos  int64
}

// formatCentavos renders a centavos amount as a decimal string with two
// places, e.g. 4990 -> "49.90".
func formatCentavos(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// formatDate renders a date in the DD/MM/YYYY form used in messages.
func formatDate(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

// renderReminder builds the WhatsApp reminder text for a client. For
// the personalizado tier the override price is used and plans are
// ignored; otherwise one line per plan is rendered in the order given.
// An empty plan list simply omits the price section.
func renderReminder(c *clients.Client, plans []planLine) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⚠️ Prezado(a) %s, Sua assinatura vence em %s.\n", c.Name, formatDate(c.ExpiresAt))

	login := c.Login
	if login == "" {
		login = "N/A"
	}
	fmt.Fprintf(&b, "👤 Usuário: %s\n\n", login)

	if c.PriceTier == clients.PriceTierCustom {
		var price int64
		if c.CustomPriceCentavos != nil {
			price = *c.CustomPriceCentavos
		}
		fmt.Fprintf(&b, "Valor de renovação: R$ %s\n", formatCentavos(price))
		return b.String()
	}

	if len(plans) > 0 {
		fmt.Fprintf(&b, "Opções de renovação (%s):\n", c.PriceTier)
		for _, p := range plans {
			fmt.Fprintf(&b, "📅 %d mês(es): R$ %s\n", p.DurationMonths, formatCentavos(p.PriceCentavos))
		}
	}

	return b.String()
}
