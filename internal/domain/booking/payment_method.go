package booking

import "strings"

// PaymentMethod is a label only; no gateway is called.
type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
)

// SupportedPaymentMethods lists the closed set in display order.
func SupportedPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCard, PaymentUPI, PaymentNetBanking}
}

// paymentAliases maps accepted alternative spellings to their method.
var paymentAliases = map[string]PaymentMethod{
	"net-banking": PaymentNetBanking,
	"net_banking": PaymentNetBanking,
}

// ParsePaymentMethod normalises a client label. Case and surrounding
// whitespace are ignored; "net-banking" and "net_banking" are the only
// other accepted spellings.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if m, ok := paymentAliases[norm]; ok {
		return m, nil
	}
	for _, m := range SupportedPaymentMethods() {
		if string(m) == norm {
			return m, nil
		}
	}
	return "", ErrUnsupportedPaymentMethod
}
