package marketdata

import (
	"fmt"
	"strings"
)

type CurrencyPair struct {
	Base    string
	Counter string
}

func NewCurrencyPair(base, counter string) CurrencyPair {
	return CurrencyPair{
		Base:    strings.ToUpper(base),
		Counter: strings.ToUpper(counter),
	}
}

// ParseCurrencyPair parses the BASE/COUNTER form.
func ParseCurrencyPair(s string) (CurrencyPair, error) {
	base, counter, ok := strings.Cut(s, "/")
	if !ok || base == "" || counter == "" {
		return CurrencyPair{}, fmt.Errorf("invalid currency pair %q", s)
	}

	return NewCurrencyPair(base, counter), nil
}

func (p CurrencyPair) String() string {
	if p.Base == "" && p.Counter == "" {
		return ""
	}

	return p.Base + "/" + p.Counter
}
