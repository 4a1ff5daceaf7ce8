// Package country maps exchange-qualified tickers to ISO 3166-1 numeric country codes.
package country

import (
	"strings"
)

// DefaultCode is returned for tickers without a recognised exchange suffix (United States)
const DefaultCode = "840"

// suffixCodes maps an exchange suffix to the country of that exchange
var suffixCodes = map[string]string{
	"T":  "392", // Tokyo
	"L":  "826", // London
	"TO": "124", // Toronto
	"PA": "250", // Paris
	"DE": "276", // XETRA
	"SW": "756", // SIX Swiss
	"AX": "036", // ASX
	"SS": "156", // Shanghai
	"HK": "156", // Hong Kong
	"NS": "356", // NSE India
	"TW": "158", // Taiwan
	"KS": "410", // Korea
	"SA": "076", // B3 Sao Paulo
}

// Classify returns the country code for a ticker such as "7203.T" or "NESN.SW".
// The suffix after the last dot selects the exchange. Anything unknown is DefaultCode.
func Classify(ticker string) string {
	idx := strings.LastIndex(ticker, ".")
	if idx < 0 || idx == len(ticker)-1 {
		return DefaultCode
	}

	suffix := strings.ToUpper(ticker[idx+1:])
	if code, ok := suffixCodes[suffix]; ok {
		return code
	}
	return DefaultCode
}
