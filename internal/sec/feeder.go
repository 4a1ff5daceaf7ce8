package sec

import (
	"strings"
)

var feederKeywords = []string{"feeder fund", "feeder", "master fund", "กองทุนหลัก"}

// IsFeederFund reports whether a profile names a master fund or describes itself as a feeder
func IsFeederFund(p FundProfile) bool {
	if strings.TrimSpace(p.FeederfundMasterFund) != "" {
		return true
	}
	combined := strings.ToLower(p.PolicyDesc + " " + p.InvestmentPolicyDesc)
	for _, kw := range feederKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// ExtractMasterFundName returns the trimmed master fund name, or "" when there is none
func ExtractMasterFundName(p FundProfile) string {
	return strings.TrimSpace(p.FeederfundMasterFund)
}

type masterFundTicker struct {
	fragment string
	ticker   string
}

// masterFundTickers maps a lowercase fragment of a master fund name to a ticker.
// Entries are matched in order, the first fragment contained in the name wins.
var masterFundTickers = []masterFundTicker{
	// US equity
	{"ishares core s&p 500", "IVV"},
	{"vanguard s&p 500", "VOO"},
	{"spdr s&p 500", "SPY"},
	{"ishares msci usa", "EUSA"},

	// Global equity
	{"ishares msci world", "URTH"},
	{"ishares msci acwi", "ACWI"},
	{"vanguard total world", "VT"},
	{"vanguard ftse all-world", "VT"},

	// Nasdaq
	{"invesco qqq", "QQQ"},
	{"invesco nasdaq 100", "QQQM"},
	{"ishares nasdaq 100", "QQQ"},

	// China
	{"ishares china", "MCHI"},
	{"ishares msci china", "MCHI"},
	{"xtrackers msci china", "CN"},
	{"hang seng china enterprises index", "2828.HK"},
	{"invesco china technology", "CQQQ"},
	{"chinaamc csi 300 index", "3188.HK"},

	// Vietnam
	{"vaneck vietnam", "VNM"},
	{"xtrackers ftse vietnam", "VNM"},

	// India
	{"ishares msci india", "INDA"},
	{"ishares india 50", "INDY"},

	// Korea
	{"msci korea index", "EWY"},

	// Japan
	{"ishares msci japan", "EWJ"},
	{"next funds nikkei 225", "1321.T"},
	{"nikkei 225 exchange traded fund", "1321.T"},
	{"ishares core nikkei 225", "1329.T"},

	// Europe
	{"ishares core msci europe", "IEUR"},
	{"ishares msci europe", "IEUR"},
	{"ishares stoxx europe 600", "EXSA.DE"},
	{"dax ucits etf", "XDAX.DE"},

	// Fixed income
	{"pimco gis income", "PONAX"},
	{"pimco income", "PONAX"},
	{"jpmorgan income", "JGIAX"},
	{"templeton global bond", "TPINX"},
	{"ishares core u.s. aggregate bond", "AGG"},
	{"us aggregate bond", "AGG"},

	// Commodities
	{"spdr gold", "GLD"},
	{"ishares gold", "IAU"},
	{"wisdomtree physical gold", "SGOL"},
	{"invesco db oil", "DBO"},
	{"united states oil", "USO"},

	// Real estate
	{"ishares global reit", "REET"},

	// Healthcare
	{"ishares healthcare", "IYH"},
	{"health sciences", "XLV"},
	{"global life sciences", "JNGLX"},

	// Technology
	{"ishares global tech", "IXN"},
	{"fidelity global technology", "FTEKX"},
	{"artificial intelligence & big data", "XAIX.DE"},

	// Multi-asset
	{"blackrock global allocation", "MDLOX"},
	{"jpmorgan multi-income", "JMUAX"},
	{"global select equity", "JGLO"},
	{"msci world quality factor", "QUAL"},
	{"us growth", "JIGRX"},
}

var trademarkStripper = strings.NewReplacer("®", "", "™", "")

// MapMasterFundToTicker returns the ticker of a known master fund, "" when unmapped
func MapMasterFundToTicker(masterFundName string) string {
	name := strings.TrimSpace(strings.ToLower(trademarkStripper.Replace(masterFundName)))
	if name == "" {
		return ""
	}
	for _, m := range masterFundTickers {
		if strings.Contains(name, m.fragment) {
			return m.ticker
		}
	}
	return ""
}
